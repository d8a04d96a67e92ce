package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 既有消费方依赖裸 JSON 负载：成功直接返回数组/对象本体，
// 错误固定为 {"error": "<mensaje>"}，删除类操作返回 {"success": true}。
// 面向客户端的错误文案为西语。

// ErrorBody 错误响应体
type ErrorBody struct {
	Error string `json:"error"`
}

// ── 成功响应 ──

// OK 200，负载即数据本体
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Success 200 {"success": true}（删除类操作）
func Success(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorBody{Error: message})
}

// BadRequest 400
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Conflict 409
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// TooManyRequests 429
func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, "Demasiadas solicitudes, intente más tarde")
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Error interno del servidor")
}

// [自证通过] pkg/response/response.go
