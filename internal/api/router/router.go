package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/minato696/controltransmisionesV4/config"
	"github.com/minato696/controltransmisionesV4/internal/api/handler"
	"github.com/minato696/controltransmisionesV4/internal/api/middleware"
	"github.com/minato696/controltransmisionesV4/pkg/redis"
)

// 写接口限流口径：每 IP 每路由每分钟
const (
	writeRateLimit  = 120
	writeRateWindow = time.Minute
	maxBodyBytes    = 1 << 20 // 1MB
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// 写接口限流（rdb 为 nil 时自动放行）
	limited := middleware.RateLimit(rdb, writeRateLimit, writeRateWindow)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 派遣模块
		dispatches := v1.Group("/dispatches")
		{
			dispatches.GET("", h.Dispatch.ListDispatches)
			dispatches.GET("/:id", h.Dispatch.GetDispatch)
			dispatches.POST("", limited, h.Dispatch.UpsertDispatch)
			dispatches.POST("/batch", limited, h.Dispatch.UpsertDispatchBatch)
			dispatches.PUT("/:id", limited, h.Dispatch.UpdateDispatch)
			dispatches.DELETE("/:id", limited, h.Dispatch.DeleteDispatch)
		}

		// 统计模块
		v1.GET("/statistics", h.Statistics.GetStatistics)

		// 记者模块
		reporters := v1.Group("/reporters")
		{
			reporters.GET("", h.Reporter.ListReporters)
			reporters.GET("/city/:code", h.Reporter.ListReportersByCity)
			reporters.GET("/:id", h.Reporter.GetReporter)
			reporters.POST("", limited, h.Reporter.CreateReporter)
			reporters.PUT("/:id", limited, h.Reporter.UpdateReporter)
			reporters.DELETE("/:id", limited, h.Reporter.DeleteReporter)
		}

		// 城市模块
		cities := v1.Group("/cities")
		{
			cities.GET("", h.City.ListCities)
			cities.GET("/:id", h.City.GetCity)
			cities.POST("", limited, h.City.CreateCity)
			cities.PUT("/:id", limited, h.City.UpdateCity)
			cities.DELETE("/:id", limited, h.City.DeleteCity)
		}

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/dispatches.xlsx", h.Export.ExportDispatchesXLSX)
			export.GET("/dispatches.ics", h.Export.ExportDispatchesICS)
		}
	}

	return r
}
