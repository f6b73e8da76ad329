// Package domain – statistics cache row and the serialized aggregate point.
package domain

import "time"

// StatisticsInfo is a generic key→content cache row shared by every
// statistics metric. StatisticsKey uniquely identifies one (metric, scope,
// month, filter set) combination; Content holds a JSON array of StatPoint.
//
// There is no dependency tracking: an update to the underlying sales data
// does not invalidate existing rows. Clearing stale rows is an operator
// action (the admin screen deletes by key or common key).
type StatisticsInfo struct {
	ID            string     `json:"id"            gorm:"type:varchar(255);primaryKey"`
	Type          string     `json:"type"          gorm:"type:varchar(255);not null"`
	Name          string     `json:"statisticsName" gorm:"column:statistics_name;type:varchar(255);not null"`
	CommonKey     string     `json:"commonKey"     gorm:"column:common_key;type:varchar(255);not null;index"`
	StatisticsKey string     `json:"statisticsKey" gorm:"column:statistics_key;type:varchar(255);not null;uniqueIndex"`
	Content       string     `json:"content"       gorm:"type:text"`
	ExtendContent string     `json:"extendContent" gorm:"column:extend_content;type:text"`
	Remark        string     `json:"remark"        gorm:"type:text"`
	CreateTime    time.Time  `json:"createTime"    gorm:"column:create_time"`
	UpdateTime    *time.Time `json:"updateTime"    gorm:"column:update_time"`
}

// TableName returns the database table name for StatisticsInfo.
func (StatisticsInfo) TableName() string { return "statistics_info" }

// StatPoint is one aggregated observation: a labeled value for a month.
// It is the serialized element type of every cached statistics content blob
// and of every statistics query response.
type StatPoint struct {
	Name        string `json:"name"`
	Value       int    `json:"value"`
	Month       int    `json:"month"`
	TooltipText string `json:"tooltipText,omitempty"`
}
