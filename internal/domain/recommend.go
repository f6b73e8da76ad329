// Package domain – recommendation snapshot model and its serialized shapes.
package domain

import "time"

// Recommend is a persisted recommendation snapshot for one user. Rows are
// insert-only: regeneration always appends a new row and readers select the
// most recent one by creation time, which keeps historical snapshots
// available for audit.
type Recommend struct {
	ID       int64  `json:"id"       gorm:"primaryKey;autoIncrement"`
	UserID   int64  `json:"userId"   gorm:"column:user_id;not null;index"`
	UserName string `json:"userName" gorm:"column:user_name;type:varchar(255);not null"`
	// ModelInfo is a RecommendModelInfo JSON blob describing the parameters
	// and preference vector that produced this snapshot.
	ModelInfo string `json:"modelInfo" gorm:"column:model_info;type:text;not null"`
	// Content is a RecommendContent JSON blob with the ranked series ids.
	Content    string    `json:"content"    gorm:"type:text;not null"`
	CreateTime time.Time `json:"createTime" gorm:"column:create_time"`
}

// TableName returns the database table name for Recommend.
func (Recommend) TableName() string { return "tb_recommend" }

// RecommendContent is the serialized shape of Recommend.Content: the ranked
// candidate series ids, their count, and the generation timestamp.
type RecommendContent struct {
	SeriesIDs   []int64   `json:"seriesIds"`
	Total       int       `json:"total"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// RecommendModelInfo is the serialized shape of Recommend.ModelInfo. It keeps
// the tunables that were in effect, the size of the interaction history, and
// the resulting preference vector, so a past snapshot can be explained later.
type RecommendModelInfo struct {
	DecayFactor      float64                       `json:"decayFactor"`
	ViewDefaultScore float64                       `json:"viewDefaultScore"`
	LikeDefaultScore float64                       `json:"likeDefaultScore"`
	DimensionWeights map[string]float64            `json:"dimensionWeights"`
	ViewCount        int                           `json:"viewCount"`
	LikeCount        int                           `json:"likeCount"`
	Preferences      map[string]map[string]float64 `json:"preferences"`
}
