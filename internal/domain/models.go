// Package domain defines the persistence models for the car-market backend:
// car series, user interactions (views and likes), monthly sales rows, and
// persisted recommendation snapshots. These types are mapped with GORM and
// form the core data layer of the application.
package domain

import (
	"time"
)

// Series represents a car series with its categorical attributes, price range
// and the eight editorial score dimensions. Series rows are maintained by the
// admin CRUD screens and are read-only to the recommendation engine.
//
// ModelType may hold several slash-delimited values (e.g. "SUV/轿车"); the
// preference engine keeps the raw value at accumulation time and only splits
// it when scoring candidates.
type Series struct {
	ID              int64      `json:"id"               gorm:"primaryKey;autoIncrement"`
	Country         string     `json:"country"          gorm:"type:varchar(255)"`
	BrandName       string     `json:"brandName"        gorm:"column:brand_name;type:varchar(255)"`
	Image           string     `json:"image"            gorm:"type:varchar(255)"`
	SeriesName      string     `json:"seriesName"       gorm:"column:series_name;type:varchar(255)"`
	SeriesID        int64      `json:"seriesId"         gorm:"column:series_id;index"`
	DealerPrice     string     `json:"dealerPriceStr"   gorm:"column:dealer_price_str;type:varchar(255)"`
	OfficialPrice   string     `json:"officialPriceStr" gorm:"column:official_price_str;type:varchar(255)"`
	MaxPrice        *float64   `json:"maxPrice"         gorm:"column:max_price"`
	MinPrice        *float64   `json:"minPrice"         gorm:"column:min_price"`
	MonthTotalSales int        `json:"monthTotalSales"  gorm:"column:month_total_sales"`
	CityTotalSales  int        `json:"cityTotalSales"   gorm:"column:city_total_sales"`
	ModelType       string     `json:"modelType"        gorm:"column:model_type;type:varchar(255)"`
	EnergyType      string     `json:"energyType"       gorm:"column:energy_type;type:varchar(255)"`
	MarketTime      *time.Time `json:"marketTime"       gorm:"column:market_time"`

	// Score dimensions. OverallScore is the series' own average; the other
	// seven are compared against it when building preference vectors.
	OverallScore       *float64 `json:"overallScore"       gorm:"column:overall_score"`
	ExteriorScore      *float64 `json:"exteriorScore"      gorm:"column:exterior_score"`
	InteriorScore      *float64 `json:"interiorScore"      gorm:"column:interior_score"`
	SpaceScore         *float64 `json:"spaceScore"         gorm:"column:space_score"`
	HandlingScore      *float64 `json:"handlingScore"      gorm:"column:handling_score"`
	ComfortScore       *float64 `json:"comfortScore"       gorm:"column:comfort_score"`
	PowerScore         *float64 `json:"powerScore"         gorm:"column:power_score"`
	ConfigurationScore *float64 `json:"configurationScore" gorm:"column:configuration_score"`

	CreateTime time.Time  `json:"createTime" gorm:"column:create_time"`
	CreateBy   string     `json:"createBy"   gorm:"column:create_by;type:varchar(255)"`
	UpdateTime *time.Time `json:"updateTime" gorm:"column:update_time"`
	Remark     string     `json:"remark"     gorm:"type:varchar(255)"`
}

// TableName returns the database table name for Series.
func (Series) TableName() string { return "tb_series" }

// Interaction is the denormalized snapshot shared by views and likes. The
// snapshot is taken at interaction time, so later edits to a series do not
// retroactively change historical preference weight. Rows are immutable once
// created.
type Interaction struct {
	ID         int64  `json:"id"         gorm:"primaryKey;autoIncrement"`
	UserID     int64  `json:"userId"     gorm:"column:user_id;not null;index"`
	UserName   string `json:"userName"   gorm:"column:user_name;type:varchar(255);not null"`
	SeriesID   int64  `json:"seriesId"   gorm:"column:series_id;index"`
	Country    string `json:"country"    gorm:"type:varchar(255)"`
	BrandName  string `json:"brandName"  gorm:"column:brand_name;type:varchar(255)"`
	Image      string `json:"image"      gorm:"type:varchar(255)"`
	SeriesName string `json:"seriesName" gorm:"column:series_name;type:varchar(255)"`
	ModelType  string `json:"modelType"  gorm:"column:model_type;type:varchar(255)"`
	EnergyType string `json:"energyType" gorm:"column:energy_type;type:varchar(255)"`

	OverallScore       *float64 `json:"overallScore"       gorm:"column:overall_score"`
	ExteriorScore      *float64 `json:"exteriorScore"      gorm:"column:exterior_score"`
	InteriorScore      *float64 `json:"interiorScore"      gorm:"column:interior_score"`
	SpaceScore         *float64 `json:"spaceScore"         gorm:"column:space_score"`
	HandlingScore      *float64 `json:"handlingScore"      gorm:"column:handling_score"`
	ComfortScore       *float64 `json:"comfortScore"       gorm:"column:comfort_score"`
	PowerScore         *float64 `json:"powerScore"         gorm:"column:power_score"`
	ConfigurationScore *float64 `json:"configurationScore" gorm:"column:configuration_score"`

	Price *float64 `json:"price" gorm:"column:price"`
	// Score is the base weight this interaction contributes before time decay.
	// When absent the engine falls back to the configured default for the
	// interaction kind (views and likes carry different defaults).
	Score *float64 `json:"score" gorm:"column:score"`

	CreateTime time.Time `json:"createTime" gorm:"column:create_time;index"`
}

// View is a browsing interaction.
type View struct {
	Interaction
}

// TableName returns the database table name for View.
func (View) TableName() string { return "tb_view" }

// Like is a like interaction. Likes carry a higher default weight than views.
// A user may like a given series at most once.
type Like struct {
	Interaction
}

// TableName returns the database table name for Like.
func (Like) TableName() string { return "tb_like" }

// Sales is a monthly per-city sales observation for a series. Month is stored
// as a YYYYMM integer; CityFullName is "province city" separated by a single
// space (municipalities appear without the space).
type Sales struct {
	ID         int64    `json:"id"         gorm:"primaryKey;autoIncrement"`
	Country    string   `json:"country"    gorm:"type:varchar(255)"`
	BrandName  string   `json:"brandName"  gorm:"column:brand_name;type:varchar(255)"`
	Image      string   `json:"image"      gorm:"type:varchar(1024)"`
	SeriesName string   `json:"seriesName" gorm:"column:series_name;type:varchar(255)"`
	SeriesID   int64    `json:"seriesId"   gorm:"column:series_id;index"`
	ModelType  string   `json:"modelType"  gorm:"column:model_type;type:varchar(255)"`
	EnergyType string   `json:"energyType" gorm:"column:energy_type;type:varchar(255)"`
	MaxPrice   *float64 `json:"maxPrice"   gorm:"column:max_price"`
	MinPrice   *float64 `json:"minPrice"   gorm:"column:min_price"`
	Rank       int      `json:"rank"       gorm:"column:rank"`

	Sales                   int `json:"sales"`
	LastCitySales           int `json:"lastCitySales"           gorm:"column:last_city_sales"`
	MonthSales              int `json:"monthSales"              gorm:"column:month_sales"`
	MonthCityTotalSales     int `json:"monthCityTotalSales"     gorm:"column:month_city_total_sales"`
	LastMonthSales          int `json:"lastMonthSales"          gorm:"column:last_month_sales"`
	LastMonthCityTotalSales int `json:"lastMonthCityTotalSales" gorm:"column:last_month_city_total_sales"`

	Month        int        `json:"month"        gorm:"index"`
	MonthDate    *time.Time `json:"monthDate"    gorm:"column:month_date"`
	CityName     string     `json:"cityName"     gorm:"column:city_name;type:varchar(255)"`
	CityFullName string     `json:"cityFullName" gorm:"column:city_full_name;type:varchar(255);index"`

	CreateTime time.Time  `json:"createTime" gorm:"column:create_time"`
	CreateBy   string     `json:"createBy"   gorm:"column:create_by;type:varchar(255)"`
	UpdateTime *time.Time `json:"updateTime" gorm:"column:update_time"`
	Remark     string     `json:"remark"     gorm:"type:varchar(255)"`
}

// TableName returns the database table name for Sales.
func (Sales) TableName() string { return "tb_sales" }

// ConfigEntry is a key/value tunable (decay factor, thresholds, dimension
// weights, price breakpoints, ...). Values are read per call so changes take
// effect on the next operation without a restart.
type ConfigEntry struct {
	ID          int64      `json:"id"          gorm:"primaryKey;autoIncrement"`
	ConfigKey   string     `json:"configKey"   gorm:"column:config_key;type:varchar(255);uniqueIndex"`
	ConfigValue string     `json:"configValue" gorm:"column:config_value;type:varchar(1024)"`
	CreateTime  time.Time  `json:"createTime"  gorm:"column:create_time"`
	UpdateTime  *time.Time `json:"updateTime"  gorm:"column:update_time"`
	Remark      string     `json:"remark"      gorm:"type:varchar(255)"`
}

// TableName returns the database table name for ConfigEntry.
func (ConfigEntry) TableName() string { return "sys_config" }
