package sandbox

import "time"

// APILog stores one poll outcome per row.
type APILog struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ServiceID    string    `gorm:"not null;index" json:"service_id"`
	Endpoint     string    `json:"endpoint"`
	Status       string    `json:"status"`
	ResponseData string    `json:"response_data"`
	DurationMS   int64     `json:"duration_ms"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

// TableName pins the table name.
func (APILog) TableName() string { return "api_logs" }

// CustomData is a free-form key/value row.
type CustomData struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Key       string    `gorm:"not null;uniqueIndex" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name.
func (CustomData) TableName() string { return "custom_data" }
