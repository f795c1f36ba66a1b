package domain

import "time"

// Device is a registered kiosk/terminal identity. DeviceID is allocated by the
// service (not auto-incremented by the database) so allocation can start from
// a configurable floor and survive manual inserts.
type Device struct {
	DeviceID     int64        `gorm:"primaryKey;autoIncrement:false" db:"device_id" json:"deviceId"`
	Name         string       `gorm:"type:text;not null" db:"name" json:"name"`
	PasswordHash string       `gorm:"type:text;not null" db:"password_hash" json:"-"`
	AccessToken  *string      `gorm:"type:text" db:"access_token" json:"-"`
	RefreshToken *string      `gorm:"type:text" db:"refresh_token" json:"-"`
	PipelineType PipelineType `gorm:"type:text;not null" db:"pipeline_type" json:"pipelineType"`
	LLMService   LLMService   `gorm:"type:text;not null" db:"llm_service" json:"llmService"`
	CreatedAt    time.Time    `gorm:"not null" db:"created_at" json:"createdAt"`
	LastLogin    *time.Time   `db:"last_login" json:"lastLogin,omitempty"`
}

func (Device) TableName() string { return "devices" }
