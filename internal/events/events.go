package events

import (
	"context"
	"time"
)

// Queue names for device lifecycle events.
const (
	QueueDeviceRegistered      = "device.registered"
	QueueDeviceLoggedIn        = "device.logged_in"
	QueueDeviceLoggedOut       = "device.logged_out"
	QueuePipelineConfigChanged = "device.pipeline_config_changed"
)

type DeviceRegistered struct {
	DeviceID     int64     `json:"deviceId"`
	Name         string    `json:"name"`
	PipelineType string    `json:"pipelineType"`
	LLMService   string    `json:"llmService"`
	At           time.Time `json:"at"`
}

type DeviceLoggedIn struct {
	DeviceID int64     `json:"deviceId"`
	At       time.Time `json:"at"`
}

type DeviceLoggedOut struct {
	DeviceID int64     `json:"deviceId"`
	At       time.Time `json:"at"`
}

type PipelineConfigChanged struct {
	DeviceID     int64     `json:"deviceId"`
	PipelineType string    `json:"pipelineType"`
	LLMService   string    `json:"llmService"`
	At           time.Time `json:"at"`
}

// Publisher delivers lifecycle events to interested consumers (admin
// dashboards, audit). Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, queue string, payload any) error
}

// Nop drops every event; used when no broker is configured and in tests.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
