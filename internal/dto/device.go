package dto

import "time"

type DeviceInfoResponse struct {
	DeviceID  int64      `json:"deviceId"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

type SuggestIDResponse struct {
	DeviceID int64 `json:"deviceId"`
}
