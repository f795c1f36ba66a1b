package dto

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type AccessTokenResponse struct {
	DeviceID    int64  `json:"deviceId"`
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

type ValidateResponse struct {
	Valid      bool   `json:"valid"`
	DeviceID   int64  `json:"deviceId,omitempty"`
	DeviceName string `json:"deviceName,omitempty"`
}
