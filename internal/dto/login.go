package dto

type DeviceLoginRequest struct {
	DeviceID int64  `json:"deviceId"`
	Password string `json:"password"`
}

type TokenPairResponse struct {
	DeviceID     int64  `json:"deviceId"`
	DeviceName   string `json:"deviceName"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}
