package service

import (
	"context"

	"voicebot/internal/domain"
	"voicebot/internal/dto"
)

// SessionService covers a device's whole account lifecycle: registration,
// the single-active-session token dance, and pipeline configuration.
type SessionService interface {
	Register(ctx context.Context, req dto.DeviceRegisterRequest) (*dto.DeviceRegisterResponse, error)
	Login(ctx context.Context, req dto.DeviceLoginRequest) (*dto.TokenPairResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.AccessTokenResponse, error)
	Logout(ctx context.Context, deviceID int64) error

	// Resolve maps a presented access token to its device, enforcing both the
	// JWT checks and the stored-value equality check.
	Resolve(ctx context.Context, accessToken string) (*domain.Device, error)

	SuggestID(ctx context.Context) (int64, error)
	ConfigInfo(ctx context.Context, deviceID int64) (*dto.PipelineConfigResponse, error)
	UpdateConfig(ctx context.Context, deviceID int64, req dto.PipelineConfigUpdateRequest) (*dto.PipelineConfigResponse, error)
}
