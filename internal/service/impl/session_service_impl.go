package impl

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"voicebot/internal/domain"
	"voicebot/internal/dto"
	"voicebot/internal/events"
	"voicebot/internal/observability/metrics"
	"voicebot/internal/observability/middleware"
	"voicebot/internal/service"
	"voicebot/internal/store"
)

const idAllocationAttempts = 3

// SessionConfig tunes registration and pipeline defaults.
type SessionConfig struct {
	IDStart  int64                 // first device id handed out on an empty table
	Defaults domain.PipelineConfig // applied when registration omits pipeline fields
}

// invalidator is the slice of the pipeline cache the session layer needs:
// config writes must drop the cached pipeline before they are acknowledged.
type invalidator interface {
	Invalidate(deviceID int64)
}

type SessionServiceImpl struct {
	Store     deviceStore
	Passwords service.PasswordService
	Tokens    service.TokenService
	Pipelines invalidator
	Events    events.Publisher
	Cfg       SessionConfig

	now func() time.Time
}

var _ service.SessionService = (*SessionServiceImpl)(nil)

func NewSessionServiceImpl(
	st *store.Store,
	passwords service.PasswordService,
	tokens service.TokenService,
	pipelines invalidator,
	pub events.Publisher,
	cfg SessionConfig,
) *SessionServiceImpl {
	if cfg.IDStart <= 0 {
		cfg.IDStart = 1201
	}
	if cfg.Defaults.PipelineType == "" {
		cfg.Defaults.PipelineType = domain.PipelineLibrary
	}
	if cfg.Defaults.LLMService == "" {
		cfg.Defaults.LLMService = domain.LLMGemini
	}
	if pub == nil {
		pub = events.Nop{}
	}
	return &SessionServiceImpl{
		Store:     st.Devices(),
		Passwords: passwords,
		Tokens:    tokens,
		Pipelines: pipelines,
		Events:    pub,
		Cfg:       cfg,
		now:       time.Now,
	}
}

// deviceStore is the narrow store slice this service needs; *store.DeviceStore
// satisfies it, tests swap in a map-backed one.
type deviceStore interface {
	Create(ctx context.Context, device *domain.Device) error
	GetByID(ctx context.Context, deviceID int64) (*domain.Device, error)
	GetByToken(ctx context.Context, token string, kind domain.TokenKind) (*domain.Device, error)
	SetTokens(ctx context.Context, deviceID int64, access, refresh string) error
	SetAccessToken(ctx context.Context, deviceID int64, access string) error
	ClearTokens(ctx context.Context, deviceID int64) error
	TouchLastLogin(ctx context.Context, deviceID int64, at time.Time) error
	UpdateConfig(ctx context.Context, deviceID int64, upd store.ConfigUpdate) error
	MaxID(ctx context.Context) (int64, error)
}

// Register creates a device with a freshly allocated id and an active session.
func (s *SessionServiceImpl) Register(ctx context.Context, r dto.DeviceRegisterRequest) (*dto.DeviceRegisterResponse, error) {
	result := "success"
	defer func() {
		metrics.DeviceRegistrationsTotal.WithLabelValues(result).Inc()
	}()

	// 1) basic validation
	name := strings.TrimSpace(r.DeviceName)
	if len(name) < 3 {
		result = "failure"
		return nil, ErrDeviceNameLength
	}
	if len(r.Password) < 8 {
		result = "failure"
		return nil, ErrPasswordLength
	}
	if r.ConfirmPassword != "" && r.ConfirmPassword != r.Password {
		result = "failure"
		return nil, ErrPasswordMismatch
	}
	cfg, err := s.resolveRegisterConfig(r)
	if err != nil {
		result = "failure"
		return nil, err
	}

	// 2) hash password
	hash, err := s.Passwords.Hash(r.Password)
	if err != nil {
		result = "failure"
		return nil, err
	}

	// 3) allocate id and insert; the primary key's uniqueness arbitrates
	//    concurrent registrations, so losing a race just means retrying with a
	//    re-read max.
	var dev *domain.Device
	var access, refresh string
	var expiresIn int64
	for attempt := 0; attempt < idAllocationAttempts; attempt++ {
		id, err := s.nextDeviceID(ctx)
		if err != nil {
			result = "failure"
			return nil, err
		}
		access, refresh, expiresIn, err = s.issuePair(id)
		if err != nil {
			result = "failure"
			return nil, err
		}
		now := s.now().UTC()
		dev = &domain.Device{
			DeviceID:     id,
			Name:         name,
			PasswordHash: hash,
			AccessToken:  &access,
			RefreshToken: &refresh,
			PipelineType: cfg.PipelineType,
			LLMService:   cfg.LLMService,
			CreatedAt:    now,
		}
		err = s.Store.Create(ctx, dev)
		if err == nil {
			break
		}
		dev = nil
		if !errors.Is(err, store.ErrDuplicatedKey) {
			result = "failure"
			return nil, err
		}
	}
	if dev == nil {
		result = "failure"
		return nil, domain.ErrIDAllocationConflict
	}

	s.emit(ctx, events.QueueDeviceRegistered, events.DeviceRegistered{
		DeviceID:     dev.DeviceID,
		Name:         dev.Name,
		PipelineType: string(dev.PipelineType),
		LLMService:   string(dev.LLMService),
		At:           dev.CreatedAt,
	})

	reqID := middleware.RequestIDFromContext(ctx)
	traceID := middleware.TraceIDFromContext(ctx)
	slog.Info("device registered", "device_id", dev.DeviceID, "name", dev.Name, "request_id", reqID, "trace_id", traceID)

	return &dto.DeviceRegisterResponse{
		DeviceID:     dev.DeviceID,
		DeviceName:   dev.Name,
		PipelineType: string(dev.PipelineType),
		LLMService:   string(dev.LLMService),
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
	}, nil
}

// Login authenticates and always issues a fresh pair, displacing whatever
// session the device had before. One active session per device.
func (s *SessionServiceImpl) Login(ctx context.Context, r dto.DeviceLoginRequest) (*dto.TokenPairResponse, error) {
	result := "success"
	defer func() {
		metrics.DeviceLoginsTotal.WithLabelValues(result).Inc()
	}()

	if r.DeviceID <= 0 || r.Password == "" {
		result = "failure"
		return nil, ErrEmptyCredential
	}

	// 1) load device; unknown id reads the same as a wrong password
	dev, err := s.Store.GetByID(ctx, r.DeviceID)
	if err != nil {
		result = "failure"
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// 2) verify password
	if !s.Passwords.Verify(dev.PasswordHash, r.Password) {
		result = "failure"
		return nil, domain.ErrInvalidCredentials
	}

	// 3) mint and persist the new pair
	access, refresh, expiresIn, err := s.issuePair(dev.DeviceID)
	if err != nil {
		result = "failure"
		return nil, err
	}
	if err := s.Store.SetTokens(ctx, dev.DeviceID, access, refresh); err != nil {
		result = "failure"
		return nil, err
	}
	now := s.now().UTC()
	if err := s.Store.TouchLastLogin(ctx, dev.DeviceID, now); err != nil {
		// non-fatal: the session is already valid
		slog.Warn("failed to update last_login", "device_id", dev.DeviceID, "error", err)
	}

	s.emit(ctx, events.QueueDeviceLoggedIn, events.DeviceLoggedIn{DeviceID: dev.DeviceID, At: now})

	reqID := middleware.RequestIDFromContext(ctx)
	traceID := middleware.TraceIDFromContext(ctx)
	slog.Info("device logged in", "device_id", dev.DeviceID, "request_id", reqID, "trace_id", traceID)

	return &dto.TokenPairResponse{
		DeviceID:     dev.DeviceID,
		DeviceName:   dev.Name,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
	}, nil
}

// Refresh trades a valid, currently-stored refresh token for a new access
// token. The refresh token itself is left in place until the next login.
func (s *SessionServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.AccessTokenResponse, error) {
	if refreshToken == "" {
		return nil, ErrMissingRefresh
	}

	// 1) JWT-level checks
	claims, err := s.Tokens.Decode(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Kind != domain.TokenRefresh {
		return nil, domain.ErrInvalidToken
	}

	// 2) stored-value check: the presented token must be the one on the row
	dev, err := s.Store.GetByToken(ctx, refreshToken, domain.TokenRefresh)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	if dev.DeviceID != claims.DeviceID {
		return nil, domain.ErrInvalidToken
	}

	// 3) mint a new access token only
	access, exp, err := s.Tokens.Issue(dev.DeviceID, domain.TokenAccess)
	if err != nil {
		return nil, err
	}
	if err := s.Store.SetAccessToken(ctx, dev.DeviceID, access); err != nil {
		return nil, err
	}

	reqID := middleware.RequestIDFromContext(ctx)
	slog.Info("access token refreshed", "device_id", dev.DeviceID, "request_id", reqID)

	return &dto.AccessTokenResponse{
		DeviceID:    dev.DeviceID,
		AccessToken: access,
		ExpiresIn:   int64(time.Until(exp).Seconds()),
	}, nil
}

// Logout clears both stored tokens. Idempotent: logging out an already
// logged-out (or unknown) device succeeds.
func (s *SessionServiceImpl) Logout(ctx context.Context, deviceID int64) error {
	if err := s.Store.ClearTokens(ctx, deviceID); err != nil {
		return err
	}
	s.emit(ctx, events.QueueDeviceLoggedOut, events.DeviceLoggedOut{DeviceID: deviceID, At: s.now().UTC()})
	slog.Info("device logged out", "device_id", deviceID, "request_id", middleware.RequestIDFromContext(ctx))
	return nil
}

// Resolve is the two-phase access-token check: valid JWT AND equal to the
// stored access token of the device it names.
func (s *SessionServiceImpl) Resolve(ctx context.Context, accessToken string) (*domain.Device, error) {
	claims, err := s.Tokens.Decode(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.Kind != domain.TokenAccess {
		return nil, domain.ErrInvalidToken
	}

	dev, err := s.Store.GetByToken(ctx, accessToken, domain.TokenAccess)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			// signature is fine but no row holds this token: superseded or revoked
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	if dev.DeviceID != claims.DeviceID {
		return nil, domain.ErrInvalidToken
	}
	return dev, nil
}

// SuggestID previews the id the next registration would most likely get.
// Purely advisory; the insert still arbitrates.
func (s *SessionServiceImpl) SuggestID(ctx context.Context) (int64, error) {
	return s.nextDeviceID(ctx)
}

func (s *SessionServiceImpl) ConfigInfo(ctx context.Context, deviceID int64) (*dto.PipelineConfigResponse, error) {
	dev, err := s.Store.GetByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrDeviceNotFound
		}
		return nil, err
	}
	return &dto.PipelineConfigResponse{
		DeviceID:     dev.DeviceID,
		PipelineType: string(dev.PipelineType),
		LLMService:   string(dev.LLMService),
	}, nil
}

// UpdateConfig validates strictly, persists, then synchronously drops the
// cached pipeline before acknowledging, so the very next pipeline fetch
// reflects the new selection.
func (s *SessionServiceImpl) UpdateConfig(ctx context.Context, deviceID int64, r dto.PipelineConfigUpdateRequest) (*dto.PipelineConfigResponse, error) {
	if r.PipelineType == nil && r.LLMService == nil {
		return nil, ErrNothingToUpdate
	}

	// 1) strict enum validation at the write boundary
	var upd store.ConfigUpdate
	if r.PipelineType != nil {
		pt := domain.PipelineType(*r.PipelineType)
		if !pt.Known() {
			return nil, domain.ErrUnknownPipelineType
		}
		upd.PipelineType = &pt
	}
	if r.LLMService != nil {
		ls := domain.LLMService(*r.LLMService)
		if !ls.Known() {
			return nil, domain.ErrUnknownLLMService
		}
		upd.LLMService = &ls
	}

	// 2) persist
	if err := s.Store.UpdateConfig(ctx, deviceID, upd); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrDeviceNotFound
		}
		return nil, err
	}

	// 3) invalidate the cached pipeline before returning (read-your-writes)
	s.Pipelines.Invalidate(deviceID)

	out, err := s.ConfigInfo(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.QueuePipelineConfigChanged, events.PipelineConfigChanged{
		DeviceID:     deviceID,
		PipelineType: out.PipelineType,
		LLMService:   out.LLMService,
		At:           s.now().UTC(),
	})

	slog.Info("pipeline config updated",
		"device_id", deviceID,
		"pipeline_type", out.PipelineType,
		"llm_service", out.LLMService,
		"request_id", middleware.RequestIDFromContext(ctx),
	)
	return out, nil
}

// ====== Helpers ======

func (s *SessionServiceImpl) resolveRegisterConfig(r dto.DeviceRegisterRequest) (domain.PipelineConfig, error) {
	cfg := s.Cfg.Defaults
	if r.PipelineType != "" {
		pt := domain.PipelineType(r.PipelineType)
		if !pt.Known() {
			return cfg, domain.ErrUnknownPipelineType
		}
		cfg.PipelineType = pt
	}
	if r.LLMService != "" {
		ls := domain.LLMService(r.LLMService)
		if !ls.Known() {
			return cfg, domain.ErrUnknownLLMService
		}
		cfg.LLMService = ls
	}
	return cfg, nil
}

func (s *SessionServiceImpl) nextDeviceID(ctx context.Context) (int64, error) {
	max, err := s.Store.MaxID(ctx)
	if err != nil {
		return 0, err
	}
	if max < s.Cfg.IDStart {
		return s.Cfg.IDStart, nil
	}
	return max + 1, nil
}

func (s *SessionServiceImpl) issuePair(deviceID int64) (access, refresh string, expiresIn int64, err error) {
	access, exp, err := s.Tokens.Issue(deviceID, domain.TokenAccess)
	if err != nil {
		return "", "", 0, err
	}
	refresh, _, err = s.Tokens.Issue(deviceID, domain.TokenRefresh)
	if err != nil {
		return "", "", 0, err
	}
	return access, refresh, int64(time.Until(exp).Seconds()), nil
}

// emit publishes best-effort; a broker outage must not fail the user flow.
func (s *SessionServiceImpl) emit(ctx context.Context, queue string, payload any) {
	if err := s.Events.Publish(ctx, queue, payload); err != nil {
		slog.Warn("event publish failed", "queue", queue, "error", err)
	}
}
