package store

import (
	"context"
	"errors"
	"time"

	"voicebot/internal/domain"

	"gorm.io/gorm"
)

type DeviceStore struct{ db *gorm.DB }

func (s *Store) Devices() *DeviceStore { return &DeviceStore{db: s.DB} }

// ConfigUpdate is a partial pipeline-config write; nil fields are untouched.
type ConfigUpdate struct {
	PipelineType *domain.PipelineType
	LLMService   *domain.LLMService
}

func (d *DeviceStore) Create(ctx context.Context, device *domain.Device) error {
	return d.db.WithContext(ctx).Create(device).Error
}

func (d *DeviceStore) GetByID(ctx context.Context, deviceID int64) (*domain.Device, error) {
	var dev domain.Device
	if err := d.db.WithContext(ctx).First(&dev, "device_id = ?", deviceID).Error; err != nil {
		return nil, err
	}
	return &dev, nil
}

// GetByToken looks a device up by one of its stored token values. This is the
// stored-value half of token validation: a structurally valid JWT that no row
// holds anymore has been superseded or revoked.
func (d *DeviceStore) GetByToken(ctx context.Context, token string, kind domain.TokenKind) (*domain.Device, error) {
	col := "access_token"
	if kind == domain.TokenRefresh {
		col = "refresh_token"
	}
	var dev domain.Device
	if err := d.db.WithContext(ctx).First(&dev, col+" = ?", token).Error; err != nil {
		return nil, err
	}
	return &dev, nil
}

// SetTokens overwrites both stored tokens, displacing any previous session.
func (d *DeviceStore) SetTokens(ctx context.Context, deviceID int64, access, refresh string) error {
	return d.db.WithContext(ctx).
		Model(&domain.Device{}).
		Where("device_id = ?", deviceID).
		Updates(map[string]any{"access_token": access, "refresh_token": refresh}).Error
}

// SetAccessToken replaces only the access token (refresh flow keeps the
// refresh token stable until the next login).
func (d *DeviceStore) SetAccessToken(ctx context.Context, deviceID int64, access string) error {
	return d.db.WithContext(ctx).
		Model(&domain.Device{}).
		Where("device_id = ?", deviceID).
		Update("access_token", access).Error
}

// ClearTokens nulls both tokens. Affecting zero rows is not an error, which
// keeps logout idempotent.
func (d *DeviceStore) ClearTokens(ctx context.Context, deviceID int64) error {
	return d.db.WithContext(ctx).
		Model(&domain.Device{}).
		Where("device_id = ?", deviceID).
		Updates(map[string]any{"access_token": nil, "refresh_token": nil}).Error
}

func (d *DeviceStore) TouchLastLogin(ctx context.Context, deviceID int64, at time.Time) error {
	return d.db.WithContext(ctx).
		Model(&domain.Device{}).
		Where("device_id = ?", deviceID).
		Update("last_login", at).Error
}

func (d *DeviceStore) UpdateConfig(ctx context.Context, deviceID int64, upd ConfigUpdate) error {
	fields := map[string]any{}
	if upd.PipelineType != nil {
		fields["pipeline_type"] = *upd.PipelineType
	}
	if upd.LLMService != nil {
		fields["llm_service"] = *upd.LLMService
	}
	if len(fields) == 0 {
		return nil
	}
	tx := d.db.WithContext(ctx).
		Model(&domain.Device{}).
		Where("device_id = ?", deviceID).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PipelineConfig reads just the pipeline selection for a device. found=false
// means the device does not exist (as opposed to a storage failure).
func (d *DeviceStore) PipelineConfig(ctx context.Context, deviceID int64) (domain.PipelineConfig, bool, error) {
	dev, err := d.GetByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PipelineConfig{}, false, nil
		}
		return domain.PipelineConfig{}, false, err
	}
	return domain.PipelineConfig{PipelineType: dev.PipelineType, LLMService: dev.LLMService}, true, nil
}

// MaxID returns the highest allocated device id, 0 when the table is empty.
func (d *DeviceStore) MaxID(ctx context.Context) (int64, error) {
	var max int64
	err := d.db.WithContext(ctx).
		Model(&domain.Device{}).
		Select("COALESCE(MAX(device_id), 0)").
		Scan(&max).Error
	return max, err
}
