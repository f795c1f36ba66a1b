package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"voicebot/internal/domain"
	"voicebot/internal/store"
	"voicebot/pkg/db"
)

func setupStore(t *testing.T) *store.Store {
	t.Helper()

	// named in-memory database so the whole pool sees the same data
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := db.OpenGorm(db.Config{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&domain.Device{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return store.New(gdb)
}

func seedDevice(t *testing.T, st *store.Store, id int64) *domain.Device {
	t.Helper()
	access := fmt.Sprintf("access-%d", id)
	refresh := fmt.Sprintf("refresh-%d", id)
	dev := &domain.Device{
		DeviceID:     id,
		Name:         fmt.Sprintf("Kiosk-%d", id),
		PasswordHash: "x",
		AccessToken:  &access,
		RefreshToken: &refresh,
		PipelineType: domain.PipelineLibrary,
		LLMService:   domain.LLMGemini,
		CreatedAt:    time.Now().UTC(),
	}
	if err := st.Devices().Create(context.Background(), dev); err != nil {
		t.Fatalf("seed device %d: %v", id, err)
	}
	return dev
}

func TestDeviceStoreCreateAndGet(t *testing.T) {
	st := setupStore(t)
	seedDevice(t, st, 1201)

	dev, err := st.Devices().GetByID(context.Background(), 1201)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if dev.Name != "Kiosk-1201" {
		t.Fatalf("name: got %q", dev.Name)
	}

	if _, err := st.Devices().GetByID(context.Background(), 9999); !errors.Is(err, store.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestDeviceStoreDuplicateKeyTranslated(t *testing.T) {
	st := setupStore(t)
	seedDevice(t, st, 1201)

	dup := &domain.Device{
		DeviceID:     1201,
		Name:         "Imposter",
		PasswordHash: "x",
		PipelineType: domain.PipelineLibrary,
		LLMService:   domain.LLMGemini,
		CreatedAt:    time.Now().UTC(),
	}
	if err := st.Devices().Create(context.Background(), dup); !errors.Is(err, store.ErrDuplicatedKey) {
		t.Fatalf("expected ErrDuplicatedKey, got %v", err)
	}
}

func TestDeviceStoreGetByToken(t *testing.T) {
	st := setupStore(t)
	seedDevice(t, st, 1201)
	seedDevice(t, st, 1202)

	dev, err := st.Devices().GetByToken(context.Background(), "access-1202", domain.TokenAccess)
	if err != nil {
		t.Fatalf("by access token: %v", err)
	}
	if dev.DeviceID != 1202 {
		t.Fatalf("device: got %d", dev.DeviceID)
	}

	dev, err = st.Devices().GetByToken(context.Background(), "refresh-1201", domain.TokenRefresh)
	if err != nil {
		t.Fatalf("by refresh token: %v", err)
	}
	if dev.DeviceID != 1201 {
		t.Fatalf("device: got %d", dev.DeviceID)
	}

	// an access-token value never matches on the refresh column
	if _, err := st.Devices().GetByToken(context.Background(), "access-1201", domain.TokenRefresh); !errors.Is(err, store.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestDeviceStoreTokenLifecycle(t *testing.T) {
	st := setupStore(t)
	seedDevice(t, st, 1201)
	ctx := context.Background()

	if err := st.Devices().SetTokens(ctx, 1201, "new-access", "new-refresh"); err != nil {
		t.Fatalf("set tokens: %v", err)
	}
	dev, _ := st.Devices().GetByID(ctx, 1201)
	if *dev.AccessToken != "new-access" || *dev.RefreshToken != "new-refresh" {
		t.Fatalf("tokens not replaced: %v / %v", dev.AccessToken, dev.RefreshToken)
	}

	if err := st.Devices().SetAccessToken(ctx, 1201, "newer-access"); err != nil {
		t.Fatalf("set access: %v", err)
	}
	dev, _ = st.Devices().GetByID(ctx, 1201)
	if *dev.AccessToken != "newer-access" || *dev.RefreshToken != "new-refresh" {
		t.Fatalf("refresh token must survive access rotation")
	}

	if err := st.Devices().ClearTokens(ctx, 1201); err != nil {
		t.Fatalf("clear: %v", err)
	}
	dev, _ = st.Devices().GetByID(ctx, 1201)
	if dev.AccessToken != nil || dev.RefreshToken != nil {
		t.Fatalf("tokens not cleared")
	}

	// clearing an unknown device is not an error
	if err := st.Devices().ClearTokens(ctx, 9999); err != nil {
		t.Fatalf("clear unknown: %v", err)
	}
}

func TestDeviceStoreUpdateConfig(t *testing.T) {
	st := setupStore(t)
	seedDevice(t, st, 1201)
	ctx := context.Background()

	api := domain.PipelineAPI
	if err := st.Devices().UpdateConfig(ctx, 1201, store.ConfigUpdate{PipelineType: &api}); err != nil {
		t.Fatalf("update: %v", err)
	}
	cfg, found, err := st.Devices().PipelineConfig(ctx, 1201)
	if err != nil || !found {
		t.Fatalf("pipeline config: %v found=%v", err, found)
	}
	if cfg.PipelineType != domain.PipelineAPI || cfg.LLMService != domain.LLMGemini {
		t.Fatalf("partial update wrong: %+v", cfg)
	}

	if err := st.Devices().UpdateConfig(ctx, 9999, store.ConfigUpdate{PipelineType: &api}); !errors.Is(err, store.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	// unknown device reads as found=false, not an error
	_, found, err = st.Devices().PipelineConfig(ctx, 9999)
	if err != nil || found {
		t.Fatalf("expected found=false without error, got %v found=%v", err, found)
	}
}

func TestDeviceStoreMaxID(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	max, err := st.Devices().MaxID(ctx)
	if err != nil {
		t.Fatalf("max on empty: %v", err)
	}
	if max != 0 {
		t.Fatalf("empty table: got %d want 0", max)
	}

	seedDevice(t, st, 1201)
	seedDevice(t, st, 1300)
	max, err = st.Devices().MaxID(ctx)
	if err != nil {
		t.Fatalf("max: %v", err)
	}
	if max != 1300 {
		t.Fatalf("got %d want 1300", max)
	}
}

func TestStoreWithTxRollsBack(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	sentinel := errors.New("boom")
	err := st.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.Devices().Create(ctx, &domain.Device{
			DeviceID:     1201,
			Name:         "Kiosk",
			PasswordHash: "x",
			PipelineType: domain.PipelineLibrary,
			LLMService:   domain.LLMGemini,
			CreatedAt:    time.Now().UTC(),
		}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	if _, err := st.Devices().GetByID(ctx, 1201); !errors.Is(err, store.ErrRecordNotFound) {
		t.Fatalf("row should have been rolled back, got %v", err)
	}
}
