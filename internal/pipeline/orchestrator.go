package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"voicebot/internal/domain"
	"voicebot/internal/observability/metrics"
)

// ConfigSource reads a device's stored pipeline selection. found=false means
// the device does not exist; err is reserved for storage failures.
type ConfigSource interface {
	PipelineConfig(ctx context.Context, deviceID int64) (cfg domain.PipelineConfig, found bool, err error)
}

// Orchestrator caches one live pipeline per device. The mutex is held for the
// whole of Get, including the config read and strategy construction: builds
// are cheap (clients are process-wide singletons), and holding the lock makes
// Invalidate linearizable with concurrent gets, so a config write that
// returned is guaranteed visible to every fetch that starts afterwards.
type Orchestrator struct {
	mu       sync.Mutex
	cache    map[int64]*Pipeline
	registry *Registry
	source   ConfigSource
}

func NewOrchestrator(registry *Registry, source ConfigSource) *Orchestrator {
	return &Orchestrator{
		cache:    make(map[int64]*Pipeline),
		registry: registry,
		source:   source,
	}
}

// Get returns the device's pipeline, building and caching it on first use.
// Build failures are never cached: the next call retries from scratch.
func (o *Orchestrator) Get(ctx context.Context, deviceID int64) (*Pipeline, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if p, ok := o.cache[deviceID]; ok {
		metrics.PipelineCacheEventsTotal.WithLabelValues("hit").Inc()
		return p, nil
	}
	metrics.PipelineCacheEventsTotal.WithLabelValues("miss").Inc()

	cfg, found, err := o.source.PipelineConfig(ctx, deviceID)
	if err != nil {
		metrics.PipelineBuildsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}
	if !found {
		// unregistered callers still get a working default pipeline
		cfg = o.registry.Defaults()
	}

	p, err := o.registry.Resolve(cfg)
	if err != nil {
		metrics.PipelineBuildsTotal.WithLabelValues("failure").Inc()
		slog.Error("pipeline build failed",
			"device_id", deviceID,
			"pipeline_type", string(cfg.PipelineType),
			"llm_service", string(cfg.LLMService),
			"error", err,
		)
		return nil, err
	}
	metrics.PipelineBuildsTotal.WithLabelValues("success").Inc()

	o.cache[deviceID] = p
	slog.Info("pipeline built",
		"device_id", deviceID,
		"speech", p.Speech().Name(),
		"llm", p.LLM().Name(),
	)
	return p, nil
}

// GetOrDefault degrades instead of failing: when the configured pipeline
// cannot be built, the caller gets the fail-closed default (uncached) so a
// misconfigured provider reads as "wrong provider answered" rather than a
// dead device.
func (o *Orchestrator) GetOrDefault(ctx context.Context, deviceID int64) (*Pipeline, error) {
	p, err := o.Get(ctx, deviceID)
	if err == nil {
		return p, nil
	}
	fb, ferr := o.registry.Default()
	if ferr != nil {
		return nil, err // original error is the more informative one
	}
	slog.Warn("falling back to default pipeline", "device_id", deviceID, "error", err)
	return fb, nil
}

// Invalidate drops the cached pipeline for a device. Called synchronously by
// config writes before they are acknowledged.
func (o *Orchestrator) Invalidate(deviceID int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.cache[deviceID]; ok {
		delete(o.cache, deviceID)
		metrics.PipelineCacheEventsTotal.WithLabelValues("invalidate").Inc()
	}
}

// InvalidateAll empties the cache; used when process-wide provider settings
// change.
func (o *Orchestrator) InvalidateAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := len(o.cache)
	o.cache = make(map[int64]*Pipeline)
	metrics.PipelineCacheEventsTotal.WithLabelValues("invalidate").Add(float64(n))
}

// Cached reports whether a live pipeline currently exists for the device.
func (o *Orchestrator) Cached(deviceID int64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.cache[deviceID]
	return ok
}
