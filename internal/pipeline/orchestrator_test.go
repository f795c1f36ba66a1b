package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"voicebot/internal/domain"
)

// stubConfigSource serves per-device configs from a map and counts reads.
type stubConfigSource struct {
	mu      sync.Mutex
	configs map[int64]domain.PipelineConfig
	err     error
	reads   int
}

func (s *stubConfigSource) PipelineConfig(ctx context.Context, deviceID int64) (domain.PipelineConfig, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.err != nil {
		return domain.PipelineConfig{}, false, s.err
	}
	cfg, ok := s.configs[deviceID]
	return cfg, ok, nil
}

func (s *stubConfigSource) set(deviceID int64, cfg domain.PipelineConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[deviceID] = cfg
}

func newTestOrchestrator(t *testing.T, buildErr error) (*Orchestrator, *stubConfigSource) {
	t.Helper()
	reg, err := NewRegistry(testStrategies(buildErr), testDefaults)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	src := &stubConfigSource{configs: make(map[int64]domain.PipelineConfig)}
	return NewOrchestrator(reg, src), src
}

func TestOrchestratorCachesPerDevice(t *testing.T) {
	orch, src := newTestOrchestrator(t, nil)
	src.set(1201, domain.PipelineConfig{PipelineType: domain.PipelineLibrary, LLMService: domain.LLMGemini})

	first, err := orch.Get(context.Background(), 1201)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	second, err := orch.Get(context.Background(), 1201)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same cached instance")
	}
	if src.reads != 1 {
		t.Fatalf("config should be read once, got %d reads", src.reads)
	}
	if !orch.Cached(1201) {
		t.Fatalf("Cached should report true")
	}
}

func TestOrchestratorInvalidateForcesRebuild(t *testing.T) {
	orch, src := newTestOrchestrator(t, nil)
	src.set(1201, domain.PipelineConfig{PipelineType: domain.PipelineLibrary, LLMService: domain.LLMGemini})

	before, err := orch.Get(context.Background(), 1201)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	// config write + invalidate, as the session layer does it
	src.set(1201, domain.PipelineConfig{PipelineType: domain.PipelineAPI, LLMService: domain.LLMOpenAI})
	orch.Invalidate(1201)
	if orch.Cached(1201) {
		t.Fatalf("entry should be gone after invalidate")
	}

	after, err := orch.Get(context.Background(), 1201)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if before == after {
		t.Fatalf("expected a rebuilt pipeline")
	}
	if after.LLM().Name() != "openai" || after.Speech().Name() != "api" {
		t.Fatalf("rebuild used stale config: %s/%s", after.Speech().Name(), after.LLM().Name())
	}
}

func TestOrchestratorConcurrentGetsShareOneInstance(t *testing.T) {
	orch, src := newTestOrchestrator(t, nil)
	src.set(7, domain.PipelineConfig{PipelineType: domain.PipelineLibrary, LLMService: domain.LLMGemini})

	const n = 16
	results := make([]*Pipeline, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := orch.Get(context.Background(), 7)
			if err != nil {
				t.Errorf("get: %v", err)
				return
			}
			results[i] = p
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Fatalf("concurrent gets produced distinct instances")
		}
	}
	if src.reads != 1 {
		t.Fatalf("expected a single config read, got %d", src.reads)
	}
}

func TestOrchestratorDoesNotCacheFailures(t *testing.T) {
	buildErr := errors.New("no credentials")
	orch, src := newTestOrchestrator(t, buildErr)
	src.set(5, domain.PipelineConfig{PipelineType: domain.PipelineAPI, LLMService: domain.LLMGemini})

	if _, err := orch.Get(context.Background(), 5); !errors.Is(err, buildErr) {
		t.Fatalf("expected build error, got %v", err)
	}
	if orch.Cached(5) {
		t.Fatalf("failure must not be cached")
	}

	// fix the config; the very next get succeeds
	src.set(5, domain.PipelineConfig{PipelineType: domain.PipelineLibrary, LLMService: domain.LLMGemini})
	if _, err := orch.Get(context.Background(), 5); err != nil {
		t.Fatalf("get after fix: %v", err)
	}
}

func TestOrchestratorGetOrDefaultDegrades(t *testing.T) {
	buildErr := errors.New("no credentials")
	orch, src := newTestOrchestrator(t, buildErr)
	src.set(5, domain.PipelineConfig{PipelineType: domain.PipelineAPI, LLMService: domain.LLMOpenAI})

	p, err := orch.GetOrDefault(context.Background(), 5)
	if err != nil {
		t.Fatalf("get or default: %v", err)
	}
	if p.Speech().Name() != "library" || p.LLM().Name() != "gemini" {
		t.Fatalf("expected default pipeline, got %s/%s", p.Speech().Name(), p.LLM().Name())
	}
	if orch.Cached(5) {
		t.Fatalf("fallback must not be cached under the device id")
	}
}

func TestOrchestratorUnknownDeviceGetsDefaults(t *testing.T) {
	orch, _ := newTestOrchestrator(t, nil)

	p, err := orch.Get(context.Background(), 999)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Speech().Name() != "library" || p.LLM().Name() != "gemini" {
		t.Fatalf("expected defaults, got %s/%s", p.Speech().Name(), p.LLM().Name())
	}
}

func TestOrchestratorInvalidateAll(t *testing.T) {
	orch, src := newTestOrchestrator(t, nil)
	src.set(1, domain.PipelineConfig{PipelineType: domain.PipelineLibrary, LLMService: domain.LLMGemini})
	src.set(2, domain.PipelineConfig{PipelineType: domain.PipelineLibrary, LLMService: domain.LLMGemini})

	if _, err := orch.Get(context.Background(), 1); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := orch.Get(context.Background(), 2); err != nil {
		t.Fatalf("get: %v", err)
	}
	orch.InvalidateAll()
	if orch.Cached(1) || orch.Cached(2) {
		t.Fatalf("cache should be empty")
	}
}
