package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"voicebot/internal/config"
	"voicebot/internal/domain"
	"voicebot/internal/events"
	"voicebot/internal/observability/logging"
	"voicebot/internal/observability/metrics"
	"voicebot/internal/pipeline"
	impl "voicebot/internal/service/impl"
	"voicebot/internal/store"
	httpx "voicebot/internal/transport/http"
	"voicebot/pkg/db"
)

func main() {
	cfg := config.Load()

	logger := logging.NewLogger(logging.Config{
		ServiceName: "voicebot",
		Environment: cfg.Env,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)

	logger.Info("starting service")

	metrics.MustRegister("voicebot")

	// 1) DB
	gdb, err := db.OpenGorm(db.Config{Driver: cfg.DBDriver, DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	if err := gdb.AutoMigrate(&domain.Device{}); err != nil {
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}
	st := store.New(gdb)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := st.Ping(pingCtx); err != nil {
		cancel()
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}
	cancel()

	// 2) Pipeline registry: LLM strategies are process-wide singletons,
	//    speech strategies are built per pipeline.
	defaults := domain.PipelineConfig{
		PipelineType: domain.PipelineType(cfg.DefaultPipelineType),
		LLMService:   domain.LLMService(cfg.DefaultLLMService),
	}
	registry, err := pipeline.NewRegistry(pipeline.Strategies{
		Gemini:      pipeline.NewGeminiLLM(cfg.GeminiAPIKey),
		OpenAI:      pipeline.NewOpenAILLM(cfg.OpenAIAPIKey),
		AzureOpenAI: pipeline.NewAzureOpenAILLM(cfg.AzureOpenAIAPIKey, cfg.AzureOpenAIEndpoint, cfg.AzureOpenAIDeployment),
		Vertex:      pipeline.NewVertexLLM(cfg.VertexAPIKey, cfg.VertexProject, cfg.VertexLocation),
		Library: func() (pipeline.SpeechStrategy, error) {
			return pipeline.NewLibrarySpeech(cfg.AudioDir), nil
		},
		API: func() (pipeline.SpeechStrategy, error) {
			return pipeline.NewAPISpeech(cfg.AzureSpeechKey, cfg.AzureSpeechRegion, cfg.AudioDir)
		},
	}, defaults)
	if err != nil {
		logger.Error("registry init", "error", err)
		os.Exit(1)
	}

	orch := pipeline.NewOrchestrator(registry, st.Devices())

	// 3) Events
	var pub events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		pub = events.NewAMQPPublisher(cfg.AMQPURL)
	}

	// 4) Services
	pw := impl.NewPasswordService(cfg.BcryptCost)
	ts := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:     cfg.Issuer,
		Audience:   cfg.Audience,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
		SigningKey: []byte(cfg.SigningKey),
	})
	sessions := impl.NewSessionServiceImpl(st, pw, ts, orch, pub, impl.SessionConfig{
		IDStart:  cfg.DeviceIDStart,
		Defaults: defaults,
	})

	// 5) HTTP
	handler := httpx.NewRouter(sessions, orch)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("voicebot listening", "addr", srv.Addr, "issuer", cfg.Issuer, "db_driver", cfg.DBDriver)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
