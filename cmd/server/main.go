// Server runs the capture API: recorder client auth, recording ingest,
// target localization, replay transposition, and privacy scrubbing.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auditrepo "gui-replay/backend/internal/audit/repository"
	"gui-replay/backend/internal/client"
	clientrepo "gui-replay/backend/internal/client/repository"
	"gui-replay/backend/internal/config"
	"gui-replay/backend/internal/db"
	"gui-replay/backend/internal/db/migrate"
	"gui-replay/backend/internal/event"
	eventrepo "gui-replay/backend/internal/event/repository"
	"gui-replay/backend/internal/locate"
	"gui-replay/backend/internal/privacy"
	"gui-replay/backend/internal/privacy/engine"
	privacyrepo "gui-replay/backend/internal/privacy/repository"
	"gui-replay/backend/internal/recording"
	recordingrepo "gui-replay/backend/internal/recording/repository"
	"gui-replay/backend/internal/screenshot"
	screenshotrepo "gui-replay/backend/internal/screenshot/repository"
	"gui-replay/backend/internal/security"
	"gui-replay/backend/internal/server"
	statsrepo "gui-replay/backend/internal/stats/repository"
	"gui-replay/backend/internal/telemetry"
	"gui-replay/backend/internal/telemetry/otel"
	"gui-replay/backend/internal/telemetry/producer"
	telemetryrepo "gui-replay/backend/internal/telemetry/repository"
	"gui-replay/backend/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	if err := migrate.Run(cfg.DatabaseURL, "up"); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("jwt private key: %v", err)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey,
		cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	clientRepo := clientrepo.NewPostgresRepository(database)
	recordingRepo := recordingrepo.NewPostgresRepository(database)
	eventRepo := eventrepo.NewPostgresRepository(database)
	screenshotRepo := screenshotrepo.NewPostgresRepository(database)
	statsRepo := statsrepo.NewPostgresRepository(database)
	ledgerRepo := privacyrepo.NewPostgresRepository(database)
	auditRepo := auditrepo.NewPostgresRepository(database)
	captureEventRepo := telemetryrepo.NewPostgresRepository(database)

	clientSvc := client.NewService(clientRepo, tokens, hasher)
	recordingSvc := recording.NewService(recordingRepo, eventRepo, screenshotRepo,
		event.NewService(eventRepo, nil), screenshot.NewService(screenshotRepo))

	policy := engine.NewOPAEvaluator(loadPolicies(cfg.PrivacyPolicyPath), cfg.RetentionDays)
	scrubber, err := buildScrubber(cfg)
	if err != nil {
		log.Fatalf("scrubber: %v", err)
	}
	privacySvc := privacy.NewService(recordingRepo, recordingSvc, eventRepo,
		ledgerRepo, scrubber, policy)

	var prompter vision.Prompter
	if cfg.OpenAIAPIKey != "" {
		prompter, err = vision.NewOpenAIClient(vision.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			log.Fatalf("vision: %v", err)
		}
	} else {
		log.Println("OPENAI_API_KEY not set; locate and replay endpoints disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "guireplay-server", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	var kafkaProducer producer.Producer
	if brokers := cfg.TelemetryKafkaBrokersList(); len(brokers) > 0 {
		kp, err := producer.NewKafkaProducer(brokers, cfg.TelemetryKafkaTopic)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		kafkaProducer = kp
		defer kp.Close()
	} else {
		log.Println("KAFKA_BROKERS not set; capture-event telemetry disabled")
	}

	router := server.NewRouter(server.Deps{
		Tokens:              tokens,
		ClientSvc:           clientSvc,
		RecordingRepo:       recordingRepo,
		EventRepo:           eventRepo,
		ScreenshotRepo:      screenshotRepo,
		StatsRepo:           statsRepo,
		RecordingSvc:        recordingSvc,
		PrivacySvc:          privacySvc,
		Prompter:            prompter,
		CursorDefaults:      cursorDefaults(cfg),
		GridDefaults:        gridDefaults(cfg),
		AuditRepo:           auditRepo,
		Producer:            kafkaProducer,
		CaptureEventRepo:    captureEventRepo,
		HealthPinger:        database,
		HealthPolicyChecker: policy,
		ServiceName:         "guireplay-server",
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	// Leave room for in-flight telemetry emits before closing the producer.
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		10*time.Second+telemetry.ShutdownDrainDuration)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	time.Sleep(telemetry.ShutdownDrainDuration)
	log.Println("HTTP server stopped")
}

// cursorDefaults maps the locator env knobs onto search params. Zero fields
// fall back to the calibrated defaults inside the search constructors.
func cursorDefaults(cfg *config.Config) locate.CursorParams {
	return locate.CursorParams{
		NumCursors:          cfg.LocateNumCursors,
		SpreadReduction:     cfg.LocateSpreadReduction,
		ConsensusThreshold:  cfg.LocateConsensusThreshold,
		RetriesPerIteration: cfg.LocateRetriesPerIteration,
		MaxIterations:       cfg.LocateMaxIterations,
		MaxOverlapRatio:     cfg.LocateMaxOverlapRatio,
		DownsampleFactor:    cfg.LocateDownsampleFactor,
		LabelSizeRatio:      cfg.LocateLabelSizeRatio,
	}
}

func gridDefaults(cfg *config.Config) locate.GridParams {
	return locate.GridParams{
		GridSize:         cfg.LocateGridSize,
		DownsampleFactor: cfg.LocateDownsampleFactor,
		MaxRounds:        cfg.LocateGridMaxRounds,
	}
}

// loadPolicies reads the Rego policy file when configured. An empty return
// keeps the evaluator on its built-in default policy.
func loadPolicies(path string) []string {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("privacy policy: %v", err)
	}
	return []string{string(data)}
}

// buildScrubber selects the deid provider. Without a Private AI key the
// regex scrubber keeps the scrub workflow available in development and
// air-gapped deployments.
func buildScrubber(cfg *config.Config) (privacy.Scrubber, error) {
	if cfg.PrivateAIAPIKey != "" {
		return privacy.NewPrivateAIScrubber(cfg.PrivateAIURL, cfg.PrivateAIAPIKey)
	}
	log.Println("PRIVATE_AI_API_KEY not set; using the built-in regex scrubber")
	return privacy.NewRegexScrubber(), nil
}
