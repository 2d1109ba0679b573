// Worker consumes capture events from Kafka, stores them in Postgres, and
// pushes them to Loki. Set DATABASE_URL, KAFKA_BROKERS, TELEMETRY_KAFKA_TOPIC,
// KAFKA_GROUP_ID, and LOKI_URL.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"gui-replay/backend/internal/config"
	"gui-replay/backend/internal/db"
	"gui-replay/backend/internal/telemetry/domain"
	"gui-replay/backend/internal/telemetry/loki"
	telemetryrepo "gui-replay/backend/internal/telemetry/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	brokers := cfg.TelemetryKafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("worker: db: %v", err)
	}
	defer database.Close()
	events := telemetryrepo.NewPostgresRepository(database)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          cfg.TelemetryKafkaTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	log.Printf("worker: consuming from %s (group %s)", cfg.TelemetryKafkaTopic, cfg.KafkaGroupID)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("worker: stopped")
				return
			}
			log.Printf("worker: kafka read error: %v", err)
			continue
		}
		handleMessage(ctx, events, cfg.LokiURL, msg.Value)
	}
}

// handleMessage stores the event and forwards it to Loki. Both sinks are
// best-effort; a failure in one does not block the other.
func handleMessage(ctx context.Context, events *telemetryrepo.PostgresRepository, lokiURL string, raw []byte) {
	saveCtx, saveCancel := context.WithTimeout(ctx, 10*time.Second)
	defer saveCancel()

	var event domain.CaptureEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		log.Printf("worker: malformed event dropped: %v", err)
		return
	}
	if err := events.Save(saveCtx, &event); err != nil {
		log.Printf("worker: save failed: %v", err)
	}

	if lokiURL == "" {
		return
	}
	pushCtx, pushCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pushCancel()
	if err := loki.PushEventJSON(pushCtx, lokiURL, raw); err != nil {
		log.Printf("worker: loki push failed: %v", err)
	}
}
