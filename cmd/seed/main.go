// Seed populates a development database: one recorder client (the secret is
// printed once) and one sample recording with events, a frame, and stats.
package main

import (
	"context"
	"database/sql"
	"image"
	"image/color"
	"log"
	"time"

	"github.com/google/uuid"

	"gui-replay/backend/internal/client"
	clientrepo "gui-replay/backend/internal/client/repository"
	"gui-replay/backend/internal/config"
	"gui-replay/backend/internal/db"
	"gui-replay/backend/internal/db/migrate"
	eventdomain "gui-replay/backend/internal/event/domain"
	eventrepo "gui-replay/backend/internal/event/repository"
	"gui-replay/backend/internal/imaging"
	recordingdomain "gui-replay/backend/internal/recording/domain"
	recordingrepo "gui-replay/backend/internal/recording/repository"
	screenshotdomain "gui-replay/backend/internal/screenshot/domain"
	screenshotrepo "gui-replay/backend/internal/screenshot/repository"
	"gui-replay/backend/internal/security"
	statsdomain "gui-replay/backend/internal/stats/domain"
	statsrepo "gui-replay/backend/internal/stats/repository"
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	seedClient(ctx, database, cfg)
	recordingID := seedRecording(ctx, database)
	log.Printf("seed: done (recording %s)", recordingID)
}

func seedClient(ctx context.Context, database *sql.DB, cfg *config.Config) {
	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("seed: jwt private key: %v", err)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("seed: jwt public key: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey,
		cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())

	svc := client.NewService(clientrepo.NewPostgresRepository(database),
		tokens, security.NewHasher(cfg.BcryptCost))
	created, secret, err := svc.Register(ctx, "dev-recorder", "localhost")
	if err != nil {
		log.Fatalf("seed: register client: %v", err)
	}
	log.Printf("seed: recorder client %s", created.ID)
	log.Printf("seed: client secret (shown once): %s", secret)
}

func seedRecording(ctx context.Context, database *sql.DB) string {
	recordings := recordingrepo.NewPostgresRepository(database)
	events := eventrepo.NewPostgresRepository(database)
	screenshots := screenshotrepo.NewPostgresRepository(database)
	stats := statsrepo.NewPostgresRepository(database)

	now := float64(time.Now().Unix())
	rec := &recordingdomain.Recording{
		ID:                         uuid.NewString(),
		Timestamp:                  now,
		MonitorWidth:               1920,
		MonitorHeight:              1080,
		DoubleClickIntervalSeconds: 0.5,
		DoubleClickDistancePixels:  4,
		PlatformName:               "linux",
		TaskDescription:            "open the settings dialog and enable dark mode",
		CreatedAt:                  time.Now(),
	}
	if err := recordings.Create(ctx, rec); err != nil {
		log.Fatalf("seed: create recording: %v", err)
	}

	windowID := uuid.NewString()
	if err := events.CreateWindowEvents(ctx, []*eventdomain.WindowEvent{{
		ID:          windowID,
		RecordingID: rec.ID,
		Timestamp:   now,
		Title:       "Settings",
		Left:        100,
		Top:         80,
		Width:       1200,
		Height:      800,
	}}); err != nil {
		log.Fatalf("seed: create window events: %v", err)
	}

	shot := &screenshotdomain.Screenshot{
		ID:          uuid.NewString(),
		RecordingID: rec.ID,
		Timestamp:   now,
		PNG:         samplePNG(),
	}
	if err := screenshots.Create(ctx, []*screenshotdomain.Screenshot{shot}); err != nil {
		log.Fatalf("seed: create screenshot: %v", err)
	}

	x, y := 640.0, 400.0
	pressed := true
	released := false
	click := &eventdomain.ActionEvent{
		ID:              uuid.NewString(),
		RecordingID:     rec.ID,
		Name:            "singleclick",
		Timestamp:       now + 1,
		MouseX:          &x,
		MouseY:          &y,
		MouseButtonName: "left",
	}
	press := &eventdomain.ActionEvent{
		ID:              uuid.NewString(),
		RecordingID:     rec.ID,
		Name:            "press",
		Timestamp:       now + 1,
		MouseX:          &x,
		MouseY:          &y,
		MouseButtonName: "left",
		MousePressed:    &pressed,
		ParentID:        &click.ID,
	}
	release := &eventdomain.ActionEvent{
		ID:              uuid.NewString(),
		RecordingID:     rec.ID,
		Name:            "release",
		Timestamp:       now + 1.1,
		MouseX:          &x,
		MouseY:          &y,
		MouseButtonName: "left",
		MousePressed:    &released,
		ParentID:        &click.ID,
	}
	if err := events.CreateActionEvents(ctx, []*eventdomain.ActionEvent{click, press, release}); err != nil {
		log.Fatalf("seed: create action events: %v", err)
	}
	if err := events.LinkActionEvent(ctx, click.ID, &shot.ID, &windowID); err != nil {
		log.Fatalf("seed: link action event: %v", err)
	}

	if err := stats.CreatePerformanceStats(ctx, []*statsdomain.PerformanceStat{{
		ID:          uuid.NewString(),
		RecordingID: rec.ID,
		EventType:   "screenshot",
		StartTime:   now,
		EndTime:     now + 0.03,
	}}); err != nil {
		log.Fatalf("seed: create performance stats: %v", err)
	}
	if err := stats.CreateMemoryStats(ctx, []*statsdomain.MemoryStat{{
		ID:          uuid.NewString(),
		RecordingID: rec.ID,
		Timestamp:   now,
		UsageBytes:  256 << 20,
	}}); err != nil {
		log.Fatalf("seed: create memory stats: %v", err)
	}
	return rec.ID
}

// samplePNG renders a small gradient frame so the stored screenshot decodes.
func samplePNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 160, A: 255})
		}
	}
	data, err := imaging.EncodePNG(img)
	if err != nil {
		log.Fatalf("seed: encode png: %v", err)
	}
	return data
}
