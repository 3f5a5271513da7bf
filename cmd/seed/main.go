// seed inserts development sample data for local testing. Run via ./scripts/seed.sh.
// Idempotent: skips the hierarchy if the sample client already exists, and the dev user if taken.
// With -publish, the sample telemetry is sent to Kafka for the worker instead of inserted directly.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	clientdomain "techtrends/backend/internal/client/domain"
	clientrepo "techtrends/backend/internal/client/repository"
	"techtrends/backend/internal/config"
	"techtrends/backend/internal/db"
	identitydomain "techtrends/backend/internal/identity/domain"
	identityrepo "techtrends/backend/internal/identity/repository"
	identityservice "techtrends/backend/internal/identity/service"
	jtdomain "techtrends/backend/internal/jobtelemetry/domain"
	"techtrends/backend/internal/jobtelemetry/ingest"
	jtrepo "techtrends/backend/internal/jobtelemetry/repository"
	processdomain "techtrends/backend/internal/process/domain"
	processrepo "techtrends/backend/internal/process/repository"
	projectdomain "techtrends/backend/internal/project/domain"
	projectrepo "techtrends/backend/internal/project/repository"
	"techtrends/backend/internal/security"
)

const (
	devUsername = "dev"
	devPassword = "Dev-password-123"
)

var (
	sampleClientID   = uuid.MustParse("6f1c2a3e-0000-4000-8000-000000000001")
	sampleProject1ID = uuid.MustParse("6f1c2a3e-0000-4000-8000-000000000011")
	sampleProject2ID = uuid.MustParse("6f1c2a3e-0000-4000-8000-000000000012")
)

func main() {
	publish := flag.Bool("publish", false, "Publish sample telemetry to Kafka instead of inserting it")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()
	ctx := context.Background()

	seedUser(ctx, cfg, identityrepo.NewPostgresRepository(conn))

	clients := clientrepo.NewPostgresRepository(conn)
	existing, err := clients.GetByID(ctx, sampleClientID)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (sample client exists). Skipping hierarchy.")
		return
	}

	now := time.Now().UTC()
	if err := clients.Create(ctx, &clientdomain.Client{ID: sampleClientID, Name: "Acme Dev", CreatedAt: now}); err != nil {
		log.Fatalf("create client: %v", err)
	}
	projects := projectrepo.NewPostgresRepository(conn)
	for _, p := range []*projectdomain.Project{
		{ID: sampleProject1ID, ClientID: sampleClientID, Name: "Invoice Automation", CreatedAt: now},
		{ID: sampleProject2ID, ClientID: sampleClientID, Name: "Claims Intake", CreatedAt: now},
	} {
		if err := projects.Create(ctx, p); err != nil {
			log.Fatalf("create project %s: %v", p.Name, err)
		}
	}
	processes := processrepo.NewPostgresRepository(conn)
	proc1 := &processdomain.Process{ProjectID: sampleProject1ID, Name: "Invoice OCR", CreatedAt: now}
	proc2 := &processdomain.Process{ProjectID: sampleProject2ID, Name: "Claims Triage", CreatedAt: now}
	for _, p := range []*processdomain.Process{proc1, proc2} {
		if err := processes.Create(ctx, p); err != nil {
			log.Fatalf("create process %s: %v", p.Name, err)
		}
	}

	records := sampleTelemetry(proc1.ID, proc2.ID)
	if *publish {
		publishTelemetry(ctx, cfg, records)
	} else {
		repo := jtrepo.NewPostgresRepository(conn)
		for _, t := range records {
			if err := repo.Create(ctx, t); err != nil {
				log.Fatalf("create telemetry: %v", err)
			}
		}
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Client %s\n  project %s (process %d)\n  project %s (process %d)\n",
		sampleClientID, sampleProject1ID, proc1.ID, sampleProject2ID, proc2.ID)
}

func seedUser(ctx context.Context, cfg *config.Config, users *identityrepo.PostgresRepository) {
	// Only CreateUser is used, so any signing key will do.
	tokens, err := security.NewEphemeralTokenProvider(cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	if err != nil {
		log.Fatalf("jwt: %v", err)
	}
	auth, err := identityservice.NewAuthService(users, security.NewHasher(cfg.BcryptCost), tokens)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}
	_, err = auth.CreateUser(ctx, devUsername, devPassword, identitydomain.RoleAdmin)
	switch {
	case errors.Is(err, identityservice.ErrUsernameTaken):
		log.Printf("Dev user %q already exists.", devUsername)
	case err != nil:
		log.Fatalf("create dev user: %v", err)
	default:
		fmt.Printf("Dev login: %s / %s\n", devUsername, devPassword)
	}
}

// sampleTelemetry returns January 2024 records: 20+25 minutes for the first process, 45 for the second,
// one excluded-flag row that still counts, and one row outside the month.
func sampleTelemetry(proc1, proc2 int64) []*jtdomain.JobTelemetry {
	minutes := func(v int) *int { return &v }
	day := func(d int) time.Time { return time.Date(2024, 1, d, 9, 0, 0, 0, time.UTC) }
	return []*jtdomain.JobTelemetry{
		{ProcessID: &proc1, JobID: "inv-001", HumanTime: minutes(20), EntryDate: day(3)},
		{ProcessID: &proc1, JobID: "inv-002", HumanTime: minutes(25), EntryDate: day(17)},
		{ProcessID: &proc2, JobID: "clm-001", HumanTime: minutes(45), EntryDate: day(9)},
		{ProcessID: &proc2, JobID: "clm-002", HumanTime: minutes(0), EntryDate: day(10), ExcludeFromTimeSaving: true},
		{ProcessID: &proc2, JobID: "clm-003", HumanTime: minutes(30), EntryDate: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)},
	}
}

func publishTelemetry(ctx context.Context, cfg *config.Config, records []*jtdomain.JobTelemetry) {
	producer := ingest.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if producer == nil {
		log.Fatal("seed: -publish requires KAFKA_BROKERS and TELEMETRY_KAFKA_TOPIC")
	}
	defer producer.Close()
	for _, t := range records {
		if err := producer.Publish(ctx, t); err != nil {
			log.Fatalf("publish telemetry: %v", err)
		}
	}
	log.Printf("Published %d telemetry records to %s.", len(records), cfg.TelemetryKafkaTopic)
}
