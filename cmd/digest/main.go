package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/communityhub/server/internal/app/jobs"
	"github.com/communityhub/server/internal/app/repositories"
	"github.com/communityhub/server/internal/app/services"
	"github.com/communityhub/server/internal/config"
	"github.com/communityhub/server/internal/platform/database"
	"github.com/communityhub/server/pkg/logger"
)

// One-shot weekly digest run, intended to be scheduled by cron. Requires the
// postgres driver since the digest reads the shared application data.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.MustLoad()
	loggers := logger.New(cfg.LogLevel)

	if cfg.DBDriver != "postgres" {
		log.Fatal("the digest job requires the postgres driver")
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	defer db.Close()

	userRepo, err := repositories.NewPostgresUserRepo(db)
	if err != nil {
		log.Fatalf("user repository initialization error: %v", err)
	}
	communityRepo, err := repositories.NewPostgresCommunityRepo(db)
	if err != nil {
		log.Fatalf("community repository initialization error: %v", err)
	}
	membershipRepo, err := repositories.NewPostgresMembershipRepo(db)
	if err != nil {
		log.Fatalf("membership repository initialization error: %v", err)
	}
	eventRepo, err := repositories.NewPostgresEventRepo(db)
	if err != nil {
		log.Fatalf("event repository initialization error: %v", err)
	}
	outboxRepo, err := repositories.NewSQLOutboxRepo(db)
	if err != nil {
		log.Fatalf("outbox repository initialization error: %v", err)
	}

	emailSvc := services.NewEmailService(outboxRepo)
	job := jobs.NewWeeklyDigestJob(communityRepo, membershipRepo, userRepo, eventRepo, emailSvc, loggers.Sub("Digest"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("weekly digest job started")
	if err := job.Run(ctx); err != nil {
		log.Fatalf("weekly digest job error: %v", err)
	}
	log.Println("weekly digests queued")
}
