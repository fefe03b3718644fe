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
	"github.com/communityhub/server/internal/config"
	"github.com/communityhub/server/internal/platform/database"
	"github.com/communityhub/server/pkg/logger"
)

// Standalone outbox drainer for deployments where the API server does not
// deliver mail in-process.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.MustLoad()
	loggers := logger.New(cfg.LogLevel)

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	defer db.Close()

	outboxRepo, err := repositories.NewSQLOutboxRepo(db)
	if err != nil {
		log.Fatalf("outbox repository initialization error: %v", err)
	}

	var sender jobs.MailSender
	if cfg.SMTP.Enabled() {
		sender = jobs.NewSMTPSender(cfg.SMTP)
	} else {
		sender = jobs.NewConsoleSender(loggers.Sub("Mail"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := jobs.NewOutboxWorker(outboxRepo, sender, loggers.Sub("Outbox"))
	log.Printf("outbox worker started, interval=%s", cfg.OutboxInterval)
	if err := worker.Run(ctx, cfg.OutboxInterval); err != nil && ctx.Err() == nil {
		log.Fatalf("outbox worker error: %v", err)
	}
	log.Println("outbox worker stopped")
}
