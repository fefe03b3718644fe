package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/communityhub/server/internal/app/controllers"
	"github.com/communityhub/server/internal/app/jobs"
	"github.com/communityhub/server/internal/app/repositories"
	"github.com/communityhub/server/internal/app/services"
	"github.com/communityhub/server/internal/config"
	"github.com/communityhub/server/internal/platform/database"
	httpPlatform "github.com/communityhub/server/internal/platform/http"
	"github.com/communityhub/server/pkg/eventlog"
	"github.com/communityhub/server/pkg/logger"
	"github.com/communityhub/server/pkg/storage"
	minioStorage "github.com/communityhub/server/pkg/storage/minio"
	"github.com/communityhub/server/pkg/token"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.MustLoad()
	loggers := logger.New(cfg.LogLevel)

	log.Printf("configuration: driver=%s env=%s", cfg.DBDriver, cfg.Env)

	var objectStorage storage.Service
	if cfg.Storage.Enabled() {
		store, err := minioStorage.New(context.Background(), minioStorage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			log.Fatalf("storage initialization error: %v", err)
		}
		objectStorage = store
		log.Printf("object storage enabled bucket=%s endpoint=%s", cfg.Storage.Bucket, cfg.Storage.Endpoint)
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("error closing database: %v", err)
		}
	}()

	var (
		userRepo       repositories.UserRepository
		communityRepo  repositories.CommunityRepository
		membershipRepo repositories.MembershipRepository
		eventRepo      repositories.EventRepository
		assetRepo      repositories.AssetRepository
	)

	switch cfg.DBDriver {
	case "postgres":
		log.Printf("initializing postgres repositories")
		if userRepo, err = repositories.NewPostgresUserRepo(db); err != nil {
			log.Fatalf("user repository initialization error: %v", err)
		}
		if communityRepo, err = repositories.NewPostgresCommunityRepo(db); err != nil {
			log.Fatalf("community repository initialization error: %v", err)
		}
		if membershipRepo, err = repositories.NewPostgresMembershipRepo(db); err != nil {
			log.Fatalf("membership repository initialization error: %v", err)
		}
		if eventRepo, err = repositories.NewPostgresEventRepo(db); err != nil {
			log.Fatalf("event repository initialization error: %v", err)
		}
		if assetRepo, err = repositories.NewPostgresAssetRepo(db); err != nil {
			log.Fatalf("asset repository initialization error: %v", err)
		}
	default:
		log.Printf("initializing in-memory repositories")
		userRepo = repositories.NewInMemoryUserRepo()
		communityRepo = repositories.NewInMemoryCommunityRepo()
		membershipRepo = repositories.NewInMemoryMembershipRepo()
		eventRepo = repositories.NewInMemoryEventRepo()
		assetRepo = repositories.NewInMemoryAssetRepo()
	}

	// The outbox is durable in both modes so queued mail survives restarts.
	outboxRepo, err := repositories.NewSQLOutboxRepo(db)
	if err != nil {
		log.Fatalf("outbox repository initialization error: %v", err)
	}

	auditLog := eventlog.NewWriter(cfg.EventLogDir, loggers.Sub("EventLog"))
	verifier := token.NewVerifier(cfg.JWTSecret)

	userSvc := services.NewUserService(userRepo, verifier)
	authzSvc := services.NewAuthorizationService(communityRepo, membershipRepo)
	communitySvc := services.NewCommunityService(communityRepo, membershipRepo, authzSvc)
	emailSvc := services.NewEmailService(outboxRepo)
	eventSvc := services.NewCalendarEventService(eventRepo, communityRepo, membershipRepo, userRepo, emailSvc, auditLog, loggers.Sub("Events"))

	authCtrl := controllers.NewAuthController(userSvc)
	communityCtrl := controllers.NewCommunityController(communitySvc, eventSvc)
	eventCtrl := controllers.NewEventController(eventSvc)

	var fileCtrl *controllers.FileController
	if objectStorage != nil {
		fileSvc := services.NewFileService(assetRepo, objectStorage, loggers.Sub("Files"))
		fileCtrl = controllers.NewFileController(fileSvc)
	}

	// Drain the outbox in-process; a dedicated worker binary exists for
	// deployments that want delivery isolated from the API.
	var sender jobs.MailSender
	if cfg.SMTP.Enabled() {
		sender = jobs.NewSMTPSender(cfg.SMTP)
	} else {
		sender = jobs.NewConsoleSender(loggers.Sub("Mail"))
	}
	worker := jobs.NewOutboxWorker(outboxRepo, sender, loggers.Sub("Outbox"))
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go func() {
		if err := worker.Run(workerCtx, cfg.OutboxInterval); err != nil && workerCtx.Err() == nil {
			log.Printf("outbox worker stopped: %v", err)
		}
	}()

	router := httpPlatform.NewRouter(httpPlatform.RouterConfig{
		AuthCtrl:      authCtrl,
		CommunityCtrl: communityCtrl,
		EventCtrl:     eventCtrl,
		FileCtrl:      fileCtrl,
		Users:         userSvc,
		Logger:        loggers.HTTP,
		SwaggerEnable: cfg.SwaggerEnable,
	})

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: router}
	go func() {
		log.Printf("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down...")
	stopWorker()
	_ = srv.Shutdown(context.Background())
}
