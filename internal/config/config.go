package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	HTTPPort       string
	Env            string
	LogLevel       string
	DatabaseDSN    string
	DBDriver       string
	DataDir        string
	EventLogDir    string
	JWTSecret      string
	SwaggerEnable  bool
	OutboxInterval time.Duration
	Postgres       PostgresConfig
	Storage        StorageConfig
	SMTP           SMTPConfig
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != "" && s.Bucket != ""
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.Port != 0
}

func Load() *AppConfig {
	pg := PostgresConfig{
		Host:     getEnv("POSTGRES_HOST", ""),
		Port:     getEnv("POSTGRES_PORT", ""),
		User:     getEnv("POSTGRES_USER", ""),
		Password: getEnv("POSTGRES_PASSWORD", ""),
		DBName:   getEnv("POSTGRES_DB", ""),
		SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}

	storage := StorageConfig{
		Endpoint:  getEnv("STORAGE_ENDPOINT", ""),
		AccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
		SecretKey: getEnv("STORAGE_SECRET_KEY", ""),
		Bucket:    getEnv("STORAGE_BUCKET", ""),
		Region:    getEnv("STORAGE_REGION", ""),
		UseSSL:    getEnv("STORAGE_USE_SSL", "false") == "true",
	}

	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "0"))
	smtp := SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "noreply@communityhub.local"),
	}

	dsn := getEnv("DATABASE_DSN", "")
	driver := strings.ToLower(getEnv("DB_DRIVER", ""))

	if driver == "" {
		lower := strings.ToLower(dsn)
		switch {
		case strings.HasPrefix(lower, "postgres"):
			driver = "postgres"
		case pg.Host != "":
			driver = "postgres"
		default:
			driver = "sqlite"
		}
	}

	if driver == "postgres" {
		if dsn == "" {
			dsn = buildPostgresDSN(pg)
		}
	} else {
		if dsn == "" {
			dsn = "file:communityhub.db?_pragma=foreign_keys(1)"
		}
	}

	outboxInterval := 10 * time.Second
	if raw := getEnv("OUTBOX_INTERVAL", ""); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			outboxInterval = parsed
		}
	}

	return &AppConfig{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		DatabaseDSN:    dsn,
		DBDriver:       driver,
		DataDir:        getEnv("DATA_DIR", "data"),
		EventLogDir:    getEnv("EVENT_LOG_DIR", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		SwaggerEnable:  getEnv("SWAGGER_ENABLE", "true") == "true",
		OutboxInterval: outboxInterval,
		Postgres:       pg,
		Storage:        storage,
		SMTP:           smtp,
	}
}

func buildPostgresDSN(pg PostgresConfig) string {
	host := pg.Host
	if host == "" {
		host = "localhost"
	}
	port := pg.Port
	if port == "" {
		port = "5432"
	}
	ssl := pg.SSLMode
	if ssl == "" {
		ssl = "disable"
	}

	u := &url.URL{Scheme: "postgres"}
	if pg.User != "" {
		if pg.Password != "" {
			u.User = url.UserPassword(pg.User, pg.Password)
		} else {
			u.User = url.User(pg.User)
		}
	}
	u.Host = fmt.Sprintf("%s:%s", host, port)
	if pg.DBName != "" {
		u.Path = pg.DBName
	}
	q := u.Query()
	q.Set("sslmode", ssl)
	u.RawQuery = q.Encode()
	return u.String()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func MustLoad() *AppConfig {
	cfg := Load()
	if cfg.HTTPPort == "" {
		log.Fatal("HTTP_PORT required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET required")
	}
	if cfg.DBDriver == "postgres" && cfg.DatabaseDSN == "" {
		log.Fatal("DATABASE_DSN required for postgres driver")
	}
	return cfg
}
