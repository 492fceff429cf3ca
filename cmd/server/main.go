package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "videohost/internal/adapters/email"
	web "videohost/internal/adapters/http"
	"videohost/internal/adapters/storage"
	accountStore "videohost/internal/adapters/storage/account"
	tagStore "videohost/internal/adapters/storage/tag"
	videoStore "videohost/internal/adapters/storage/video"
	"videohost/internal/application/orchestrators"

	"github.com/google/uuid"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("VIDEOHOST_DB", "videohost.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	log.Println("Database initialized successfully!")

	acctStore := accountStore.NewSQLiteStore(db)
	stores := &web.Stores{
		AccountStore: acctStore,
		VideoStore:   videoStore.NewSQLiteStore(db),
		TagStore:     tagStore.NewSQLiteStore(db),
	}

	// Seed a default account if none exist, so a fresh install can log in
	adminEmail := envOrDefault("VIDEOHOST_ADMIN_EMAIL", "admin@videohost.local")
	adminPassword := envOrDefault("VIDEOHOST_ADMIN_PASSWORD", "change me soon")
	seedDeps := orchestrators.RegisterAccountDeps{
		AccountStore: acctStore,
		GenerateID:   func() string { return uuid.New().String() },
		Now:          time.Now,
	}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, adminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Configure email sender
	resendKey := os.Getenv("VIDEOHOST_RESEND_KEY")
	emailFrom := envOrDefault("VIDEOHOST_RESEND_FROM", "VideoHost <noreply@videohost.local>")
	emailReply := envOrDefault("VIDEOHOST_REPLY_TO", "support@videohost.local")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom, emailReply)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom, emailReply)
		if os.Getenv("VIDEOHOST_ENV") == "production" {
			log.Println("WARNING: VIDEOHOST_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set VIDEOHOST_RESEND_KEY for real delivery)")
		}
	}

	// Create HTTP handler with middleware
	mux := web.NewMux("static", stores)

	// Start server
	addr := envOrDefault("VIDEOHOST_ADDR", ":8080")
	log.Printf("VideoHost %s starting on %s (env=%s)", version, addr, envOrDefault("VIDEOHOST_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
