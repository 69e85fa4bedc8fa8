package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	emailPkg "spark/internal/adapters/email"
	web "spark/internal/adapters/http"
	"spark/internal/adapters/http/perf"
	"spark/internal/adapters/storage"
	accountStore "spark/internal/adapters/storage/account"
	contactStore "spark/internal/adapters/storage/contact"
	outboxStore "spark/internal/adapters/storage/outbox"
	sponsorStore "spark/internal/adapters/storage/sponsor"
	teamStore "spark/internal/adapters/storage/team"
	"spark/internal/adapters/upload"
	"spark/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	dbPath := envOrDefault("SPARK_DB_PATH", "spark.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.MigrateDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	obStore := outboxStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore: acctStore,
		TeamStore:    teamStore.NewSQLiteStore(timedDB),
		SponsorStore: sponsorStore.NewSQLiteStore(timedDB),
		ContactStore: contactStore.NewSQLiteStore(timedDB),
		OutboxStore:  obStore,
	}

	// Seed the admin account if no accounts exist
	adminEmail := envOrDefault("SPARK_ADMIN_EMAIL", "admin@alhudaspark.org")
	adminPassword := os.Getenv("SPARK_ADMIN_PASSWORD")
	if adminPassword != "" {
		seedDeps := orchestrators.CreateAccountDeps{AccountStore: acctStore}
		if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, adminEmail, adminPassword); err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
	} else {
		log.Println("SPARK_ADMIN_PASSWORD not set, skipping admin seed")
	}

	// Identity photo storage
	uploadDir := envOrDefault("SPARK_UPLOAD_DIR", "uploads")
	web.SetUploadStore(upload.NewLocalStore(uploadDir, "/uploads"))
	web.SetUploadDir(uploadDir)

	// Configure email sender
	resendKey := os.Getenv("SPARK_RESEND_API_KEY")
	emailFrom := envOrDefault("SPARK_EMAIL_FROM", "Alhuda SPARK <noreply@alhudaspark.org>")
	emailReply := envOrDefault("SPARK_EMAIL_REPLY_TO", "info@alhudaspark.org")
	adminAddress := envOrDefault("SPARK_ADMIN_NOTIFY", "registrations@alhudaspark.org")

	var sender emailPkg.Sender
	if resendKey != "" {
		sender = emailPkg.NewResendSender(resendKey, emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if os.Getenv("SPARK_ENV") == "production" {
			log.Println("WARNING: SPARK_RESEND_API_KEY is not set, email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop; set SPARK_RESEND_API_KEY for real delivery)")
		}
	}
	sender = emailPkg.NewTimedSender(sender, collector)
	web.SetMailer(&orchestrators.Mailer{
		Sender:       sender,
		Outbox:       obStore,
		From:         emailFrom,
		ReplyTo:      emailReply,
		AdminAddress: adminAddress,
		GenerateID:   func() string { return uuid.New().String() },
		Now:          time.Now,
	})

	// Background replay of queued emails
	retryDeps := orchestrators.RetryOutboxDeps{
		OutboxStore: obStore,
		Sender:      sender,
		Now:         time.Now,
	}
	stopRetry := orchestrators.StartOutboxRetryScheduler(context.Background(), retryDeps, 1*time.Minute)
	defer stopRetry()

	// Create HTTP handler with middleware (pass collector for timing + dashboard)
	mux := web.NewMux(envOrDefault("SPARK_STATIC_DIR", "web/static"), stores, collector)

	addr := envOrDefault("SPARK_ADDR", ":8080")
	log.Printf("Alhuda SPARK %s starting on %s (env=%s, schema=%d)",
		version, addr, envOrDefault("SPARK_ENV", "development"), storage.LatestSchemaVersion())

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
