package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"spark/internal/adapters/email"
	"spark/internal/adapters/http/middleware"
	"spark/internal/adapters/http/perf"
	accountStore "spark/internal/adapters/storage/account"
	contactStore "spark/internal/adapters/storage/contact"
	outboxStore "spark/internal/adapters/storage/outbox"
	sponsorStore "spark/internal/adapters/storage/sponsor"
	teamStore "spark/internal/adapters/storage/team"
	"spark/internal/adapters/upload"
	"spark/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore accountStore.Store
	TeamStore    teamStore.Store
	SponsorStore sponsorStore.Store
	ContactStore contactStore.Store
	OutboxStore  outboxStore.Store
}

// loadCSRFKey reads the CSRF secret from SPARK_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("SPARK_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("SPARK_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("SPARK_ENV") == "production" {
		log.Fatal("SPARK_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set SPARK_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global mailer instance (set by SetMailer)
var mailer *orchestrators.Mailer

// Global upload store instance (set by SetUploadStore)
var uploads upload.Store

// SetMailer sets the global mailer used by the registration handlers.
func SetMailer(m *orchestrators.Mailer) {
	mailer = m
}

// SetUploadStore sets the global upload store for identity photos.
func SetUploadStore(s upload.Store) {
	uploads = s
}

// Directory served at /uploads/ (set by SetUploadDir)
var uploadDir string

// SetUploadDir makes stored identity photos fetchable under /uploads/.
// The route is staff-gated; leaving the dir unset disables serving.
func SetUploadDir(dir string) {
	uploadDir = dir
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("SPARK_ENV") == "production"

	if mailer == nil {
		mailer = &orchestrators.Mailer{
			Sender:     email.NewNoopSender(),
			Outbox:     s.OutboxStore,
			GenerateID: generateID,
			Now:        timeNow,
		}
	}
	if uploads == nil {
		uploads = upload.NewMemoryStore()
	}

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Requests traverse: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.Timing(collector),
		middleware.RateLimit(limiter),
		middleware.Auth(sessions),
		middleware.CSRF(csrfKey),
		middleware.SecurityHeaders,
	)
}
