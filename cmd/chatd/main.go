// cmd/chatd/main.go
// Vendor chat gateway daemon: opens the session against the marketplace
// backend, keeps the realtime connection alive, and serves metrics.

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	awssession "github.com/aws/aws-sdk-go/aws/session"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sellora/vendorchat/internal/api"
	"github.com/sellora/vendorchat/internal/auth"
	"github.com/sellora/vendorchat/internal/cache"
	"github.com/sellora/vendorchat/internal/chat"
	"github.com/sellora/vendorchat/internal/config"
	"github.com/sellora/vendorchat/internal/transport"
	"github.com/sellora/vendorchat/internal/uploader"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting Sellora Vendor Chat Gateway")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded")
	}

	// 2. Load and validate configuration
	log.Println("📋 Step 2: Loading configuration...")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed: ", err)
	}
	log.Println("✅ Configuration is valid")

	// 3. Derive the vendor session from the backend token
	log.Println("🔑 Step 3: Reading session token...")
	session, err := auth.NewSession(cfg.SessionToken)
	if err != nil {
		log.Fatal("❌ Invalid session token: ", err)
	}
	log.Printf("✅ Session for vendor %s", session.VendorID)

	// 4. Session cache (optional Redis)
	log.Println("📮 Step 4: Opening session cache...")
	sessionCache, err := cache.New(cfg.RedisURL)
	if err != nil {
		log.Printf("⚠️  Cache unavailable (%v), continuing in-memory", err)
		sessionCache = cache.NewMemoryCache()
	} else if cfg.RedisURL != "" {
		log.Println("✅ Connected to Redis")
	}

	// 5. Attachment upload provider
	log.Printf("📦 Step 5: Configuring %s upload provider...", cfg.UploadProvider)
	svc, err := buildUploader(cfg)
	if err != nil {
		log.Fatal("❌ Failed to configure uploader: ", err)
	}

	// 6. REST client
	backend := api.NewClient(cfg.BackendBaseURL, session, cfg.HTTPTimeout)

	// 7. Realtime connection
	log.Printf("🔌 Step 6: Connecting to %s...", cfg.RealtimeURL)
	conn, err := transport.Dial(transport.Options{
		URL:               cfg.RealtimeURL,
		Header:            session.Header(),
		ReconnectAttempts: cfg.ReconnectAttempts,
		ReconnectDelay:    cfg.ReconnectDelay,
	})
	if err != nil {
		log.Fatal("❌ Failed to connect: ", err)
	}
	defer conn.Close()
	log.Println("✅ Realtime connection established")

	// 8. Chat session
	log.Println("💬 Step 7: Starting chat session...")
	chatSession, err := chat.NewSession(chat.Options{
		VendorID:          session.VendorID,
		Conn:              conn,
		Backend:           backend,
		Uploader:          svc,
		MaxAttachments:    cfg.MaxAttachmentsPerSend,
		MaxAttachmentSize: cfg.MaxAttachmentSize,
		TypingIdle:        cfg.TypingIdle,
		TypingExpiry:      cfg.TypingExpiry,
	})
	if err != nil {
		log.Fatal("❌ Failed to build session: ", err)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	err = chatSession.Start(startCtx)
	cancel()
	if err != nil {
		log.Fatal("❌ Failed to start session: ", err)
	}
	log.Printf("✅ Session started with %d conversation(s)", len(chatSession.Store().All()))

	// Snapshot for the UI to paint before the backend answers next time.
	cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := sessionCache.Set(cacheCtx, cache.ConversationsKey(session.VendorID), chatSession.Store().All()); err != nil {
		log.Printf("⚠️  Failed to cache conversation snapshot: %v", err)
	}
	if err := sessionCache.Set(cacheCtx, cache.ProfileKey(session.VendorID), map[string]string{
		"id":           session.VendorID,
		"email":        session.Email,
		"display_name": session.DisplayName,
	}); err != nil {
		log.Printf("⚠️  Failed to cache profile: %v", err)
	}
	cancel()

	// 9. Observability server
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if conn.State() == transport.StateClosed {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"degraded","realtime":"closed"}`))
			return
		}
		w.Write([]byte(`{"status":"ok","realtime":"` + conn.State().String() + `"}`))
	}).Methods("GET")

	server := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: router,
	}
	go func() {
		log.Printf("📊 Metrics listening on %s", cfg.MetricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("⚠️  Metrics server error: %v", err)
		}
	}()

	// 10. Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down...")
	chatSession.Close()
	conn.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Metrics server shutdown error: %v", err)
	}

	log.Println("👋 Goodbye")
}

// buildUploader picks the attachment storage provider.
func buildUploader(cfg *config.Config) (uploader.Service, error) {
	switch cfg.UploadProvider {
	case "s3":
		awsSession, err := awssession.NewSession(&aws.Config{
			Region:      aws.String(cfg.AWSRegion),
			Credentials: credentials.NewStaticCredentials(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		})
		if err != nil {
			return nil, err
		}
		return uploader.NewS3Uploader(awsSession, cfg.S3BucketName, cfg.CDNBaseURL, cfg.MaxAttachmentSize), nil
	case "mock":
		return uploader.NewMockUploader(cfg.MaxAttachmentSize), nil
	default:
		return uploader.NewHTTPUploader(cfg.UploadEndpoint, cfg.UploadPreset, cfg.MaxAttachmentSize,
			&http.Client{Timeout: cfg.HTTPTimeout}), nil
	}
}
