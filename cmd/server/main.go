package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/freshmart/retention/internal/api"
	"github.com/freshmart/retention/internal/campaign"
	"github.com/freshmart/retention/internal/compose"
	"github.com/freshmart/retention/internal/config"
	"github.com/freshmart/retention/internal/domain"
	"github.com/freshmart/retention/internal/repository/postgres"
	"github.com/freshmart/retention/internal/store"
	"github.com/freshmart/retention/internal/store/csvstore"
	"github.com/freshmart/retention/internal/store/outputs"
	"github.com/freshmart/retention/internal/store/sample"
	"github.com/freshmart/retention/internal/twilio"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	slash := strings.Index(rest, "/")
	if slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

// buildStore selects the data source from config: postgres when a DSN is
// present, otherwise CSV files with an optional synthetic fallback for demo
// deployments.
func buildStore(cfg *config.Config) (store.Store, *sql.DB, error) {
	if cfg.Data.Driver == "postgres" {
		dsn := cfg.Data.DatabaseURL
		if dsn == "" {
			return nil, nil, fmt.Errorf("data driver is postgres but no database_url configured")
		}
		log.Printf("DB host portion: ...@%s/...", extractHost(dsn))
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		return postgres.NewCustomerStore(db), db, nil
	}

	var fallback store.Store
	if cfg.Data.AllowSample {
		fallback = sample.New(cfg.Data.SampleSeed)
		log.Printf("Sample data fallback enabled (seed %d)", cfg.Data.SampleSeed)
	}
	return csvstore.New(cfg.Data.Dir, fallback), nil, nil
}

func main() {
	log.Println("FreshMart Retention Server starting")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if port == 0 {
		port = 8000
	}
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	dataStore, db, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize data store: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	composer, err := compose.NewGenerator(cfg.HuggingFace)
	if err != nil {
		log.Fatalf("Failed to initialize message composer: %v", err)
	}
	if composer.IsConfigured() {
		log.Printf("Generative composer enabled (model %s)", cfg.HuggingFace.Model)
	} else {
		log.Println("Generative composer not configured, using fallback templates")
	}

	maxLen := cfg.Dispatch.MaxSMSLength
	if maxLen == 0 {
		maxLen = domain.MaxSMSLength
	}
	smsClient := twilio.NewClient(cfg.Twilio, maxLen)
	if smsClient.IsConfigured() {
		log.Printf("SMS transport configured (from %s)", cfg.Twilio.FromNumber)
	} else {
		log.Println("SMS transport not configured, sends will be recorded as failed")
	}

	var recorder campaign.Recorder
	if db != nil {
		recorder = postgres.NewCampaignRecorder(db)
		log.Println("Campaign artifacts recorded in postgres")
	} else {
		fileRecorder, err := outputs.NewFileRecorder(cfg.Outputs.Dir)
		if err != nil {
			log.Fatalf("Failed to initialize outputs recorder: %v", err)
		}
		recorder = fileRecorder
		log.Printf("Campaign artifacts written to %s", fileRecorder.Dir())
	}

	dispatcher := campaign.NewDispatcher(smsClient, cfg.Dispatch.SendDelay())
	campaignSvc := campaign.NewService(dataStore, composer, recorder, dispatcher, cfg.Scoring)

	handlers := api.NewHandlers(dataStore, cfg.Scoring, campaignSvc, smsClient)
	server := api.NewServer(handlers)

	// Probe the SMS account once at startup so misconfigured credentials
	// surface in the log, not at campaign time.
	if smsClient.IsConfigured() {
		probeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		status := smsClient.TestConnection(probeCtx)
		cancel()
		if status.Success {
			log.Printf("Twilio account verified (status %s)", status.AccountStatus)
		} else {
			log.Printf("Warning: Twilio account probe failed: %s", status.Error)
		}
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	errCh := make(chan error, 1)
	go func() {
		log.Printf("API server listening on %s", addr)
		errCh <- server.ListenAndServe(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigCh:
		log.Printf("Received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
