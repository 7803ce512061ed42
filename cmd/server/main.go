package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/csg33k/txn-intake/internal/adapters/airtable"
	"github.com/csg33k/txn-intake/internal/adapters/mail"
	"github.com/csg33k/txn-intake/internal/adapters/pdf"
	sqliteadapter "github.com/csg33k/txn-intake/internal/adapters/sqlite"
	"github.com/csg33k/txn-intake/internal/config"
	"github.com/csg33k/txn-intake/internal/handlers"
	"github.com/csg33k/txn-intake/internal/intake"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	repo, err := sqliteadapter.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer repo.Close()
	if err := repo.Ping(context.Background()); err != nil {
		log.Fatalf("database %s is not migrated (run `mage dbup`): %v", cfg.DBPath, err)
	}

	opts := []intake.Option{
		intake.WithTransactionTable(cfg.TransactionSchema),
		intake.WithPaidMode(cfg.PaidMode),
		intake.WithLogger(logger),
	}
	if cfg.AirtableEnabled() {
		at := airtable.New(cfg.AirtableAPIURL, cfg.AirtableBaseID, cfg.AirtableAPIKey)
		opts = append(opts, intake.WithRecordStore(at, cfg.AirtableTransactionsTable, cfg.AirtableClientsTable))
	} else {
		logger.Warn("AIRTABLE_API_KEY or AIRTABLE_BASE_ID not set; records will not be copied to Airtable")
	}
	if cfg.MailEnabled() {
		opts = append(opts, intake.WithMailer(mail.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom, cfg.MailTo)))
	} else {
		logger.Warn("SMTP_HOST or MAIL_TO not set; cover sheets will not be mailed")
	}

	svc := intake.New(repo, pdf.NewRenderer(), opts...)
	h := handlers.New(svc, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()

	log.Printf("Transaction intake running on http://localhost:%s", cfg.Port)
	log.Printf("Database: %s  schema: %s  paid mode: %s", cfg.DBPath, cfg.TransactionSchema.Name, cfg.PaidMode)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
