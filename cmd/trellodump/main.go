// Command trellodump takes a read-only snapshot of the authenticated
// member's Trello boards: a JSON record and attachment payloads per
// board, plus one combined CSV summary.
//
// On the first run it walks the operator through the OAuth1 handshake and
// persists the resulting access token pair; later runs skip authorization
// entirely.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/trellodump/trellodump/internal/auth"
	"github.com/trellodump/trellodump/internal/buildinfo"
	"github.com/trellodump/trellodump/internal/config"
	"github.com/trellodump/trellodump/internal/export"
	"github.com/trellodump/trellodump/internal/filex"
	"github.com/trellodump/trellodump/internal/logging"
	"github.com/trellodump/trellodump/internal/s3sync"
	"github.com/trellodump/trellodump/internal/trello"
)

func main() {
	os.Exit(run())
}

func run() int {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, store, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	log := logging.New(os.Stderr, cfg.Debug).With("run_id", uuid.NewString())

	if !cfg.HasTokens() {
		authenticator := auth.New(auth.Options{
			ConsumerKey:    cfg.APIKey,
			ConsumerSecret: cfg.APISecret,
			CallbackURL:    cfg.ReturnURL,
			Out:            os.Stdout,
			Prompt:         auth.NewStdinPrompt(os.Stdout),
			Logger:         log,
		})
		token, tokenSecret, err := authenticator.ObtainTokens(ctx)
		if err != nil {
			log.Error(ctx, "authentication failed", "error", err)
			return 1
		}
		if err := store.SaveTokens(cfg, token, tokenSecret); err != nil {
			log.Error(ctx, "could not persist access tokens", "error", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "Access tokens saved to %s; later runs will skip authorization.\n", store.Path())
	}

	client := trello.NewClient(trello.Options{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: auth.SignedClient(ctx, cfg.APIKey, cfg.APISecret, cfg.AccessToken, cfg.AccessTokenSecret),
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.RetryBaseDelay,
		Logger:     log,
	})

	if _, err := filex.EnsureDir(cfg.ExportDir); err != nil {
		log.Error(ctx, "cannot create export directory", "error", err)
		return 1
	}

	exporter := export.New(client, export.Options{
		ExportDir:           cfg.ExportDir,
		BoardFilter:         cfg.BoardFilter,
		DownloadAttachments: cfg.DownloadAttachments,
	}, log)

	records, exportErr := exporter.ExportAll(ctx)

	// The summary is rewritten on every run, including failed ones, so a
	// stale file from an earlier run never survives.
	summaryPath := filepath.Join(cfg.ExportDir, cfg.SummaryFile)
	if err := export.WriteSummary(records, summaryPath); err != nil {
		log.Error(ctx, "summary write failed", "error", err)
		return 1
	}
	log.Info(ctx, "wrote summary", "path", summaryPath, "boards", len(records))

	if exportErr != nil && len(records) == 0 {
		log.Error(ctx, "export failed", "error", exportErr)
		return 1
	}

	if cfg.S3Bucket != "" {
		syncer := s3sync.New(s3sync.Options{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		}, log)
		if err := syncer.SyncDir(ctx, cfg.ExportDir); err != nil {
			log.Error(ctx, "s3 sync failed", "error", err)
			return 1
		}
	}

	if exportErr != nil {
		log.Error(ctx, "export finished with errors", "error", exportErr)
		return 1
	}
	log.Info(ctx, "export complete", "boards", len(records))
	return 0
}
