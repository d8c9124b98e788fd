package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophdraft/internal/buildinfo"
	"github.com/dmitrijs2005/gophdraft/internal/client/auth"
	"github.com/dmitrijs2005/gophdraft/internal/client/cli"
	"github.com/dmitrijs2005/gophdraft/internal/client/client"
	"github.com/dmitrijs2005/gophdraft/internal/client/config"
	"github.com/dmitrijs2005/gophdraft/internal/client/imagestore"
	"github.com/dmitrijs2005/gophdraft/internal/client/upload"
	"github.com/dmitrijs2005/gophdraft/internal/filex"
	"github.com/dmitrijs2005/gophdraft/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, sync := newLogger(cfg)
	defer sync()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "gophdraft stopped", "error", err)
		sync()
		log.Fatalf("%v", err)
	}
}

func newLogger(cfg *config.Config) (logging.Logger, func()) {
	if cfg.LogFile == "" {
		return logging.NewTextLogger(os.Stderr, cfg.LogLevel), func() {}
	}
	if err := filex.EnsureParentDir(cfg.LogFile); err != nil {
		log.Fatalf("%v", err)
	}
	z := logging.NewFileLogger(cfg.LogFile, cfg.LogLevel)
	return z, func() { _ = z.Sync() }
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	if err := filex.EnsureParentDir(cfg.JournalPath); err != nil {
		return err
	}
	repos, err := client.InitDatabase(ctx, cfg.JournalPath)
	if err != nil {
		return err
	}
	defer repos.Close()

	holder := &auth.Holder{}

	var backend client.Client
	switch cfg.Transport {
	case config.TransportHTTP:
		backend = client.NewDraftHTTPClient(cfg.ServerEndpointAddr, holder, cfg.RequestTimeout)
	default:
		backend, err = client.NewDraftGRPCClient(cfg.ServerEndpointAddr, holder, cfg.RequestTimeout)
		if err != nil {
			return err
		}
	}
	defer backend.Close()

	var uploader upload.ImageUploader
	if cfg.ImageStore == config.ImageStoreS3 {
		store, err := imagestore.NewS3Store(ctx, imagestore.Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		}, &http.Client{Timeout: cfg.RequestTimeout})
		if err != nil {
			return err
		}
		uploader = store
	}

	logger.Info(ctx, "starting gophdraft",
		"server", cfg.ServerEndpointAddr,
		"transport", cfg.Transport,
		"images", cfg.ImageStore,
		"journal", cfg.JournalPath)

	app := cli.NewApp(cli.Deps{
		Config:   cfg,
		Backend:  backend,
		Uploader: uploader,
		Metadata: repos.Metadata,
		Journal:  repos.Journal,
		Auth:     holder,
		Logger:   logger,
	})
	app.Run(ctx)
	return nil
}
