package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	osscert "github.com/caasmo/oss-cert-rotate"
	"github.com/caasmo/oss-cert-rotate/aliyun"
	"github.com/caasmo/oss-cert-rotate/zombiezen"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// A missing .env is fine; real environment variables still win.
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded .env file")
	}

	opts, err := parseOptions(args, os.Getenv)
	if errors.Is(err, pflag.ErrHelp) {
		return osscert.ExitOK
	}
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		return osscert.ExitInput
	}
	cfg := opts.cfg
	logger.Debug("Configuration resolved", "config", fmt.Sprintf("%+v", cfg.Redacted()))

	provider, err := aliyun.NewProvider(aliyun.Config{
		AccessKeyID:     cfg.AccessKeyID,
		AccessKeySecret: cfg.AccessKeySecret,
		Endpoint:        cfg.Endpoint,
		Region:          cfg.Region,
		BucketName:      cfg.BucketName,
	})
	if err != nil {
		logger.Error("Failed to create OSS provider", "error", err)
		return osscert.ExitRuntime
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	rotatorOpts := []osscert.Option{
		osscert.WithBucket(cfg.BucketName),
		osscert.WithDryRun(opts.dryRun),
	}

	history, closeHistory, err := openHistory(ctx, opts, logger)
	if err != nil {
		logger.Error("Failed to open history database", "path", cfg.HistoryDB, "error", err)
		return osscert.ExitRuntime
	}
	defer closeHistory()
	if history != nil {
		rotatorOpts = append(rotatorOpts, osscert.WithHistory(history))
	}

	rotator := osscert.NewCertRotator(provider, logger, rotatorOpts...)

	if opts.list {
		return listBindings(ctx, rotator, logger)
	}

	logger.Info("Rotating certificate", "bucket", cfg.BucketName, "domain", cfg.TargetCname, "dry_run", opts.dryRun)
	if err := rotator.Rotate(ctx, cfg.TargetCname, cfg.PrivateKey, cfg.Certificate); err != nil {
		logger.Error("Certificate rotation failed", "domain", cfg.TargetCname, "error", err)
		return osscert.ExitCode(err)
	}

	logger.Info("Certificate rotation completed", "domain", cfg.TargetCname)
	return osscert.ExitOK
}

func listBindings(ctx context.Context, rotator *osscert.CertRotator, logger *slog.Logger) int {
	bindings, err := rotator.Bindings(ctx)
	if err != nil {
		logger.Error("Failed to list custom domains", "error", err)
		return osscert.ExitCode(err)
	}
	for _, b := range bindings {
		certID, validEnd := "", ""
		if b.Certificate != nil {
			certID, validEnd = b.Certificate.ID, b.Certificate.ValidEndDate
		}
		fmt.Fprintf(os.Stdout, "%s\tstatus=%s\tcert_id=%s\tvalid_end=%s\tlast_modified=%s\n",
			b.Domain, b.Status, certID, validEnd, b.LastModified)
	}
	return osscert.ExitOK
}

// openHistory opens the rotation log. Dry runs and --list never write a
// record, so they get no history and no file is created.
func openHistory(ctx context.Context, opts *options, logger *slog.Logger) (*zombiezen.Db, func(), error) {
	cfg := opts.cfg
	if cfg.HistoryDB == "" || opts.list || opts.dryRun {
		return nil, func() {}, nil
	}

	pool, err := zombiezen.NewPool(cfg.HistoryDB)
	if err != nil {
		return nil, nil, err
	}
	closePool := func() {
		if err := pool.Close(); err != nil {
			logger.Error("Failed to close history database", "error", err)
		}
	}

	history := zombiezen.NewWriter(pool)
	if err := history.EnsureSchema(ctx); err != nil {
		closePool()
		return nil, nil, err
	}
	if last, err := history.Latest(ctx, cfg.TargetCname); err != nil {
		logger.Warn("Could not read previous rotation", "error", err)
	} else if last != nil {
		logger.Info("Previous rotation",
			"domain", last.Domain,
			"rotated_at", osscert.TimeFormat(last.RotatedAt),
			"previous_cert_id", last.PreviousCertID,
			"fresh", last.Fresh)
	}
	return history, closePool, nil
}
