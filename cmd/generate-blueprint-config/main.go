package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	osscert "github.com/caasmo/oss-cert-rotate"
)

func generateBlueprintConfig() osscert.Config {
	return osscert.Config{
		AccessKeyID:     "YOUR_ACCESS_KEY_ID_OR_SET_OSS_ACCESS_KEY_ID",
		AccessKeySecret: "YOUR_ACCESS_KEY_SECRET_OR_SET_OSS_ACCESS_KEY_SECRET",
		Endpoint:        "https://oss-cn-hangzhou.aliyuncs.com",
		Region:          osscert.DefaultRegion,
		BucketName:      "your-bucket",
		TargetCname:     "cdn.example.com",
		PrivateKeyFile:  "/etc/ssl/private/cdn.example.com.key",
		CertificateFile: "/etc/ssl/certs/cdn.example.com.pem",
	}
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	outputFileFlag := flag.String("output", "oss-cert-rotate.blueprint.toml", "Output file path for the blueprint TOML configuration")
	flag.StringVar(outputFileFlag, "o", "oss-cert-rotate.blueprint.toml", "Output file path (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generates a blueprint oss-cert-rotate TOML configuration file with example values.\n")
		fmt.Fprintf(os.Stderr, "Remember to replace placeholder values and keep secrets out of the file where possible.\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	logger.Info("Generating blueprint configuration...")
	blueprintCfg := generateBlueprintConfig()

	if err := blueprintCfg.Validate(); err != nil {
		logger.Warn("Generated blueprint configuration has validation issues", "error", err)
	}

	tomlBytes, err := toml.Marshal(blueprintCfg)
	if err != nil {
		logger.Error("Failed to marshal blueprint config to TOML", "error", err)
		os.Exit(1)
	}

	logger.Info("Writing blueprint configuration", "path", *outputFileFlag)
	if err := os.WriteFile(*outputFileFlag, tomlBytes, 0600); err != nil {
		logger.Error("Failed to write blueprint config file", "path", *outputFileFlag, "error", err)
		os.Exit(1)
	}

	logger.Info("Blueprint configuration generated successfully", "path", *outputFileFlag)
	logger.Warn("Prefer OSS_ACCESS_KEY_ID / OSS_ACCESS_KEY_SECRET environment variables over storing credentials in the file.")
}
