package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	osscert "github.com/caasmo/oss-cert-rotate"
)

// setting binds a flag and an environment variable to one Config field.
type setting struct {
	flag  string
	env   string
	usage string
	field func(*osscert.Config) *string
}

var settings = []setting{
	{"access-key-id", "OSS_ACCESS_KEY_ID", "OSS AccessKeyId", func(c *osscert.Config) *string { return &c.AccessKeyID }},
	{"access-key-secret", "OSS_ACCESS_KEY_SECRET", "OSS AccessKeySecret", func(c *osscert.Config) *string { return &c.AccessKeySecret }},
	{"endpoint", "OSS_ENDPOINT", "OSS endpoint", func(c *osscert.Config) *string { return &c.Endpoint }},
	{"bucket-name", "OSS_BUCKET_NAME", "OSS bucket name", func(c *osscert.Config) *string { return &c.BucketName }},
	{"target-cname", "OSS_TARGET_CNAME", "custom domain whose certificate is updated", func(c *osscert.Config) *string { return &c.TargetCname }},
	{"private-key", "OSS_PRIVATE_KEY", "PEM private key content", func(c *osscert.Config) *string { return &c.PrivateKey }},
	{"certificate", "OSS_CERTIFICATE", "PEM certificate content", func(c *osscert.Config) *string { return &c.Certificate }},
	{"region", "OSS_REGION", "OSS region (default " + osscert.DefaultRegion + ")", func(c *osscert.Config) *string { return &c.Region }},
	{"private-key-file", "OSS_PRIVATE_KEY_FILE", "read the PEM private key from this file", func(c *osscert.Config) *string { return &c.PrivateKeyFile }},
	{"certificate-file", "OSS_CERTIFICATE_FILE", "read the PEM certificate from this file", func(c *osscert.Config) *string { return &c.CertificateFile }},
	{"history-db", "OSS_HISTORY_DB", "sqlite file recording successful rotations", func(c *osscert.Config) *string { return &c.HistoryDB }},
}

// Sources of a setting, lowest precedence first.
const (
	unset = iota
	fromFile
	fromEnv
	fromFlag
)

type options struct {
	cfg        osscert.Config
	configPath string
	dryRun     bool
	list       bool
	timeout    time.Duration
}

func newFlagSet(name string) (*pflag.FlagSet, map[string]*string, *options) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	values := make(map[string]*string, len(settings))
	for _, s := range settings {
		values[s.flag] = fs.String(s.flag, "", s.usage+" (env "+s.env+")")
	}

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "TOML config file")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "decide what to do but do not update the binding")
	fs.BoolVar(&opts.list, "list", false, "print the bucket's custom domains and exit")
	fs.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall deadline for provider calls")
	return fs, values, opts
}

// parseOptions resolves the configuration. Precedence, highest first:
// explicit flag, environment, config file, default.
func parseOptions(args []string, getenv func(string) string) (*options, error) {
	fs, values, opts := newFlagSet("oss-cert-rotate")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.configPath != "" {
		fileCfg, err := osscert.LoadFile(opts.configPath)
		if err != nil {
			return nil, err
		}
		opts.cfg = *fileCfg
	}

	rank := make(map[string]int, len(settings))
	for _, s := range settings {
		dst := s.field(&opts.cfg)
		if *dst != "" {
			rank[s.flag] = fromFile
		}
		if v := getenv(s.env); v != "" {
			*dst = v
			rank[s.flag] = fromEnv
		}
		if fs.Changed(s.flag) {
			*dst = *values[s.flag]
			rank[s.flag] = fromFlag
		}
	}

	// Inline material and its file are one setting: the file only loses
	// to inline content given at the same or a higher precedence.
	if rank["private-key-file"] > rank["private-key"] {
		opts.cfg.PrivateKey = ""
	}
	if rank["certificate-file"] > rank["certificate"] {
		opts.cfg.Certificate = ""
	}
	if opts.cfg.Region == "" {
		opts.cfg.Region = osscert.DefaultRegion
	}

	if err := opts.cfg.LoadMaterial(); err != nil {
		return nil, err
	}
	validate := opts.cfg.Validate
	if opts.list {
		validate = opts.cfg.ValidateConnection
	}
	if err := validate(); err != nil {
		return nil, fmt.Errorf("%w (see --help)", err)
	}
	return opts, nil
}
