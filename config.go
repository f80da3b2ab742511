package osscert

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const DefaultRegion = "cn-hangzhou"

// Config holds everything needed for one rotation run.
type Config struct {
	AccessKeyID     string `toml:"access_key_id" comment:"OSS AccessKeyId (prefer OSS_ACCESS_KEY_ID)"`
	AccessKeySecret string `toml:"access_key_secret" comment:"OSS AccessKeySecret (prefer OSS_ACCESS_KEY_SECRET)"`
	Endpoint        string `toml:"endpoint" comment:"OSS endpoint, e.g. https://oss-cn-hangzhou.aliyuncs.com"`
	Region          string `toml:"region" comment:"OSS region"`
	BucketName      string `toml:"bucket_name" comment:"Bucket the custom domain is bound to"`
	TargetCname     string `toml:"target_cname" comment:"Custom domain whose certificate is rotated"`

	PrivateKey      string `toml:"private_key,omitempty" comment:"PEM private key content"`
	Certificate     string `toml:"certificate,omitempty" comment:"PEM certificate content"`
	PrivateKeyFile  string `toml:"private_key_file,omitempty" comment:"Read the private key from this file when private_key is empty"`
	CertificateFile string `toml:"certificate_file,omitempty" comment:"Read the certificate from this file when certificate is empty"`

	HistoryDB string `toml:"history_db,omitempty" comment:"Optional sqlite file recording successful rotations"`
}

// LoadFile decodes a TOML config file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the provider settings and the target domain. Certificate
// material is checked by the rotator so that missing material is reported as
// ErrIncompleteInput.
func (c *Config) Validate() error {
	if err := c.ValidateConnection(); err != nil {
		return err
	}
	if c.TargetCname == "" {
		return errors.New("config: target_cname cannot be empty")
	}
	return nil
}

// ValidateConnection checks only what is needed to reach the bucket.
func (c *Config) ValidateConnection() error {
	if c.AccessKeyID == "" {
		return errors.New("config: access_key_id cannot be empty")
	}
	if c.AccessKeySecret == "" {
		return errors.New("config: access_key_secret cannot be empty")
	}
	if c.Endpoint == "" {
		return errors.New("config: endpoint cannot be empty")
	}
	if c.Region == "" {
		return errors.New("config: region cannot be empty")
	}
	if c.BucketName == "" {
		return errors.New("config: bucket_name cannot be empty")
	}
	return nil
}

// LoadMaterial fills PrivateKey and Certificate from their files when the
// inline value is empty.
func (c *Config) LoadMaterial() error {
	if c.PrivateKey == "" && c.PrivateKeyFile != "" {
		b, err := os.ReadFile(c.PrivateKeyFile)
		if err != nil {
			return fmt.Errorf("config: failed to read private_key_file: %w", err)
		}
		c.PrivateKey = string(b)
	}
	if c.Certificate == "" && c.CertificateFile != "" {
		b, err := os.ReadFile(c.CertificateFile)
		if err != nil {
			return fmt.Errorf("config: failed to read certificate_file: %w", err)
		}
		c.Certificate = string(b)
	}
	return nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	cp := c
	cp.AccessKeySecret = redact(cp.AccessKeySecret)
	cp.PrivateKey = redact(cp.PrivateKey)
	cp.Certificate = redact(cp.Certificate)
	return cp
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "[redacted]"
}
