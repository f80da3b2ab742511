package osscert

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func validConfig() Config {
	return Config{
		AccessKeyID:     "id",
		AccessKeySecret: "secret",
		Endpoint:        "https://oss-cn-hangzhou.aliyuncs.com",
		Region:          DefaultRegion,
		BucketName:      "assets",
		TargetCname:     "cdn.example.com",
	}
}

func TestConfigValidate(t *testing.T) {
	tests := map[string]struct {
		mutate  func(*Config)
		wantErr string
	}{
		"valid":              {mutate: func(*Config) {}},
		"missing key id":     {mutate: func(c *Config) { c.AccessKeyID = "" }, wantErr: "access_key_id"},
		"missing secret":     {mutate: func(c *Config) { c.AccessKeySecret = "" }, wantErr: "access_key_secret"},
		"missing endpoint":   {mutate: func(c *Config) { c.Endpoint = "" }, wantErr: "endpoint"},
		"missing region":     {mutate: func(c *Config) { c.Region = "" }, wantErr: "region"},
		"missing bucket":     {mutate: func(c *Config) { c.BucketName = "" }, wantErr: "bucket_name"},
		"missing target":     {mutate: func(c *Config) { c.TargetCname = "" }, wantErr: "target_cname"},
		"material not owned": {mutate: func(c *Config) { c.PrivateKey, c.Certificate = "", "" }},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Validate() error = %v, want mention of %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rotate.toml")
	data := `
access_key_id = "id"
access_key_secret = "secret"
endpoint = "https://oss-cn-hangzhou.aliyuncs.com"
region = "cn-hangzhou"
bucket_name = "assets"
target_cname = "cdn.example.com"
private_key_file = "/etc/ssl/cdn.key"
certificate_file = "/etc/ssl/cdn.pem"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	want := validConfig()
	want.PrivateKeyFile = "/etc/ssl/cdn.key"
	want.CertificateFile = "/etc/ssl/cdn.pem"
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("LoadFile() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFile(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("LoadFile(missing) error = nil")
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("endpoint = "), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(bad); err == nil {
		t.Error("LoadFile(bad) error = nil")
	}
}

func TestLoadMaterial(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "key.pem")
	certPath := filepath.Join(dir, "cert.pem")
	if err := os.WriteFile(keyPath, []byte("KEY FROM FILE"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(certPath, []byte("CERT FROM FILE"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := validConfig()
	cfg.PrivateKey = "INLINE KEY"
	cfg.PrivateKeyFile = keyPath
	cfg.CertificateFile = certPath
	if err := cfg.LoadMaterial(); err != nil {
		t.Fatalf("LoadMaterial() error = %v", err)
	}
	if cfg.PrivateKey != "INLINE KEY" {
		t.Errorf("PrivateKey = %q, inline value should win", cfg.PrivateKey)
	}
	if cfg.Certificate != "CERT FROM FILE" {
		t.Errorf("Certificate = %q, want file content", cfg.Certificate)
	}

	cfg = validConfig()
	cfg.CertificateFile = filepath.Join(dir, "missing.pem")
	if err := cfg.LoadMaterial(); err == nil {
		t.Error("LoadMaterial() with missing file error = nil")
	}
}

func TestConfigRedacted(t *testing.T) {
	cfg := validConfig()
	cfg.PrivateKey = "KEY"
	r := cfg.Redacted()
	if r.AccessKeySecret == "secret" || r.PrivateKey == "KEY" {
		t.Errorf("Redacted() leaked secrets: %+v", r)
	}
	if r.Certificate != "" {
		t.Errorf("Redacted() Certificate = %q, want empty for unset value", r.Certificate)
	}
	if cfg.AccessKeySecret != "secret" {
		t.Error("Redacted() modified the receiver")
	}
}
