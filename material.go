package osscert

import (
	"log/slog"
	"time"

	"github.com/go-acme/lego/v4/certcrypto"
)

// Material summarises the new certificate as far as it could be parsed locally.
type Material struct {
	Domains  []string
	NotAfter time.Time
}

// inspectMaterial parses the PEM pair for diagnostics. The provider validates
// the material on submission, so problems here are only logged.
func inspectMaterial(privateKey, certificatePEM string, now time.Time, logger *slog.Logger) Material {
	var m Material

	if _, err := certcrypto.ParsePEMPrivateKey([]byte(privateKey)); err != nil {
		logger.Warn("Could not parse new private key locally", "error", err)
	}

	cert, err := certcrypto.ParsePEMCertificate([]byte(certificatePEM))
	if err != nil {
		logger.Warn("Could not parse new certificate locally", "error", err)
		return m
	}
	m.Domains = certcrypto.ExtractDomains(cert)
	m.NotAfter = cert.NotAfter.UTC()

	logger.Info("New certificate", "domains", m.Domains, "not_after", m.NotAfter.Format(time.RFC3339))
	if !m.NotAfter.After(now) {
		logger.Warn("New certificate is already expired", "not_after", m.NotAfter.Format(time.RFC3339))
	}
	return m
}
