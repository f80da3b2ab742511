package osscert

import (
	"context"
	"fmt"
	"time"
)

// ExpiryLayout is the layout OSS uses for certificate validity dates,
// e.g. "Oct 19 23:59:59 2025 GMT".
const ExpiryLayout = "Jan _2 15:04:05 2006 GMT"

// DomainBinding is one custom domain bound to the bucket, as returned by the provider.
type DomainBinding struct {
	Domain       string
	Certificate  *CertificateInfo // nil when no certificate is bound
	LastModified string
	Status       string
}

// CertificateInfo is a snapshot of the certificate bound to a domain.
type CertificateInfo struct {
	ID           string
	ValidEndDate string // provider text, see ExpiryLayout
	Fingerprint  string
	Status       string
	Type         string
}

// Expiry parses ValidEndDate and returns it in UTC.
func (c *CertificateInfo) Expiry() (time.Time, error) {
	t, err := time.Parse(ExpiryLayout, c.ValidEndDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: certificate %q valid_end_date %q: %v", ErrDateParse, c.ID, c.ValidEndDate, err)
	}
	return t.UTC(), nil
}

// CertificateUpdateRequest is the binding update submitted for a domain.
// PreviousCertID is empty when a fresh certificate is created.
type CertificateUpdateRequest struct {
	Domain         string
	Certificate    string // PEM
	PrivateKey     string // PEM
	PreviousCertID string
	Force          bool
}

// Fresh reports whether the request creates a new binding rather than replacing one.
func (r CertificateUpdateRequest) Fresh() bool { return r.PreviousCertID == "" }

// Rotation records a successful update.
type Rotation struct {
	Domain           string
	Bucket           string
	PreviousCertID   string
	Fresh            bool
	NewCertExpiresAt time.Time // zero if the new certificate could not be parsed locally
	RotatedAt        time.Time
}

// Writer stores rotation history records.
type Writer interface {
	AddRotation(ctx context.Context, r Rotation) error
}

// TimeFormat formats t as an RFC3339 UTC string for storage.
func TimeFormat(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ParseTime is the inverse of TimeFormat.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
