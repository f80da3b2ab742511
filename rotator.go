package osscert

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Provider is the storage provider API used by the rotator.
type Provider interface {
	// ListDomainBindings returns the custom domains bound to the bucket.
	ListDomainBindings(ctx context.Context) ([]DomainBinding, error)
	// UpdateCertificate submits a certificate binding update.
	UpdateCertificate(ctx context.Context, req CertificateUpdateRequest) error
}

// Option configures a CertRotator.
type Option func(*CertRotator)

// WithHistory records successful rotations in w.
func WithHistory(w Writer) Option {
	return func(r *CertRotator) { r.history = w }
}

// WithDryRun builds the update request but does not submit it.
func WithDryRun(dryRun bool) Option {
	return func(r *CertRotator) { r.dryRun = dryRun }
}

// WithClock overrides the time source used for the expiry comparison.
func WithClock(now func() time.Time) Option {
	return func(r *CertRotator) { r.now = now }
}

// WithBucket sets the bucket name recorded in history.
func WithBucket(bucket string) Option {
	return func(r *CertRotator) { r.bucket = bucket }
}

// CertRotator replaces the certificate bound to a bucket's custom domain.
type CertRotator struct {
	provider Provider
	logger   *slog.Logger
	history  Writer
	dryRun   bool
	bucket   string
	now      func() time.Time
}

// NewCertRotator creates a rotator. It requires a provider and a logger.
func NewCertRotator(provider Provider, logger *slog.Logger, opts ...Option) *CertRotator {
	if provider == nil || logger == nil {
		panic("NewCertRotator: received nil provider or logger")
	}
	r := &CertRotator{
		provider: provider,
		logger:   logger.With("component", "cert_rotator"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Bindings returns the bucket's custom domain bindings.
func (r *CertRotator) Bindings(ctx context.Context) ([]DomainBinding, error) {
	bindings, err := r.provider.ListDomainBindings(ctx)
	if err != nil {
		return nil, &ProviderError{Op: "list domain bindings", Err: err}
	}
	return bindings, nil
}

// Rotate binds certificatePEM and privateKey to targetDomain.
func (r *CertRotator) Rotate(ctx context.Context, targetDomain, privateKey, certificatePEM string) error {
	if privateKey == "" || certificatePEM == "" {
		r.logger.Error("Private key or certificate is empty", "domain", targetDomain,
			"private_key_set", privateKey != "", "certificate_set", certificatePEM != "")
		return fmt.Errorf("%w for %s", ErrIncompleteInput, targetDomain)
	}

	r.logger.Info("Listing custom domains", "bucket", r.bucket)
	bindings, err := r.Bindings(ctx)
	if err != nil {
		r.logger.Error("Failed to list custom domains", "error", err)
		return err
	}

	binding, ok := findBinding(bindings, targetDomain)
	if !ok {
		r.logger.Error("No matching custom domain", "domain", targetDomain, "bindings", len(bindings))
		return fmt.Errorf("%w: %s", ErrLookupFailure, targetDomain)
	}

	now := r.now().UTC()
	req, err := r.buildRequest(binding, privateKey, certificatePEM, now)
	if err != nil {
		r.logger.Error("Failed to read bound certificate expiry", "domain", targetDomain, "error", err)
		return err
	}
	material := inspectMaterial(privateKey, certificatePEM, now, r.logger)

	if r.dryRun {
		r.logger.Info("Dry run, not submitting update", "domain", req.Domain,
			"previous_cert_id", req.PreviousCertID, "force", req.Force)
		return nil
	}

	if err := r.provider.UpdateCertificate(ctx, req); err != nil {
		r.logger.Error("Failed to update certificate binding", "domain", req.Domain, "error", err)
		return &ProviderError{Op: "update certificate", Err: err}
	}
	r.logger.Info("Certificate binding updated", "domain", req.Domain, "fresh", req.Fresh())

	if r.history == nil {
		return nil
	}
	rotation := Rotation{
		Domain:           req.Domain,
		Bucket:           r.bucket,
		PreviousCertID:   req.PreviousCertID,
		Fresh:            req.Fresh(),
		NewCertExpiresAt: material.NotAfter,
		RotatedAt:        r.now().UTC(),
	}
	if err := r.history.AddRotation(ctx, rotation); err != nil {
		r.logger.Error("Certificate updated but history record failed", "domain", req.Domain, "error", err)
		return fmt.Errorf("failed to record rotation for %s: %w", req.Domain, err)
	}
	return nil
}

// buildRequest chooses between a fresh binding and replacing the bound
// certificate. A certificate replaces only while its expiry is after now.
func (r *CertRotator) buildRequest(b DomainBinding, privateKey, certificatePEM string, now time.Time) (CertificateUpdateRequest, error) {
	req := CertificateUpdateRequest{
		Domain:      b.Domain,
		Certificate: certificatePEM,
		PrivateKey:  privateKey,
		Force:       true,
	}

	if b.Certificate == nil {
		r.logger.Info("No certificate bound, creating a new one", "domain", b.Domain)
		return req, nil
	}

	expiry, err := b.Certificate.Expiry()
	if err != nil {
		return CertificateUpdateRequest{}, err
	}
	if !expiry.After(now) {
		r.logger.Info("Bound certificate expired, creating a new one",
			"domain", b.Domain, "cert_id", b.Certificate.ID, "valid_end_date", b.Certificate.ValidEndDate)
		return req, nil
	}

	r.logger.Info("Bound certificate still valid, replacing it",
		"domain", b.Domain,
		"cert_id", b.Certificate.ID,
		"valid_end_date", b.Certificate.ValidEndDate,
		"fingerprint", b.Certificate.Fingerprint,
		"status", b.Certificate.Status,
		"last_modified", b.LastModified)
	req.PreviousCertID = b.Certificate.ID
	return req, nil
}

func findBinding(bindings []DomainBinding, domain string) (DomainBinding, bool) {
	for _, b := range bindings {
		if b.Domain == domain {
			return b, true
		}
	}
	return DomainBinding{}, false
}
