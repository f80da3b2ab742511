// Package aliyun implements osscert.Provider on top of the Aliyun OSS SDK.
package aliyun

import (
	"context"
	"errors"
	"fmt"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	osscert "github.com/caasmo/oss-cert-rotate"
)

// Config holds the credentials and location of the bucket.
type Config struct {
	AccessKeyID     string
	AccessKeySecret string
	Endpoint        string
	Region          string
	BucketName      string
}

// cnameAPI is the subset of *oss.Client used here.
type cnameAPI interface {
	ListBucketCname(bucketName string, options ...oss.Option) (oss.ListBucketCnameResult, error)
	PutBucketCnameWithCertificate(bucketName string, putBucketCname oss.PutBucketCname, options ...oss.Option) error
}

// Provider talks to one OSS bucket.
type Provider struct {
	client cnameAPI
	bucket string
}

// NewProvider builds a V4-signed OSS client for cfg.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("aliyun: bucket name cannot be empty")
	}
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret,
		oss.Region(cfg.Region),
		oss.AuthVersion(oss.AuthV4),
	)
	if err != nil {
		return nil, fmt.Errorf("aliyun: failed to create OSS client: %w", err)
	}
	return &Provider{client: client, bucket: cfg.BucketName}, nil
}

// ListDomainBindings implements osscert.Provider.
func (p *Provider) ListDomainBindings(ctx context.Context) ([]osscert.DomainBinding, error) {
	res, err := p.client.ListBucketCname(p.bucket, oss.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	bindings := make([]osscert.DomainBinding, 0, len(res.Cname))
	for _, c := range res.Cname {
		bindings = append(bindings, toBinding(c))
	}
	return bindings, nil
}

// UpdateCertificate implements osscert.Provider. SDK errors are returned
// as is; the rotator names the operation.
func (p *Provider) UpdateCertificate(ctx context.Context, req osscert.CertificateUpdateRequest) error {
	put := oss.PutBucketCname{
		Cname: req.Domain,
		CertificateConfiguration: &oss.CertificateConfiguration{
			Certificate:    req.Certificate,
			PrivateKey:     req.PrivateKey,
			PreviousCertId: req.PreviousCertID,
			Force:          req.Force,
		},
	}
	return p.client.PutBucketCnameWithCertificate(p.bucket, put, oss.WithContext(ctx))
}

// toBinding maps an SDK cname. The SDK always returns a Certificate value;
// an empty CertId means nothing is bound.
func toBinding(c oss.Cname) osscert.DomainBinding {
	b := osscert.DomainBinding{
		Domain:       c.Domain,
		LastModified: c.LastModified,
		Status:       c.Status,
	}
	if c.Certificate.CertId != "" {
		b.Certificate = &osscert.CertificateInfo{
			ID:           c.Certificate.CertId,
			ValidEndDate: c.Certificate.ValidEndDate,
			Fingerprint:  c.Certificate.Fingerprint,
			Status:       c.Certificate.Status,
			Type:         c.Certificate.Type,
		}
	}
	return b
}
