package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"mailroom/internal/config"
	"mailroom/internal/logger"
)

const (
	// MetaFamily records which object family (kyc, envelopes, scans) an object belongs to.
	MetaFamily = "mailroom-family"
	// MetaRequestID records the request that uploaded the object.
	MetaRequestID = "mailroom-request-id"

	minPresignExpiry = time.Minute
	maxPresignExpiry = 7 * 24 * time.Hour
)

// ErrUnknownFamily is returned by Put for keys outside the known prefixes.
var ErrUnknownFamily = errors.New("storage: key outside known object families")

var families = map[string]bool{PrefixKYC: true, PrefixEnvelope: true, PrefixScan: true}

// minioStorage keeps mailroom objects in a single bucket. Safe for concurrent use.
type minioStorage struct {
	client *minio.Client
	bucket string
	log    *zap.Logger
}

// NewMinIO connects to the bucket named in cfg, creating it when missing.
func NewMinIO(ctx context.Context, cfg config.MinIOConfig, log *zap.Logger) (Storage, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
	}

	log.Info("object_storage_ready",
		zap.String("component", "storage"),
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
		zap.Bool("created", !exists),
	)
	return &minioStorage{client: cli, bucket: cfg.Bucket, log: log}, nil
}

func validateConfig(cfg config.MinIOConfig) error {
	var errs []error
	if cfg.Endpoint == "" {
		errs = append(errs, errors.New("minio endpoint is required"))
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		errs = append(errs, errors.New("minio credentials are required"))
	}
	if cfg.Bucket == "" {
		errs = append(errs, errors.New("minio bucket is required"))
	}
	return errors.Join(errs...)
}

// Put stores an object under one of the mailroom families. Family and request id are
// written as object metadata next to whatever the caller supplied.
func (m *minioStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	family, ok := familyOf(key)
	if !ok {
		return ObjectInfo{}, fmt.Errorf("%w: %q", ErrUnknownFamily, key)
	}
	contentType := contentTypeFor(key, opt.ContentType)
	meta := objectMetadata(ctx, family, opt.Metadata)

	info, err := m.client.PutObject(ctx, m.bucket, key, r, opt.Size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: meta,
	})
	if err != nil {
		logger.For(ctx, m.log).Warn("object_put_failed", zap.String("key", key), zap.Error(err))
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:          key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  contentType,
		LastModified: time.Now().UTC(),
		Metadata:     meta,
	}, nil
}

// Delete removes an object. Used to roll back uploads whose database write failed.
func (m *minioStorage) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		logger.For(ctx, m.log).Warn("object_delete_failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// PresignGet returns a download URL valid for expiry, clamped to what S3 accepts.
func (m *minioStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	params := url.Values{}
	if name := path.Base(key); name != "." && name != "/" {
		params.Set("response-content-disposition", fmt.Sprintf("inline; filename=%q", name))
	}
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, clampExpiry(expiry), params)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Ping reports whether the bucket is still reachable.
func (m *minioStorage) Ping(ctx context.Context) error {
	ok, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", m.bucket)
	}
	return nil
}

func familyOf(key string) (string, bool) {
	first, _, found := strings.Cut(key, "/")
	if !found || !families[first] {
		return "", false
	}
	return first, true
}

func contentTypeFor(key, given string) string {
	if given != "" {
		return given
	}
	if t := mime.TypeByExtension(path.Ext(key)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func objectMetadata(ctx context.Context, family string, extra map[string]string) map[string]string {
	meta := make(map[string]string, len(extra)+2)
	for k, v := range extra {
		meta[k] = v
	}
	meta[MetaFamily] = family
	if rid := logger.RequestID(ctx); rid != "" {
		meta[MetaRequestID] = rid
	}
	return meta
}

func clampExpiry(d time.Duration) time.Duration {
	switch {
	case d < minPresignExpiry:
		return minPresignExpiry
	case d > maxPresignExpiry:
		return maxPresignExpiry
	}
	return d
}
