package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"mailroom/internal/config"
	"mailroom/internal/logger"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey(PrefixKYC, "user-1", "Passport.PDF")

	assert.True(t, strings.HasPrefix(key, "kyc/user-1/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.Len(t, strings.TrimSuffix(strings.TrimPrefix(key, "kyc/user-1/"), ".pdf"), 36)

	other := ObjectKey(PrefixKYC, "user-1", "Passport.PDF")
	assert.NotEqual(t, key, other)
}

func TestObjectKey_NoExtension(t *testing.T) {
	key := ObjectKey(PrefixScan, "item-9", "scan")

	assert.True(t, strings.HasPrefix(key, "scans/item-9/"))
	assert.NotContains(t, strings.TrimPrefix(key, "scans/item-9/"), ".")
}

func TestNewMinIO_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinIOConfig
		want string
	}{
		{"missing endpoint", config.MinIOConfig{AccessKey: "a", SecretKey: "b", Bucket: "c"}, "endpoint"},
		{"missing credentials", config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "c"}, "credentials"},
		{"missing bucket", config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}, "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMinIO(context.Background(), tt.cfg, zap.NewNop())
			assert.Nil(t, s)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestNewMinIO_ReportsEveryMissingField(t *testing.T) {
	_, err := NewMinIO(context.Background(), config.MinIOConfig{}, zap.NewNop())

	assert.ErrorContains(t, err, "endpoint")
	assert.ErrorContains(t, err, "credentials")
	assert.ErrorContains(t, err, "bucket")
}

func TestFamilyOf(t *testing.T) {
	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{ObjectKey(PrefixKYC, "u1", "id.pdf"), PrefixKYC, true},
		{ObjectKey(PrefixEnvelope, "m1", "front.jpg"), PrefixEnvelope, true},
		{ObjectKey(PrefixScan, "m1", "scan.pdf"), PrefixScan, true},
		{"documents/u1/x.pdf", "", false},
		{"kyc", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := familyOf(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "image/png", contentTypeFor("scans/m1/a.png", "image/png"))
	assert.Equal(t, "application/pdf", contentTypeFor("scans/m1/a.pdf", ""))
	assert.Equal(t, "application/octet-stream", contentTypeFor("scans/m1/a", ""))
}

func TestObjectMetadata(t *testing.T) {
	ctx := logger.WithRequestID(context.Background(), "rid-5")
	extra := map[string]string{"original-filename": "passport.pdf"}

	meta := objectMetadata(ctx, PrefixKYC, extra)

	assert.Equal(t, map[string]string{
		"original-filename": "passport.pdf",
		MetaFamily:          PrefixKYC,
		MetaRequestID:       "rid-5",
	}, meta)
	assert.Len(t, extra, 1, "caller metadata is not modified")

	bare := objectMetadata(context.Background(), PrefixScan, nil)
	assert.Equal(t, map[string]string{MetaFamily: PrefixScan}, bare)
}

func TestClampExpiry(t *testing.T) {
	assert.Equal(t, time.Minute, clampExpiry(0))
	assert.Equal(t, 15*time.Minute, clampExpiry(15*time.Minute))
	assert.Equal(t, 7*24*time.Hour, clampExpiry(30*24*time.Hour))
}
