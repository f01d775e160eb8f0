// Package storage uploads user files to Google Cloud Storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/go-clean-starter/internal/domain/service"
	"github.com/oksasatya/go-clean-starter/pkg/helpers"
)

const uploadTimeout = 30 * time.Second

type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS returns nil when either the client or the bucket is missing, so that
// callers can treat "not configured" as a nil ObjectStorage.
func NewGCS(client *storage.Client, bucket string) *GCS {
	if client == nil || strings.TrimSpace(bucket) == "" {
		return nil
	}
	return &GCS{client: client, bucket: bucket}
}

func (g *GCS) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	objectPath = strings.TrimPrefix(objectPath, "/")
	if objectPath == "" {
		return "", fmt.Errorf("gcs upload: empty object path")
	}
	c, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()
	url, err := helpers.UploadObject(c, g.client, g.bucket, objectPath, contentType, r)
	if err != nil {
		return "", fmt.Errorf("gcs upload %s: %w", objectPath, err)
	}
	return url, nil
}

var _ service.ObjectStorage = (*GCS)(nil)
