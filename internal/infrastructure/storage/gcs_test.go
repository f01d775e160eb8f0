package storage_test

import (
	"context"
	"strings"
	"testing"

	gcs "cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/oksasatya/go-clean-starter/internal/infrastructure/storage"
)

func TestNewGCS_NotConfigured(t *testing.T) {
	assert.Nil(t, storage.NewGCS(nil, "avatars"))

	client, err := gcs.NewClient(context.Background(), option.WithoutAuthentication())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	assert.Nil(t, storage.NewGCS(client, " "))

	s := storage.NewGCS(client, "avatars")
	require.NotNil(t, s)
	_, err = s.Upload(context.Background(), "/", "image/png", strings.NewReader("x"))
	assert.Error(t, err)
}
