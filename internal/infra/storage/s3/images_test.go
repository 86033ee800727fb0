package s3

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageStoreValidates(t *testing.T) {
	_, err := NewImageStore(Config{Bucket: "b"}, nil)
	assert.ErrorContains(t, err, "endpoint")
	_, err = NewImageStore(Config{Endpoint: "http://localhost:9000"}, nil)
	assert.ErrorContains(t, err, "bucket")
}

func TestObjectURL(t *testing.T) {
	store, err := NewImageStore(Config{
		Endpoint:       "http://minio:9000",
		PublicEndpoint: "https://cdn.example.com/",
		Bucket:         "stayhub-images",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/stayhub-images/housings/abc/my%20photo.png", store.objectURL("housings/abc/my photo.png"))
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "minio:9000", hostOf("http://minio:9000"))
	assert.Equal(t, "minio:9000", hostOf("minio:9000"))
}

func TestUploadRejectsEmptyKey(t *testing.T) {
	store, err := NewImageStore(Config{Endpoint: "http://localhost:9000", Bucket: "b"}, nil)
	require.NoError(t, err)
	_, err = store.Upload(context.Background(), " / ", nil, "image/png")
	assert.Error(t, err)
}
