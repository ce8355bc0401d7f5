package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"access-sync/core/storage"
	"access-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestArchive_PutJSON(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "snaps").Return(false, nil).Once()
	client.On("MakeBucket", mock.Anything, "snaps", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil).Once()

	var stored map[string]any
	client.On("PutObject", mock.Anything, "snaps", "2026/03/10/run.json", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			data, err := io.ReadAll(args.Get(3).(io.Reader))
			require.NoError(t, err)
			assert.Equal(t, int64(len(data)), args.Get(4).(int64))
			assert.Equal(t, "application/json", args.Get(5).(minio.PutObjectOptions).ContentType)
			require.NoError(t, json.Unmarshal(data, &stored))
		}).
		Return(minio.UploadInfo{}, nil).Twice()

	archive := storage.NewArchive(client, "snaps", "us-east-1")
	assert.Equal(t, "snaps", archive.Bucket())

	require.NoError(t, archive.PutJSON(context.Background(), "2026/03/10/run.json", map[string]any{"count": 2}))
	assert.Equal(t, float64(2), stored["count"])

	// Bucket is only checked once.
	require.NoError(t, archive.PutJSON(context.Background(), "2026/03/10/run.json", map[string]any{"count": 3}))
	client.AssertExpectations(t)
}

func TestArchive_BucketCheckFails(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "snaps").Return(false, errors.New("denied")).Once()

	err := storage.NewArchive(client, "snaps", "").PutJSON(context.Background(), "x.json", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestArchive_PutFails(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "snaps").Return(true, nil).Once()
	client.On("PutObject", mock.Anything, "snaps", "x.json", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("quota")).Once()

	err := storage.NewArchive(client, "snaps", "").PutJSON(context.Background(), "x.json", 1)
	assert.ErrorContains(t, err, "quota")
}

func TestArchive_OverMinioClient(t *testing.T) {
	cfg := storage.Config{
		Enabled:        true,
		Endpoint:       "http://127.0.0.1:1",
		AccessKey:      "minioadmin",
		SecretKey:      "minioadmin",
		Bucket:         "reservation-snapshots",
		TimeoutSeconds: 1,
	}

	client, err := storage.NewClient(cfg)
	require.NoError(t, err)
	archive := storage.NewArchive(client, cfg.Bucket, cfg.Region)
	assert.Equal(t, "reservation-snapshots", archive.Bucket())

	// Nothing listens on the endpoint: the bucket check fails and nothing is written.
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	err = archive.PutJSON(ctx, "snapshots/2026/03/01/120000-run-1.json", map[string]any{"stays": 0})
	assert.ErrorContains(t, err, "check bucket reservation-snapshots")
}

func TestNewClient_RejectsMalformedEndpoint(t *testing.T) {
	_, err := storage.NewClient(storage.Config{Endpoint: "https://minio.local:9000/snapshots"})
	assert.ErrorContains(t, err, "failed to create minio client")
}
