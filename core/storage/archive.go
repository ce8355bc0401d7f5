package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/minio/minio-go/v7"
)

// Archive writes JSON documents to a single bucket, creating it on first use.
type Archive struct {
	client Client
	bucket string
	region string

	mu    sync.Mutex
	ready bool
}

// NewArchive creates an archive over client.
func NewArchive(client Client, bucket, region string) *Archive {
	return &Archive{client: client, bucket: bucket, region: region}
}

// Bucket returns the target bucket name.
func (a *Archive) Bucket() string {
	return a.bucket
}

// PutJSON encodes v and stores it under objectName.
func (a *Archive) PutJSON(ctx context.Context, objectName string, v any) error {
	if err := a.ensureBucket(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", objectName, err)
	}

	_, err = a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", a.bucket, objectName, err)
	}
	return nil
}

func (a *Archive) ensureBucket(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ready {
		return nil
	}

	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", a.bucket, err)
		}
	}
	a.ready = true
	return nil
}
