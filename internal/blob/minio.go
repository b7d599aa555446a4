package blob

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore implements Store on a MinIO (or any S3-compatible) backend.
// Switching providers only needs different endpoint/credential settings.
type MinioStore struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// NewMinioStore creates a MinIO client, ensures the bucket exists with a
// public-read policy, and returns a ready-to-use MinioStore.
func NewMinioStore(endpoint, accessKey, secretKey, bucket, publicBase string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx := context.Background()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", bucket, err)
		}
		log.Printf("blob: created bucket %q", bucket)
	}

	if err := client.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
		return nil, fmt.Errorf("set bucket policy: %w", err)
	}

	return &MinioStore{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// Save streams r to the bucket under a generated object key and returns it.
// Size is unknown at this point, so MinIO buffers the stream (-1).
func (s *MinioStore) Save(ctx context.Context, r io.Reader, originalName string) (string, error) {
	storedName := uuid.New().String() + ext(originalName)
	_, err := s.client.PutObject(ctx, s.bucket, storedName, r, -1, minio.PutObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", storedName, err)
	}
	return storedName, nil
}

// Remove deletes the object; MinIO treats missing objects as a no-op.
func (s *MinioStore) Remove(ctx context.Context, storedName string) error {
	return s.client.RemoveObject(ctx, s.bucket, storedName, minio.RemoveObjectOptions{})
}

// URL returns the browser-accessible URL for the stored name.
func (s *MinioStore) URL(storedName string) string {
	return s.publicBase + "/" + storedName
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET
// on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
