// Package blob wraps the object store holding the raw uploaded files.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config enumerates everything needed to reach the object store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Store is a content-addressed object store keyed by object name.
type Store struct {
	client *minio.Client
	bucket string
	useSSL bool
}

// New connects to the object store and ensures the bucket exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create blob client failed: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check blob bucket failed: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create blob bucket failed: %w", err)
		}
	}

	return &Store{client: client, bucket: cfg.Bucket, useSSL: cfg.UseSSL}, nil
}

// Put uploads data under name, overwriting any previous object, and returns
// the object's URI.
func (s *Store) Put(ctx context.Context, name string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return "", fmt.Errorf("upload blob %q failed: %w", name, err)
	}

	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   s.client.EndpointURL().Host,
		Path:   "/" + s.bucket + "/" + name,
	}
	return u.String(), nil
}

// Delete removes the object; deleting a missing object is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete blob %q failed: %w", name, err)
	}
	return nil
}

// Healthy reports whether the bucket is reachable.
func (s *Store) Healthy(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return fmt.Errorf("blob store unreachable: %w", err)
	}
	return nil
}
