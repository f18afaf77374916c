// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package upload stores cover images on S3 or local disk.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// BlobStore persists uploaded files and returns their public URLs.
type BlobStore interface {
	// Put stores data under key and returns the public URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Delete removes a stored object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
}

// S3Config holds S3 storage settings.
type S3Config struct {
	Bucket string
	Region string
	// BaseURL is the public URL prefix for stored objects
	// (e.g., a CloudFront distribution). Defaults to the bucket URL.
	BaseURL string
	// Endpoint overrides the S3 endpoint for S3-compatible stores.
	Endpoint string
}

// S3Store stores blobs in an S3 bucket.
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Store creates an S3-backed blob store.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Put uploads data to the bucket.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading to S3: %w", err)
	}

	return s.baseURL + "/" + key, nil
}

// Delete removes an object from the bucket.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting from S3: %w", err)
	}
	return nil
}

// DiskStore stores blobs on the local filesystem, served under /uploads/.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore creates a disk-backed blob store rooted at dir.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}
	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// resolve validates a key and maps it to a path inside the store dir.
func (d *DiskStore) resolve(key string) (string, error) {
	clean := filepath.Clean(key)
	if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid upload key %q", key)
	}

	absBase, err := filepath.Abs(d.dir)
	if err != nil {
		return "", fmt.Errorf("resolving uploads dir: %w", err)
	}

	target := filepath.Join(absBase, clean)
	rel, err := filepath.Rel(absBase, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid upload key %q", key)
	}
	return target, nil
}

// Put writes data under the store directory.
func (d *DiskStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	path, err := d.resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("creating upload subdir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}

	return d.baseURL + "/uploads/" + key, nil
}

// Delete removes a stored file.
func (d *DiskStore) Delete(_ context.Context, key string) error {
	path, err := d.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing upload: %w", err)
	}
	return nil
}

var (
	_ BlobStore = (*S3Store)(nil)
	_ BlobStore = (*DiskStore)(nil)
)
