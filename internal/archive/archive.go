// Package archive mirrors ingested artifacts into MinIO/S3: the raw source
// bytes and the normalized text per record. Archival is best effort; a
// failed upload never blocks or rolls back record creation.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/callsift/callsift/internal/config"
	"github.com/callsift/callsift/internal/model"
)

// Archive wraps MinIO interactions for raw and normalized artifacts.
type Archive struct {
	client     *minio.Client
	rawBucket  string
	textBucket string
	region     string
}

// New creates a MinIO client from the Config.
func New(cfg *config.Config) (*Archive, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &Archive{
		client:     client,
		rawBucket:  cfg.RawBucket,
		textBucket: cfg.TextBucket,
		region:     cfg.S3Region,
	}, nil
}

// EnsureBuckets makes sure the raw/text buckets exist before use.
func (a *Archive) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{a.rawBucket, a.textBucket} {
		exists, err := a.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := a.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: a.region}); err != nil {
				return fmt.Errorf("make bucket %s: %w", bucket, err)
			}
		}
	}
	return nil
}

// Store uploads the record's source file and its normalized text, keyed by
// record id so archived objects survive source-folder cleanup.
func (a *Archive) Store(ctx context.Context, rec *model.Transcript) error {
	raw, err := os.ReadFile(rec.Filepath)
	if err != nil {
		return fmt.Errorf("read source %s: %w", rec.Filepath, err)
	}
	ext := filepath.Ext(rec.Filepath)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	rawKey := rec.ID + ext
	if _, err := a.client.PutObject(ctx, a.rawBucket, rawKey,
		bytes.NewReader(raw), int64(len(raw)),
		minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return fmt.Errorf("upload raw object: %w", err)
	}
	text := []byte(rec.RawContent)
	if _, err := a.client.PutObject(ctx, a.textBucket, rec.ID+".txt",
		bytes.NewReader(text), int64(len(text)),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"}); err != nil {
		return fmt.Errorf("upload text object: %w", err)
	}
	return nil
}
