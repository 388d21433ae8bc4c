package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/thermalytics/thermoinsights/backend/config"
	"github.com/thermalytics/thermoinsights/backend/pkg/logger"
)

// ObjectStore is the subset of object storage the report archive needs
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	GetPresignedURL(ctx context.Context, objectName string) (string, error)
	DeleteFile(ctx context.Context, objectName string) error
}

type MinioService struct {
	client *minio.Client
	bucket string
	config *config.MinioConfig
}

func NewMinioService(cfg *config.MinioConfig) (*MinioService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioService{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *MinioService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// UploadFile stores an object
func (s *MinioService) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType:        contentType,
		ContentDisposition: "attachment",
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}

	return nil
}

// GetPresignedURL generates a download link valid for the configured days
func (s *MinioService) GetPresignedURL(ctx context.Context, objectName string) (string, error) {
	expiry := time.Duration(s.config.ExpireDays) * 24 * time.Hour
	url, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url.String(), nil
}

// DeleteFile removes an object
func (s *MinioService) DeleteFile(ctx context.Context, objectName string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// MinioSaver delivers reports through object storage and hands back a
// presigned download link. Objects live only as long as their session.
type MinioSaver struct {
	store ObjectStore

	mu      sync.Mutex
	objects map[string][]string // session ID -> object names
}

func NewMinioSaver(store ObjectStore) *MinioSaver {
	return &MinioSaver{
		store:   store,
		objects: make(map[string][]string),
	}
}

// Save uploads data as <key>/<filename>. Keys are "<session>/<submission>".
func (m *MinioSaver) Save(ctx context.Context, key, filename, contentType string, data []byte) (string, error) {
	objectName := key + "/" + filename
	if err := m.store.UploadFile(ctx, objectName, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", err
	}

	m.mu.Lock()
	session := sessionOfKey(key)
	names := m.objects[session]
	found := false
	for _, n := range names {
		if n == objectName {
			found = true
			break
		}
	}
	if !found {
		m.objects[session] = append(names, objectName)
	}
	m.mu.Unlock()

	return m.store.GetPresignedURL(ctx, objectName)
}

// Discard deletes every object saved for a session
func (m *MinioSaver) Discard(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	names := m.objects[sessionID]
	delete(m.objects, sessionID)
	m.mu.Unlock()

	var firstErr error
	for _, name := range names {
		if err := m.store.DeleteFile(ctx, name); err != nil {
			logger.Warn(ctx, "failed to discard archived report", "object", name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func sessionOfKey(key string) string {
	session, _, _ := strings.Cut(key, "/")
	return session
}
