package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"quizify_backend/internal/config"
	"quizify_backend/internal/util"
	"quizify_backend/pkg/logger"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// DocumentStore keeps uploaded source documents. Keys are slash separated
// object names such as documents/<id>.pdf.
type DocumentStore interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
	URL(key string) string
}

// LocalDocumentStore 本地磁盘存储
type LocalDocumentStore struct {
	Root string
}

func (s *LocalDocumentStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(s.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, reader); err != nil {
		out.Close()
		os.Remove(dst)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return s.URL(key), nil
}

func (s *LocalDocumentStore) Remove(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *LocalDocumentStore) URL(key string) string {
	return "/uploads/" + key
}

// MinioDocumentStore MinIO 对象存储
type MinioDocumentStore struct {
	Bucket string
	Client *minio.Client
}

func NewMinioDocumentStore(ctx context.Context, cfg *config.StorageConfig) (*MinioDocumentStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinioBucket, err)
		}
	}
	return &MinioDocumentStore{Bucket: cfg.MinioBucket, Client: client}, nil
}

func (s *MinioDocumentStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := s.Client.PutObject(ctx, s.Bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return s.URL(key), nil
}

func (s *MinioDocumentStore) Remove(ctx context.Context, key string) error {
	return s.Client.RemoveObject(ctx, s.Bucket, key, minio.RemoveObjectOptions{})
}

func (s *MinioDocumentStore) URL(key string) string {
	return "/" + s.Bucket + "/" + key
}

// OSSDocumentStore 阿里云 OSS 存储
type OSSDocumentStore struct {
	Endpoint string
	Bucket   *oss.Bucket
}

func NewOSSDocumentStore(cfg *config.StorageConfig) (*OSSDocumentStore, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, err
	}
	return &OSSDocumentStore{Endpoint: cfg.OSSEndpoint, Bucket: bucket}, nil
}

func (s *OSSDocumentStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	if err := s.Bucket.PutObject(key, reader, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return s.URL(key), nil
}

func (s *OSSDocumentStore) Remove(ctx context.Context, key string) error {
	return s.Bucket.DeleteObject(key)
}

func (s *OSSDocumentStore) URL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", s.Bucket.BucketName, s.Endpoint, key)
}

// StorageService fronts the configured DocumentStore.
type StorageService struct {
	Store DocumentStore
}

// NewStorageService picks the store named by cfg.Storage.Type. A remote store
// that cannot be reached at startup falls back to local disk.
func NewStorageService(ctx context.Context, cfg *config.Config) *StorageService {
	var store DocumentStore
	switch cfg.Storage.Type {
	case util.StorageMinio:
		s, err := NewMinioDocumentStore(ctx, &cfg.Storage)
		if err != nil {
			logger.Log.Warn("MinIO unavailable, using local document storage", zap.Error(err))
		} else {
			store = s
		}
	case util.StorageOSS:
		s, err := NewOSSDocumentStore(&cfg.Storage)
		if err != nil {
			logger.Log.Warn("OSS unavailable, using local document storage", zap.Error(err))
		} else {
			store = s
		}
	}

	if store == nil {
		store = &LocalDocumentStore{Root: cfg.Storage.LocalPath}
	}
	return &StorageService{Store: store}
}

func (s *StorageService) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	return s.Store.Put(ctx, key, reader, size, contentType)
}

func (s *StorageService) Remove(ctx context.Context, key string) error {
	return s.Store.Remove(ctx, key)
}

func (s *StorageService) URL(key string) string {
	return s.Store.URL(key)
}
