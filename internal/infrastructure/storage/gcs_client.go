package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"campusmarket/internal/domain/service"
	"campusmarket/pkg/logger"
)

const publicURLPrefix = "https://storage.googleapis.com/"

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

func NewCloudStorageClient(ctx context.Context, bucketName string, opts ...option.ClientOption) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	storageClient := &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
	}

	if err := storageClient.setBucketCORS(ctx); err != nil {
		logger.Warn("Failed to set CORS configuration on bucket %s: %v", bucketName, err)
	}

	return storageClient, nil
}

func (c *CloudStorageClient) setBucketCORS(ctx context.Context) error {
	bucket := c.client.Bucket(c.bucketName)

	corsConfig := storage.CORS{
		MaxAge:          3600,
		Methods:         []string{"GET", "HEAD", "OPTIONS"},
		Origins:         []string{"*"},
		ResponseHeaders: []string{"Content-Type"},
	}

	bucketAttrs, err := bucket.Attrs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bucket attributes: %v", err)
	}

	if len(bucketAttrs.CORS) == 0 {
		_, err := bucket.Update(ctx, storage.BucketAttrsToUpdate{
			CORS: []storage.CORS{corsConfig},
		})
		if err != nil {
			return fmt.Errorf("failed to update bucket CORS: %v", err)
		}
	}

	return nil
}

// UploadImage writes a publicly readable image object under images/<folder>.
func (c *CloudStorageClient) UploadImage(ctx context.Context, file io.Reader, contentType, folder string) (string, error) {
	objectName := ObjectName(folder, contentType, time.Now())

	obj := c.client.Bucket(c.bucketName).Object(objectName)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(wc, file); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("failed to copy file to GCS: %v", err)
	}

	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %v", err)
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return "", fmt.Errorf("failed to set ACL: %v", err)
	}

	return publicURLPrefix + c.bucketName + "/" + objectName, nil
}

func (c *CloudStorageClient) DeleteFile(ctx context.Context, fileURL string) error {
	objectName, err := objectFromURL(fileURL, c.bucketName)
	if err != nil {
		return err
	}

	if err := c.client.Bucket(c.bucketName).Object(objectName).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete file: %v", err)
	}

	return nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}

// ObjectName builds a unique object path for an upload.
func ObjectName(folder, contentType string, now time.Time) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = "uploads"
	}
	return fmt.Sprintf("images/%s/%s-%s%s", folder, uuid.New().String(), now.Format("20060102150405"), service.ImageExtension(contentType))
}

// objectFromURL expects https://storage.googleapis.com/<bucket>/<object>.
func objectFromURL(fileURL, bucketName string) (string, error) {
	if !strings.HasPrefix(fileURL, publicURLPrefix) {
		return "", fmt.Errorf("invalid GCS URL format")
	}

	parts := strings.SplitN(fileURL[len(publicURLPrefix):], "/", 2)
	if len(parts) != 2 || parts[0] != bucketName || parts[1] == "" {
		return "", fmt.Errorf("invalid GCS URL format or bucket mismatch")
	}

	return parts[1], nil
}
