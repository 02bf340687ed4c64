package service

import (
	"context"
	"io"
)

// MaxImageBytes is the largest listing image accepted for upload.
const MaxImageBytes = 5 * 1024 * 1024

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// FileStorage stores listing images and returns the public URL that items and
// cards embed.
type FileStorage interface {
	UploadImage(ctx context.Context, file io.Reader, contentType, folder string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
	Close() error
}

func IsAllowedImageType(contentType string) bool {
	_, ok := imageExtensions[contentType]
	return ok
}

// ImageExtension returns the file extension for an allowed content type.
func ImageExtension(contentType string) string {
	if ext, ok := imageExtensions[contentType]; ok {
		return ext
	}
	return ".bin"
}
