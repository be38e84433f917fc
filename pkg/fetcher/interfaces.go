package fetcher

import (
	"context"
	"io"

	"unsplashfetch/pkg/unsplash"
)

// PhotoSource defines the Unsplash operations the fetcher needs
type PhotoSource interface {
	RandomPhoto(ctx context.Context) (*unsplash.Photo, error)
	Download(ctx context.Context, imageURL string) ([]byte, error)
}

// ImageStore defines the output directory operations the fetcher needs
type ImageStore interface {
	Reset() error
	SaveImage(index int, r io.Reader) (string, int64, error)
}

// Reporter receives per-index results as they happen
type Reporter interface {
	Saved(index int, path string, size int64)
	Failed(index int, err error)
}
