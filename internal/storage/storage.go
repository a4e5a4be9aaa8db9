// Package storage reads prompt template documents from the local filesystem
// or from Google Cloud Storage.
package storage

import (
	"context"
	"fmt"
	"strings"
)

const gcsScheme = "gs://"

// TemplateSource yields the raw bytes of a prompts document.
type TemplateSource interface {
	ReadTemplates(ctx context.Context) ([]byte, error)
	Close() error
}

// Location is a parsed template URI. Bucket is empty for local paths.
type Location struct {
	Bucket string
	Path   string
}

func (l Location) IsGCS() bool {
	return l.Bucket != ""
}

func (l Location) String() string {
	if l.IsGCS() {
		return gcsScheme + l.Bucket + "/" + l.Path
	}
	return l.Path
}

// ParseLocation accepts either a filesystem path or gs://bucket/object.
func ParseLocation(uri string) (Location, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return Location{}, fmt.Errorf("empty template location")
	}

	if !strings.HasPrefix(uri, gcsScheme) {
		return Location{Path: uri}, nil
	}

	bucket, object, ok := strings.Cut(strings.TrimPrefix(uri, gcsScheme), "/")
	if !ok || bucket == "" || object == "" || strings.HasSuffix(object, "/") {
		return Location{}, fmt.Errorf("invalid gcs location %q, want gs://bucket/object", uri)
	}
	return Location{Bucket: bucket, Path: object}, nil
}

// Open returns the source for uri. GCS sources hold a client that must be
// released with Close.
func Open(ctx context.Context, uri string) (TemplateSource, error) {
	loc, err := ParseLocation(uri)
	if err != nil {
		return nil, err
	}
	if loc.IsGCS() {
		return NewGCSStorage(ctx, loc.Bucket, loc.Path)
	}
	return NewLocalStorage(loc.Path), nil
}
