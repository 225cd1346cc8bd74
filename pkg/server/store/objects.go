package store

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// PutOptions control how an object is written
type PutOptions struct {
	ContentType  string
	CacheControl string
	// Upsert overwrites an existing object instead of failing
	Upsert bool
}

// ObjectStore abstracts the bucket holding uploaded images.
// Implementations return *StorageError for every failure the backend reports.
type ObjectStore interface {
	// Put writes body under key.
	Put(ctx context.Context, bucket, key string, body io.Reader, opts PutOptions) error

	// PublicURL returns the URL clients use to fetch key.
	PublicURL(bucket, key string) string

	// KeyFromURL inverts PublicURL. It returns "" for URLs this store did
	// not produce.
	KeyFromURL(bucket, url string) string

	// Remove deletes key. Removing a key that does not exist succeeds.
	Remove(ctx context.Context, bucket, key string) error
}

// NewObjectKey returns a fresh random key keeping the extension of filename:
// "photo.final.png" becomes "<uuid>.png" and "photo" becomes "<uuid>".
// Only ASCII letters and digits of the extension are kept, so the key is
// safe in a URL path.
func NewObjectKey(filename string) string {
	key := uuid.NewString()
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	i := strings.LastIndex(base, ".")
	if i < 0 {
		return key
	}
	if ext := strings.Map(keepAlphanumeric, base[i+1:]); ext != "" {
		key += "." + ext
	}
	return key
}

func keepAlphanumeric(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return r
	}
	return -1
}
