// Package gcs implements store.ObjectStore on Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/casq89/mibauu-backend/pkg/server/store"
)

var _ store.ObjectStore = (*ObjectStore)(nil)

// NewClient opens a storage client. An empty credentialsFile uses the
// ambient application default credentials.
func NewClient(ctx context.Context, credentialsFile string) (*storage.Client, error) {
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	return storage.NewClient(ctx, opts...)
}

// ObjectStore stores images as GCS objects served from publicBaseURL
type ObjectStore struct {
	client        *storage.Client
	publicBaseURL string
}

// NewObjectStore creates a new ObjectStore
func NewObjectStore(client *storage.Client, publicBaseURL string) *ObjectStore {
	return &ObjectStore{
		client:        client,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Put writes body to bucket/key. Without Upsert the write only succeeds when
// the object does not exist yet.
func (s *ObjectStore) Put(ctx context.Context, bucket, key string, body io.Reader, opts store.PutOptions) error {
	obj := s.client.Bucket(bucket).Object(key)
	if !opts.Upsert {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}

	w := obj.NewWriter(ctx)
	w.ContentType = opts.ContentType
	w.CacheControl = opts.CacheControl
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return storageError("put", bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return storageError("put", bucket, key, err)
	}
	return nil
}

// PublicURL returns the public download URL of key
func (s *ObjectStore) PublicURL(bucket, key string) string {
	return s.publicBaseURL + "/" + bucket + "/" + key
}

// KeyFromURL returns the key embedded in a public URL of bucket, or ""
func (s *ObjectStore) KeyFromURL(bucket, rawURL string) string {
	key, found := strings.CutPrefix(rawURL, s.publicBaseURL+"/"+bucket+"/")
	if !found {
		return ""
	}
	key, _, _ = strings.Cut(key, "?")
	return key
}

// Remove deletes key. A missing object counts as removed.
func (s *ObjectStore) Remove(ctx context.Context, bucket, key string) error {
	return removeResult(bucket, key, s.client.Bucket(bucket).Object(key).Delete(ctx))
}

func removeResult(bucket, key string, err error) error {
	if err == nil || errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return storageError("remove", bucket, key, err)
}

func storageError(op, bucket, key string, err error) error {
	message := err.Error()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusPreconditionFailed:
			message = "The resource already exists"
		case apiErr.Message != "":
			message = apiErr.Message
		}
	}
	return &store.StorageError{Op: op, Bucket: bucket, Key: key, Message: message, Err: err}
}
