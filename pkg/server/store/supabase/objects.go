package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/casq89/mibauu-backend/pkg/server/store"
)

var _ store.ObjectStore = (*ObjectStore)(nil)

// ObjectStore implements store.ObjectStore against the platform's storage API
type ObjectStore struct {
	client *Client
}

// NewObjectStore creates a new ObjectStore
func NewObjectStore(client *Client) *ObjectStore {
	return &ObjectStore{client: client}
}

// Put uploads body under key
func (s *ObjectStore) Put(ctx context.Context, bucket, key string, body io.Reader, opts store.PutOptions) error {
	headers := map[string]string{
		"x-upsert": strconv.FormatBool(opts.Upsert),
	}
	if opts.ContentType != "" {
		headers["Content-Type"] = opts.ContentType
	}
	if opts.CacheControl != "" {
		headers["cache-control"] = opts.CacheControl
	}

	resp, err := s.client.do(ctx, request{
		method:  http.MethodPost,
		path:    objectPath(bucket, key),
		body:    body,
		headers: headers,
	})
	if err != nil {
		return &store.StorageError{Op: "put", Bucket: bucket, Key: key, Message: err.Error(), Err: err}
	}
	if !resp.ok() {
		return &store.StorageError{Op: "put", Bucket: bucket, Key: key, Message: ErrorMessage(resp.body, resp.status)}
	}
	return nil
}

// PublicURL returns the public download URL of key
func (s *ObjectStore) PublicURL(bucket, key string) string {
	return s.client.BaseURL() + publicMarker(bucket) + key
}

// KeyFromURL returns the key embedded in a public URL of bucket, or ""
func (s *ObjectStore) KeyFromURL(bucket, rawURL string) string {
	_, key, found := strings.Cut(rawURL, publicMarker(bucket))
	if !found {
		return ""
	}
	key, _, _ = strings.Cut(key, "?")
	return key
}

// Remove deletes key. The API answers 200 with an empty list for unknown keys.
func (s *ObjectStore) Remove(ctx context.Context, bucket, key string) error {
	resp, err := s.client.do(ctx, request{
		method: http.MethodDelete,
		path:   "/storage/v1/object/" + url.PathEscape(bucket),
		json:   map[string][]string{"prefixes": {key}},
	})
	if err != nil {
		return &store.StorageError{Op: "remove", Bucket: bucket, Key: key, Message: err.Error(), Err: err}
	}
	if !resp.ok() {
		return &store.StorageError{Op: "remove", Bucket: bucket, Key: key, Message: ErrorMessage(resp.body, resp.status)}
	}
	return nil
}

func publicMarker(bucket string) string {
	return fmt.Sprintf("/storage/v1/object/public/%s/", bucket)
}

func objectPath(bucket, key string) string {
	return "/storage/v1/object/" + url.PathEscape(bucket) + "/" + url.PathEscape(key)
}
