package endpoints

import (
	"context"
	"io"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/casq89/mibauu-backend/pkg/authenticator"
	"github.com/casq89/mibauu-backend/pkg/model"
	"github.com/casq89/mibauu-backend/pkg/server/store"
)

// MockRecordStore implements store.RecordStore for testing using testify/mock
type MockRecordStore struct {
	mock.Mock
}

func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{}
}

func (m *MockRecordStore) List(ctx context.Context, table string, q store.Query) ([]model.Record, error) {
	args := m.Called(ctx, table, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Record), args.Error(1)
}

func (m *MockRecordStore) Insert(ctx context.Context, table string, record model.Record) ([]model.Record, error) {
	args := m.Called(ctx, table, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Record), args.Error(1)
}

func (m *MockRecordStore) Update(ctx context.Context, table string, filters []store.Filter, patch model.Record) ([]model.Record, error) {
	args := m.Called(ctx, table, filters, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Record), args.Error(1)
}

func (m *MockRecordStore) Delete(ctx context.Context, table string, filters []store.Filter) error {
	args := m.Called(ctx, table, filters)
	return args.Error(0)
}

func (m *MockRecordStore) NextSequence(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

// testPublicBase prefixes the URLs MockObjectStore hands out
const testPublicBase = "https://cdn.test/public/"

// MockObjectStore implements store.ObjectStore for testing using testify/mock.
// URL mapping is deterministic and not recorded as calls.
type MockObjectStore struct {
	mock.Mock

	// uploaded holds the bodies passed to Put, by key
	uploaded map[string]string
}

func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{uploaded: map[string]string{}}
}

func (m *MockObjectStore) Put(ctx context.Context, bucket, key string, body io.Reader, opts store.PutOptions) error {
	data, _ := io.ReadAll(body)
	m.uploaded[key] = string(data)
	args := m.Called(ctx, bucket, key, opts)
	return args.Error(0)
}

func (m *MockObjectStore) PublicURL(bucket, key string) string {
	return testPublicBase + bucket + "/" + key
}

func (m *MockObjectStore) KeyFromURL(bucket, url string) string {
	key, ok := strings.CutPrefix(url, testPublicBase+bucket+"/")
	if !ok {
		return ""
	}
	return key
}

func (m *MockObjectStore) Remove(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func NewMockHealthStore() *MockHealthStore {
	return &MockHealthStore{}
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockAuthenticator implements authenticator.Authenticator for testing using testify/mock
type MockAuthenticator struct {
	mock.Mock
}

func NewMockAuthenticator() *MockAuthenticator {
	return &MockAuthenticator{}
}

func (m *MockAuthenticator) Name() string {
	return "mock"
}

func (m *MockAuthenticator) SignIn(ctx context.Context, creds authenticator.Credentials) (*authenticator.Session, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authenticator.Session), args.Error(1)
}

func (m *MockAuthenticator) Status(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
