package integration

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/casq89/mibauu-backend/pkg/authenticator/authn"
	"github.com/casq89/mibauu-backend/pkg/config"
	"github.com/casq89/mibauu-backend/pkg/server"
	"github.com/casq89/mibauu-backend/pkg/server/endpoints"
	"github.com/casq89/mibauu-backend/pkg/server/store"
	gormstore "github.com/casq89/mibauu-backend/pkg/server/store/gorm"
)

// portCounter is used to allocate unique ports for each test server
var portCounter int32 = 19000

// ServerInstance represents a running server for a single scenario
type ServerInstance struct {
	Server    *server.Server
	ServerURL string
	Objects   *MemoryObjects
}

// StartServer starts an in-process server over the test database. Images go
// to an in-memory object store the steps can inspect.
func StartServer(tc *TestContext) (*ServerInstance, error) {
	port := fmt.Sprint(atomic.AddInt32(&portCounter, 1))

	cfg := &config.Config{
		StoreDriver:   config.StoreDriverPostgres,
		StorageDriver: config.StorageDriverSupabase,
		AuthDriver:    config.AuthDriverLocal,
		Bucket:        config.DefaultBucket,
		BindAddress:   "127.0.0.1",
		Port:          port,
	}
	objects := NewMemoryObjects("http://objects.test")

	s := server.NewServer(cfg, server.Stores{
		Records: gormstore.NewRecordStore(tc.DB),
		Objects: objects,
		Health:  gormstore.NewHealthStore(tc.DB),
	}, authn.New(tc.DB, []byte(jwtSecret), time.Hour), zerolog.Nop(), cfg.BindAddress, port)
	endpoints.RegisterAll(s)

	go func() {
		_ = s.Start()
	}()

	serverURL := "http://127.0.0.1:" + port
	if err := waitForServer(serverURL, 10*time.Second); err != nil {
		_ = s.Shutdown(context.Background())
		return nil, err
	}

	return &ServerInstance{Server: s, ServerURL: serverURL, Objects: objects}, nil
}

// Stop shuts the server down
func (si *ServerInstance) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = si.Server.Shutdown(ctx)
}

// MemoryObjects is a store.ObjectStore keeping objects in memory
type MemoryObjects struct {
	base string

	mu      sync.Mutex
	objects map[string][]byte
}

var _ store.ObjectStore = (*MemoryObjects)(nil)

func NewMemoryObjects(base string) *MemoryObjects {
	return &MemoryObjects{base: base, objects: map[string][]byte{}}
}

func (m *MemoryObjects) Put(ctx context.Context, bucket, key string, body io.Reader, opts store.PutOptions) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return &store.StorageError{Op: "put", Bucket: bucket, Key: key, Message: err.Error(), Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	id := bucket + "/" + key
	if _, exists := m.objects[id]; exists && !opts.Upsert {
		return &store.StorageError{Op: "put", Bucket: bucket, Key: key, Message: "The resource already exists"}
	}
	m.objects[id] = buf.Bytes()
	return nil
}

func (m *MemoryObjects) PublicURL(bucket, key string) string {
	return m.base + "/storage/v1/object/public/" + bucket + "/" + key
}

func (m *MemoryObjects) KeyFromURL(bucket, url string) string {
	key, ok := strings.CutPrefix(url, m.base+"/storage/v1/object/public/"+bucket+"/")
	if !ok {
		return ""
	}
	return key
}

func (m *MemoryObjects) Remove(ctx context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, bucket+"/"+key)
	return nil
}

// Has reports whether the object behind url is stored
func (m *MemoryObjects) Has(bucket, url string) bool {
	key := m.KeyFromURL(bucket, url)
	if key == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[bucket+"/"+key]
	return ok
}

// Len returns the number of stored objects
func (m *MemoryObjects) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
