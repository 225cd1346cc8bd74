package supabase

import (
	"context"
	"fmt"
	"net/http"

	"github.com/casq89/mibauu-backend/pkg/server/store"
)

var _ store.HealthStore = (*HealthStore)(nil)

// HealthStore checks that the platform's REST API answers
type HealthStore struct {
	client *Client
}

// NewHealthStore creates a new HealthStore
func NewHealthStore(client *Client) *HealthStore {
	return &HealthStore{client: client}
}

// CheckConnectivity fetches the REST root, which only needs the access key
func (s *HealthStore) CheckConnectivity(ctx context.Context) error {
	resp, err := s.client.do(ctx, request{method: http.MethodGet, path: "/rest/v1/"})
	if err != nil {
		return err
	}
	if !resp.ok() {
		return fmt.Errorf("rest api: %s", ErrorMessage(resp.body, resp.status))
	}
	return nil
}
