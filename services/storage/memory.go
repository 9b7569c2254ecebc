package storagesvc

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/visado/backend/core"
)

// MemoryService fakes the object store for tests: URLs are deterministic and
// deleted keys are tracked.
type MemoryService struct {
	mu   sync.Mutex
	ttl  time.Duration
	keys map[string]bool
}

var _ core.FileStorage = (*MemoryService)(nil)

func NewMemoryService() *MemoryService {
	return &MemoryService{
		ttl:  15 * time.Minute,
		keys: make(map[string]bool),
	}
}

func (svc *MemoryService) PresignUpload(_ context.Context, key, _ string) (core.PresignedURL, error) {
	svc.mu.Lock()
	svc.keys[key] = true
	svc.mu.Unlock()

	return core.PresignedURL{
		URL:       "https://storage.local/" + key,
		Method:    http.MethodPut,
		ExpiresAt: time.Now().UTC().Add(svc.ttl),
	}, nil
}

func (svc *MemoryService) PresignDownload(_ context.Context, key string) (core.PresignedURL, error) {
	return core.PresignedURL{
		URL:       "https://storage.local/" + key,
		Method:    http.MethodGet,
		ExpiresAt: time.Now().UTC().Add(svc.ttl),
	}, nil
}

func (svc *MemoryService) Delete(_ context.Context, key string) error {
	svc.mu.Lock()
	delete(svc.keys, key)
	svc.mu.Unlock()
	return nil
}

// Has reports whether an upload was presigned for key and not deleted.
func (svc *MemoryService) Has(key string) bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.keys[key]
}
