package repositorytest

import (
	"context"
	"sync"
	"time"

	"deals_api/internal/domain/model"
)

// Denylist is an in-memory security.Denylist.
type Denylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time

	// Err, when set, is returned by IsRevoked.
	Err error
}

func NewDenylist() *Denylist {
	return &Denylist{revoked: map[string]time.Time{}}
}

func (d *Denylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[tokenID] = time.Now().Add(ttl)
	return nil
}

func (d *Denylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if d.Err != nil {
		return false, d.Err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.revoked[tokenID]
	return ok && time.Now().Before(until), nil
}

// Events records published load events.
type Events struct {
	mu     sync.Mutex
	events []model.LoadEvent

	Err error
}

func (e *Events) PublishLoadEvent(_ context.Context, event model.LoadEvent) error {
	if e.Err != nil {
		return e.Err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *Events) Published() []model.LoadEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.LoadEvent(nil), e.events...)
}
