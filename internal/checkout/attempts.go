package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/takes-and-tastes/internal/domain"
	"github.com/fjod/takes-and-tastes/internal/storage"
)

var errCorruptAttempt = errors.New("corrupt pending order record")

// Attempt is a submission whose outcome is unknown. Retrying an identical request
// reuses its key so the server can drop the duplicate.
type Attempt struct {
	Key         string `json:"key"`
	Fingerprint string `json:"fingerprint"`
}

// AttemptStore keeps at most one pending attempt. Pending returns nil when there is none.
type AttemptStore interface {
	Pending(ctx context.Context) (*Attempt, error)
	Remember(ctx context.Context, a Attempt) error
	Forget(ctx context.Context) error
}

// fingerprint identifies a request by content: cart lines, totals and delivery details.
func fingerprint(req domain.OrderRequest) (string, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode order request: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

type memoryAttempts struct {
	mu      sync.Mutex
	pending *Attempt
}

func (m *memoryAttempts) Pending(context.Context) (*Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return nil, nil
	}
	a := *m.pending
	return &a, nil
}

func (m *memoryAttempts) Remember(_ context.Context, a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = &a
	return nil
}

func (m *memoryAttempts) Forget(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
	return nil
}

// KVAttempts stores the pending attempt under storage.KeyPendingOrder, next to the
// cart it was built from, so it outlives the process.
type KVAttempts struct {
	kv storage.KV
}

func NewKVAttempts(kv storage.KV) *KVAttempts {
	return &KVAttempts{kv: kv}
}

func (k *KVAttempts) Pending(ctx context.Context) (*Attempt, error) {
	raw, err := k.kv.Get(ctx, storage.KeyPendingOrder)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var a Attempt
	if err := json.Unmarshal(raw, &a); err != nil || a.Key == "" {
		return nil, errCorruptAttempt
	}
	return &a, nil
}

func (k *KVAttempts) Remember(ctx context.Context, a Attempt) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode pending order: %w", err)
	}
	return k.kv.Set(ctx, storage.KeyPendingOrder, raw)
}

func (k *KVAttempts) Forget(ctx context.Context) error {
	return k.kv.Delete(ctx, storage.KeyPendingOrder)
}
