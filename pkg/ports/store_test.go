package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/dsg/pkg/domain"
	"github.com/aretw0/dsg/pkg/ports"
	"github.com/stretchr/testify/assert"
)

// MockStore is a map-backed FingerprintStore used to exercise the contract itself.
type MockStore struct {
	data map[string]string
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]string)}
}

func (m *MockStore) Lookup(ctx context.Context, key string) (string, error) {
	digest, ok := m.data[key]
	if !ok {
		return "", domain.ErrFingerprintNotFound
	}
	return digest, nil
}

func (m *MockStore) Store(ctx context.Context, key, digest string) error {
	m.data[key] = digest
	return nil
}

func (m *MockStore) Forget(ctx context.Context) error {
	m.data = make(map[string]string)
	return nil
}

func TestFingerprintStoreContract(t *testing.T) {
	ports.RunFingerprintStoreContract(t, NewMockStore())
}

func TestNopHandler(t *testing.T) {
	var h ports.UpdateHandler = ports.NopHandler{}
	ctx := context.Background()
	scene := domain.NewScene(false)

	assert.NoError(t, h.StartConnection(ctx))
	assert.NoError(t, h.BeginUpdate(ctx, scene))
	assert.NoError(t, h.AddGroup(ctx, scene, 1, true))
	assert.NoError(t, h.AddVariable(ctx, scene, 2))
	assert.NoError(t, h.FinalizePart(ctx, scene, domain.NewPart(nil)))
	assert.NoError(t, h.EndUpdate(ctx, scene))
	assert.NoError(t, h.EndConnection(ctx))
}
