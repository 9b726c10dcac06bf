package ports

import "context"

// FingerprintStore remembers the last digest seen for each part key, so a
// consumer can skip parts whose content did not change between refreshes.
type FingerprintStore interface {
	// Lookup returns the stored digest for key.
	// Returns domain.ErrFingerprintNotFound if nothing is stored.
	Lookup(ctx context.Context, key string) (string, error)

	// Store records digest as the current fingerprint for key.
	Store(ctx context.Context, key, digest string) error

	// Forget removes every stored fingerprint.
	Forget(ctx context.Context) error
}
