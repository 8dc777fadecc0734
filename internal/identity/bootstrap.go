package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/julianstephens/tokumei/internal/logger"
)

// Issuer requests a new anonymous identity from the remote service.
type Issuer interface {
	InitUser(ctx context.Context) (string, error)
}

// Bootstrapper resolves the session identity exactly once.
type Bootstrapper struct {
	store  Store
	issuer Issuer

	once   sync.Once
	userID string
	err    error
}

func NewBootstrapper(store Store, issuer Issuer) *Bootstrapper {
	return &Bootstrapper{store: store, issuer: issuer}
}

// Bootstrap adopts the stored identity, or issues and persists a new one when
// none is stored. It performs at most one issuance call per Bootstrapper and
// always returns; later calls return the first result.
//
// An empty userID means the session has no identity. A non-nil error with a
// non-empty userID means the token was issued but could not be persisted.
func (b *Bootstrapper) Bootstrap(ctx context.Context) (string, error) {
	b.once.Do(func() {
		b.userID, b.err = b.run(ctx)
	})
	return b.userID, b.err
}

func (b *Bootstrapper) run(ctx context.Context) (string, error) {
	log := logger.Component("identity")

	userID, ok, err := b.store.Get()
	if err != nil {
		// Issuing here could orphan an identity the store still holds.
		log.Error("failed to read stored identity", "error", err)
		return "", fmt.Errorf("reading identity: %w", err)
	}
	if ok {
		log.Debug("adopted stored identity")
		return userID, nil
	}

	userID, err = b.issuer.InitUser(ctx)
	if err != nil {
		log.Error("failed to initialize user", "error", err)
		return "", fmt.Errorf("initializing user: %w", err)
	}

	if err := b.store.Set(userID); err != nil {
		log.Error("failed to persist identity", "error", err)
		return userID, fmt.Errorf("persisting identity: %w", err)
	}
	log.Info("issued new identity")
	return userID, nil
}
