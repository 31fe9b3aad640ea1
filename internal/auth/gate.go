package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Store resolves credential tokens. Unknown tokens return ErrCredentialNotFound.
type Store interface {
	Find(ctx context.Context, token string) (*Credential, error)
}

// System authorizes requests. An empty token is anonymous. Lookup failures
// other than an unknown token are returned wrapped rather than as
// ErrForbidden.
type System interface {
	// AuthorizeRead allows public resources without a lookup, and
	// access-controlled ones for any enabled credential.
	AuthorizeRead(ctx context.Context, res Resource, token string) error
	// AuthorizeWrite requires an enabled, write-enabled credential.
	AuthorizeWrite(ctx context.Context, token string) (*Credential, error)
	// AuthorizeOwner requires write access and that token registered res.
	AuthorizeOwner(ctx context.Context, res Resource, token string) (*Credential, error)
}

type gate struct {
	store  Store
	logger *slog.Logger
}

// New creates an authorization gate over store.
func New(store Store, logger *slog.Logger) System {
	return &gate{
		store:  store,
		logger: logger.With("system", "auth"),
	}
}

func (g *gate) AuthorizeRead(ctx context.Context, res Resource, token string) error {
	if res.Public {
		return nil
	}

	cred, err := g.resolve(ctx, token)
	if err != nil {
		return err
	}
	if !cred.CanRead() {
		g.logger.Debug("credential disabled", "contact", cred.Contact)
		return ErrForbidden
	}
	return nil
}

func (g *gate) AuthorizeWrite(ctx context.Context, token string) (*Credential, error) {
	cred, err := g.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if !cred.CanWrite() {
		g.logger.Debug("credential lacks write access", "contact", cred.Contact)
		return nil, ErrForbidden
	}
	return cred, nil
}

func (g *gate) AuthorizeOwner(ctx context.Context, res Resource, token string) (*Credential, error) {
	cred, err := g.AuthorizeWrite(ctx, token)
	if err != nil {
		return nil, err
	}
	if !res.OwnedBy(token) {
		return nil, ErrNotOwner
	}
	return cred, nil
}

func (g *gate) resolve(ctx context.Context, token string) (*Credential, error) {
	if token == "" {
		return nil, ErrForbidden
	}

	cred, err := g.store.Find(ctx, token)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("resolve credential: %w", err)
	}
	return cred, nil
}
