package viewer

import (
	"context"
	"fmt"
	"strings"

	"rivals-tracker/internal/constants"
	"rivals-tracker/internal/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// SessionID scopes the player cache to one viewer session, like a browser tab.
type SessionID string

func NewSessionID() (SessionID, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	return SessionID(id), nil
}

// ResolveSession picks the session for this run: the requested id, else the last one
// recorded in durable, else a new one. fresh always starts a new session.
// The chosen id is recorded so the next run continues it.
func ResolveSession(ctx context.Context, durable store.Store, requested SessionID, fresh bool) (SessionID, error) {
	id := SessionID(strings.TrimSpace(string(requested)))

	if id == "" && !fresh {
		last, ok, err := durable.Get(ctx, constants.LastSessionKey)
		if err != nil {
			return "", fmt.Errorf("failed to read last session: %w", err)
		}
		if ok {
			id = SessionID(strings.TrimSpace(last))
		}
	}

	if id == "" {
		var err error
		if id, err = NewSessionID(); err != nil {
			return "", fmt.Errorf("failed to create session id: %w", err)
		}
	}

	if err := durable.Set(ctx, constants.LastSessionKey, string(id)); err != nil {
		return "", fmt.Errorf("failed to record session: %w", err)
	}
	return id, nil
}
