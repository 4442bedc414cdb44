package domain

import "context"

// UserDirectory defines the lookup contract against the backing tabular user
// store. Implementations live in internal/core/repository.
// The Logic layer depends on this interface only — never on a backend directly.
type UserDirectory interface {
	// FindUserByUsername returns the first row whose username matches the
	// given name, compared case-insensitively after trimming surrounding
	// whitespace. Row order is the tie-break for duplicate usernames.
	// Returns (nil, nil) when no row matches.
	FindUserByUsername(ctx context.Context, username string) (*UserRecord, error)
}
