package ports

import "context"

// Authority decides which callers may mutate the asset registry.
type Authority interface {
	IsPrivileged(ctx context.Context, caller string) bool
}
