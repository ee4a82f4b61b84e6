package ports

import (
	"context"

	"github.com/yuzvak/eventsales-service/internal/domain/user"
)

// UserDirectory resolves user summaries from the service that owns users.
// Unknown ids are simply absent from the returned map.
type UserDirectory interface {
	LookupUsers(ctx context.Context, ids []string) (map[string]user.Summary, error)
}
