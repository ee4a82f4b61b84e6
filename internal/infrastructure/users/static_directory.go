package users

import (
	"context"

	"github.com/yuzvak/eventsales-service/internal/domain/user"
)

// StaticDirectory serves a fixed set of users. With no users it resolves
// nothing, which is what the service uses when no users service is configured.
type StaticDirectory struct {
	users map[string]user.Summary
}

func NewStaticDirectory(known ...user.Summary) *StaticDirectory {
	users := make(map[string]user.Summary, len(known))
	for _, u := range known {
		u.Found = true
		users[u.ID] = u
	}
	return &StaticDirectory{users: users}
}

func (d *StaticDirectory) LookupUsers(ctx context.Context, ids []string) (map[string]user.Summary, error) {
	found := make(map[string]user.Summary, len(ids))
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			found[id] = u
		}
	}
	return found, nil
}
