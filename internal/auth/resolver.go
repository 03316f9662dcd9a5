// Package auth resolves authenticated principals. A request's JWT
// yields a user id and email; the resolver decides whether that
// user holds the administrator role by reading the profile row,
// falling back to a configured email allow-list when no profile
// exists yet (the bootstrap path for coordinators who never fill
// in the intake form).
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/velora/study-portal/internal/model"
	"github.com/velora/study-portal/internal/repository"
)

// Principal is the resolved identity every handler operates on.
// ProfileID is zero when the user has not completed intake yet.
type Principal struct {
	UserID    uint64 `json:"user_id"`
	Email     string `json:"email"`
	ProfileID uint64 `json:"profile_id"`
	IsAdmin   bool   `json:"is_admin"`
}

// ProfileStore is the slice of the profile repository the resolver
// needs. Declared here so tests can substitute a fake.
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID uint64) (model.Profile, error)
}

// Resolver turns (userID, email) claims into a Principal. The
// resolver is constructed once at startup and passed explicitly to
// the middleware; there is no package-level client handle.
type Resolver struct {
	profiles    ProfileStore
	adminEmails map[string]bool
	cache       *redis.Client // nil disables caching
	cacheTTL    time.Duration
}

// NewResolver builds a Resolver. cache may be nil, in which case
// every resolution hits the profiles table.
func NewResolver(profiles ProfileStore, adminEmails []string, cache *redis.Client) *Resolver {
	allowed := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		allowed[e] = true
	}
	return &Resolver{
		profiles:    profiles,
		adminEmails: allowed,
		cache:       cache,
		cacheTTL:    5 * time.Minute,
	}
}

func cacheKey(userID uint64) string { return fmt.Sprintf("principal:%d", userID) }

// Resolve produces the Principal for an authenticated user. The
// admin flag comes from the profile row when one exists; otherwise
// from the allow-list. Cache failures are ignored: redis being down
// must never fail a request.
func (r *Resolver) Resolve(ctx context.Context, userID uint64, email string) (Principal, error) {
	if r.cache != nil {
		if raw, err := r.cache.Get(ctx, cacheKey(userID)).Result(); err == nil {
			var p Principal
			if err := json.Unmarshal([]byte(raw), &p); err == nil {
				return p, nil
			}
		}
	}

	p := Principal{UserID: userID, Email: email}
	prof, err := r.profiles.GetByUserID(ctx, userID)
	switch err {
	case nil:
		p.ProfileID = prof.ID
		p.IsAdmin = prof.IsAdmin
	case repository.ErrProfileNotFound:
		// no intake yet: allow-list is the only admin signal
		p.IsAdmin = r.adminEmails[email]
	default:
		return Principal{}, err
	}

	if r.cache != nil {
		if raw, err := json.Marshal(p); err == nil {
			_ = r.cache.Set(ctx, cacheKey(userID), raw, r.cacheTTL).Err()
		}
	}
	return p, nil
}

// Invalidate drops a cached principal. Called after profile
// creation and after coordinator-side status changes so a stale
// admin flag does not outlive the mutation.
func (r *Resolver) Invalidate(ctx context.Context, userID uint64) {
	if r.cache != nil {
		_ = r.cache.Del(ctx, cacheKey(userID)).Err()
	}
}
