package policy

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/toolgate/toolgate/internal/clock"
	"github.com/toolgate/toolgate/service/dao"
)

var (
	// ErrNotConfigurable is returned by SetPreference for tools whose static
	// tier is not UserConfigurable. Tools tiered RequiresApproval can never
	// have their enforcement relaxed through this path.
	ErrNotConfigurable = errors.New("policy: tool is not user configurable")

	// ErrInvalidPreference is returned for preference values other than
	// "auto" and "requires_approval".
	ErrInvalidPreference = errors.New("policy: invalid preference value")
)

type cachedPreference struct {
	preference Preference
	present    bool
	loadedAt   time.Time
}

// Resolver resolves the effective approval tier for a user/tool pair against
// the static table and, for UserConfigurable tools only, the preference
// store. The table is read-only and needs no synchronization; preference
// reads go through a short-TTL cache whose misses and errors resolve to the
// configured default, never to auto-approve.
type Resolver struct {
	table       Table
	preferences dao.Service[string, UserPreference]
	logger      *slog.Logger

	cacheTTL time.Duration
	cacheMux sync.RWMutex
	cache    map[string]cachedPreference
}

// ResolverOption customises a Resolver.
type ResolverOption func(*Resolver)

// WithCacheTTL sets the preference read-cache TTL. Zero disables caching.
func WithCacheTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) { r.cacheTTL = ttl }
}

// WithLogger sets the logger used for preference read failures.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = logger }
}

// NewResolver creates a resolver over the supplied static table and
// preference store.
func NewResolver(table Table, preferences dao.Service[string, UserPreference], options ...ResolverOption) *Resolver {
	ret := &Resolver{
		table:       table,
		preferences: preferences,
		logger:      slog.Default(),
		cacheTTL:    5 * time.Second,
		cache:       make(map[string]cachedPreference),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// DefaultPolicy returns the static policy for a tool name; unknown names get
// the fail-safe fallback.
func (r *Resolver) DefaultPolicy(name string) ToolPolicy {
	return r.table.Lookup(name)
}

// EffectiveTier resolves the tier that governs this invocation. A static
// AutoApprove or RequiresApproval tier is returned directly without touching
// user data, so no stored value can override it. For UserConfigurable tools
// a stored valid preference wins, otherwise the configured default applies.
// A preference read failure also falls back to the default.
func (r *Resolver) EffectiveTier(ctx context.Context, userID, name string) Tier {
	p := r.table.Lookup(name)
	if p.Tier != TierUserConfigurable {
		return p.Tier
	}

	preference, present, err := r.loadPreference(ctx, userID, name)
	if err != nil {
		r.logger.Warn("preference read failed, using configured default",
			"user", userID, "tool", name, "error", err)
		return p.ConfigurableDefault
	}
	if !present || !preference.Valid() {
		return p.ConfigurableDefault
	}
	return preference.Tier()
}

// SetPreference stores a user's choice for a UserConfigurable tool. It is
// rejected structurally for tools with any other static tier and for values
// outside the two supported preferences.
func (r *Resolver) SetPreference(ctx context.Context, userID, name string, preference Preference) error {
	p := r.table.Lookup(name)
	if p.Tier != TierUserConfigurable {
		return ErrNotConfigurable
	}
	if !preference.Valid() {
		return ErrInvalidPreference
	}
	record := &UserPreference{
		ID:         PreferenceID(userID, name),
		UserID:     userID,
		Tool:       name,
		Preference: preference,
		UpdatedAt:  clock.Now(),
	}
	if err := r.preferences.Save(ctx, record); err != nil {
		return err
	}
	r.invalidate(record.ID)
	return nil
}

func (r *Resolver) loadPreference(ctx context.Context, userID, name string) (Preference, bool, error) {
	key := PreferenceID(userID, name)
	if r.cacheTTL > 0 {
		r.cacheMux.RLock()
		cached, ok := r.cache[key]
		r.cacheMux.RUnlock()
		if ok && clock.Now().Sub(cached.loadedAt) < r.cacheTTL {
			return cached.preference, cached.present, nil
		}
	}

	record, err := r.preferences.Load(ctx, key)
	if err != nil && !errors.Is(err, dao.ErrNotFound) {
		return "", false, err
	}

	var preference Preference
	present := record != nil
	if present {
		preference = record.Preference
	}
	if r.cacheTTL > 0 {
		r.cacheMux.Lock()
		r.cache[key] = cachedPreference{preference: preference, present: present, loadedAt: clock.Now()}
		r.cacheMux.Unlock()
	}
	return preference, present, nil
}

func (r *Resolver) invalidate(key string) {
	r.cacheMux.Lock()
	delete(r.cache, key)
	r.cacheMux.Unlock()
}
