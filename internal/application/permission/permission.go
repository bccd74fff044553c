package permission

import (
	"slices"
	"strings"
	"sync"
)

// Set is an immutable list of permission tokens. Checks are case-sensitive and never
// normalize the token.
type Set struct {
	tokens []string
}

func NewSet(tokens []string) Set {
	return Set{tokens: slices.Clone(tokens)}
}

func (s Set) Has(token string) bool {
	return slices.Contains(s.tokens, token)
}

func (s Set) HasPrefix(prefix string) bool {
	for _, t := range s.tokens {
		if strings.HasPrefix(t, prefix) {
			return true
		}
	}
	return false
}

func (s Set) Tokens() []string { return slices.Clone(s.tokens) }

func (s Set) Len() int { return len(s.tokens) }

// Requirement describes what a gate needs: a single permission, any of a list of
// alternatives, or any of a list of prefixes. The zero value allows everything.
type Requirement struct {
	Permission string   `yaml:"permission" json:"permission,omitempty"`
	AnyOf      []string `yaml:"any_of" json:"any_of,omitempty"`
	Prefixes   []string `yaml:"prefixes" json:"prefixes,omitempty"`
}

func Require(token string) Requirement { return Requirement{Permission: token} }

func RequireAny(tokens ...string) Requirement { return Requirement{AnyOf: tokens} }

func RequirePrefix(prefixes ...string) Requirement { return Requirement{Prefixes: prefixes} }

func (r Requirement) IsZero() bool {
	return r.Permission == "" && len(r.AnyOf) == 0 && len(r.Prefixes) == 0
}

func (r Requirement) Allows(s Set) bool {
	if r.IsZero() {
		return true
	}
	if r.Permission != "" && s.Has(r.Permission) {
		return true
	}
	for _, t := range r.AnyOf {
		if s.Has(t) {
			return true
		}
	}
	for _, p := range r.Prefixes {
		if s.HasPrefix(p) {
			return true
		}
	}
	return false
}

// Store caches the active session's permissions. It is loaded once when the shell mounts
// and replaced only on login or an explicit refresh.
type Store struct {
	mu  sync.RWMutex
	set Set
}

func NewStore(tokens []string) *Store {
	return &Store{set: NewSet(tokens)}
}

func (s *Store) Load(tokens []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = NewSet(tokens)
}

func (s *Store) Clear() { s.Load(nil) }

func (s *Store) Set() Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}

func (s *Store) HasPermission(token string) bool { return s.Set().Has(token) }

func (s *Store) HasPermissionPrefix(prefix string) bool { return s.Set().HasPrefix(prefix) }

func (s *Store) Allows(r Requirement) bool { return r.Allows(s.Set()) }
