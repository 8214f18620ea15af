package kernel

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// Identity is an opaque principal or record identifier as it arrives from the outside:
// a customer, an agent, a vendor owner or a vendor record. Two identities refer to the
// same principal when their canonical forms are equal and non-empty.
type Identity string

// NewIdentity trims surrounding whitespace. Malformed input is kept as given and simply
// canonicalizes to the empty identity.
func NewIdentity(raw string) Identity {
	return Identity(strings.TrimSpace(raw))
}

func (i Identity) String() string {
	return string(i)
}

// Canonical returns the normalized form used for comparisons and storage keys.
//
// Surrounding whitespace is trimmed, an ObjectId("...") or ObjectId('...') wrapper is
// removed, and 24-hex object ids and UUIDs are lowercased (UUIDs are also re-hyphenated).
// Empty values, values with inner whitespace or control characters, and unbalanced
// wrappers canonicalize to "".
func (i Identity) Canonical() string {
	s := strings.TrimSpace(string(i))
	if strings.HasPrefix(s, "ObjectId(") {
		inner, ok := strings.CutSuffix(strings.TrimPrefix(s, "ObjectId("), ")")
		if !ok || len(inner) < 2 {
			return ""
		}
		quote := inner[0]
		if (quote != '"' && quote != '\'') || inner[len(inner)-1] != quote {
			return ""
		}
		s = strings.TrimSpace(inner[1 : len(inner)-1])
	}
	if s == "" || strings.ContainsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r) || r == '"' || r == '\''
	}) {
		return ""
	}
	if objectIDPattern.MatchString(s) {
		return strings.ToLower(s)
	}
	if len(s) >= 32 {
		if id, err := uuid.Parse(s); err == nil {
			return id.String()
		}
	}
	return s
}

// IsEmpty reports whether the identity cannot match anything.
func (i Identity) IsEmpty() bool {
	return i.Canonical() == ""
}

// Matches reports whether both identities name the same principal.
func (i Identity) Matches(other Identity) bool {
	c := i.Canonical()
	return c != "" && c == other.Canonical()
}

// IdentitySet is a set of identities keyed by canonical form.
// The zero value is not usable; use NewIdentitySet.
type IdentitySet struct {
	members map[string]Identity
}

func NewIdentitySet(ids ...Identity) IdentitySet {
	set := IdentitySet{members: make(map[string]Identity, len(ids))}
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

// Add inserts id unless it is empty. The first representation seen is kept.
func (s IdentitySet) Add(id Identity) {
	key := id.Canonical()
	if key == "" || s.members == nil {
		return
	}
	if _, ok := s.members[key]; !ok {
		s.members[key] = id
	}
}

func (s IdentitySet) Contains(id Identity) bool {
	key := id.Canonical()
	if key == "" {
		return false
	}
	_, ok := s.members[key]
	return ok
}

// Intersects reports whether any identity in ids is a member.
func (s IdentitySet) Intersects(ids ...Identity) bool {
	return slices.ContainsFunc(ids, s.Contains)
}

func (s IdentitySet) Len() int {
	return len(s.members)
}

// Keys returns the canonical keys in sorted order.
func (s IdentitySet) Keys() []string {
	keys := make([]string, 0, len(s.members))
	for k := range s.members {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Members returns the stored identities ordered by canonical key.
func (s IdentitySet) Members() []Identity {
	keys := s.Keys()
	out := make([]Identity, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.members[k])
	}
	return out
}
