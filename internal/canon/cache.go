package canon

import (
	"crypto/sha256"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache memoizes Canonicalize by a content key (the graph's name plus an
// unsorted digest of its triples), per spec.md §4.6's "a cache with LRU
// eviction memoizes content → hash". Plain LRU eviction is exactly what
// golang-lru/v2 implements, unlike internal/cache's multi-strategy engine
// (C2), so this component is the one place in the repo that genuinely wants
// it — see DESIGN.md's C2 entry for why C2 itself does not use this
// library.
type Cache struct {
	inner *lru.Cache[string, Result]
}

// NewCache constructs a Cache holding at most size canonicalization
// results.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = 1024
	}
	inner, err := lru.New[string, Result](size)
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner}, nil
}

// contentKey is a cheap digest of g's raw (pre-canonicalization) triples,
// taken in slice order, used only to recognize "have I already
// canonicalized this exact graph", not as the canonical hash itself. The
// same triples in a different order produce a different key (a cache
// miss, not a wrong hash).
func contentKey(g NamedGraph) string {
	h := sha256.New()
	h.Write([]byte(g.Name.String()))
	for _, t := range g.Triples {
		fmt.Fprintf(h, "%d|%s|%s|%d|%s|%s|%s|",
			t.Subject.Kind, t.Subject.Blank, t.Subject.IRI.String(),
			t.Object.Kind, t.Predicate.String(), t.Object.Blank, t.Object.IRI.String())
		if t.Subject.Kind == TermLiteral {
			h.Write([]byte(t.Subject.Literal.String()))
		}
		if t.Object.Kind == TermLiteral {
			h.Write([]byte(t.Object.Literal.String()))
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Canonicalize returns g's cached Result if present, otherwise computes it
// with Canonicalize and stores it before returning.
func (c *Cache) Canonicalize(g NamedGraph) Result {
	key := contentKey(g)
	if r, ok := c.inner.Get(key); ok {
		return r
	}
	r := Canonicalize(g)
	c.inner.Add(key, r)
	return r
}

// Len reports the number of memoized results currently cached.
func (c *Cache) Len() int { return c.inner.Len() }
