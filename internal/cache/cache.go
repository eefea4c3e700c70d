package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/ppiankov/tagc/internal/expr"
)

// Cache defines the interface for caching compiled expressions within one run
type Cache interface {
	Get(key string) (*expr.Program, bool)
	Set(key string, prog *expr.Program)
	Len() int
}

// Key generates a cache key from expression text
func Key(src string) string {
	hash := sha256.Sum256([]byte(src))
	return "tagc:v1:" + hex.EncodeToString(hash[:])
}

// Programs parses expressions, reusing earlier parses of the same text.
// It is not safe for concurrent use; each pipeline run owns one.
type Programs struct {
	cache  Cache
	hits   int
	misses int
}

// NewPrograms creates a parser front end; a nil cache disables reuse
func NewPrograms(c Cache) *Programs {
	return &Programs{cache: c}
}

// Parse returns the compiled program for src. Parse failures are not cached.
func (p *Programs) Parse(src string) (*expr.Program, error) {
	if p.cache == nil {
		p.misses++
		return expr.Parse(src)
	}

	key := Key(src)
	if prog, ok := p.cache.Get(key); ok {
		p.hits++
		return prog, nil
	}

	p.misses++
	prog, err := expr.Parse(src)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, prog)
	return prog, nil
}

// Hits returns the number of parses served from the cache
func (p *Programs) Hits() int {
	return p.hits
}

// Misses returns the number of parses that ran the parser
func (p *Programs) Misses() int {
	return p.misses
}
