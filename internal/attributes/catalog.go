// Package attributes is the client side of the attribute catalog: an
// external collaborator (spec.md §2.3) that returns known attribute
// descriptors used to type-coerce query predicates. Only the narrow
// interface the core consumes is specified here — the catalog service
// itself (name resolution, admin UI, storage) is out of scope.
//
// The cache is grounded on SIfoxDevTeam-heplify's decoder/correlator.go,
// which keys a bounded, concurrent fastcache.Cache by an extracted
// identifier and serves it as a populate-once, read-many lookup — the same
// shape as "cached process-wide... populated on first use and never
// invalidated within a process lifetime" (spec.md's Global state design
// note).
package attributes

import (
	"context"
	"strings"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
)

// Type is an attribute's coercion target.
type Type string

const (
	TypeString Type = "string"
	TypeInt    Type = "int"
	TypeFloat  Type = "float"
	TypeBool   Type = "bool"
)

// Descriptor describes one known attribute.
type Descriptor struct {
	Name    string
	Type    Type
	Options []string
}

// Source fetches the full set of known descriptors. A real implementation
// would call out to the attribute service; it is an external collaborator
// and out of scope here.
type Source interface {
	Fetch(ctx context.Context) ([]Descriptor, error)
}

// Catalog is a process-wide, populate-once cache of attribute descriptors.
type Catalog struct {
	src   Source
	cache *fastcache.Cache

	mu        sync.Mutex
	populated bool
}

// NewCatalog returns a Catalog backed by a 4MB fastcache, populated lazily
// on first Lookup.
func NewCatalog(src Source) *Catalog {
	return &Catalog{
		src:   src,
		cache: fastcache.New(4 * 1024 * 1024),
	}
}

// Lookup returns the descriptor for name, populating the cache from src on
// first use. ok is false if name is unknown to the catalog (spec.md §4.1:
// "Unknown paths yield an equality filter in string space").
func (c *Catalog) Lookup(ctx context.Context, name string) (Descriptor, bool, error) {
	if err := c.ensure(ctx); err != nil {
		return Descriptor{}, false, err
	}
	raw := c.cache.Get(nil, []byte(name))
	if raw == nil {
		return Descriptor{}, false, nil
	}
	return decode(name, raw), true, nil
}

// Refresh invalidates the cache, forcing the next Lookup to repopulate it.
// Exposed per spec.md's "implementations needing invalidation must expose
// a refresh hook" note; the catalog itself never invalidates on its own.
func (c *Catalog) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.populated = false
	c.cache.Reset()
}

func (c *Catalog) ensure(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.populated {
		return nil
	}
	descs, err := c.src.Fetch(ctx)
	if err != nil {
		return err
	}
	for _, d := range descs {
		c.cache.Set([]byte(d.Name), encode(d))
	}
	c.populated = true
	return nil
}

func encode(d Descriptor) []byte {
	return []byte(string(d.Type) + "\x00" + strings.Join(d.Options, "\x1f"))
}

func decode(name string, raw []byte) Descriptor {
	parts := strings.SplitN(string(raw), "\x00", 2)
	d := Descriptor{Name: name, Type: Type(parts[0])}
	if len(parts) == 2 && parts[1] != "" {
		d.Options = strings.Split(parts[1], "\x1f")
	}
	return d
}

// StaticSource is a Source backed by a fixed, in-process list — used by
// tests and the demo command in place of a real attribute service.
type StaticSource struct {
	Descriptors []Descriptor
}

// Fetch implements Source.
func (s StaticSource) Fetch(ctx context.Context) ([]Descriptor, error) {
	return s.Descriptors, nil
}
