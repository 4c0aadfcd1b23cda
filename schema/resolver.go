package schema

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/Project-Hydrius/Pacts/schemas"
)

// ErrMissingConfiguration is returned by NewResolver when the schema root,
// domain, or version is empty. This is the only failure mode of resolver
// construction: unreachable archive sources are a warning, not an error.
var ErrMissingConfiguration = errors.New("schema: schema root, domain, and version must be specified")

var versionPattern = regexp.MustCompile(`^v(\d+)$`)

// Resolver resolves schema documents by (category, name) for a bound domain
// and version. Resolution tries, in order: the cache, the local filesystem
// under the schema root, and the bundled filesystem. The cache may also have
// been pre-populated from remote archive sources at construction.
//
// A single Resolver is intended to be shared across goroutines.
type Resolver struct {
	root    string
	domain  string
	version string
	cache   *Cache
	bundled fs.FS
	logger  *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*resolverConfig)

type resolverConfig struct {
	bundled      fs.FS
	logger       *slog.Logger
	sources      []string
	client       *http.Client
	maxEntrySize int64
}

// WithBundled replaces the default embedded schema bundle with another
// filesystem laid out as {domain}/{version}/{category}/{name}.json.
func WithBundled(fsys fs.FS) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.bundled = fsys
	}
}

// WithLogger sets the logger used for construction-time warnings.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.logger = logger
	}
}

// WithSources sets the ordered remote archive sources used to pre-populate
// the cache during construction. Sources are redundant mirrors: the first
// one that yields at least one schema wins and the rest are not fetched.
func WithSources(sources ...string) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.sources = append(cfg.sources, sources...)
	}
}

// WithHTTPClient replaces the HTTP client used to fetch archive sources.
// The default client bounds connects at 15s and whole fetches at 30s.
func WithHTTPClient(client *http.Client) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.client = client
	}
}

// WithMaxEntrySize bounds the decompressed size of a single archive entry.
// An oversized entry aborts its whole source. Default is 1 MiB.
func WithMaxEntrySize(limit int64) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.maxEntrySize = limit
	}
}

// NewResolver creates a resolver bound to a schema root directory, domain,
// and version. When archive sources are configured it fetches them in order
// and bulk-populates the cache before returning; failure to load any source
// is logged at warning level and does not fail construction, so offline
// environments still get filesystem and bundled resolution.
func NewResolver(root, domain, version string, opts ...ResolverOption) (*Resolver, error) {
	if root == "" || domain == "" || version == "" {
		return nil, ErrMissingConfiguration
	}

	cfg := &resolverConfig{
		bundled:      schemas.Bundle,
		logger:       slog.Default(),
		maxEntrySize: defaultMaxEntrySize,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	r := &Resolver{
		root:    root,
		domain:  domain,
		version: version,
		cache:   NewCache(),
		bundled: cfg.bundled,
		logger:  cfg.logger,
	}

	if len(cfg.sources) > 0 {
		client := cfg.client
		if client == nil {
			client = defaultHTTPClient()
		}
		loader := newArchiveLoader(cfg.sources, client, cfg.maxEntrySize, cfg.logger)
		if err := loader.populate(r.cache); err != nil {
			cfg.logger.Warn("no schema archive source could be loaded",
				"sources", len(cfg.sources),
				"error", err)
		}
	}

	return r, nil
}

// Load resolves a document by category and name within the resolver's bound
// domain and version. The second return value is false when no tier holds a
// parseable document; a missing schema is never an error.
func (r *Resolver) Load(category, name string) (*Document, bool) {
	return r.LoadAt(r.domain, r.version, category, name)
}

// LoadAt resolves a document at explicit coordinates. Archive loading may
// have populated the cache with domains and versions other than the bound
// ones, so explicit lookups can hit entries Load never would.
func (r *Resolver) LoadAt(domain, version, category, name string) (*Document, bool) {
	key := Key(domain, version, category, name)

	if doc, ok := r.cache.Get(key); ok {
		return doc, true
	}

	if doc, ok := r.loadFile(domain, version, category, name); ok {
		r.cache.Put(key, doc)
		return doc, true
	}

	if doc, ok := r.loadBundled(domain, version, category, name); ok {
		r.cache.Put(key, doc)
		return doc, true
	}

	return nil, false
}

// loadFile reads {root}/{domain}/{version}/{category}/{name}.json from the
// local filesystem. Read and parse failures are both treated as a miss so a
// corrupt local file falls through to the bundled tier.
func (r *Resolver) loadFile(domain, version, category, name string) (*Document, bool) {
	filePath := filepath.Join(r.root, domain, version, category, name+".json")

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, false
	}

	doc, err := ParseDocument(data)
	if err != nil {
		r.logger.Warn("ignoring malformed schema file", "path", filePath, "error", err)
		return nil, false
	}
	return doc, true
}

// loadBundled reads the same relative path from the bundled filesystem.
func (r *Resolver) loadBundled(domain, version, category, name string) (*Document, bool) {
	if r.bundled == nil {
		return nil, false
	}

	resourcePath := path.Join(domain, version, category, name+".json")

	data, err := fs.ReadFile(r.bundled, resourcePath)
	if err != nil {
		return nil, false
	}

	doc, err := ParseDocument(data)
	if err != nil {
		r.logger.Warn("ignoring malformed bundled schema", "path", resourcePath, "error", err)
		return nil, false
	}
	return doc, true
}

// ClearCache empties the cache. Loads in flight either finish with the
// document they already resolved or miss and re-resolve.
func (r *Resolver) ClearCache() {
	r.cache.Clear()
}

// CacheSize returns the number of cached documents.
func (r *Resolver) CacheSize() int {
	return r.cache.Len()
}

// Root returns the schema root directory.
func (r *Resolver) Root() string {
	return r.root
}

// Domain returns the bound domain.
func (r *Resolver) Domain() string {
	return r.domain
}

// Version returns the bound version.
func (r *Resolver) Version() string {
	return r.version
}

// ParsedVersion returns the numeric part of the bound version, so "v3"
// yields 3. Versions without a parseable number yield 1.
func (r *Resolver) ParsedVersion() int {
	n, err := strconv.Atoi(strings.TrimPrefix(r.version, "v"))
	if err != nil {
		return 1
	}
	return n
}

// DiscoverVersion finds the version directory under {root}/{domain}, taking
// the first directory entry matching v{digits}. It supports deployments
// that lay out a single versioned schema tree without configuring the
// version explicitly.
func DiscoverVersion(root, domain string) (string, bool) {
	entries, err := os.ReadDir(filepath.Join(root, domain))
	if err != nil {
		return "", false
	}

	for _, entry := range entries {
		if entry.IsDir() && versionPattern.MatchString(entry.Name()) {
			return entry.Name(), true
		}
	}
	return "", false
}
