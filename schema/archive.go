package schema

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

const (
	// defaultMaxEntrySize bounds the decompressed size of one archive
	// entry. A larger entry aborts its whole source.
	defaultMaxEntrySize = 1 << 20

	defaultConnectTimeout = 15 * time.Second
	defaultReadTimeout    = 30 * time.Second
)

var (
	// ErrEmptyArchive marks a source that was fetched and unpacked but
	// contained no schema entries.
	ErrEmptyArchive = errors.New("schema: archive contained no schema entries")

	// ErrEntryTooLarge marks an archive entry exceeding the size bound.
	ErrEntryTooLarge = errors.New("schema: archive entry exceeds size limit")

	errUnknownFormat = errors.New("schema: unrecognized archive format")
)

// archiveLoader fetches compressed schema archives from an ordered list of
// redundant sources and bulk-inserts their JSON entries into a cache.
// Extraction is in-memory only; nothing touches the local filesystem.
type archiveLoader struct {
	sources      []string
	client       *http.Client
	maxEntrySize int64
	logger       *slog.Logger
}

func newArchiveLoader(sources []string, client *http.Client, maxEntrySize int64, logger *slog.Logger) *archiveLoader {
	return &archiveLoader{
		sources:      sources,
		client:       client,
		maxEntrySize: maxEntrySize,
		logger:       logger,
	}
}

// defaultHTTPClient bounds connect time via the dialer and total fetch time
// via the client deadline.
func defaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: defaultReadTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: defaultConnectTimeout,
			}).DialContext,
		},
	}
}

// populate tries each source in order and stops at the first one that yields
// at least one schema. Sources are mirrors of the same content, so results
// are never merged across sources. Only when every source fails does
// populate return an error, aggregating the per-source failures.
func (l *archiveLoader) populate(cache *Cache) error {
	var errs []error

	for _, source := range l.sources {
		loaded, err := l.loadSource(cache, source)
		if err != nil {
			l.logger.Warn("schema archive source failed", "source", source, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", source, err))
			continue
		}

		l.logger.Info("loaded schemas from archive source", "source", source, "schemas", loaded)
		return nil
	}

	return errors.Join(errs...)
}

// loadSource fetches one source and inserts its entries. It returns the
// number of schemas loaded; zero is reported as ErrEmptyArchive so the next
// mirror is tried.
func (l *archiveLoader) loadSource(cache *Cache, source string) (int, error) {
	resp, err := l.client.Get(source)
	if err != nil {
		return 0, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch failed: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("fetch failed: %w", err)
	}

	var loaded int
	switch {
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		loaded, err = l.loadZip(cache, data)
	case bytes.HasPrefix(data, []byte{0x1f, 0x8b}):
		loaded, err = l.loadTarGz(cache, data)
	default:
		return 0, errUnknownFormat
	}
	if err != nil {
		return 0, err
	}

	if loaded == 0 {
		return 0, ErrEmptyArchive
	}
	return loaded, nil
}

func (l *archiveLoader) loadZip(cache *Cache, data []byte) (int, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid zip archive: %w", err)
	}

	var loaded int
	for _, file := range r.File {
		if file.FileInfo().IsDir() {
			continue
		}
		key, ok := entryKey(file.Name)
		if !ok {
			continue
		}

		if file.UncompressedSize64 > uint64(l.maxEntrySize) {
			return 0, fmt.Errorf("%w: %s (%d bytes)", ErrEntryTooLarge, file.Name, file.UncompressedSize64)
		}

		rc, err := file.Open()
		if err != nil {
			return 0, fmt.Errorf("failed to open entry %s: %w", file.Name, err)
		}
		content, err := l.readEntry(rc)
		rc.Close()
		if err != nil {
			return 0, fmt.Errorf("%w: %s", err, file.Name)
		}

		if l.insert(cache, key, file.Name, content) {
			loaded++
		}
	}

	return loaded, nil
}

func (l *archiveLoader) loadTarGz(cache *Cache, data []byte) (int, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("invalid gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	var loaded int
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("invalid tar archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		key, ok := entryKey(hdr.Name)
		if !ok {
			continue
		}

		if hdr.Size > l.maxEntrySize {
			return 0, fmt.Errorf("%w: %s (%d bytes)", ErrEntryTooLarge, hdr.Name, hdr.Size)
		}

		content, err := l.readEntry(tr)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", err, hdr.Name)
		}

		if l.insert(cache, key, hdr.Name, content) {
			loaded++
		}
	}

	return loaded, nil
}

// readEntry reads an entry's bytes, enforcing the size bound even when the
// archive's declared size lies about the decompressed length.
func (l *archiveLoader) readEntry(r io.Reader) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(r, l.maxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read entry: %w", err)
	}
	if int64(len(content)) > l.maxEntrySize {
		return nil, ErrEntryTooLarge
	}
	return content, nil
}

// insert parses one entry and stores it. Malformed JSON skips the entry
// rather than failing the source; archives may carry incidental files.
func (l *archiveLoader) insert(cache *Cache, key, name string, content []byte) bool {
	doc, err := ParseDocument(content)
	if err != nil {
		l.logger.Warn("skipping malformed archive entry", "entry", name, "error", err)
		return false
	}
	cache.Put(key, doc)
	return true
}

// entryKey derives a cache key from an archive entry path. The last three
// directory segments are taken as domain, version, and category, and the
// filename minus the .json suffix as the schema name. Entries that do not
// fit this shape are not schemas and are skipped.
func entryKey(name string) (string, bool) {
	clean := path.Clean(strings.TrimPrefix(name, "/"))
	if !strings.HasSuffix(clean, ".json") {
		return "", false
	}

	segments := strings.Split(clean, "/")
	if len(segments) < 4 {
		return "", false
	}

	n := len(segments)
	schemaName := strings.TrimSuffix(segments[n-1], ".json")
	if schemaName == "" {
		return "", false
	}

	return Key(segments[n-4], segments[n-3], segments[n-2], schemaName), true
}
