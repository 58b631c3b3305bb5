package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hyperifyio/fleetcat/internal/doc"
)

// rawSuffix names raw-stage cache files: <key>.raw.json.
const rawSuffix = ".raw.json"

// RawEntry is the on-disk envelope for one assembled document.
type RawEntry struct {
	Key     string         `json:"key"`
	Source  string         `json:"source"`
	Title   string         `json:"title,omitempty"`
	SavedAt time.Time      `json:"saved_at"`
	Entries []doc.RawEntry `json:"entries"`
}

// RawCache stores assembler output keyed by a digest of the input document
// and the settings that shaped assembly, so normalization can be re-run
// without walking the document again. No eviction policy is included; see
// PurgeRawCacheByAge.
type RawCache struct {
	Dir string
	// StrictPerms, when true, enforces 0700 on the cache directory and 0600
	// on files.
	StrictPerms bool
}

// KeyFrom digests the input bytes together with a settings fingerprint.
func KeyFrom(input []byte, settings string) string {
	h := sha256.New()
	h.Write([]byte(settings))
	h.Write([]byte{0})
	h.Write(input)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *RawCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	perm := os.FileMode(0o755)
	if c.StrictPerms {
		perm = 0o700
	}
	if err := os.MkdirAll(c.Dir, perm); err != nil {
		return err
	}
	if c.StrictPerms {
		if info, err := os.Stat(c.Dir); err == nil && info.Mode()&0o777 != 0o700 {
			_ = os.Chmod(c.Dir, 0o700)
		}
	}
	return nil
}

func (c *RawCache) pathFor(key string) string { return filepath.Join(c.Dir, key+rawSuffix) }

// Load returns the cached entries for key. A missing entry is not an error.
func (c *RawCache) Load(_ context.Context, key string) (*RawEntry, bool, error) {
	if err := c.ensureDir(); err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(c.pathFor(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var e RawEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, false, fmt.Errorf("decode raw cache %s: %w", key, err)
	}
	if e.Key != key {
		return nil, false, nil
	}
	return &e, true, nil
}

// Save stores entries under key together with the source path and document
// title. The file is written to a temporary name and renamed so readers never
// see a partial entry.
func (c *RawCache) Save(_ context.Context, key, source, title string, entries []doc.RawEntry) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	data, err := json.Marshal(RawEntry{
		Key:     key,
		Source:  source,
		Title:   title,
		SavedAt: time.Now().UTC(),
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("encode raw cache: %w", err)
	}
	mode := os.FileMode(0o644)
	if c.StrictPerms {
		mode = 0o600
	}
	p := c.pathFor(key)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, mode); err != nil {
		return fmt.Errorf("write raw cache: %w", err)
	}
	return os.Rename(tmp, p)
}
