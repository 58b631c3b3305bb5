package app

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hyperifyio/fleetcat/internal/assemble"
	"github.com/hyperifyio/fleetcat/internal/normalize"
)

// manifestFile is the digest of one output file.
type manifestFile struct {
	Name   string `json:"name"`
	SHA256 string `json:"sha256"`
	Bytes  int64  `json:"bytes"`
}

// manifest captures run details that aid reproducibility.
type manifest struct {
	RunID       string            `json:"run_id"`
	Version     string            `json:"version"`
	Commit      string            `json:"commit"`
	Source      string            `json:"source"`
	Title       string            `json:"title"`
	InputSHA256 string            `json:"input_sha256"`
	Stage       string            `json:"stage"`
	ImagePolicy string            `json:"image_policy"`
	Styles      map[string]string `json:"styles"`
	CacheHit    bool              `json:"cache_hit"`
	Entries     int               `json:"entries"`
	Assembly    *assemble.Stats   `json:"assembly,omitempty"`
	Normalize   *normalize.Stats  `json:"normalize,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
	Files       []manifestFile    `json:"files"`
}

// computeSHA256Hex returns a lowercase hex-encoded SHA-256 of b.
func computeSHA256Hex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func buildManifestFiles(dir string, names []string) ([]manifestFile, error) {
	out := make([]manifestFile, 0, len(names))
	for _, n := range names {
		p := filepath.Join(dir, n)
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		sum, err := sha256File(p)
		if err != nil {
			return nil, err
		}
		out = append(out, manifestFile{Name: n, SHA256: sum, Bytes: info.Size()})
	}
	return out, nil
}

func (a *App) writeManifest(in loaded, st *normalize.Stats, files []string) error {
	mf, err := buildManifestFiles(a.cfg.OutputDir, files)
	if err != nil {
		return fmt.Errorf("digest outputs: %w", err)
	}
	styles := make(map[string]string, len(a.styles))
	for k, r := range a.styles {
		styles[k] = r.String()
	}
	m := manifest{
		RunID:       a.runID.String(),
		Version:     BuildVersion,
		Commit:      BuildCommit,
		Source:      in.source,
		Title:       catalogTitle(in),
		InputSHA256: in.inputSHA256,
		Stage:       a.cfg.Stage,
		ImagePolicy: string(a.policy),
		Styles:      styles,
		CacheHit:    in.cacheHit,
		Entries:     len(in.entries),
		Assembly:    in.assembly,
		Normalize:   st,
		GeneratedAt: time.Now().UTC(),
		Files:       mf,
	}
	if err := writeJSON(filepath.Join(a.cfg.OutputDir, manifestFileName), m); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
