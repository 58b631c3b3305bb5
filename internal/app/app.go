package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/fleetcat/internal/assemble"
	"github.com/hyperifyio/fleetcat/internal/cache"
	"github.com/hyperifyio/fleetcat/internal/classify"
	"github.com/hyperifyio/fleetcat/internal/doc"
	"github.com/hyperifyio/fleetcat/internal/extract"
	"github.com/hyperifyio/fleetcat/internal/normalize"
	"github.com/hyperifyio/fleetcat/internal/store"
)

// Output file names inside Config.OutputDir.
const (
	finalFileName    = "final_output.json"
	rawFileName      = "raw_extracted.json"
	xlsxFileName     = "fleet.xlsx"
	pdfFileName      = "fleet.pdf"
	manifestFileName = "manifest.json"
)

// ErrNoRecords is returned when a run ends without a single record (or, for
// the raw stage, without a single class entry). Per the exit code policy the
// CLI maps it to exit code 2.
var ErrNoRecords = errors.New("no records produced")

type App struct {
	cfg    Config
	styles classify.StyleMap
	policy normalize.ImagePolicy
	raw    *cache.RawCache
	runID  uuid.UUID
}

func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	styles, err := styleMap(cfg.Styles)
	if err != nil {
		return nil, err
	}
	policy, err := normalize.ParseImagePolicy(cfg.ImagePolicy)
	if err != nil {
		return nil, err
	}
	if cfg.Stage == "" {
		cfg.Stage = StageFinal
	}
	a := &App{cfg: cfg, styles: styles, policy: policy, runID: uuid.New()}

	if cfg.CacheDir != "" {
		// Apply cache invalidation controls
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			// ignore errors to avoid failing startup
			if n, err := cache.PurgeRawCacheByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
				log.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				log.Info().Int("removed", n).Msg("purged stale cache entries")
			}
		}
		a.raw = &cache.RawCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}
	return a, nil
}

// RunID identifies this run in the manifest and the record store.
func (a *App) RunID() uuid.UUID { return a.runID }

func (a *App) Close() {
	// nothing yet
}

// loaded is what the first half of the pipeline hands to normalization.
type loaded struct {
	source      string
	title       string
	inputSHA256 string
	entries     []doc.RawEntry
	assembly    *assemble.Stats
	cacheHit    bool
	fromRaw     bool
}

func (a *App) Run(ctx context.Context) error {
	started := time.Now()
	in, err := a.load(ctx)
	if err != nil {
		return err
	}
	log.Info().Str("source", in.source).Int("entries", len(in.entries)).Bool("cache_hit", in.cacheHit).Msg("assembled class entries")

	if a.cfg.Stage == StageRaw {
		return a.finishRaw(in)
	}

	records, st, err := normalize.Normalizer{
		Policy:  a.policy,
		Workers: a.cfg.Workers,
		Logger:  log.Logger,
	}.Run(ctx, in.entries)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	log.Info().Int("records", st.Emitted).Int("rejected", st.Rejected).Dur("elapsed", time.Since(started)).Msg("normalized records")

	if a.cfg.DryRun {
		log.Info().Msg("dry run; no outputs written")
		if len(records) == 0 {
			return ErrNoRecords
		}
		return nil
	}

	if err := a.writeOutputs(ctx, in, records, &st); err != nil {
		return err
	}
	if len(records) == 0 {
		return ErrNoRecords
	}
	return nil
}

// load produces raw entries either from a raw dump or from the source
// document, consulting the raw-stage cache for the latter.
func (a *App) load(ctx context.Context) (loaded, error) {
	if strings.TrimSpace(a.cfg.RawPath) != "" {
		b, err := os.ReadFile(a.cfg.RawPath)
		if err != nil {
			return loaded{}, fmt.Errorf("read raw dump: %w", err)
		}
		var entries []doc.RawEntry
		if err := json.Unmarshal(b, &entries); err != nil {
			return loaded{}, fmt.Errorf("decode raw dump: %w", err)
		}
		return loaded{
			source:      a.cfg.RawPath,
			inputSHA256: computeSHA256Hex(b),
			entries:     entries,
			fromRaw:     true,
		}, nil
	}

	input, err := os.ReadFile(a.cfg.InputPath)
	if err != nil {
		return loaded{}, fmt.Errorf("read input: %w", err)
	}
	out := loaded{source: a.cfg.InputPath, inputSHA256: computeSHA256Hex(input)}

	key := cache.KeyFrom(input, styleFingerprint(a.styles)+"|"+strings.ToLower(filepath.Ext(a.cfg.InputPath)))
	if a.raw != nil {
		hit, ok, err := a.raw.Load(ctx, key)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("raw cache read failed; re-assembling")
		case ok:
			log.Debug().Str("key", key).Time("saved_at", hit.SavedAt).Msg("raw cache hit")
			out.entries = hit.Entries
			out.title = hit.Title
			out.cacheHit = true
			return out, nil
		}
	}

	x, err := extract.ForPath(a.cfg.InputPath, headingStyles(a.styles))
	if err != nil {
		return loaded{}, err
	}
	d, err := x.Extract(input)
	if err != nil {
		return loaded{}, fmt.Errorf("extract %s: %w", a.cfg.InputPath, err)
	}
	out.title = d.Title
	entries, st := assemble.Assembler{
		Classifier: classify.Classifier{Styles: a.styles},
		Logger:     log.Logger,
	}.Assemble(d.Elements)
	log.Debug().
		Int("elements", st.Elements).
		Int("ignored", st.Ignored).
		Int("discarded", st.Discarded).
		Int("merged", st.Merged).
		Msg("assembly stats")
	out.entries = entries
	out.assembly = &st

	if a.raw != nil {
		if err := a.raw.Save(ctx, key, a.cfg.InputPath, d.Title, entries); err != nil {
			log.Warn().Err(err).Msg("raw cache write failed")
		}
	}
	return out, nil
}

func (a *App) finishRaw(in loaded) error {
	if !a.cfg.DryRun {
		if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
			return fmt.Errorf("mkdir output: %w", err)
		}
		if err := writeJSON(filepath.Join(a.cfg.OutputDir, rawFileName), nonNilEntries(in.entries)); err != nil {
			return fmt.Errorf("write raw dump: %w", err)
		}
		if err := a.writeManifest(in, nil, []string{rawFileName}); err != nil {
			return err
		}
		if err := writeSHA256SUMS(a.cfg.OutputDir); err != nil {
			return fmt.Errorf("write checksums: %w", err)
		}
		log.Info().Str("out", filepath.Join(a.cfg.OutputDir, rawFileName)).Msg("wrote raw dump")
	}
	if len(in.entries) == 0 {
		return ErrNoRecords
	}
	return nil
}

func (a *App) writeOutputs(ctx context.Context, in loaded, records []doc.Record, st *normalize.Stats) error {
	dir := a.cfg.OutputDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir output: %w", err)
	}
	if records == nil {
		records = []doc.Record{}
	}
	files := []string{finalFileName}
	if err := writeJSON(filepath.Join(dir, finalFileName), records); err != nil {
		return fmt.Errorf("write final output: %w", err)
	}
	if a.cfg.WriteRaw && !in.fromRaw {
		if err := writeJSON(filepath.Join(dir, rawFileName), nonNilEntries(in.entries)); err != nil {
			return fmt.Errorf("write raw dump: %w", err)
		}
		files = append(files, rawFileName)
	}
	if a.cfg.WriteXLSX {
		if err := writeXLSX(filepath.Join(dir, xlsxFileName), records); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		files = append(files, xlsxFileName)
	}
	if a.cfg.WritePDF {
		if err := writeCatalogPDF(filepath.Join(dir, pdfFileName), catalogTitle(in), records); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		files = append(files, pdfFileName)
	}
	if a.cfg.DBPath != "" {
		if err := a.saveRun(ctx, in, records); err != nil {
			return err
		}
	}
	if err := a.writeManifest(in, st, files); err != nil {
		return err
	}
	if err := writeSHA256SUMS(dir); err != nil {
		return fmt.Errorf("write checksums: %w", err)
	}
	if a.cfg.BundleTar {
		clean := filepath.Clean(dir)
		if err := tarGzDirectory(clean, clean+".tar.gz"); err != nil {
			return fmt.Errorf("tar bundle: %w", err)
		}
	}
	log.Info().Str("out", filepath.Join(dir, finalFileName)).Int("records", len(records)).Msg("wrote final output")
	return nil
}

func (a *App) saveRun(ctx context.Context, in loaded, records []doc.Record) error {
	db, err := store.Open(ctx, a.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()
	run := store.Run{
		ID:          a.runID,
		Source:      in.source,
		InputSHA256: in.inputSHA256,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.SaveRun(ctx, run, records); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	log.Info().Str("db", a.cfg.DBPath).Str("run", a.runID.String()).Msg("stored run")
	return nil
}

// headingStyles lists the style identifiers that carry a heading role; the
// HTML reader needs them to split headings out of mixed paragraphs.
func headingStyles(m classify.StyleMap) []string {
	out := make([]string, 0, len(m))
	for k, r := range m {
		if r != classify.Ignore {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func styleFingerprint(m classify.StyleMap) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(m[k].String())
		b.WriteByte(';')
	}
	return b.String()
}

func catalogTitle(in loaded) string {
	if t := strings.TrimSpace(in.title); t != "" {
		return t
	}
	return filepath.Base(in.source)
}

func nonNilEntries(in []doc.RawEntry) []doc.RawEntry {
	if in == nil {
		return []doc.RawEntry{}
	}
	return in
}
