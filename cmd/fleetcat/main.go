package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/fleetcat/internal/app"
)

// styleFlag collects repeatable -style class=role pairs.
type styleFlag map[string]string

func (s styleFlag) String() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+s[k])
	}
	return strings.Join(parts, ",")
}

func (s styleFlag) Set(v string) error {
	for _, pair := range strings.Split(v, ",") {
		k, role, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return fmt.Errorf("want class=role, got %q", pair)
		}
		s[strings.TrimSpace(k)] = strings.TrimSpace(role)
	}
	return nil
}

// options are the flags that steer the CLI itself rather than the pipeline.
type options struct {
	configPath  string
	envFiles    string
	showVersion bool
}

func newFlagSet(cfg *app.Config, opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet("fleetcat", flag.ContinueOnError)
	styles := styleFlag{}
	cfg.Styles = styles

	fs.StringVar(&opts.configPath, "config", "", "Path to YAML or JSON config file")
	fs.StringVar(&opts.envFiles, "env", ".env", "Comma-separated dotenv files to load before reading FLEETCAT_* variables")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")

	fs.StringVar(&cfg.InputPath, "input", "", "Source document (.htm, .html, .json, .jsonl)")
	fs.StringVar(&cfg.RawPath, "raw", "", "Start from a raw_extracted.json dump and run only normalization")
	fs.StringVar(&cfg.OutputDir, "output", app.DefaultOutputDir, "Output directory")
	fs.StringVar(&cfg.Stage, "stage", app.StageFinal, "Stop after 'raw' (assembly) or run to 'final'")
	fs.Var(styles, "style", "Heading style as class=role (country, platform_type, platform_class, ignore); repeatable")
	fs.StringVar(&cfg.ImagePolicy, "images", "", "Image policy: all or first (default all)")
	fs.IntVar(&cfg.Workers, "workers", app.DefaultWorkers, "Parallel normalization workers")
	fs.BoolVar(&cfg.WriteRaw, "write.raw", false, "Also write raw_extracted.json in the final stage")
	fs.BoolVar(&cfg.WriteXLSX, "xlsx", false, "Also write an XLSX workbook")
	fs.BoolVar(&cfg.WritePDF, "pdf", false, "Also write a PDF catalog")
	fs.StringVar(&cfg.DBPath, "db", "", "SQLite database to append this run to")
	fs.BoolVar(&cfg.BundleTar, "tar", false, "Archive the output directory as <output>.tar.gz")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Run the pipeline without writing outputs")
	fs.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")
	fs.StringVar(&cfg.CacheDir, "cache.dir", app.DefaultCacheDir, "Raw-stage cache directory; empty disables")
	fs.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	fs.BoolVar(&cfg.CacheClear, "cache.clear", false, "Clear cache directory before run")
	fs.BoolVar(&cfg.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	return fs
}

// overlayFlags copies the explicitly set flags from src onto dst so that
// flags win over env and config file values.
func overlayFlags(dst *app.Config, src app.Config, set map[string]bool) {
	copyFn := map[string]func(){
		"input":             func() { dst.InputPath = src.InputPath },
		"raw":               func() { dst.RawPath = src.RawPath },
		"output":            func() { dst.OutputDir = src.OutputDir },
		"stage":             func() { dst.Stage = src.Stage },
		"style":             func() { dst.Styles = src.Styles },
		"images":            func() { dst.ImagePolicy = src.ImagePolicy },
		"workers":           func() { dst.Workers = src.Workers },
		"write.raw":         func() { dst.WriteRaw = src.WriteRaw },
		"xlsx":              func() { dst.WriteXLSX = src.WriteXLSX },
		"pdf":               func() { dst.WritePDF = src.WritePDF },
		"db":                func() { dst.DBPath = src.DBPath },
		"tar":               func() { dst.BundleTar = src.BundleTar },
		"dry-run":           func() { dst.DryRun = src.DryRun },
		"v":                 func() { dst.Verbose = src.Verbose },
		"cache.dir":         func() { dst.CacheDir = src.CacheDir },
		"cache.maxAge":      func() { dst.CacheMaxAge = src.CacheMaxAge },
		"cache.clear":       func() { dst.CacheClear = src.CacheClear },
		"cache.strictPerms": func() { dst.CacheStrictPerms = src.CacheStrictPerms },
	}
	for name := range set {
		if fn, ok := copyFn[name]; ok {
			fn()
		}
	}
}

// loadConfig parses args and resolves the configuration with precedence
// flags > environment > config file > defaults.
func loadConfig(args []string) (app.Config, options, error) {
	var (
		flags app.Config
		opts  options
	)
	fs := newFlagSet(&flags, &opts)
	if err := fs.Parse(args); err != nil {
		return app.Config{}, opts, err
	}
	if fs.NArg() == 1 && flags.InputPath == "" {
		// allow "fleetcat catalog.htm"
		flags.InputPath = fs.Arg(0)
	} else if fs.NArg() > 0 {
		return app.Config{}, opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.showVersion {
		return flags, opts, nil
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if fs.NArg() == 1 {
		set["input"] = true
	}

	if err := app.LoadEnvFiles(strings.Split(opts.envFiles, ",")...); err != nil {
		return app.Config{}, opts, fmt.Errorf("load env: %w", err)
	}
	if opts.configPath == "" {
		opts.configPath = strings.TrimSpace(os.Getenv("FLEETCAT_CONFIG"))
	}

	cfg := flags
	if len(flags.Styles) == 0 {
		cfg.Styles = nil
	}
	if opts.configPath != "" {
		fc, err := app.LoadConfigFile(opts.configPath)
		if err != nil {
			return app.Config{}, opts, fmt.Errorf("load config %s: %w", opts.configPath, err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)
	overlayFlags(&cfg, flags, set)
	return cfg, opts, nil
}

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, opts, err := loadConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Error().Err(err).Msg("invalid arguments")
		os.Exit(1)
	}
	if opts.showVersion {
		fmt.Println(app.VersionString())
		return
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(exitCode(err))
	}
}

// exitCode maps run errors to the process exit status: 2 when the document
// yielded nothing usable, 1 for every other failure.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, app.ErrNoRecords):
		return 2
	default:
		return 1
	}
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}
