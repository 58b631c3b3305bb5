package app

import "time"

// Pipeline stages selectable with -stage.
const (
	StageRaw   = "raw"
	StageFinal = "final"
)

// Config holds runtime configuration for the application.
type Config struct {
	// InputPath is the source document (.htm, .html, .json, .jsonl).
	InputPath string
	// RawPath, when set, skips extraction and assembly and normalizes a
	// previously written raw_extracted.json instead.
	RawPath   string
	OutputDir string
	Stage     string

	// Classification
	Styles map[string]string

	// Normalization
	ImagePolicy string
	Workers     int

	// Extra outputs
	WriteRaw  bool
	WriteXLSX bool
	WritePDF  bool
	DBPath    string
	BundleTar bool

	// Behavior
	DryRun           bool
	Verbose          bool
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
}
