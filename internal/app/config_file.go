package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"

    "github.com/hyperifyio/fleetcat/internal/classify"
    "github.com/hyperifyio/fleetcat/internal/normalize"
)

// Defaults shared by flag registration and the file overlay, which treats a
// default-valued flag as unset.
const (
    DefaultOutputDir = "out"
    DefaultCacheDir  = ".fleetcat-cache"
    DefaultWorkers   = 1
)

// FileConfig represents the single-file configuration schema.
// Nested sections map naturally to flags/env.
type FileConfig struct {
    Input  string `yaml:"input" json:"input"`
    Raw    string `yaml:"raw" json:"raw"`
    Output string `yaml:"output" json:"output"`
    Stage  string `yaml:"stage" json:"stage"`

    // Styles maps a style identifier (HTML class) to a heading role:
    // country, platform_type, platform_class or ignore.
    Styles map[string]string `yaml:"styles" json:"styles"`

    Normalize struct {
        Images  string `yaml:"images" json:"images"`
        Workers int    `yaml:"workers" json:"workers"`
    } `yaml:"normalize" json:"normalize"`

    Outputs struct {
        Raw  bool   `yaml:"raw" json:"raw"`
        XLSX bool   `yaml:"xlsx" json:"xlsx"`
        PDF  bool   `yaml:"pdf" json:"pdf"`
        DB   string `yaml:"db" json:"db"`
        Tar  bool   `yaml:"tar" json:"tar"`
    } `yaml:"outputs" json:"outputs"`

    DryRun  bool `yaml:"dryRun" json:"dryRun"`
    Verbose bool `yaml:"verbose" json:"verbose"`

    Cache struct {
        Dir         string        `yaml:"dir" json:"dir"`
        MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
        Clear       bool          `yaml:"clear" json:"clear"`
        StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
    } `yaml:"cache" json:"cache"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset or still at their flag default. Flags should already
// have been parsed; explicit flags are preserved.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
    if cfg == nil { return }

    if cfg.InputPath == "" && fc.Input != "" { cfg.InputPath = fc.Input }
    if cfg.RawPath == "" && fc.Raw != "" { cfg.RawPath = fc.Raw }
    if (cfg.OutputDir == "" || cfg.OutputDir == DefaultOutputDir) && fc.Output != "" { cfg.OutputDir = fc.Output }
    if (cfg.Stage == "" || cfg.Stage == StageFinal) && fc.Stage != "" { cfg.Stage = fc.Stage }

    if len(cfg.Styles) == 0 && len(fc.Styles) > 0 {
        cfg.Styles = make(map[string]string, len(fc.Styles))
        for k, v := range fc.Styles { cfg.Styles[k] = v }
    }

    if cfg.ImagePolicy == "" && fc.Normalize.Images != "" { cfg.ImagePolicy = fc.Normalize.Images }
    if (cfg.Workers == 0 || cfg.Workers == DefaultWorkers) && fc.Normalize.Workers > 0 { cfg.Workers = fc.Normalize.Workers }

    if !cfg.WriteRaw && fc.Outputs.Raw { cfg.WriteRaw = true }
    if !cfg.WriteXLSX && fc.Outputs.XLSX { cfg.WriteXLSX = true }
    if !cfg.WritePDF && fc.Outputs.PDF { cfg.WritePDF = true }
    if cfg.DBPath == "" && fc.Outputs.DB != "" { cfg.DBPath = fc.Outputs.DB }
    if !cfg.BundleTar && fc.Outputs.Tar { cfg.BundleTar = true }

    if !cfg.DryRun && fc.DryRun { cfg.DryRun = true }
    if !cfg.Verbose && fc.Verbose { cfg.Verbose = true }

    if (cfg.CacheDir == "" || cfg.CacheDir == DefaultCacheDir) && fc.Cache.Dir != "" { cfg.CacheDir = fc.Cache.Dir }
    if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 { cfg.CacheMaxAge = fc.Cache.MaxAge }
    if !cfg.CacheClear && fc.Cache.Clear { cfg.CacheClear = true }
    if !cfg.CacheStrictPerms && fc.Cache.StrictPerms { cfg.CacheStrictPerms = true }
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
    if strings.TrimSpace(cfg.InputPath) == "" && strings.TrimSpace(cfg.RawPath) == "" {
        return errors.New("config: input path or raw path is required")
    }
    if strings.TrimSpace(cfg.OutputDir) == "" && !cfg.DryRun {
        return errors.New("config: output directory is required")
    }
    switch cfg.Stage {
    case "", StageFinal:
    case StageRaw:
        if strings.TrimSpace(cfg.RawPath) != "" {
            return errors.New("config: -stage raw cannot start from a raw dump")
        }
    default:
        return fmt.Errorf("config: unknown stage %q (want raw or final)", cfg.Stage)
    }
    if _, err := normalize.ParseImagePolicy(cfg.ImagePolicy); err != nil {
        return fmt.Errorf("config: %w", err)
    }
    if _, err := styleMap(cfg.Styles); err != nil {
        return fmt.Errorf("config: %w", err)
    }
    if cfg.Workers < 0 {
        return errors.New("config: negative worker count is not allowed")
    }
    return nil
}

// styleMap converts configured style names into a classifier style map.
// An empty configuration yields the default catalog layout.
func styleMap(styles map[string]string) (classify.StyleMap, error) {
    if len(styles) == 0 {
        return classify.DefaultStyles(), nil
    }
    out := make(classify.StyleMap, len(styles))
    for k, v := range styles {
        k = strings.ToLower(strings.TrimSpace(k))
        if k == "" {
            return nil, errors.New("empty style name")
        }
        role, err := classify.ParseRole(v)
        if err != nil {
            return nil, fmt.Errorf("style %q: %w", k, err)
        }
        if prev, dup := out[k]; dup && prev != role {
            return nil, fmt.Errorf("style %q given conflicting roles %s and %s", k, prev, role)
        }
        out[k] = role
    }
    return out, nil
}
