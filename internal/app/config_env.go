package app

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// envPrefix namespaces every environment variable the tool reads.
const envPrefix = "FLEETCAT_"

func getenv(key string) string { return strings.TrimSpace(os.Getenv(envPrefix + key)) }

// ApplyEnvOverrides overrides cfg fields with FLEETCAT_* environment
// variables when they are set. This lets env take precedence over values
// coming from a config file; the caller re-applies explicit flags afterwards
// so flags stay highest precedence.
func ApplyEnvOverrides(cfg *Config) {
    if cfg == nil { return }

    if v := getenv("INPUT"); v != "" { cfg.InputPath = v }
    if v := getenv("RAW"); v != "" { cfg.RawPath = v }
    if v := getenv("OUTPUT"); v != "" { cfg.OutputDir = v }
    if v := getenv("STAGE"); v != "" { cfg.Stage = strings.ToLower(v) }
    if v := getenv("IMAGES"); v != "" { cfg.ImagePolicy = v }
    if v := getenv("DB"); v != "" { cfg.DBPath = v }
    if v := getenv("CACHE_DIR"); v != "" { cfg.CacheDir = v }

    if v := getenv("WORKERS"); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n > 0 {
            cfg.Workers = n
        }
    }

    // STYLES is a comma-separated list of class=role pairs, e.g.
    // "font8=country,font6=platform_type,font5=platform_class".
    if v := getenv("STYLES"); v != "" {
        styles := map[string]string{}
        for _, pair := range strings.Split(v, ",") {
            k, role, ok := strings.Cut(pair, "=")
            if !ok { continue }
            if k = strings.TrimSpace(k); k != "" {
                styles[k] = strings.TrimSpace(role)
            }
        }
        if len(styles) > 0 { cfg.Styles = styles }
    }

    if s := getenv("CACHE_MAX_AGE"); s != "" {
        if d, err := time.ParseDuration(s); err == nil {
            cfg.CacheMaxAge = d
        }
    }

    // Booleans override when env present and truthy/falsey
    setBool := func(dst *bool, key string) {
        if s := strings.ToLower(getenv(key)); s != "" {
            switch s {
            case "1", "true", "yes", "on":
                *dst = true
            case "0", "false", "no", "off":
                *dst = false
            }
        }
    }
    setBool(&cfg.DryRun, "DRY_RUN")
    setBool(&cfg.Verbose, "VERBOSE")
    setBool(&cfg.WriteRaw, "WRITE_RAW")
    setBool(&cfg.WriteXLSX, "XLSX")
    setBool(&cfg.WritePDF, "PDF")
    setBool(&cfg.BundleTar, "TAR")
    setBool(&cfg.CacheClear, "CACHE_CLEAR")
    setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
}
