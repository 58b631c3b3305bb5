package app

import (
    "os"
    "path/filepath"
    "testing"
)

// unset clears key for the duration of the test.
func unset(t *testing.T, key string) {
    t.Helper()
    t.Setenv(key, "")
    _ = os.Unsetenv(key)
}

// LoadEnvFiles reads KEY=VALUE pairs, accepts export prefixes and quotes.
func TestLoadEnvFiles_LoadsKeyValues(t *testing.T) {
    unset(t, "FLEETCAT_TEST_FOO")
    unset(t, "FLEETCAT_TEST_BAR")

    dir := t.TempDir()
    envPath := filepath.Join(dir, ".env.test")
    content := "\n# sample dotenv file\nFLEETCAT_TEST_FOO=alpha\nexport FLEETCAT_TEST_BAR=\"beta gamma\"\nnot a pair\n"
    if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
        t.Fatalf("write dotenv: %v", err)
    }

    if err := LoadEnvFiles(envPath); err != nil {
        t.Fatalf("LoadEnvFiles error: %v", err)
    }
    if got := os.Getenv("FLEETCAT_TEST_FOO"); got != "alpha" {
        t.Fatalf("FOO=%q, want alpha", got)
    }
    if got := os.Getenv("FLEETCAT_TEST_BAR"); got != "beta gamma" {
        t.Fatalf("BAR=%q, want beta gamma", got)
    }
}

// Later files override earlier ones; the real environment wins over both.
func TestLoadEnvFiles_OverrideOrder(t *testing.T) {
    unset(t, "FLEETCAT_TEST_K")
    t.Setenv("FLEETCAT_TEST_PRESET", "from-env")
    dir := t.TempDir()
    a := filepath.Join(dir, ".env.a")
    b := filepath.Join(dir, ".env.b")
    if err := os.WriteFile(a, []byte("FLEETCAT_TEST_K=first\nFLEETCAT_TEST_PRESET=a\n"), 0o600); err != nil { t.Fatalf("write a: %v", err) }
    if err := os.WriteFile(b, []byte("FLEETCAT_TEST_K=second\n"), 0o600); err != nil { t.Fatalf("write b: %v", err) }

    if err := LoadEnvFiles(a, filepath.Join(dir, "missing.env"), b); err != nil {
        t.Fatalf("LoadEnvFiles error: %v", err)
    }
    if got := os.Getenv("FLEETCAT_TEST_K"); got != "second" {
        t.Fatalf("override order failed: got %q, want second", got)
    }
    if got := os.Getenv("FLEETCAT_TEST_PRESET"); got != "from-env" {
        t.Fatalf("process env must win: got %q", got)
    }
}

func TestApplyEnvOverrides(t *testing.T) {
    t.Setenv("FLEETCAT_OUTPUT", "/tmp/fleet-out")
    t.Setenv("FLEETCAT_IMAGES", "first")
    t.Setenv("FLEETCAT_WORKERS", "6")
    t.Setenv("FLEETCAT_STYLES", "c1=country, c2=type ,bogus, c3=class")
    t.Setenv("FLEETCAT_CACHE_MAX_AGE", "36h")
    t.Setenv("FLEETCAT_XLSX", "yes")
    t.Setenv("FLEETCAT_DRY_RUN", "off")

    cfg := Config{OutputDir: "out", DryRun: true, Workers: 1}
    ApplyEnvOverrides(&cfg)
    if cfg.OutputDir != "/tmp/fleet-out" || cfg.ImagePolicy != "first" || cfg.Workers != 6 {
        t.Fatalf("scalar overrides not applied: %#v", cfg)
    }
    want := map[string]string{"c1": "country", "c2": "type", "c3": "class"}
    if len(cfg.Styles) != len(want) {
        t.Fatalf("styles = %#v", cfg.Styles)
    }
    for k, v := range want {
        if cfg.Styles[k] != v {
            t.Fatalf("styles[%q] = %q, want %q", k, cfg.Styles[k], v)
        }
    }
    if cfg.CacheMaxAge.Hours() != 36 {
        t.Fatalf("CacheMaxAge = %v", cfg.CacheMaxAge)
    }
    if !cfg.WriteXLSX || cfg.DryRun {
        t.Fatalf("boolean overrides not applied: xlsx=%v dry=%v", cfg.WriteXLSX, cfg.DryRun)
    }
}
