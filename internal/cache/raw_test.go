package cache

import (
    "context"
    "os"
    "path/filepath"
    "reflect"
    "testing"

    "github.com/hyperifyio/fleetcat/internal/doc"
)

func TestRawCache_RoundTrip(t *testing.T) {
    t.Parallel()
    c := &RawCache{Dir: filepath.Join(t.TempDir(), "raw")}
    key := KeyFrom([]byte("<html></html>"), "font8=country")
    entries := []doc.RawEntry{{
        Seq: 0, Country: "A", PlatformType: "T", ClassLabel: "X",
        Content: []doc.Content{doc.TextContent("hello"), doc.TableContent([][]string{{"h"}, {"ALPHA"}})},
        Images:  []string{"a.png"},
        Names:   []string{"ALPHA"},
    }}
    if err := c.Save(context.Background(), key, "in.htm", "Fighting Ships", entries); err != nil {
        t.Fatalf("save: %v", err)
    }
    got, ok, err := c.Load(context.Background(), key)
    if err != nil || !ok {
        t.Fatalf("load: ok=%v err=%v", ok, err)
    }
    if got.Source != "in.htm" || got.Title != "Fighting Ships" || got.SavedAt.IsZero() {
        t.Fatalf("envelope = %#v", got)
    }
    if !reflect.DeepEqual(got.Entries, entries) {
        t.Fatalf("entries mismatch:\n got %#v\nwant %#v", got.Entries, entries)
    }
}

func TestRawCache_Miss(t *testing.T) {
    t.Parallel()
    c := &RawCache{Dir: t.TempDir()}
    got, ok, err := c.Load(context.Background(), KeyFrom([]byte("x"), ""))
    if err != nil || ok || got != nil {
        t.Fatalf("expected clean miss, got %#v ok=%v err=%v", got, ok, err)
    }
}

func TestRawCache_CorruptEntry(t *testing.T) {
    t.Parallel()
    dir := t.TempDir()
    c := &RawCache{Dir: dir}
    key := KeyFrom([]byte("x"), "")
    if err := os.WriteFile(filepath.Join(dir, key+".raw.json"), []byte("{not json"), 0o644); err != nil {
        t.Fatalf("write: %v", err)
    }
    if _, ok, err := c.Load(context.Background(), key); err == nil || ok {
        t.Fatalf("expected decode error, ok=%v err=%v", ok, err)
    }
}

func TestKeyFrom_DependsOnSettings(t *testing.T) {
    in := []byte("<p>same</p>")
    if KeyFrom(in, "a") == KeyFrom(in, "b") {
        t.Fatalf("settings must change the key")
    }
    if KeyFrom(in, "a") != KeyFrom(in, "a") {
        t.Fatalf("key must be deterministic")
    }
}

func TestRawCache_NotConfigured(t *testing.T) {
    var c *RawCache
    if err := c.Save(context.Background(), "k", "", "", nil); err == nil {
        t.Fatalf("expected error for nil cache")
    }
}
