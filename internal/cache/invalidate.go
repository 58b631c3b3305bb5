package cache

import (
    "encoding/json"
    "errors"
    "io/fs"
    "os"
    "path/filepath"
    "strings"
    "time"
)

// ClearDir removes the directory and all contents. It recreates the directory
// afterwards to leave a valid empty cache location.
func ClearDir(dir string) error {
    if strings.TrimSpace(dir) == "" {
        return errors.New("empty dir")
    }
    if err := os.RemoveAll(dir); err != nil {
        return err
    }
    return os.MkdirAll(dir, 0o755)
}

// PurgeRawCacheByAge removes raw-stage entries older than maxAge.
// It reads SavedAt from each <key>.raw.json and falls back to the file
// modification time when the envelope cannot be decoded.
func PurgeRawCacheByAge(dir string, maxAge time.Duration) (int, error) {
    if maxAge <= 0 {
        return 0, nil
    }
    now := time.Now().UTC()
    removed := 0
    err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
        if err != nil {
            if errors.Is(err, fs.ErrNotExist) {
                return nil
            }
            return err
        }
        if d.IsDir() {
            return nil
        }
        name := d.Name()
        if strings.HasSuffix(name, rawSuffix+".tmp") {
            // leftover from an interrupted Save
            removed++
            _ = os.Remove(path)
            return nil
        }
        if !strings.HasSuffix(name, rawSuffix) {
            return nil
        }
        savedAt, ok := savedAt(path)
        if !ok {
            info, err := d.Info()
            if err != nil {
                return nil // skip unreadable
            }
            savedAt = info.ModTime().UTC()
        }
        if now.Sub(savedAt) <= maxAge {
            return nil
        }
        removed++
        _ = os.Remove(path)
        return nil
    })
    return removed, err
}

func savedAt(path string) (time.Time, bool) {
    b, err := os.ReadFile(path)
    if err != nil {
        return time.Time{}, false
    }
    var e struct {
        SavedAt time.Time `json:"saved_at"`
    }
    if err := json.Unmarshal(b, &e); err != nil || e.SavedAt.IsZero() {
        return time.Time{}, false
    }
    return e.SavedAt, true
}
