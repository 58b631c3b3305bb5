package app

import (
    "archive/tar"
    "compress/gzip"
    "crypto/sha256"
    "encoding/hex"
    "encoding/json"
    "io"
    "os"
    "path/filepath"
    "sort"
    "strings"
)

const checksumsFileName = "SHA256SUMS"

func writeJSON(path string, v any) error {
    b, err := json.MarshalIndent(v, "", "  ")
    if err != nil { return err }
    b = append(b, '\n')
    return os.WriteFile(path, b, 0o644)
}

// writeSHA256SUMS lists a digest for every regular file in dir, in the
// format sha256sum -c understands.
func writeSHA256SUMS(dir string) error {
    entries, err := os.ReadDir(dir)
    if err != nil { return err }
    names := make([]string, 0, len(entries))
    for _, e := range entries {
        if e.IsDir() { continue }
        name := e.Name()
        if name == checksumsFileName || strings.HasSuffix(name, ".tar.gz") { continue }
        names = append(names, name)
    }
    sort.Strings(names)
    var b strings.Builder
    for _, name := range names {
        sum, err := sha256File(filepath.Join(dir, name))
        if err != nil { return err }
        b.WriteString(sum)
        b.WriteString("  ")
        b.WriteString(name)
        b.WriteString("\n")
    }
    return os.WriteFile(filepath.Join(dir, checksumsFileName), []byte(b.String()), 0o644)
}

func sha256File(path string) (string, error) {
    f, err := os.Open(path)
    if err != nil { return "", err }
    defer f.Close()
    h := sha256.New()
    if _, err := io.Copy(h, f); err != nil { return "", err }
    return hex.EncodeToString(h.Sum(nil)), nil
}

// tarGzDirectory archives the regular files of srcDir under a top-level
// directory named after it.
func tarGzDirectory(srcDir, outPath string) error {
    out, err := os.Create(outPath)
    if err != nil { return err }
    defer out.Close()
    gz := gzip.NewWriter(out)
    tw := tar.NewWriter(gz)

    base := filepath.Base(srcDir)
    walkErr := filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
        if err != nil { return err }
        if info.IsDir() { return nil }
        rel, err := filepath.Rel(srcDir, path)
        if err != nil { return err }
        hdr, err := tar.FileInfoHeader(info, "")
        if err != nil { return err }
        hdr.Name = filepath.ToSlash(filepath.Join(base, rel))
        if err := tw.WriteHeader(hdr); err != nil { return err }
        f, err := os.Open(path)
        if err != nil { return err }
        if _, err := io.Copy(tw, f); err != nil {
            f.Close()
            return err
        }
        return f.Close()
    })
    if walkErr != nil { return walkErr }
    if err := tw.Close(); err != nil { return err }
    if err := gz.Close(); err != nil { return err }
    return out.Close()
}
