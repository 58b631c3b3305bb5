package app

import (
    "bufio"
    "errors"
    "fmt"
    "os"
    "strings"
)

// LoadEnvFiles loads dotenv files of KEY=VALUE pairs into the process
// environment. Variables already present in the environment before the call
// win; among the files, later ones override earlier ones. Blank lines, '#'
// comments and an optional "export " prefix are accepted. Values are not
// expanded. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
    preset := map[string]bool{}
    for _, kv := range os.Environ() {
        if k, _, ok := strings.Cut(kv, "="); ok {
            preset[k] = true
        }
    }
    for _, p := range paths {
        if strings.TrimSpace(p) == "" {
            continue
        }
        pairs, err := readEnvFile(p)
        if errors.Is(err, os.ErrNotExist) {
            continue
        }
        if err != nil {
            return fmt.Errorf("env file %s: %w", p, err)
        }
        for _, kv := range pairs {
            if preset[kv[0]] {
                continue
            }
            _ = os.Setenv(kv[0], kv[1])
        }
    }
    return nil
}

func readEnvFile(path string) ([][2]string, error) {
    f, err := os.Open(path)
    if err != nil {
        return nil, err
    }
    defer f.Close()

    var out [][2]string
    scanner := bufio.NewScanner(f)
    for scanner.Scan() {
        line := strings.TrimSpace(scanner.Text())
        if line == "" || strings.HasPrefix(line, "#") {
            continue
        }
        line = strings.TrimPrefix(line, "export ")
        key, val, ok := strings.Cut(line, "=")
        key = strings.TrimSpace(key)
        if !ok || key == "" {
            // malformed lines are ignored
            continue
        }
        val = strings.TrimSpace(val)
        if len(val) >= 2 {
            if (val[0] == '"' && val[len(val)-1] == '"') || (val[0] == '\'' && val[len(val)-1] == '\'') {
                val = val[1 : len(val)-1]
            }
        }
        out = append(out, [2]string{key, val})
    }
    return out, scanner.Err()
}
