// Package datafile reads and writes the per-author essay index
// (<data_dir>/<author>.json) that author pages embed.
package datafile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mithrel/stackshelf/internal/essaylist"
	"github.com/mithrel/stackshelf/pkg/api"
)

// Path returns the data file for author.
func Path(dataDir, author string) string {
	return filepath.Join(dataDir, author+".json")
}

// AuthorFromPath returns the author a data file belongs to, or "" when
// path is not a data file.
func AuthorFromPath(path string) string {
	base := filepath.Base(path)
	if filepath.Ext(base) != ".json" || strings.HasPrefix(base, ".") {
		return ""
	}
	return strings.TrimSuffix(base, ".json")
}

// Authors lists the authors with a data file in dataDir, sorted.
func Authors(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if a := AuthorFromPath(e.Name()); a != "" {
			out = append(out, a)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Load reads a data file. A missing file is an empty index.
func Load(path string) (api.Essays, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return api.Essays{}, nil
		}
		return nil, err
	}
	defer f.Close()
	es, err := essaylist.ParseEmbedded(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return es, nil
}

// Merge appends incoming essays to existing, skipping any identical to
// an essay already present. Existing order is kept.
func Merge(existing, incoming api.Essays) api.Essays {
	out := existing.Clone()
	if out == nil {
		out = api.Essays{}
	}
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, e := range existing {
		seen[e.Hash()] = struct{}{}
	}
	for _, e := range incoming {
		h := e.Hash()
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Encode returns the indented JSON form of essays, without HTML escaping.
func Encode(essays api.Essays) ([]byte, error) {
	if essays == nil {
		essays = api.Essays{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(essays); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes essays to path through a temp file and rename.
func Save(path string, essays api.Essays) error {
	data, err := Encode(essays)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Update loads path, merges incoming and saves the result.
func Update(path string, incoming api.Essays) (api.Essays, error) {
	existing, err := Load(path)
	if err != nil {
		return nil, err
	}
	merged := Merge(existing, incoming)
	if err := Save(path, merged); err != nil {
		return nil, err
	}
	return merged, nil
}
