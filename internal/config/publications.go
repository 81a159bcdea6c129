package config

import (
	"sort"
	"strings"
)

// UpsertPublicationConfig inserts or replaces a [publications.<name>] section.
func UpsertPublicationConfig(existing, name string, values map[string]any) (string, bool) {
	header := "[publications." + name + "]"
	lines := strings.Split(existing, "\n")
	out := make([]string, 0, len(lines)+len(values)+3)
	replaced := false

	for i := 0; i < len(lines); {
		if strings.TrimSpace(lines[i]) != header {
			out = append(out, lines[i])
			i++
			continue
		}
		out = append(out, lines[i])
		out = appendPublicationOptions(out, values)
		replaced = true
		i = skipSection(lines, i+1)
	}

	if !replaced {
		if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
			out = append(out, "")
		}
		out = append(out, header)
		out = appendPublicationOptions(out, values)
	}
	return strings.Join(out, "\n"), true
}

// DeletePublicationConfig removes a [publications.<name>] section if present.
func DeletePublicationConfig(existing, name string) (string, bool) {
	header := "[publications." + name + "]"
	lines := strings.Split(existing, "\n")
	out := make([]string, 0, len(lines))
	removed := false

	for i := 0; i < len(lines); {
		if strings.TrimSpace(lines[i]) == header {
			removed = true
			i = skipSection(lines, i+1)
			continue
		}
		out = append(out, lines[i])
		i++
	}
	return strings.Join(out, "\n"), removed
}

// skipSection returns the index of the next section header at or after i.
func skipSection(lines []string, i int) int {
	for i < len(lines) && !isSectionHeader(strings.TrimSpace(lines[i])) {
		i++
	}
	return i
}

func appendPublicationOptions(out []string, values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k != "url" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := values["url"]; ok {
		keys = append([]string{"url"}, keys...)
	}
	for _, k := range keys {
		out = append(out, k+" = "+tomlValue(values[k]))
	}
	return append(out, "")
}
