package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RenderDefaultTOML renders a commented TOML config from GetConfigOptions.
func RenderDefaultTOML() string {
	top, sections, order := splitSections(GetConfigOptions())
	lines := []string{"# stackshelf configuration (TOML)", ""}
	for _, o := range top {
		lines = appendOption(lines, o)
	}
	for _, section := range order {
		lines = append(lines, "["+section+"]")
		for _, o := range sections[section] {
			lines = appendOption(lines, o)
		}
	}
	return strings.Join(lines, "\n")
}

// splitSections groups dotted keys by their first segment, keeping the
// order sections first appear in.
func splitSections(opts []ConfigOption) ([]ConfigOption, map[string][]ConfigOption, []string) {
	var top []ConfigOption
	sections := make(map[string][]ConfigOption)
	var order []string
	for _, o := range opts {
		section, key, ok := strings.Cut(o.Key, ".")
		if !ok {
			top = append(top, o)
			continue
		}
		if _, seen := sections[section]; !seen {
			order = append(order, section)
		}
		sections[section] = append(sections[section], ConfigOption{Key: key, Default: o.Default, Comment: o.Comment})
	}
	return top, sections, order
}

// UpdateTOML merges defaults into an existing TOML string and comments out unknown keys.
func UpdateTOML(existing string) (string, bool) {
	opts := GetConfigOptions()
	known := make(map[string]bool, len(opts))
	tables := make(map[string]bool)
	for _, o := range opts {
		known[o.Key] = true
		if _, ok := o.Default.(map[string]any); ok {
			tables[o.Key] = true
		}
	}
	underTable := func(key string) (string, bool) {
		for t := range tables {
			if key == t || strings.HasPrefix(key, t+".") {
				return t, true
			}
		}
		return "", false
	}

	present := make(map[string]bool)
	section := ""
	changed := false
	out := make([]string, 0, strings.Count(existing, "\n")+1)
	for _, line := range strings.Split(existing, "\n") {
		trim := strings.TrimSpace(line)
		if isSectionHeader(trim) {
			section = strings.TrimSpace(trim[1 : len(trim)-1])
			if t, ok := underTable(section); ok {
				present[t] = true
			}
			out = append(out, line)
			continue
		}
		key, ok := parseTOMLKey(line)
		if !ok {
			out = append(out, line)
			continue
		}
		full := key
		if section != "" {
			full = section + "." + key
		}
		present[full] = true
		if t, ok := underTable(full); ok {
			present[t] = true
			out = append(out, line)
			continue
		}
		if !known[full] {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			out = append(out, indent+"# OUTDATED: option removed from config schema", indent+"# "+strings.TrimLeft(line, " \t"))
			changed = true
			continue
		}
		out = append(out, line)
	}

	var missing []ConfigOption
	for _, o := range opts {
		if !present[o.Key] && !tables[o.Key] {
			missing = append(missing, o)
		}
	}
	if len(missing) == 0 {
		return strings.Join(out, "\n"), changed
	}

	top, sections, order := splitSections(missing)
	if len(top) > 0 {
		// top-level keys must precede the first table
		at := len(out)
		for i, line := range out {
			if isSectionHeader(strings.TrimSpace(line)) {
				at = i
				break
			}
		}
		block := []string{"# Added by config update"}
		for _, o := range top {
			block = appendOption(block, o)
		}
		out = insertLines(out, at, block)
	}
	for _, s := range order {
		var block []string
		for _, o := range sections[s] {
			block = appendOption(block, o)
		}
		if at, ok := sectionEnd(out, s); ok {
			out = insertLines(out, at, block)
			continue
		}
		out = append(out, "", "# Added by config update", "["+s+"]")
		out = append(out, block...)
	}
	return strings.Join(out, "\n"), true
}

// sectionEnd finds where new keys for an existing table belong: after its
// last non-blank line.
func sectionEnd(lines []string, section string) (int, bool) {
	header := "[" + section + "]"
	for i, line := range lines {
		if strings.TrimSpace(line) != header {
			continue
		}
		j := i + 1
		for j < len(lines) && !isSectionHeader(strings.TrimSpace(lines[j])) {
			j++
		}
		for j > i+1 && strings.TrimSpace(lines[j-1]) == "" {
			j--
		}
		return j, true
	}
	return 0, false
}

func insertLines(lines []string, at int, block []string) []string {
	out := make([]string, 0, len(lines)+len(block))
	out = append(out, lines[:at]...)
	out = append(out, block...)
	return append(out, lines[at:]...)
}

func parseTOMLKey(line string) (string, bool) {
	idx := strings.Index(line, "=")
	if idx == -1 {
		return "", false
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" || strings.HasPrefix(key, "[") || strings.HasPrefix(key, "#") {
		return "", false
	}
	if strings.HasPrefix(key, "\"") || strings.HasPrefix(key, "'") {
		return "", false
	}
	return key, true
}

func isSectionHeader(trim string) bool {
	return strings.HasPrefix(trim, "[") && strings.HasSuffix(trim, "]")
}

// appendOption adds the comment, the key line and a blank line. Table
// options only get a commented example header.
func appendOption(lines []string, o ConfigOption) []string {
	if o.Comment != "" {
		lines = append(lines, "# "+o.Comment)
	}
	if _, ok := o.Default.(map[string]any); ok {
		return append(lines, "# ["+o.Key+".<name>]", "")
	}
	return append(lines, o.Key+" = "+tomlValue(o.Default), "")
}

func tomlValue(value any) string {
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case bool, int, int64, float64:
		return fmt.Sprint(v)
	case []string:
		parts := make([]string, len(v))
		for i, s := range v {
			parts[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + " = " + tomlValue(v[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return strconv.Quote(fmt.Sprint(value))
}
