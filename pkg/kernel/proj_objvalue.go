package kernel

import "strings"

type ProcessTitle string

type ProcessDescription string

// FileType is a lower-case file extension without the dot, e.g. "pdf"
type FileType string

// NormalizeFileType lower-cases and strips a leading dot
func NormalizeFileType(s string) FileType {
	return FileType(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
}

// UniqueIDs merges ids into base preserving first-seen order.
// The boolean reports whether anything new was added.
func UniqueIDs[T ~string](base []T, ids ...T) ([]T, bool) {
	seen := make(map[T]struct{}, len(base)+len(ids))
	out := make([]T, 0, len(base)+len(ids))
	for _, id := range base {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	changed := false
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		changed = true
	}
	return out, changed
}
