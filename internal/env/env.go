package env

import (
	"sort"
	"strings"
)

// ThemeVar carries the Adminer theme name to the PHP server.
const ThemeVar = "ELEDMINER_SETTINGS_THEME"

// With returns base with vars set, replacing existing keys. The result is
// sorted so that it is stable across calls.
func With(base []string, vars map[string]string) []string {
	m := toMap(base)
	for k, v := range vars {
		m[k] = v
	}
	return fromMap(m)
}

func WithTheme(base []string, theme string) []string {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = "default"
	}
	return With(base, map[string]string{ThemeVar: theme})
}

func toMap(env []string) map[string]string {
	out := make(map[string]string, len(env))
	for _, kv := range env {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		out[k] = v
	}
	return out
}

func fromMap(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
