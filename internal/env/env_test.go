package env

import "testing"

func lookup(env []string, key string) (string, bool) {
	v, ok := toMap(env)[key]
	return v, ok
}

func TestWithThemeSetsVariable(t *testing.T) {
	base := []string{"PATH=/usr/bin", ThemeVar + "=old", "broken"}
	out := WithTheme(base, "pepa linha")

	if v, ok := lookup(out, ThemeVar); !ok || v != "pepa linha" {
		t.Fatalf("%s=%q ok=%v", ThemeVar, v, ok)
	}
	if v, _ := lookup(out, "PATH"); v != "/usr/bin" {
		t.Fatalf("PATH lost: %q", v)
	}
	count := 0
	for _, kv := range out {
		if len(kv) >= len(ThemeVar) && kv[:len(ThemeVar)] == ThemeVar {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected one theme entry, got %d in %v", count, out)
	}
}

func TestWithThemeDefaultsBlank(t *testing.T) {
	out := WithTheme(nil, "  ")
	if v, _ := lookup(out, ThemeVar); v != "default" {
		t.Fatalf("expected default theme, got %q", v)
	}
}

func TestWithIsSorted(t *testing.T) {
	out := With([]string{"B=2", "A=1"}, map[string]string{"C": "3"})
	want := []string{"A=1", "B=2", "C=3"}
	if len(out) != len(want) {
		t.Fatalf("got %v", out)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("got %v want %v", out, want)
		}
	}
}
