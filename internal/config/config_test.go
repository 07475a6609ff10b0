package config

import (
	"reflect"
	"testing"

	"diskmap/internal/domain"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestMergeConfigKeepsDefaultsForMissingFields(t *testing.T) {
	base := DefaultConfig()
	merged := mergeConfig(base, fileConfig{Path: strPtr("/data")})

	if merged.Path != "/data" {
		t.Errorf("Path = %q, want /data", merged.Path)
	}
	if merged.Mode != base.Mode || merged.MaxDepth != base.MaxDepth || merged.Theme != base.Theme {
		t.Errorf("unset fields changed: %+v", merged)
	}
}

func TestMergeConfigOverridesEverything(t *testing.T) {
	merged := mergeConfig(DefaultConfig(), fileConfig{
		Path:         strPtr("/mnt"),
		Mode:         strPtr("full"),
		MaxDepth:     intPtr(7),
		ExtraExclude: []string{"tmp", "cache"},
		Theme:        strPtr("light"),
	})

	want := Config{
		Path:         "/mnt",
		Mode:         domain.ModeFull,
		MaxDepth:     7,
		ExtraExclude: []string{"tmp", "cache"},
		Theme:        "light",
	}
	if !reflect.DeepEqual(merged, want) {
		t.Errorf("merged = %+v, want %+v", merged, want)
	}
}

func TestMergeConfigRejectsInvalidValues(t *testing.T) {
	base := DefaultConfig()
	merged := mergeConfig(base, fileConfig{
		Mode:     strPtr("turbo"),
		MaxDepth: intPtr(-3),
	})

	if merged.Mode != base.Mode {
		t.Errorf("Mode = %q, want fallback %q", merged.Mode, base.Mode)
	}
	if merged.MaxDepth != base.MaxDepth {
		t.Errorf("MaxDepth = %d, want fallback %d", merged.MaxDepth, base.MaxDepth)
	}
}

func TestSplitExcludes(t *testing.T) {
	if got := splitExcludes(""); got != nil {
		t.Errorf("empty input: got %v, want nil", got)
	}
	got := splitExcludes(" tmp , ,cache,")
	want := []string{"tmp", "cache"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitExcludes = %v, want %v", got, want)
	}
}
