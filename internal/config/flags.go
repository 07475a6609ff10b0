package config

import (
	"flag"
	"strings"

	"diskmap/internal/domain"
)

func ParseFlags(base Config) Config {
	path := flag.String("path", base.Path, "Root path to scan")
	full := flag.Bool("full", base.Mode == domain.ModeFull, "Full scan (unbounded depth)")
	depth := flag.Int("depth", base.MaxDepth, "Max depth for quick scans")
	exclude := flag.String("exclude", strings.Join(base.ExtraExclude, ","), "Extra excluded path fragments, comma separated")
	theme := flag.String("theme", base.Theme, "Color theme (dark or light)")
	flag.Parse()

	base.Path = *path
	if *full {
		base.Mode = domain.ModeFull
	} else {
		base.Mode = domain.ModeQuick
	}
	base.MaxDepth = *depth
	base.ExtraExclude = splitExcludes(*exclude)
	base.Theme = *theme
	return base
}

func splitExcludes(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			cleaned = append(cleaned, part)
		}
	}
	return cleaned
}
