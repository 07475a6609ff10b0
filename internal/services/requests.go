package services

import "diskmap/internal/domain"

type ScanOptions struct {
	Root          string
	Mode          domain.ScanMode
	MaxDepth      int
	ExcludedPaths []string
}

// Quick mode trades completeness for speed: bounded depth plus a blanket
// exclusion of system and cache directories that dominate scan time.
func QuickExclusions() []string {
	return []string{
		"$Recycle.Bin",
		"System Volume Information",
		"\\Windows\\WinSxS",
		"\\Windows\\Temp",
		"\\Windows\\Installer",
		"\\Program Files\\WindowsApps",
		"\\AppData\\Local\\Temp",
		"/proc",
		"/sys",
		"/dev",
		"/run",
		"lost+found",
		".git",
		"node_modules",
		"__pycache__",
	}
}

// Full mode only skips volume metadata and pseudo-filesystems that would
// otherwise be double counted or hang the walk.
func FullExclusions() []string {
	return []string{
		"$Recycle.Bin",
		"System Volume Information",
		"/proc",
		"/sys",
		"/dev",
	}
}

func DefaultOptions(root string, mode domain.ScanMode) ScanOptions {
	opts := ScanOptions{Root: root, Mode: mode}
	if mode == domain.ModeQuick {
		opts.MaxDepth = 4
		opts.ExcludedPaths = QuickExclusions()
	} else {
		opts.ExcludedPaths = FullExclusions()
	}
	return opts
}
