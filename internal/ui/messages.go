package ui

import "diskmap/internal/services"

type scanResultMsg struct {
	result services.ScanResult
	err    error
}

type scanProgressMsg struct {
	progress services.ScanProgress
}

// relayoutMsg fires after the resize debounce window; seq identifies the
// resize burst it belongs to so stale ticks are ignored.
type relayoutMsg struct {
	seq int
}
