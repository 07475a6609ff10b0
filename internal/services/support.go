package services

import "time"

type ScanProgress struct {
	Percent      float64
	ItemsScanned int64
	EtaSeconds   float64
	Current      string
	ErrMessage   string
	Completed    bool
}

func progressNonBlocking(ch chan<- ScanProgress, msg ScanProgress) {
	if ch == nil {
		return
	}
	select {
	case ch <- msg:
	default:
	}
}

// scanRatio estimates completion from bytes visited against bytes in use
// on the volume. Capped below 1 because exclusions and unreadable entries
// keep the scan from ever covering everything.
func scanRatio(scannedBytes, usedBytes int64) float64 {
	if usedBytes <= 0 || scannedBytes <= 0 {
		return 0
	}
	ratio := float64(scannedBytes) / float64(usedBytes)
	if ratio > 0.999 {
		ratio = 0.999
	}
	return ratio
}

// etaSeconds extrapolates remaining time linearly from the observed rate.
// Returns -1 while the ratio is too small for the estimate to mean much.
func etaSeconds(elapsed time.Duration, ratio float64) float64 {
	if ratio <= 0.01 || elapsed < time.Second {
		return -1
	}
	remaining := elapsed.Seconds() * (1 - ratio) / ratio
	if remaining < 0 {
		return 0
	}
	return remaining
}
