package services

import "context"

type Scanner interface {
	Scan(ctx context.Context, opts ScanOptions) (ScanResult, error)
}

type ProgressProvider interface {
	Progress() <-chan ScanProgress
}
