package services

import (
	"context"
	"time"

	"diskmap/internal/domain"
)

// MockScanner serves a small fixed tree so the UI can be exercised
// without touching the filesystem.
type MockScanner struct{}

func NewMockScanner() *MockScanner {
	return &MockScanner{}
}

func (scanner *MockScanner) Scan(ctx context.Context, opts ScanOptions) (ScanResult, error) {
	start := time.Now()
	select {
	case <-ctx.Done():
		return ScanResult{}, ctx.Err()
	case <-time.After(150 * time.Millisecond):
	}

	root := domain.NewDirNode(opts.Root, "mock")
	docs := domain.NewDirNode(opts.Root+"/docs", "docs")
	root.AddChild(docs)
	docs.AddChild(domain.NewFileNode(opts.Root+"/docs/a.pdf", "a.pdf", 300))
	docs.AddChild(domain.NewFileNode(opts.Root+"/docs/b.pdf", "b.pdf", 100))
	docs.Size = 400
	media := domain.NewDirNode(opts.Root+"/media", "media")
	root.AddChild(media)
	media.AddChild(domain.NewFileNode(opts.Root+"/media/clip.mp4", "clip.mp4", 600))
	media.Size = 600
	root.Size = 1000

	return ScanResult{
		Root: root,
		Stats: domain.DiskStats{
			FileCount:    3,
			DirCount:     2,
			ScannedBytes: 1000,
			Elapsed:      time.Since(start),
		},
		Completed: true,
	}, nil
}
