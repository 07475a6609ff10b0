package services

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"diskmap/internal/domain"
)

const (
	// Cancellation is polled at every directory boundary and again every
	// cancelPollInterval entries inside large directories, bounding the
	// worst-case cancel latency.
	cancelPollInterval = 256
	progressTick       = 200 * time.Millisecond
	currentPathStride  = 64
)

type FSScanner struct {
	runMu sync.Mutex

	mu       sync.RWMutex
	progress chan ScanProgress
	cancel   context.CancelFunc
}

func NewFSScanner() *FSScanner {
	return &FSScanner{}
}

func (scanner *FSScanner) Progress() <-chan ScanProgress {
	scanner.mu.RLock()
	defer scanner.mu.RUnlock()
	return scanner.progress
}

// Scan walks opts.Root and returns the resulting tree. Only one scan is
// active per scanner: a new call cancels the previous scan and waits for
// it to stop before starting.
func (scanner *FSScanner) Scan(ctx context.Context, opts ScanOptions) (ScanResult, error) {
	if opts.Root == "" {
		return ScanResult{}, errors.New("scan: empty root path")
	}

	scanner.interrupt()
	scanner.runMu.Lock()
	defer scanner.runMu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	scanner.mu.Lock()
	scanner.cancel = cancel
	scanner.mu.Unlock()

	progress := make(chan ScanProgress, 64)
	scanner.setProgress(progress)
	defer close(progress)

	session := newScanSession(opts, progress)
	return session.run(ctx), nil
}

func (scanner *FSScanner) interrupt() {
	scanner.mu.Lock()
	if scanner.cancel != nil {
		scanner.cancel()
	}
	scanner.mu.Unlock()
}

func (scanner *FSScanner) setProgress(progress chan ScanProgress) {
	scanner.mu.Lock()
	scanner.progress = progress
	scanner.mu.Unlock()
}

// scanSession owns all mutable scan state. The walker goroutine is the
// only writer of the tree; the progress emitter reads the atomic counters
// and nothing else.
type scanSession struct {
	opts     ScanOptions
	root     string
	excludes []string
	progress chan<- ScanProgress

	started   time.Time
	usedBytes int64

	items atomic.Int64
	bytes atomic.Int64

	currentMu sync.Mutex
	current   string

	rootNode  *domain.FileNode
	stats     domain.DiskStats
	errs      []domain.PathError
	cancelled bool
	rootErr   bool
}

func newScanSession(opts ScanOptions, progress chan<- ScanProgress) *scanSession {
	root := cleanPath(opts.Root)
	excludes := make([]string, 0, len(opts.ExcludedPaths))
	for _, pattern := range opts.ExcludedPaths {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		pattern = strings.ReplaceAll(pattern, "\\", string(filepath.Separator))
		excludes = append(excludes, strings.ToLower(pattern))
	}
	if opts.Mode == domain.ModeQuick && opts.MaxDepth < 1 {
		opts.MaxDepth = 1
	}
	return &scanSession{
		opts:     opts,
		root:     root,
		excludes: excludes,
		progress: progress,
	}
}

func (session *scanSession) run(ctx context.Context) ScanResult {
	session.started = time.Now()

	if total, used, free, err := volumeStats(session.root); err == nil {
		session.stats.TotalBytes = total
		session.stats.UsedBytes = used
		session.stats.FreeBytes = free
		session.usedBytes = used
	}

	info, err := os.Lstat(session.root)
	if err != nil {
		session.recordRootFailure(err)
		return session.finish()
	}

	if !info.IsDir() {
		session.rootNode = domain.NewFileNode(session.root, filepath.Base(session.root), info.Size())
		session.stats.FileCount = 1
		session.bytes.Store(info.Size())
		session.trackLargest(session.root, info.Size())
		return session.finish()
	}

	session.rootNode = domain.NewDirNode(session.root, rootDisplayName(session.root))

	group, gctx := errgroup.WithContext(ctx)
	walkDone := make(chan struct{})
	group.Go(func() error {
		defer close(walkDone)
		session.walk(gctx)
		return nil
	})
	group.Go(func() error {
		session.emitLoop(gctx, walkDone)
		return nil
	})
	_ = group.Wait()

	return session.finish()
}

func (session *scanSession) finish() ScanResult {
	session.stats.ScannedBytes = session.bytes.Load()
	session.stats.ErrorCount = int64(len(session.errs))
	session.stats.Elapsed = time.Since(session.started)

	completed := !session.cancelled && !session.rootErr
	percent := scanRatio(session.bytes.Load(), session.usedBytes) * 100
	if completed {
		percent = 100
	}
	progressNonBlocking(session.progress, ScanProgress{
		Percent:      percent,
		ItemsScanned: session.items.Load(),
		Completed:    true,
	})

	return ScanResult{
		Root:      session.rootNode,
		Stats:     session.stats,
		Completed: completed,
		Errors:    session.errs,
	}
}

type dirFrame struct {
	node    *domain.FileNode
	entries []fs.DirEntry
	next    int
	depth   int
	key     string
}

// walk traverses the tree depth-first with an explicit frame stack, so
// pathologically deep trees cannot exhaust goroutine stack space. A frame
// closes post-order: the directory's size becomes the sum of whatever
// children were visited, which keeps a cancelled tree internally
// consistent.
func (session *scanSession) walk(ctx context.Context) {
	rootKey := resolveKey(session.root)
	frame, ok := session.openDir(session.rootNode, 0, rootKey)
	if !ok {
		session.rootErr = true
		return
	}

	active := map[string]struct{}{rootKey: {}}
	stack := []*dirFrame{frame}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]

		if frame.next >= len(frame.entries) {
			session.closeDir(frame.node)
			delete(active, frame.key)
			stack = stack[:len(stack)-1]
			continue
		}

		if frame.next%cancelPollInterval == 0 && ctx.Err() != nil {
			session.cancelled = true
			break
		}

		entry := frame.entries[frame.next]
		frame.next++

		path := filepath.Join(frame.node.Path, entry.Name())
		if session.excluded(path) {
			continue
		}

		switch {
		case entry.Type()&fs.ModeSymlink != 0:
			session.visitSymlink(frame, path, entry, active)
		case entry.IsDir():
			session.visitDir(frame, path, entry, active, &stack)
		default:
			session.visitFile(frame, path, entry)
		}
	}

	// Frames left open by cancellation still get partial sums.
	for i := len(stack) - 1; i >= 0; i-- {
		session.closeDir(stack[i].node)
	}
}

func (session *scanSession) visitDir(frame *dirFrame, path string, entry fs.DirEntry, active map[string]struct{}, stack *[]*dirFrame) {
	child := domain.NewDirNode(path, entry.Name())
	frame.node.AddChild(child)
	session.stats.DirCount++
	session.items.Add(1)
	session.noteCurrent(path)

	childDepth := frame.depth + 1
	if session.opts.Mode == domain.ModeQuick && childDepth >= session.opts.MaxDepth {
		// Entries below the depth bound are not visited and contribute
		// nothing; the directory keeps size zero rather than an estimate.
		return
	}

	childKey := filepath.Join(frame.key, entry.Name())
	childFrame, ok := session.openDir(child, childDepth, childKey)
	if !ok {
		return
	}
	active[childKey] = struct{}{}
	*stack = append(*stack, childFrame)
}

func (session *scanSession) visitFile(frame *dirFrame, path string, entry fs.DirEntry) {
	info, err := entry.Info()
	if err != nil {
		child := domain.NewFileNode(path, entry.Name(), 0)
		child.Err = classify(err)
		frame.node.AddChild(child)
		session.recordError(path, err)
		session.items.Add(1)
		return
	}

	size := info.Size()
	child := domain.NewFileNode(path, entry.Name(), size)
	frame.node.AddChild(child)
	session.stats.FileCount++
	session.items.Add(1)
	session.bytes.Add(size)
	session.trackLargest(path, size)
	session.noteCurrent(path)
}

// visitSymlink never descends. A link resolving to a directory currently
// on the active path is a cycle; anything else is counted as a plain file
// of the link's own size.
func (session *scanSession) visitSymlink(frame *dirFrame, path string, entry fs.DirEntry, active map[string]struct{}) {
	var size int64
	if info, err := os.Lstat(path); err == nil {
		size = info.Size()
	}
	child := domain.NewFileNode(path, entry.Name(), size)
	frame.node.AddChild(child)
	session.stats.FileCount++
	session.items.Add(1)

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		child.Err = domain.ErrIOFailure
		session.recordError(path, err)
		return
	}
	if _, onPath := active[resolved]; onPath {
		child.Err = domain.ErrCyclicLink
		session.recordPathError(domain.PathError{Path: path, Kind: domain.ErrCyclicLink})
		return
	}
	session.bytes.Add(size)
}

func (session *scanSession) openDir(node *domain.FileNode, depth int, key string) (*dirFrame, bool) {
	entries, err := os.ReadDir(node.Path)
	if err != nil {
		node.Err = classify(err)
		session.recordError(node.Path, err)
		return nil, false
	}
	return &dirFrame{node: node, entries: entries, depth: depth, key: key}, true
}

func (session *scanSession) closeDir(node *domain.FileNode) {
	var sum int64
	for _, child := range node.Children {
		sum += child.Size
	}
	node.Size = sum
}

func (session *scanSession) excluded(path string) bool {
	if len(session.excludes) == 0 {
		return false
	}
	lower := strings.ToLower(path)
	for _, pattern := range session.excludes {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

func (session *scanSession) recordRootFailure(err error) {
	session.rootErr = true
	session.rootNode = domain.NewDirNode(session.root, rootDisplayName(session.root))
	session.rootNode.Err = classify(err)
	session.recordError(session.root, err)
}

// recordPathError accumulates the error and surfaces it through the
// progress channel so the UI can show a warning while the walk goes on.
func (session *scanSession) recordPathError(pathErr domain.PathError) {
	session.errs = append(session.errs, pathErr)
	progressNonBlocking(session.progress, ScanProgress{ErrMessage: pathErr.Error()})
}

func (session *scanSession) recordError(path string, err error) {
	session.recordPathError(domain.PathError{Path: path, Kind: classify(err), Err: err})
}

func (session *scanSession) trackLargest(path string, size int64) {
	if size > session.stats.LargestSize {
		session.stats.LargestSize = size
		session.stats.LargestPath = path
	}
}

func (session *scanSession) noteCurrent(path string) {
	if session.items.Load()%currentPathStride != 0 {
		return
	}
	session.currentMu.Lock()
	session.current = path
	session.currentMu.Unlock()
}

func (session *scanSession) currentPath() string {
	session.currentMu.Lock()
	defer session.currentMu.Unlock()
	return session.current
}

func (session *scanSession) emitLoop(ctx context.Context, walkDone <-chan struct{}) {
	ticker := time.NewTicker(progressTick)
	defer ticker.Stop()
	for {
		select {
		case <-walkDone:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			ratio := scanRatio(session.bytes.Load(), session.usedBytes)
			progressNonBlocking(session.progress, ScanProgress{
				Percent:      ratio * 100,
				ItemsScanned: session.items.Load(),
				EtaSeconds:   etaSeconds(time.Since(session.started), ratio),
				Current:      session.currentPath(),
			})
		}
	}
}

func classify(err error) domain.ErrKind {
	switch {
	case errors.Is(err, os.ErrPermission):
		return domain.ErrAccessDenied
	case errors.Is(err, os.ErrNotExist):
		return domain.ErrNotFound
	default:
		return domain.ErrIOFailure
	}
}

func cleanPath(path string) string {
	if path == "" {
		return path
	}
	clean := filepath.Clean(path)
	abs, err := filepath.Abs(clean)
	if err != nil {
		return clean
	}
	return abs
}

func resolveKey(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}

func rootDisplayName(root string) string {
	name := filepath.Base(root)
	if name == "." || name == string(filepath.Separator) {
		return root
	}
	return name
}
