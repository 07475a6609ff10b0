package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"diskmap/internal/domain"
)

func writeFixtureFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeWideTree(t *testing.T, root string, dirs, filesPerDir int) {
	t.Helper()
	for d := 0; d < dirs; d++ {
		for f := 0; f < filesPerDir; f++ {
			writeFixtureFile(t, filepath.Join(root, fmt.Sprintf("d%03d", d), fmt.Sprintf("f%03d", f)), 8)
		}
	}
}

func assertSumsConsistent(t *testing.T, node *domain.FileNode) {
	t.Helper()
	if !node.IsDir {
		return
	}
	var sum int64
	for _, child := range node.Children {
		sum += child.Size
		assertSumsConsistent(t, child)
	}
	if node.Size != sum {
		t.Errorf("%s: Size = %d, children sum to %d", node.Path, node.Size, sum)
	}
}

func childByName(node *domain.FileNode, name string) *domain.FileNode {
	for _, child := range node.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

func TestScanAggregatesSizesBottomUp(t *testing.T) {
	tmpDir := t.TempDir()
	writeFixtureFile(t, filepath.Join(tmpDir, "a.txt"), 100)
	writeFixtureFile(t, filepath.Join(tmpDir, "sub", "b.txt"), 250)
	writeFixtureFile(t, filepath.Join(tmpDir, "sub", "deep", "c.txt"), 50)

	scanner := NewFSScanner()
	result, err := scanner.Scan(context.Background(), ScanOptions{Root: tmpDir, Mode: domain.ModeFull})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if !result.Completed {
		t.Fatalf("Expected completed scan, got errors: %v", result.Errors)
	}

	if result.Root.Size != 400 {
		t.Errorf("Root size = %d, want 400", result.Root.Size)
	}
	sub := childByName(result.Root, "sub")
	if sub == nil {
		t.Fatal("Missing sub directory node")
	}
	if sub.Size != 300 {
		t.Errorf("sub size = %d, want 300", sub.Size)
	}
	deep := childByName(sub, "deep")
	if deep == nil || deep.Size != 50 {
		t.Errorf("deep size wrong: %+v", deep)
	}

	if result.Stats.FileCount != 3 {
		t.Errorf("FileCount = %d, want 3", result.Stats.FileCount)
	}
	if result.Stats.DirCount != 2 {
		t.Errorf("DirCount = %d, want 2", result.Stats.DirCount)
	}
	if result.Stats.ScannedBytes != 400 {
		t.Errorf("ScannedBytes = %d, want 400", result.Stats.ScannedBytes)
	}
	if result.Stats.LargestSize != 250 || !strings.HasSuffix(result.Stats.LargestPath, "b.txt") {
		t.Errorf("Largest file = %s (%d), want b.txt (250)", result.Stats.LargestPath, result.Stats.LargestSize)
	}
}

func TestQuickModeBoundsDepth(t *testing.T) {
	tmpDir := t.TempDir()
	writeFixtureFile(t, filepath.Join(tmpDir, "top.txt"), 10)
	writeFixtureFile(t, filepath.Join(tmpDir, "sub", "mid.txt"), 20)
	writeFixtureFile(t, filepath.Join(tmpDir, "sub", "deep", "bottom.txt"), 40)

	scanner := NewFSScanner()

	shallow, err := scanner.Scan(context.Background(), ScanOptions{Root: tmpDir, Mode: domain.ModeQuick, MaxDepth: 1})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if shallow.Stats.FileCount != 1 {
		t.Errorf("depth 1 FileCount = %d, want 1", shallow.Stats.FileCount)
	}
	sub := childByName(shallow.Root, "sub")
	if sub == nil {
		t.Fatal("sub should still appear as an entry at the depth bound")
	}
	if len(sub.Children) != 0 || sub.Size != 0 {
		t.Errorf("sub should not be descended at depth 1: children=%d size=%d", len(sub.Children), sub.Size)
	}
	if shallow.Root.Size != 10 {
		t.Errorf("depth 1 root size = %d, want 10", shallow.Root.Size)
	}

	deeper, err := scanner.Scan(context.Background(), ScanOptions{Root: tmpDir, Mode: domain.ModeQuick, MaxDepth: 2})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if deeper.Stats.FileCount != 2 {
		t.Errorf("depth 2 FileCount = %d, want 2", deeper.Stats.FileCount)
	}
	if deeper.Root.Size != 30 {
		t.Errorf("depth 2 root size = %d, want 30", deeper.Root.Size)
	}
}

func TestExcludedPathsAreSkipped(t *testing.T) {
	tmpDir := t.TempDir()
	writeFixtureFile(t, filepath.Join(tmpDir, "keep.txt"), 10)
	writeFixtureFile(t, filepath.Join(tmpDir, "node_modules", "dep.js"), 9999)

	scanner := NewFSScanner()
	result, err := scanner.Scan(context.Background(), ScanOptions{
		Root:          tmpDir,
		Mode:          domain.ModeFull,
		ExcludedPaths: []string{"node_modules"},
	})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if childByName(result.Root, "node_modules") != nil {
		t.Error("Excluded directory should not appear in the tree")
	}
	if result.Stats.DirCount != 0 {
		t.Errorf("DirCount = %d, want 0", result.Stats.DirCount)
	}
	if result.Root.Size != 10 {
		t.Errorf("Root size = %d, want 10", result.Root.Size)
	}
}

func TestCancelledScanReturnsPartialResult(t *testing.T) {
	tmpDir := t.TempDir()
	writeFixtureFile(t, filepath.Join(tmpDir, "a.txt"), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scanner := NewFSScanner()
	result, err := scanner.Scan(ctx, ScanOptions{Root: tmpDir, Mode: domain.ModeFull})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if result.Completed {
		t.Error("Cancelled scan must not report completion")
	}
	if result.Root == nil {
		t.Fatal("Cancelled scan should still return the partial tree")
	}
}

func TestCancelMidScanKeepsPartialSumsConsistent(t *testing.T) {
	tmpDir := t.TempDir()
	writeWideTree(t, tmpDir, 30, 40)

	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(3*time.Millisecond, cancel)
	defer timer.Stop()
	defer cancel()

	scanner := NewFSScanner()
	result, err := scanner.Scan(ctx, ScanOptions{Root: tmpDir, Mode: domain.ModeFull})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if result.Root == nil {
		t.Fatal("Expected a partial tree")
	}

	// Directories abandoned by the cancel must still sum exactly what was
	// visited, from the deepest frame up to the root.
	assertSumsConsistent(t, result.Root)
}

func TestNewScanInterruptsActiveScan(t *testing.T) {
	tmpDir := t.TempDir()
	writeWideTree(t, tmpDir, 30, 40)

	scanner := NewFSScanner()
	firstDone := make(chan ScanResult, 1)
	go func() {
		result, err := scanner.Scan(context.Background(), ScanOptions{Root: tmpDir, Mode: domain.ModeFull})
		if err != nil {
			t.Errorf("first Scan failed: %v", err)
		}
		firstDone <- result
	}()
	time.Sleep(2 * time.Millisecond)

	second, err := scanner.Scan(context.Background(), ScanOptions{Root: tmpDir, Mode: domain.ModeFull})
	if err != nil {
		t.Fatalf("second Scan failed: %v", err)
	}
	if !second.Completed {
		t.Error("second scan should run to completion")
	}
	assertSumsConsistent(t, second.Root)

	select {
	case first := <-firstDone:
		assertSumsConsistent(t, first.Root)
	case <-time.After(10 * time.Second):
		t.Fatal("first scan never returned after being superseded")
	}
}

func TestMissingRootFailsScan(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	scanner := NewFSScanner()
	result, err := scanner.Scan(context.Background(), ScanOptions{Root: missing, Mode: domain.ModeFull})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if result.Completed {
		t.Error("Scan of a missing root must not report completion")
	}
	if result.Root == nil || result.Root.Err != domain.ErrNotFound {
		t.Errorf("Root error kind = %v, want ErrNotFound", result.Root.Err)
	}
	if len(result.Errors) != 1 {
		t.Errorf("Errors = %d, want 1", len(result.Errors))
	}
}

func TestEmptyRootIsRejected(t *testing.T) {
	scanner := NewFSScanner()
	if _, err := scanner.Scan(context.Background(), ScanOptions{}); err == nil {
		t.Error("Expected an error for an empty root path")
	}
}

func TestFileRootScansAsSingleNode(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "only.bin")
	writeFixtureFile(t, path, 123)

	scanner := NewFSScanner()
	result, err := scanner.Scan(context.Background(), ScanOptions{Root: path, Mode: domain.ModeFull})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if !result.Completed {
		t.Error("Expected completed scan")
	}
	if result.Root.IsDir || result.Root.Size != 123 {
		t.Errorf("Root = %+v, want 123-byte file node", result.Root)
	}
	if result.Stats.FileCount != 1 {
		t.Errorf("FileCount = %d, want 1", result.Stats.FileCount)
	}
}

func TestSymlinkCycleDetected(t *testing.T) {
	tmpDir := t.TempDir()
	writeFixtureFile(t, filepath.Join(tmpDir, "sub", "real.txt"), 10)
	if err := os.Symlink(tmpDir, filepath.Join(tmpDir, "sub", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	scanner := NewFSScanner()
	result, err := scanner.Scan(context.Background(), ScanOptions{Root: tmpDir, Mode: domain.ModeFull})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	var cycles int
	for _, pathErr := range result.Errors {
		if pathErr.Kind == domain.ErrCyclicLink {
			cycles++
		}
	}
	if cycles != 1 {
		t.Errorf("Cyclic link errors = %d, want 1", cycles)
	}

	sub := childByName(result.Root, "sub")
	if sub == nil {
		t.Fatal("Missing sub directory node")
	}
	loop := childByName(sub, "loop")
	if loop == nil || loop.Err != domain.ErrCyclicLink {
		t.Errorf("loop node = %+v, want ErrCyclicLink", loop)
	}
}

func TestUnreadableDirIsRecordedNotFatal(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("running as root, permission checks are bypassed")
	}
	tmpDir := t.TempDir()
	writeFixtureFile(t, filepath.Join(tmpDir, "open.txt"), 10)
	sealed := filepath.Join(tmpDir, "sealed")
	writeFixtureFile(t, filepath.Join(sealed, "hidden.txt"), 10)
	if err := os.Chmod(sealed, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(sealed, 0o755) })

	scanner := NewFSScanner()
	result, err := scanner.Scan(context.Background(), ScanOptions{Root: tmpDir, Mode: domain.ModeFull})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if !result.Completed {
		t.Error("Per-directory errors must not abort the scan")
	}

	node := childByName(result.Root, "sealed")
	if node == nil || node.Err != domain.ErrAccessDenied {
		t.Errorf("sealed node = %+v, want ErrAccessDenied", node)
	}
	if result.Stats.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", result.Stats.ErrorCount)
	}
}

func TestScanSurfacesWarningsThroughProgress(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("running as root, permission checks are bypassed")
	}
	tmpDir := t.TempDir()
	sealed := filepath.Join(tmpDir, "sealed")
	writeFixtureFile(t, filepath.Join(sealed, "hidden.txt"), 10)
	if err := os.Chmod(sealed, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(sealed, 0o755) })

	scanner := NewFSScanner()
	if _, err := scanner.Scan(context.Background(), ScanOptions{Root: tmpDir, Mode: domain.ModeFull}); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	var warning string
	for progressMsg := range scanner.Progress() {
		if progressMsg.ErrMessage != "" {
			warning = progressMsg.ErrMessage
		}
	}
	if !strings.Contains(warning, "sealed") {
		t.Errorf("warning = %q, want the unreadable path surfaced", warning)
	}
}

func TestScanProgressReportsCompletion(t *testing.T) {
	tmpDir := t.TempDir()
	writeFixtureFile(t, filepath.Join(tmpDir, "a.txt"), 10)

	scanner := NewFSScanner()
	result, err := scanner.Scan(context.Background(), ScanOptions{Root: tmpDir, Mode: domain.ModeFull})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if !result.Completed {
		t.Fatal("Expected completed scan")
	}

	var final ScanProgress
	for progressMsg := range scanner.Progress() {
		final = progressMsg
	}
	if !final.Completed {
		t.Error("Last progress update should be marked completed")
	}
	if final.Percent != 100 {
		t.Errorf("Final percent = %v, want 100", final.Percent)
	}
}
