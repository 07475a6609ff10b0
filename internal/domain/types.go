package domain

import "time"

type ScanMode string

const (
	ModeQuick ScanMode = "quick"
	ModeFull  ScanMode = "full"
)

type ErrKind int

const (
	ErrNone ErrKind = iota
	ErrAccessDenied
	ErrIOFailure
	ErrCyclicLink
	ErrNotFound
)

func (kind ErrKind) String() string {
	switch kind {
	case ErrAccessDenied:
		return "access denied"
	case ErrIOFailure:
		return "io failure"
	case ErrCyclicLink:
		return "cyclic link"
	case ErrNotFound:
		return "not found"
	default:
		return "none"
	}
}

type PathError struct {
	Path string
	Kind ErrKind
	Err  error
}

func (pathErr PathError) Error() string {
	if pathErr.Err != nil {
		return pathErr.Path + ": " + pathErr.Err.Error()
	}
	return pathErr.Path + ": " + pathErr.Kind.String()
}

type DiskStats struct {
	TotalBytes   int64
	UsedBytes    int64
	FreeBytes    int64
	FileCount    int64
	DirCount     int64
	ScannedBytes int64
	ErrorCount   int64
	LargestPath  string
	LargestSize  int64
	Elapsed      time.Duration
}
