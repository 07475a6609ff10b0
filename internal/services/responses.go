package services

import "diskmap/internal/domain"

type ScanResult struct {
	Root      *domain.FileNode
	Stats     domain.DiskStats
	Completed bool
	Errors    []domain.PathError
}
