package config

import "diskmap/internal/domain"

type Config struct {
	Path         string          `json:"path"`
	Mode         domain.ScanMode `json:"mode"`
	MaxDepth     int             `json:"maxDepth"`
	ExtraExclude []string        `json:"extraExclude"`
	Theme        string          `json:"theme"`
}

type fileConfig struct {
	Path         *string  `json:"path"`
	Mode         *string  `json:"mode"`
	MaxDepth     *int     `json:"maxDepth"`
	ExtraExclude []string `json:"extraExclude"`
	Theme        *string  `json:"theme"`
}
