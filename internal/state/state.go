package state

import (
	"strings"

	"diskmap/internal/config"
	"diskmap/internal/domain"
)

type Preferences struct {
	Mode         domain.ScanMode
	MaxDepth     int
	ExtraExclude []string
	Theme        string
}

// Session holds what the UI needs between renders: the immutable result
// of the last finished scan and the drill-down position inside it. It
// never aliases a tree still being written by a running scan.
type Session struct {
	Path      string
	Prefs     Preferences
	Root      *domain.FileNode
	Stats     domain.DiskStats
	Completed bool
	Errors    []domain.PathError
	focus     []*domain.FileNode
}

func NewSession(cfg config.Config) *Session {
	return &Session{
		Path: cfg.Path,
		Prefs: Preferences{
			Mode:         cfg.Mode,
			MaxDepth:     cfg.MaxDepth,
			ExtraExclude: cfg.ExtraExclude,
			Theme:        cfg.Theme,
		},
	}
}

func (session *Session) SetResult(root *domain.FileNode, stats domain.DiskStats, completed bool, errs []domain.PathError) {
	session.Root = root
	session.Stats = stats
	session.Completed = completed
	session.Errors = errs
	session.focus = nil
}

func (session *Session) HasResult() bool {
	return session.Root != nil
}

// Focus is the directory whose children the treemap currently shows.
func (session *Session) Focus() *domain.FileNode {
	if len(session.focus) == 0 {
		return session.Root
	}
	return session.focus[len(session.focus)-1]
}

func (session *Session) Drill(node *domain.FileNode) bool {
	if node == nil || !node.IsDir || len(node.Children) == 0 {
		return false
	}
	session.focus = append(session.focus, node)
	return true
}

func (session *Session) Ascend() bool {
	if len(session.focus) == 0 {
		return false
	}
	session.focus = session.focus[:len(session.focus)-1]
	return true
}

func (session *Session) AtRoot() bool {
	return len(session.focus) == 0
}

func (session *Session) Breadcrumb() string {
	if session.Root == nil {
		return session.Path
	}
	parts := []string{session.Root.Name}
	for _, node := range session.focus {
		parts = append(parts, node.Name)
	}
	return strings.Join(parts, " / ")
}

func (session *Session) ToggleMode() domain.ScanMode {
	if session.Prefs.Mode == domain.ModeQuick {
		session.Prefs.Mode = domain.ModeFull
	} else {
		session.Prefs.Mode = domain.ModeQuick
	}
	return session.Prefs.Mode
}

func (session *Session) ConfigSnapshot() config.Config {
	return config.Config{
		Path:         session.Path,
		Mode:         session.Prefs.Mode,
		MaxDepth:     session.Prefs.MaxDepth,
		ExtraExclude: session.Prefs.ExtraExclude,
		Theme:        session.Prefs.Theme,
	}
}
