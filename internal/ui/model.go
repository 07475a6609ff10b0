package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"diskmap/internal/config"
	"diskmap/internal/domain"
	"diskmap/internal/services"
	"diskmap/internal/state"
	"diskmap/internal/treemap"
)

type Model struct {
	session      *state.Session
	scanner      services.Scanner
	progressProv services.ProgressProvider
	keys         KeyMap
	bar          progress.Model

	status      string
	scanning    bool
	cancel      context.CancelFunc
	percent     float64
	items       int64
	etaSeconds  float64
	currentPath string

	layouter *treemap.Layouter
	entries  []treemap.Entry
	selected int

	width      int
	height     int
	resizeSeq  int
	showHelp   bool
	showErrors bool
}

// Relayout waits out a resize burst instead of recomputing on every
// intermediate size the terminal reports while being dragged.
const resizeDebounce = 100 * time.Millisecond

type ConfigProvider interface {
	ConfigSnapshot() config.Config
}

func NewModel(session *state.Session, scanner services.Scanner) Model {
	return Model{
		session:      session,
		scanner:      scanner,
		progressProv: progressProvider(scanner),
		keys:         DefaultKeyMap(),
		bar:          progress.New(progress.WithDefaultGradient()),
		status:       "Ready - press s to scan",
		width:        100,
		height:       30,
	}
}

func (model Model) WithStatus(message string) Model {
	if message != "" {
		model.status = message
	}
	return model
}

func (model Model) ConfigSnapshot() config.Config {
	return model.session.ConfigSnapshot()
}

func (model Model) Init() tea.Cmd {
	return nil
}

func (model Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return model.handleKey(typed)
	case tea.WindowSizeMsg:
		model.width = typed.Width
		model.height = typed.Height
		model.bar.Width = barWidth(typed.Width)
		model.resizeSeq++
		seq := model.resizeSeq
		return model, tea.Tick(resizeDebounce, func(time.Time) tea.Msg {
			return relayoutMsg{seq: seq}
		})
	case relayoutMsg:
		if typed.seq == model.resizeSeq {
			model.relayout()
		}
		return model, nil
	case scanResultMsg:
		return model.handleScanResult(typed)
	case scanProgressMsg:
		return model.handleScanProgress(typed)
	default:
		return model, nil
	}
}

func (model Model) handleScanResult(msg scanResultMsg) (tea.Model, tea.Cmd) {
	model.scanning = false
	model.cancel = nil
	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			model.status = "Scan cancelled"
			return model, nil
		}
		model.status = fmt.Sprintf("Scan error: %v", msg.err)
		return model, nil
	}

	result := msg.result
	model.session.SetResult(result.Root, result.Stats, result.Completed, result.Errors)
	model.layouter = treemap.NewLayouter(result.Root)
	model.selected = 0
	model.relayout()

	verb := "Scan complete"
	if !result.Completed {
		verb = "Partial scan"
	}
	model.status = fmt.Sprintf("%s: %s files, %s dirs, %s in %s",
		verb,
		humanize.Comma(result.Stats.FileCount),
		humanize.Comma(result.Stats.DirCount),
		humanize.IBytes(uint64(result.Stats.ScannedBytes)),
		result.Stats.Elapsed.Round(time.Millisecond))
	if result.Stats.ErrorCount > 0 {
		model.status += fmt.Sprintf(" (%d errors, press e)", result.Stats.ErrorCount)
	}
	return model, nil
}

func (model Model) handleScanProgress(msg scanProgressMsg) (tea.Model, tea.Cmd) {
	if msg.progress.ErrMessage != "" {
		model.status = fmt.Sprintf("Scan warning: %s", msg.progress.ErrMessage)
		return model, model.progressCmd()
	}
	if msg.progress.Completed {
		if model.scanning {
			return model, model.progressCmd()
		}
		return model, nil
	}
	model.percent = msg.progress.Percent
	model.items = msg.progress.ItemsScanned
	model.etaSeconds = msg.progress.EtaSeconds
	model.currentPath = msg.progress.Current
	return model, model.progressCmd()
}

func (model Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, model.keys.Quit):
		model = model.cancelScan("")
		return model, tea.Quit
	case key.Matches(msg, model.keys.Help):
		model.showHelp = !model.showHelp
		return model, nil
	case key.Matches(msg, model.keys.Errors):
		model.showErrors = !model.showErrors
		return model, nil
	case key.Matches(msg, model.keys.Scan):
		return model.beginScan()
	case key.Matches(msg, model.keys.Mode):
		mode := model.session.ToggleMode()
		model.status = fmt.Sprintf("Scan mode: %s - press s to rescan", mode)
		return model, nil
	case key.Matches(msg, model.keys.Cancel):
		if model.scanning {
			model = model.cancelScan("Cancelling...")
			return model, nil
		}
		return model.zoomOut()
	case key.Matches(msg, model.keys.Back):
		return model.zoomOut()
	case key.Matches(msg, model.keys.Enter):
		return model.zoomIn()
	case key.Matches(msg, model.keys.Up):
		model.moveSelection(0, -1)
		return model, nil
	case key.Matches(msg, model.keys.Down):
		model.moveSelection(0, 1)
		return model, nil
	case key.Matches(msg, model.keys.Left):
		model.moveSelection(-1, 0)
		return model, nil
	case key.Matches(msg, model.keys.Right):
		model.moveSelection(1, 0)
		return model, nil
	default:
		return model, nil
	}
}

func (model Model) beginScan() (tea.Model, tea.Cmd) {
	model = model.cancelScan("")
	opts := services.DefaultOptions(model.session.Path, model.session.Prefs.Mode)
	if model.session.Prefs.MaxDepth > 0 {
		opts.MaxDepth = model.session.Prefs.MaxDepth
	}
	opts.ExcludedPaths = append(opts.ExcludedPaths, model.session.Prefs.ExtraExclude...)

	ctx, cancel := context.WithCancel(context.Background())
	model.cancel = cancel
	model.scanning = true
	model.percent = 0
	model.items = 0
	model.etaSeconds = -1
	model.currentPath = ""
	model.status = fmt.Sprintf("Scanning %s (%s mode)...", opts.Root, opts.Mode)
	return model, tea.Batch(model.scanCmd(ctx, opts), model.progressCmd())
}

func (model Model) scanCmd(ctx context.Context, opts services.ScanOptions) tea.Cmd {
	return func() tea.Msg {
		result, err := model.scanner.Scan(ctx, opts)
		return scanResultMsg{result: result, err: err}
	}
}

func (model Model) progressCmd() tea.Cmd {
	if model.progressProv == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			channel := model.progressProv.Progress()
			if channel == nil {
				time.Sleep(50 * time.Millisecond)
				continue
			}
			progressMsg, ok := <-channel
			if !ok {
				// The channel closes when a scan ends; a restart swaps in
				// a fresh one shortly after. Pause so the re-armed command
				// does not spin on the closed channel in between.
				time.Sleep(50 * time.Millisecond)
				return scanProgressMsg{progress: services.ScanProgress{Completed: true}}
			}
			return scanProgressMsg{progress: progressMsg}
		}
	}
}

func (model Model) cancelScan(message string) Model {
	if model.cancel != nil {
		model.cancel()
		model.cancel = nil
	}
	if message != "" {
		model.status = message
	}
	return model
}

func (model Model) zoomIn() (tea.Model, tea.Cmd) {
	node := model.selectedNode()
	if node == nil {
		return model, nil
	}
	if model.session.Drill(node) {
		model.selected = 0
		model.relayout()
		model.status = model.session.Breadcrumb()
	}
	return model, nil
}

func (model Model) zoomOut() (tea.Model, tea.Cmd) {
	if model.session.Ascend() {
		model.selected = 0
		model.relayout()
		model.status = model.session.Breadcrumb()
	}
	return model, nil
}

func (model *Model) selectedNode() *domain.FileNode {
	if model.selected < 0 || model.selected >= len(model.entries) {
		return nil
	}
	return model.entries[model.selected].Node
}

// relayout recomputes the treemap for the current focus and window. The
// layouter is pure, so this is safe on every resize; colors stay stable
// because they derive only from node identity.
func (model *Model) relayout() {
	model.entries = nil
	if model.layouter == nil || !model.session.HasResult() {
		return
	}
	gridW, gridH := model.mapSize()
	if gridW < 2 || gridH < 2 {
		return
	}
	rect := treemap.Rect{W: float64(gridW), H: float64(gridH)}
	model.entries = model.layouter.Layout(model.session.Focus(), rect)
	if model.selected >= len(model.entries) {
		model.selected = 0
	}
}

// moveSelection picks the nearest block whose center lies in the
// requested direction from the current block's center.
func (model *Model) moveSelection(dx, dy int) {
	if len(model.entries) == 0 {
		return
	}
	if model.selected < 0 || model.selected >= len(model.entries) {
		model.selected = 0
		return
	}
	cx, cy := blockCenter(model.entries[model.selected].Rect)

	best := -1
	bestDist := -1
	for i := range model.entries {
		if i == model.selected {
			continue
		}
		bx, by := blockCenter(model.entries[i].Rect)
		if dx > 0 && bx <= cx {
			continue
		}
		if dx < 0 && bx >= cx {
			continue
		}
		if dy > 0 && by <= cy {
			continue
		}
		if dy < 0 && by >= cy {
			continue
		}
		dist := abs(bx-cx) + abs(by-cy)
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	if best >= 0 {
		model.selected = best
	}
}

func blockCenter(rect treemap.Rect) (int, int) {
	x, y, w, h := rect.Snap()
	return x + w/2, y + h/2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func barWidth(width int) int {
	barW := width - 30
	if barW < 10 {
		barW = 10
	}
	if barW > 60 {
		barW = 60
	}
	return barW
}

func progressProvider(scanner services.Scanner) services.ProgressProvider {
	provider, _ := scanner.(services.ProgressProvider)
	return provider
}
