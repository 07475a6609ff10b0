package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"diskmap/internal/treemap"
)

type uiStyles struct {
	headerStyle lipgloss.Style
	mutedStyle  lipgloss.Style
	statusStyle lipgloss.Style
	warnStyle   lipgloss.Style
}

func stylesFor(model Model) uiStyles {
	if strings.ToLower(model.session.Prefs.Theme) == "light" {
		return uiStyles{
			headerStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("235")),
			mutedStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
			statusStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("25")).Bold(true),
			warnStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("124")).Bold(true),
		}
	}
	return uiStyles{
		headerStyle: lipgloss.NewStyle().Bold(true),
		mutedStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		statusStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true),
		warnStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Bold(true),
	}
}

func (model Model) View() string {
	styles := stylesFor(model)
	if model.showHelp {
		return renderHelpView(styles)
	}
	if model.showErrors {
		return renderErrorsView(model, styles)
	}

	header := renderHeader(model, styles)
	footer := renderFooter(model, styles)
	if model.scanning {
		return strings.Join([]string{header, renderScanProgress(model, styles), footer}, "\n")
	}
	return strings.Join([]string{header, renderMap(model), footer}, "\n")
}

func renderHeader(model Model, styles uiStyles) string {
	title := styles.headerStyle.Render("diskmap")
	crumb := styles.mutedStyle.Render(model.session.Breadcrumb())
	stats := ""
	if model.session.HasResult() && model.session.Stats.TotalBytes > 0 {
		diskStats := model.session.Stats
		stats = styles.mutedStyle.Render(fmt.Sprintf("  total %s  used %s  free %s",
			humanize.IBytes(uint64(diskStats.TotalBytes)),
			humanize.IBytes(uint64(diskStats.UsedBytes)),
			humanize.IBytes(uint64(diskStats.FreeBytes))))
	}
	return fmt.Sprintf("%s  %s%s", title, crumb, stats)
}

func renderScanProgress(model Model, styles uiStyles) string {
	mapW, mapH := model.mapSize()
	lines := []string{
		"",
		"  " + model.bar.ViewAs(model.percent/100),
		styles.statusStyle.Render(fmt.Sprintf("  %.1f%%  %s items  ETA %s",
			model.percent,
			humanize.Comma(model.items),
			etaText(model.etaSeconds))),
	}
	if model.currentPath != "" {
		lines = append(lines, styles.mutedStyle.Render("  "+trimPath(model.currentPath, mapW-4)))
	}
	for len(lines) < mapH {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func etaText(seconds float64) string {
	if seconds < 0 {
		return "estimating..."
	}
	total := int(seconds + 0.5)
	if total >= 60 {
		return fmt.Sprintf("%dm%02ds", total/60, total%60)
	}
	return fmt.Sprintf("%ds", total)
}

func renderFooter(model Model, styles uiStyles) string {
	statusStyle := styles.mutedStyle
	lower := strings.ToLower(model.status)
	if strings.Contains(lower, "error") || strings.Contains(lower, "warning") {
		statusStyle = styles.warnStyle
	}
	statusLine := statusStyle.Render(trimPath(model.status, model.width))

	mode := fmt.Sprintf("Mode: %s", strings.ToUpper(string(model.session.Prefs.Mode)))
	keys := "↑↓←→ move  enter zoom  backspace out  s scan  m mode  e errors  ? help  q quit"
	if model.scanning {
		keys = "esc cancel  q quit"
	}
	return statusLine + "\n" + styles.mutedStyle.Render(mode+"  "+keys)
}

// renderMap paints the layout entries into a character grid. Every cell
// of a block shares the block's background color; the selected block is
// drawn with an inverted border so it stands out without changing hue.
func renderMap(model Model) string {
	gridW, gridH := model.mapSize()
	if gridW < 2 || gridH < 2 {
		return ""
	}

	if len(model.entries) == 0 {
		empty := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
		pad := strings.Repeat("\n", gridH/2)
		return pad + empty.Render("  No data - press s to scan") + strings.Repeat("\n", gridH-gridH/2-1)
	}

	cells := make([][]rune, gridH)
	cellStyles := make([][]lipgloss.Style, gridH)
	blank := lipgloss.NewStyle()
	for y := range cells {
		cells[y] = make([]rune, gridW)
		cellStyles[y] = make([]lipgloss.Style, gridW)
		for x := range cells[y] {
			cells[y][x] = ' '
			cellStyles[y][x] = blank
		}
	}

	for i, entry := range model.entries {
		drawBlock(cells, cellStyles, entry, i == model.selected, gridW, gridH)
	}

	lines := make([]string, gridH)
	for y := 0; y < gridH; y++ {
		var line strings.Builder
		for x := 0; x < gridW; x++ {
			line.WriteString(cellStyles[y][x].Render(string(cells[y][x])))
		}
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}

func drawBlock(cells [][]rune, cellStyles [][]lipgloss.Style, entry treemap.Entry, selected bool, gridW, gridH int) {
	x, y, w, h := entry.Rect.Snap()
	if w < 1 || h < 1 {
		return
	}

	background := lipgloss.Color(entry.Color.Hex())
	foreground := lipgloss.Color("#1a1a1a")
	if _, _, light := entry.Color.Hsl(); light < 0.5 {
		foreground = lipgloss.Color("#f0f0f0")
	}
	blockStyle := lipgloss.NewStyle().Background(background).Foreground(foreground)
	borderStyle := blockStyle
	if selected {
		borderStyle = borderStyle.Reverse(true).Bold(true)
	}

	for row := y; row < y+h && row < gridH; row++ {
		if row < 0 {
			continue
		}
		for col := x; col < x+w && col < gridW; col++ {
			if col < 0 {
				continue
			}
			onEdge := row == y || row == y+h-1 || col == x || col == x+w-1
			if onEdge {
				cells[row][col] = edgeRune(row, col, x, y, w, h)
				cellStyles[row][col] = borderStyle
			} else {
				cells[row][col] = ' '
				cellStyles[row][col] = blockStyle
			}
		}
	}

	writeLabel(cells, cellStyles, entry, blockStyle, x, y, w, h, gridW, gridH)
}

func edgeRune(row, col, x, y, w, h int) rune {
	switch {
	case row == y && col == x:
		return '┌'
	case row == y && col == x+w-1:
		return '┐'
	case row == y+h-1 && col == x:
		return '└'
	case row == y+h-1 && col == x+w-1:
		return '┘'
	case row == y || row == y+h-1:
		return '─'
	default:
		return '│'
	}
}

func writeLabel(cells [][]rune, cellStyles [][]lipgloss.Style, entry treemap.Entry, style lipgloss.Style, x, y, w, h, gridW, gridH int) {
	if w < 6 || h < 3 {
		return
	}
	label := entry.Node.Name
	if entry.Node.IsDir {
		label += "/"
	}
	writeText(cells, cellStyles, label, style, x+2, y+1, x+w-2, gridW, gridH)
	if h > 3 {
		writeText(cells, cellStyles, humanize.IBytes(uint64(entry.Node.Size)), style, x+2, y+2, x+w-2, gridW, gridH)
	}
}

func writeText(cells [][]rune, cellStyles [][]lipgloss.Style, text string, style lipgloss.Style, x, y, limit, gridW, gridH int) {
	if y < 0 || y >= gridH {
		return
	}
	col := x
	for _, r := range text {
		if col >= limit || col >= gridW {
			return
		}
		if col >= 0 {
			cells[y][col] = r
			cellStyles[y][col] = style
		}
		col++
	}
}

func renderErrorsView(model Model, styles uiStyles) string {
	var builder strings.Builder
	builder.WriteString(styles.headerStyle.Render("Scan errors") + "\n\n")
	errs := model.session.Errors
	if len(errs) == 0 {
		builder.WriteString(styles.mutedStyle.Render("  none") + "\n")
	}
	limit := model.height - 5
	for i, pathErr := range errs {
		if i >= limit {
			builder.WriteString(styles.mutedStyle.Render(fmt.Sprintf("  ... and %d more", len(errs)-i)) + "\n")
			break
		}
		line := fmt.Sprintf("  %-14s %s", pathErr.Kind, trimPath(pathErr.Path, model.width-18))
		builder.WriteString(styles.warnStyle.Render(line) + "\n")
	}
	builder.WriteString("\n" + styles.mutedStyle.Render("e back  q quit"))
	return builder.String()
}

func renderHelpView(styles uiStyles) string {
	lines := []string{
		styles.headerStyle.Render("diskmap - disk space treemap"),
		"",
		"  s          scan the configured root",
		"  m          toggle quick/full mode (quick bounds depth, skips system dirs)",
		"  ↑↓←→       move between blocks",
		"  enter      zoom into the selected directory",
		"  backspace  zoom back out",
		"  esc        cancel a running scan",
		"  e          show per-path scan errors",
		"  q          quit",
		"",
		styles.mutedStyle.Render("  ? to close help"),
	}
	return strings.Join(lines, "\n")
}

func (model Model) mapSize() (int, int) {
	height := model.height - 3
	if height < 0 {
		height = 0
	}
	return model.width, height
}

func trimPath(path string, max int) string {
	if max <= 3 {
		return path
	}
	runes := []rune(path)
	if len(runes) <= max {
		return path
	}
	return "..." + string(runes[len(runes)-max+3:])
}
