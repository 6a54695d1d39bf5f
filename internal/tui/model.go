package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"zipsweep/internal/actions"
	"zipsweep/internal/config"
	"zipsweep/internal/engine"
	"zipsweep/internal/scanner"
	"zipsweep/internal/volume"
)

type status int

const (
	statusPick status = iota
	statusScanning
	statusReady
	statusConfirm
	statusFinalConfirm
	statusProcessing
	statusDone
)

type model struct {
	eng *engine.Engine
	cfg config.UIConfig

	sp  spinner.Model
	bar progress.Model

	st   status
	root string

	// volume picker
	vols      []volume.Volume
	volCursor int

	// result panes; active is 0 for duplicates, 1 for orphans
	lists  [2]itemList
	active int

	sortBy      string // "size" or "path"
	sortReverse bool

	opts actions.Options

	ratio   int
	logs    []string
	lastOut actions.Outcome
	lastErr error

	termW int
	termH int

	showHelp bool
}

func newModel(eng *engine.Engine, cfg *config.Config, root string, vols []volume.Volume) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := model{
		eng:    eng,
		cfg:    cfg.UI,
		sp:     sp,
		bar:    progress.New(progress.WithDefaultGradient()),
		st:     statusPick,
		root:   root,
		vols:   vols,
		sortBy: "path",
		opts: actions.Options{
			DryRun:           cfg.Actions.DryRun,
			DeleteDuplicates: cfg.Actions.DeleteDuplicates,
			CompressOrphans:  cfg.Actions.CompressOrphans,
		},
		lists: [2]itemList{newItemList("Duplicates Found", nil), newItemList("Orphans Found", nil)},
	}
	if root != "" {
		m.st = statusScanning
	}
	return m
}

// Run starts the interactive UI. With an empty root the user picks a volume.
func Run(eng *engine.Engine, cfg *config.Config, root string, vols []volume.Volume) error {
	m := newModel(eng, cfg, root, vols)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	eng.Close()
	return err
}

// messages
type tickMsg time.Time
type scanDoneMsg struct{ res scanner.Result }
type actionDoneMsg struct{ out actions.Outcome }
type startErrMsg struct{ err error }

func (m model) tick() tea.Cmd {
	return tea.Tick(m.cfg.Tick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.sp.Tick, m.tick()}
	if m.root != "" {
		cmds = append(cmds, m.startScan(m.root))
	}
	return tea.Batch(cmds...)
}

func (m model) startScan(root string) tea.Cmd {
	return func() tea.Msg {
		ch, err := m.eng.StartScan(root)
		if err != nil {
			return startErrMsg{err: err}
		}
		return scanDoneMsg{res: <-ch}
	}
}

func (m model) startAction(items []scanner.FileItem) tea.Cmd {
	opts := m.opts
	return func() tea.Msg {
		ch, err := m.eng.StartAction(items, opts)
		if err != nil {
			return startErrMsg{err: err}
		}
		return actionDoneMsg{out: <-ch}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.termW, m.termH = msg.Width, msg.Height
		m.bar.Width = msg.Width - 4
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.sp, cmd = m.sp.Update(msg)
		return m, cmd
	case tickMsg:
		m.drainEvents()
		return m, m.tick()
	case scanDoneMsg:
		m.drainEvents()
		m.lastErr = msg.res.Err
		dups, orphans := msg.res.Split()
		if msg.res.Status != scanner.Failed {
			m.lists[0] = newItemList("Duplicates Found", dups)
			m.lists[1] = newItemList("Orphans Found", orphans)
			m.applySort()
		}
		m.st = statusReady
		return m, nil
	case actionDoneMsg:
		m.drainEvents()
		m.lastOut = msg.out
		if !m.opts.DryRun {
			gone := make(map[string]struct{}, len(msg.out.Consumed))
			for _, it := range msg.out.Consumed {
				gone[it.Path] = struct{}{}
			}
			m.lists[0].removeConsumed(gone)
			m.lists[1].removeConsumed(gone)
		}
		m.st = statusDone
		return m, nil
	case startErrMsg:
		if !errors.Is(msg.err, engine.ErrCancelRequested) {
			m.lastErr = msg.err
			m.appendLog(time.Now(), fmt.Sprintf("Cannot start: %v", msg.err))
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c":
		m.eng.Close()
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	}

	switch m.st {
	case statusPick:
		switch key {
		case "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.volCursor > 0 {
				m.volCursor--
			}
		case "down", "j":
			if m.volCursor < len(m.vols)-1 {
				m.volCursor++
			}
		case "enter":
			if len(m.vols) == 0 {
				return m, nil
			}
			m.root = m.vols[m.volCursor].Root()
			return m.beginScan()
		}
	case statusScanning:
		switch key {
		case "s", "esc":
			// the pending scan cmd delivers the cancelled result
			m.eng.CancelScan()
			return m, nil
		case "q":
			m.eng.CancelScan()
			return m, tea.Quit
		}
	case statusReady:
		return m.handleReadyKey(key)
	case statusConfirm:
		switch key {
		case "y":
			if m.opts.DryRun {
				return m.beginAction()
			}
			m.st = statusFinalConfirm
		case "n", "esc", "q":
			m.st = statusReady
		}
	case statusFinalConfirm:
		switch key {
		case "y":
			return m.beginAction()
		case "n", "esc", "q":
			m.st = statusReady
		}
	case statusProcessing:
		switch key {
		case "p", "esc":
			m.eng.CancelAction()
			return m, nil
		case "q":
			m.eng.CancelAction()
			return m, tea.Quit
		}
	case statusDone:
		if key == "q" {
			return m, tea.Quit
		}
		m.st = statusReady
	}
	return m, nil
}

func (m model) handleReadyKey(key string) (tea.Model, tea.Cmd) {
	l := &m.lists[m.active]
	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "tab":
		m.active = 1 - m.active
	case "up", "k":
		l.move(-1)
	case "down", "j":
		l.move(1)
	case " ":
		l.toggle()
	case "a":
		l.toggleAll()
	case "D":
		m.opts.DeleteDuplicates = !m.opts.DeleteDuplicates
	case "C":
		m.opts.CompressOrphans = !m.opts.CompressOrphans
	case "x":
		m.opts.DryRun = !m.opts.DryRun
	case "o":
		if m.sortBy == "size" {
			m.sortBy = "path"
		} else {
			m.sortBy = "size"
		}
		m.applySort()
	case "r":
		m.sortReverse = !m.sortReverse
		m.applySort()
	case "s":
		return m.beginScan()
	case "v":
		if len(m.vols) > 0 {
			m.st = statusPick
		}
	case "p", "enter":
		if len(m.actionItems()) > 0 {
			m.st = statusConfirm
		}
	}
	return m, nil
}

func (m model) beginScan() (tea.Model, tea.Cmd) {
	m.eng.Events().Reset()
	m.logs = nil
	m.ratio = 0
	m.lastErr = nil
	m.lists = [2]itemList{newItemList("Duplicates Found", nil), newItemList("Orphans Found", nil)}
	m.st = statusScanning
	return m, m.startScan(m.root)
}

func (m model) beginAction() (tea.Model, tea.Cmd) {
	items := m.actionItems()
	m.ratio = 0
	m.st = statusProcessing
	return m, m.startAction(items)
}

// actionItems is the selection the enabled actions would touch.
func (m *model) actionItems() []scanner.FileItem {
	var out []scanner.FileItem
	if m.opts.DeleteDuplicates {
		out = append(out, m.lists[0].selected()...)
	}
	if m.opts.CompressOrphans {
		out = append(out, m.lists[1].selected()...)
	}
	return out
}

func (m *model) applySort() {
	m.lists[0].sortBy(m.sortBy, m.sortReverse)
	m.lists[1].sortBy(m.sortBy, m.sortReverse)
}

// drainEvents pulls at most one tick's budget of events off the channel.
func (m *model) drainEvents() {
	for _, ev := range m.eng.Events().Drain(m.cfg.DrainBudget) {
		if ev.HasRatio {
			m.ratio = ev.Ratio
			continue
		}
		m.appendLog(ev.Time, ev.Message)
	}
}

func (m *model) appendLog(at time.Time, msg string) {
	m.logs = append(m.logs, fmt.Sprintf("[%s] %s", at.Format("15:04:05"), msg))
	if limit := m.cfg.LogMaxLines; limit > 0 && len(m.logs) > limit {
		keep := min(m.cfg.LogKeepLines, len(m.logs))
		m.logs = append([]string(nil), m.logs[len(m.logs)-keep:]...)
	}
}

func (m model) View() string {
	var b strings.Builder
	switch m.st {
	case statusPick:
		b.WriteString(headerStyle.Render("Select a volume to scan") + "\n\n")
		if len(m.vols) == 0 {
			b.WriteString("No local volumes found. Run with --path to scan a directory.\n")
		}
		for i, v := range m.vols {
			prefix := "  "
			if i == m.volCursor {
				prefix = cursorStyle.Render(">") + " "
			}
			b.WriteString(prefix + v.Display() + "\n")
		}
		b.WriteString("\n↑↓ move, enter scan, q quit\n")
	case statusConfirm:
		b.WriteString(m.confirmText())
	case statusFinalConfirm:
		b.WriteString(warnStyle.Render("Are you REALLY sure? This action cannot be undone!") + " (y/N)\n")
	case statusDone:
		b.WriteString(m.doneText())
		b.WriteString(m.logView(m.logHeight()))
	default:
		b.WriteString(m.headerText())
		listH := m.listHeight()
		b.WriteString(m.lists[0].render(listH, m.active == 0 && m.st == statusReady))
		b.WriteString(m.lists[1].render(listH, m.active == 1 && m.st == statusReady))
		b.WriteString("\n" + m.bar.ViewAs(float64(m.ratio)/100) + "\n")
		b.WriteString(m.statusLine() + "\n")
		b.WriteString(m.logView(m.logHeight()))
	}
	if m.showHelp {
		b.WriteString("\n" + m.helpText())
	}
	return b.String()
}

func (m *model) headerText() string {
	opts := strings.Join([]string{
		option("Delete Duplicates (D)", m.opts.DeleteDuplicates),
		option("Compress Orphans (C)", m.opts.CompressOrphans),
		option("Dry Run Mode (x)", m.opts.DryRun),
	}, "  ")
	return fmt.Sprintf("%s  %s\n%s\n\n", headerStyle.Render("Root:"), m.root, opts)
}

func (m *model) statusLine() string {
	switch m.st {
	case statusScanning:
		return fmt.Sprintf("%s Scanning... %d%%  (s/esc cancel)", m.sp.View(), m.ratio)
	case statusProcessing:
		mode := ""
		if m.opts.DryRun {
			mode = " [dry-run]"
		}
		return fmt.Sprintf("%s Processing files%s... %d%%  (p/esc cancel)", m.sp.View(), mode, m.ratio)
	default:
		sel := m.lists[0].selectedSize() + m.lists[1].selectedSize()
		s := fmt.Sprintf("Ready. Duplicates: %d  Orphans: %d  Selected: %s  | ? help", len(m.lists[0].items), len(m.lists[1].items), humanize.IBytes(uint64(sel)))
		if m.lastErr != nil {
			s += "  " + warnStyle.Render(m.lastErr.Error())
		}
		return s
	}
}

func (m *model) confirmText() string {
	dups := 0
	if m.opts.DeleteDuplicates {
		dups = m.lists[0].selectedCount()
	}
	orphans := 0
	if m.opts.CompressOrphans {
		orphans = m.lists[1].selectedCount()
	}
	s := "Process selected items?\n\n"
	if dups > 0 {
		s += fmt.Sprintf("- Delete %d duplicates\n", dups)
	}
	if orphans > 0 {
		s += fmt.Sprintf("- Compress %d orphans\n", orphans)
	}
	if m.opts.DryRun {
		s += "\n(dry run: nothing will be changed)\n"
	} else {
		s += "\n" + warnStyle.Render("WARNING: Files will be permanently modified/deleted!") + "\n"
	}
	return s + "Press y to confirm, n/esc to cancel.\n"
}

func (m *model) doneText() string {
	out := m.lastOut
	mode := ""
	if m.opts.DryRun {
		mode = " (dry-run; no files changed)"
	}
	s := fmt.Sprintf("Processing %s%s. Deleted: %d  Compressed: %d  Freed: %s  Failures: %d\n",
		out.Status, mode, out.Deleted, out.Compressed, humanize.IBytes(uint64(out.Freed)), len(out.Failures))
	for _, f := range out.Failures {
		s += fmt.Sprintf(" - %s: %v\n", f.Item.Path, f.Err)
	}
	return s + "Press q to quit or any key to return.\n\n"
}

func (m *model) logView(height int) string {
	start := len(m.logs) - height
	if start < 0 {
		start = 0
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("Log:") + "\n")
	for _, l := range m.logs[start:] {
		if r := []rune(l); m.termW > 0 && len(r) > m.termW {
			l = string(r[:m.termW])
		}
		b.WriteString(logStyle.Render(l) + "\n")
	}
	return b.String()
}

func (m *model) listHeight() int {
	if m.termH <= 0 {
		return 8
	}
	h := (m.termH - 16) / 3
	if h < 3 {
		h = 3
	}
	return h
}

func (m *model) logHeight() int {
	if m.termH <= 0 {
		return 8
	}
	h := m.termH - 2*m.listHeight() - 12
	if h < 3 {
		h = 3
	}
	return h
}

func (m *model) helpText() string {
	lines := []string{
		"Help (press ? to close):",
		"  tab       Switch between duplicates and orphans",
		"  ↑/k, ↓/j  Move cursor",
		"  space     Toggle selection",
		"  a         Select all / none in the current list",
		"  D / C / x Toggle delete, compress, dry run",
		"  o / r     Sort field (path/size), reverse",
		"  p/enter   Process selected (again to cancel)",
		"  s         Scan again (again to cancel)",
		"  v         Pick another volume",
		"  q/esc     Quit",
	}
	return lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder()).Render(strings.Join(lines, "\n"))
}
