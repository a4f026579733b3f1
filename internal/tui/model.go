package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/pkarell/termlens/internal/glossary"
	"github.com/pkarell/termlens/internal/highlight"
	"github.com/pkarell/termlens/internal/history"
	"github.com/pkarell/termlens/internal/ingest"
	"github.com/pkarell/termlens/internal/overlay"
)

// Config wires runtime options into the TUI program.
type Config struct {
	DocumentPath string
	HistoryPath  string
	Explainer    *glossary.Explainer
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	return &model{
		config:        config,
		stage:         stageLoading,
		mode:          modeBrowse,
		spinner:       spin,
		viewport:      vp,
		jobs:          newJobBus(),
		lastJobs:      map[jobKind]jobSnapshot{},
		activeSpan:    -1,
		viewportDirty: true,
		infoMessage:   "Loading document…",
	}
}

type stage int

const (
	stageLoading stage = iota
	stageReading
)

type interactionMode int

const (
	modeBrowse interactionMode = iota
	modeSelect
)

const heroTagline = "Read dense documents with definitions on tap."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	recentLookupLimit         = 5
)

type renderLine struct {
	kind ingest.BlockKind
	text string
}

type docWord struct {
	line int
	col  int
	text string
}

type lineSpan struct {
	line int
	span highlight.Span
}

type model struct {
	config Config
	stage  stage
	mode   interactionMode

	spinner  spinner.Model
	viewport viewport.Model
	jobs     *jobBus
	lastJobs map[jobKind]jobSnapshot

	docText string
	lines   []renderLine
	words   []docWord

	terms      []string
	lineSpans  []lineSpan
	activeSpan int

	cursorWord int
	extent     int

	tooltip overlay.Tooltip
	record  glossary.Explanation

	lookups []history.Entry

	notice   string
	noticeID int

	infoMessage  string
	errorMessage string
	helpVisible  bool

	detectLoading  bool
	explainLoading bool

	viewportDirty bool
}

type docResultMsg struct {
	path string
	text string
	err  error
}

type detectResultMsg struct {
	terms []string
}

type explainResultMsg struct {
	term   string
	record glossary.Explanation
}

type historyResultMsg struct {
	entry history.Entry
	err   error
}

type noticeTimeoutMsg struct {
	id int
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.jobs.Start(jobKindLoad, loadDocumentJob(m.config.DocumentPath)),
	)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.stage == stageLoading || m.detectLoading || m.explainLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			if m.mode == modeSelect {
				m.mode = modeBrowse
				m.extent = 0
				m.infoMessage = "Selection canceled."
				m.markViewportDirty()
				return m, nil
			}
			if m.tooltip.State() != overlay.TooltipHidden {
				m.tooltip.Close()
				m.record = glossary.Explanation{}
				m.markViewportDirty()
				return m, nil
			}
			return m, tea.Quit
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		if m.stage == stageReading {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	case jobSignalMsg:
		m.lastJobs[msg.Snapshot.Kind] = msg.Snapshot
		return m, nil
	case jobResultEnvelope:
		m.lastJobs[msg.Snapshot.Kind] = msg.Snapshot
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case docResultMsg:
		return m.handleDocResult(msg)
	case detectResultMsg:
		m.detectLoading = false
		m.terms = msg.terms
		m.recomputeSpans()
		if len(m.lineSpans) == 0 {
			m.infoMessage = "No terms detected. Press v to select text yourself."
		} else {
			m.activeSpan = 0
			m.infoMessage = fmt.Sprintf("%d term(s) highlighted. Tab to cycle, Enter to explain.", len(m.lineSpans))
		}
		m.markViewportDirty()
		return m, nil
	case explainResultMsg:
		m.explainLoading = false
		if !m.tooltip.Show(msg.term, msg.record.Definition) {
			// A newer selection superseded this one while the provider
			// was still working. The record is cached; drop the display.
			return m, nil
		}
		m.record = msg.record
		m.errorMessage = ""
		m.infoMessage = "Definition ready. Esc to dismiss."
		m.markViewportDirty()
		if msg.record.Definition == glossary.ErrorDefinition {
			return m, nil
		}
		entry := history.Entry{
			Term:       msg.record.Term,
			Definition: msg.record.Definition,
			Category:   string(msg.record.Category),
			Source:     m.config.DocumentPath,
		}
		m.lookups = append(m.lookups, entry)
		return m, m.jobs.Start(jobKindHistory, appendHistoryJob(m.config.HistoryPath, entry))
	case historyResultMsg:
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("history write failed: %v", msg.err)
		}
		return m, nil
	case noticeTimeoutMsg:
		if msg.id == m.noticeID {
			m.notice = ""
			m.markViewportDirty()
		}
		return m, nil
	case tea.WindowSizeMsg:
		newWidth := msg.Width - viewportHorizontalPadding
		if newWidth < minViewportWidth {
			newWidth = minViewportWidth
		}
		m.viewport.Width = newWidth
		height := msg.Height - 10
		if height < 5 {
			height = 5
		}
		m.viewport.Height = height
		if m.docText != "" {
			m.rebuildContent()
		}
		m.markViewportDirty()
		return m, nil
	}
	return m, nil
}

func (m *model) handleDocResult(msg docResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.stage = stageReading
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Could not load the document. Press q to quit."
		return m, nil
	}
	m.docText = msg.text
	m.stage = stageReading
	m.rebuildContent()
	m.viewport.SetYOffset(0)
	m.errorMessage = ""
	m.markViewportDirty()

	m.detectLoading = true
	m.infoMessage = "Detecting notable terms…"
	return m, tea.Batch(
		m.spinner.Tick,
		m.jobs.Start(jobKindDetect, detectTermsJob(m.config.Explainer, ingest.PlainText(m.docText))),
	)
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.stage != stageReading {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(key)
		return m, cmd
	}
	if m.mode == modeSelect {
		return m.handleSelectKey(key)
	}

	switch key.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		m.cycleActiveSpan(1)
		return m, nil
	case "shift+tab":
		m.cycleActiveSpan(-1)
		return m, nil
	case "enter":
		return m.explainActiveSpan()
	case "d":
		if m.detectLoading {
			return m, nil
		}
		m.detectLoading = true
		m.infoMessage = "Detecting notable terms…"
		return m, tea.Batch(
			m.spinner.Tick,
			m.jobs.Start(jobKindDetect, detectTermsJob(m.config.Explainer, ingest.PlainText(m.docText))),
		)
	case "v":
		return m.enterSelectMode()
	case "x":
		m.tooltip.Close()
		m.record = glossary.Explanation{}
		m.markViewportDirty()
		return m, nil
	case "C":
		m.config.Explainer.ClearCache()
		m.infoMessage = "Cache cleared."
		return m, nil
	case "?":
		m.helpVisible = !m.helpVisible
		return m, nil
	case "g":
		m.viewport.GotoTop()
		return m, nil
	case "G":
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(key)
	return m, cmd
}

func (m *model) handleSelectKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "left", "h":
		if m.cursorWord > 0 {
			m.cursorWord--
		}
		m.markViewportDirty()
		return m, nil
	case "right", "l":
		if m.cursorWord+m.extent < len(m.words)-1 {
			m.cursorWord++
		}
		m.markViewportDirty()
		return m, nil
	case "L", "+":
		if m.cursorWord+m.extent < len(m.words)-1 {
			m.extent++
		}
		m.markViewportDirty()
		return m, nil
	case "H", "-":
		if m.extent > 0 {
			m.extent--
		}
		m.markViewportDirty()
		return m, nil
	case "enter":
		return m.resolveCurrentSelection()
	}
	return m, nil
}

func (m *model) enterSelectMode() (tea.Model, tea.Cmd) {
	if len(m.words) == 0 {
		m.infoMessage = "Nothing selectable in this document."
		return m, nil
	}
	m.mode = modeSelect
	m.extent = 0
	m.cursorWord = m.firstVisibleWord()
	m.infoMessage = "Select mode: h/l move, +/- grow or shrink, Enter to look up, Esc to cancel."
	m.markViewportDirty()
	return m, nil
}

func (m *model) firstVisibleWord() int {
	top := m.viewport.YOffset
	for i, w := range m.words {
		if w.line >= top {
			return i
		}
	}
	return 0
}

func (m *model) selectedWords() []docWord {
	if len(m.words) == 0 {
		return nil
	}
	end := m.cursorWord + m.extent + 1
	if end > len(m.words) {
		end = len(m.words)
	}
	return m.words[m.cursorWord:end]
}

func (m *model) selectionText() string {
	parts := make([]string, 0, m.extent+1)
	for _, w := range m.selectedWords() {
		parts = append(parts, w.text)
	}
	return strings.Join(parts, " ")
}

func (m *model) resolveCurrentSelection() (tea.Model, tea.Cmd) {
	words := m.selectedWords()
	sel := overlay.ResolveSelection(m.selectionText(), m.wordGeometry(words))
	if !sel.Valid {
		return m, m.showNotice(sel.Reason)
	}
	m.mode = modeBrowse
	m.extent = 0
	return m, m.beginExplain(sel.Text, sel.Anchor, m.lineContext(words[0].line))
}

func (m *model) explainActiveSpan() (tea.Model, tea.Cmd) {
	if m.activeSpan < 0 || m.activeSpan >= len(m.lineSpans) {
		m.infoMessage = "No highlighted term under the cursor. Press d to detect."
		return m, nil
	}
	ls := m.lineSpans[m.activeSpan]
	text := m.lineContext(ls.line)
	left := runeColumn(text, ls.span.StartIndex)
	geo := viewportGeometry{
		rects: []overlay.Rect{{
			Left:   left,
			Top:    ls.line,
			Width:  runeColumn(text, ls.span.EndIndex) - left,
			Height: 1,
		}},
		offset: m.frameOffset(),
	}
	sel := overlay.ResolveSelection(ls.span.Term, geo)
	if !sel.Valid {
		return m, m.showNotice(sel.Reason)
	}
	return m, m.beginExplain(sel.Text, sel.Anchor, m.lineContext(ls.line))
}

func (m *model) beginExplain(term string, anchor overlay.Point, docContext string) tea.Cmd {
	m.tooltip.Begin(term, anchor)
	m.record = glossary.Explanation{}
	m.explainLoading = true
	m.infoMessage = fmt.Sprintf("Looking up %q…", term)
	m.markViewportDirty()
	return tea.Batch(
		m.spinner.Tick,
		m.jobs.Start(jobKindExplain, explainTermJob(m.config.Explainer, term, docContext)),
	)
}

func (m *model) cycleActiveSpan(delta int) {
	if len(m.lineSpans) == 0 {
		return
	}
	m.activeSpan = (m.activeSpan + delta + len(m.lineSpans)) % len(m.lineSpans)
	m.scrollToLine(m.lineSpans[m.activeSpan].line)
	m.markViewportDirty()
}

func (m *model) scrollToLine(line int) {
	if line < m.viewport.YOffset || line >= m.viewport.YOffset+m.viewport.Height {
		offset := line - m.viewport.Height/2
		if offset < 0 {
			offset = 0
		}
		m.viewport.SetYOffset(offset)
	}
}

func (m *model) showNotice(reason string) tea.Cmd {
	m.notice = reason
	m.noticeID++
	id := m.noticeID
	m.markViewportDirty()
	return tea.Tick(overlay.NoticeDuration, func(time.Time) tea.Msg {
		return noticeTimeoutMsg{id: id}
	})
}

// frameOffset places viewport-local coordinates into the terminal frame.
// The vertical component shifts with the scroll position, so it has to be
// recomputed for every selection.
func (m *model) frameOffset() overlay.Point {
	return overlay.Point{
		X: viewportHorizontalPadding / 2,
		Y: lipgloss.Height(m.heroView()) - m.viewport.YOffset,
	}
}

func (m *model) wordGeometry(words []docWord) viewportGeometry {
	var rects []overlay.Rect
	for _, w := range words {
		width := len([]rune(w.text))
		if n := len(rects); n > 0 && rects[n-1].Top == w.line {
			rects[n-1].Width = w.col + width - rects[n-1].Left
			continue
		}
		rects = append(rects, overlay.Rect{Left: w.col, Top: w.line, Width: width, Height: 1})
	}
	return viewportGeometry{rects: rects, offset: m.frameOffset()}
}

func (m *model) lineContext(line int) string {
	if line < 0 || line >= len(m.lines) {
		return ""
	}
	return m.lines[line].text
}

func (m *model) rebuildContent() {
	width := m.wrapWidth()
	m.lines = m.lines[:0]
	for _, block := range ingest.Blocks(m.docText) {
		switch block.Kind {
		case ingest.BlockRule:
			m.lines = append(m.lines, renderLine{kind: ingest.BlockRule})
		case ingest.BlockParagraph:
			wrapped := wordwrap.String(flattenSegments(block.Text), width)
			for _, line := range strings.Split(wrapped, "\n") {
				m.lines = append(m.lines, renderLine{kind: ingest.BlockParagraph, text: line})
			}
			m.lines = append(m.lines, renderLine{kind: ingest.BlockParagraph})
		default:
			m.lines = append(m.lines, renderLine{kind: block.Kind, text: flattenSegments(block.Text)})
		}
	}
	m.recomputeWords()
	m.recomputeSpans()
	m.markViewportDirty()
}

func flattenSegments(text string) string {
	var b strings.Builder
	for _, seg := range ingest.Segments(text) {
		b.WriteString(seg.Text)
	}
	return b.String()
}

func (m *model) recomputeWords() {
	m.words = m.words[:0]
	for i, line := range m.lines {
		if line.kind != ingest.BlockParagraph || line.text == "" {
			continue
		}
		start := -1
		runes := []rune(line.text)
		for j, r := range runes {
			if unicode.IsSpace(r) {
				if start >= 0 {
					m.words = append(m.words, docWord{line: i, col: start, text: string(runes[start:j])})
					start = -1
				}
			} else if start < 0 {
				start = j
			}
		}
		if start >= 0 {
			m.words = append(m.words, docWord{line: i, col: start, text: string(runes[start:])})
		}
	}
	if m.cursorWord >= len(m.words) {
		m.cursorWord = 0
		m.extent = 0
	}
}

func (m *model) recomputeSpans() {
	m.lineSpans = m.lineSpans[:0]
	if len(m.terms) == 0 {
		m.activeSpan = -1
		return
	}
	for i, line := range m.lines {
		if line.kind != ingest.BlockParagraph || line.text == "" {
			continue
		}
		res := highlight.Highlight(line.text, m.terms)
		for _, span := range res.Spans {
			m.lineSpans = append(m.lineSpans, lineSpan{line: i, span: span})
		}
	}
	if m.activeSpan >= len(m.lineSpans) {
		m.activeSpan = len(m.lineSpans) - 1
	}
	if m.activeSpan < 0 && len(m.lineSpans) > 0 {
		m.activeSpan = 0
	}
}

func (m *model) wrapWidth() int {
	width := m.viewport.Width - 2
	if width < minViewportWidth-2 {
		width = minViewportWidth - 2
	}
	return width
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

// runeColumn converts a byte offset into text to a rune column, the unit
// word positions and selection rectangles are measured in.
func runeColumn(text string, byteIdx int) int {
	if byteIdx > len(text) {
		byteIdx = len(text)
	}
	return len([]rune(text[:byteIdx]))
}

var (
	titleStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	taglineStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	heading1Style      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Underline(true)
	heading2Style      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("147"))
	heading3Style      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("110"))
	ruleStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")).Padding(0, 1)
	termStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("190"))
	activeTermStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("229"))
	selectionStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#bde0fe"))
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	cardStyle          = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("81")).Padding(1, 2)
	categoryStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	helpBoxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
)
