package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/pkarell/termlens/internal/ingest"
	"github.com/pkarell/termlens/internal/overlay"
)

const tooltipCardWidth = 46

func (m *model) View() string {
	if m.stage == stageLoading {
		return joinNonEmpty([]string{
			m.heroView(),
			helperStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), m.infoMessage)),
		})
	}
	m.refreshViewportIfDirty()

	parts := []string{m.heroView(), m.viewport.View()}
	if card := m.tooltipView(); card != "" {
		parts = append(parts, card)
	}
	if m.notice != "" {
		parts = append(parts, noticeStyle.Render(m.notice))
	}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.detectLoading || m.explainLoading {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, helperStyle.Render(message))
	}
	if m.helpVisible {
		parts = append(parts, m.helpView())
	}
	parts = append(parts, m.footerView())
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	title := titleStyle.Render("TermLens")
	tagline := taglineStyle.Render(heroTagline)
	if m.config.DocumentPath != "" {
		tagline = taglineStyle.Render(heroTagline + "  ·  " + m.config.DocumentPath)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, tagline)
}

func (m *model) refreshViewportIfDirty() {
	if !m.viewportDirty {
		return
	}
	rendered := make([]string, len(m.lines))
	for i, line := range m.lines {
		rendered[i] = m.renderLine(i, line)
	}
	m.viewport.SetContent(strings.Join(rendered, "\n"))
	m.viewportDirty = false
}

func (m *model) renderLine(idx int, line renderLine) string {
	switch line.kind {
	case ingest.BlockHeading1:
		return heading1Style.Render(line.text)
	case ingest.BlockHeading2:
		return heading2Style.Render(line.text)
	case ingest.BlockHeading3:
		return heading3Style.Render(line.text)
	case ingest.BlockRule:
		return ruleStyle.Render(strings.Repeat("─", m.wrapWidth()))
	}
	ranges := m.lineRanges(idx, line.text)
	if len(ranges) == 0 {
		return line.text
	}
	runes := []rune(line.text)
	var b strings.Builder
	prev := 0
	for _, r := range ranges {
		if r.start < prev {
			continue
		}
		b.WriteString(string(runes[prev:r.start]))
		b.WriteString(r.style.Render(string(runes[r.start:r.end])))
		prev = r.end
	}
	b.WriteString(string(runes[prev:]))
	return b.String()
}

type styledRange struct {
	start int
	end   int
	style lipgloss.Style
}

// lineRanges collects the rune ranges of line idx that need styling: the
// manual selection, then any highlighted term spans that do not collide
// with it.
func (m *model) lineRanges(idx int, text string) []styledRange {
	var ranges []styledRange
	if m.mode == modeSelect {
		for _, w := range m.selectedWords() {
			if w.line != idx {
				continue
			}
			ranges = append(ranges, styledRange{
				start: w.col,
				end:   w.col + len([]rune(w.text)),
				style: selectionStyle,
			})
		}
	}
	for i, ls := range m.lineSpans {
		if ls.line != idx {
			continue
		}
		start := runeColumn(text, ls.span.StartIndex)
		end := runeColumn(text, ls.span.EndIndex)
		if rangesCollide(ranges, start, end) {
			continue
		}
		style := termStyle
		if i == m.activeSpan && m.mode == modeBrowse {
			style = activeTermStyle
		}
		ranges = append(ranges, styledRange{start: start, end: end, style: style})
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })
	return ranges
}

func rangesCollide(ranges []styledRange, start, end int) bool {
	for _, r := range ranges {
		if start < r.end && r.start < end {
			return true
		}
	}
	return false
}

func (m *model) tooltipView() string {
	switch m.tooltip.State() {
	case overlay.TooltipPending:
		body := fmt.Sprintf("%s Looking up %q…", m.spinner.View(), m.tooltip.Term())
		return m.placeCard(cardStyle.Render(body))
	case overlay.TooltipShown:
		header := titleStyle.Render(m.record.Term)
		if m.record.Category != "" {
			header = lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", categoryStyle.Render(string(m.record.Category)))
		}
		lines := []string{header, wordwrap.String(m.record.Definition, tooltipCardWidth-6)}
		for _, example := range m.record.Examples {
			lines = append(lines, helperStyle.Render("• "+example))
		}
		return m.placeCard(cardStyle.Render(strings.Join(lines, "\n")))
	default:
		return ""
	}
}

// placeCard indents the card so it sits under the tooltip anchor, clamped
// to the visible frame.
func (m *model) placeCard(card string) string {
	pad := m.tooltip.Anchor().X - tooltipCardWidth/2
	if max := m.viewport.Width - tooltipCardWidth; pad > max {
		pad = max
	}
	if pad < 0 {
		pad = 0
	}
	return lipgloss.NewStyle().PaddingLeft(pad).Render(card)
}

func (m *model) footerView() string {
	parts := []string{m.statusBarView()}
	if recent := m.recentLookupsView(); recent != "" {
		parts = append(parts, recent)
	}
	return joinNonEmpty(parts)
}

func (m *model) statusBarView() string {
	stats := []string{
		fmt.Sprintf("Mode %s", m.modeLabel()),
		fmt.Sprintf("Terms %d", len(m.lineSpans)),
	}
	cache := m.config.Explainer.Stats()
	stats = append(stats, fmt.Sprintf("Cache %d/%d", cache.ExplanationCount, cache.DetectionCount))
	if name := m.config.Explainer.ProviderName(); name != "" {
		stats = append(stats, name)
	} else {
		stats = append(stats, "cache only")
	}
	if badges := m.jobStatusBadges(); len(badges) > 0 {
		stats = append(stats, badges...)
	}
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) jobStatusBadges() []string {
	var badges []string
	for _, kind := range []jobKind{jobKindDetect, jobKindExplain, jobKindHistory} {
		snapshot, ok := m.lastJobs[kind]
		if !ok || snapshot.Status != jobStatusRunning {
			continue
		}
		badges = append(badges, fmt.Sprintf("%s…", kind))
	}
	return badges
}

func (m *model) recentLookupsView() string {
	if len(m.lookups) == 0 {
		return ""
	}
	lines := []string{sectionHeaderStyle.Render("Recent Lookups")}
	start := len(m.lookups) - recentLookupLimit
	if start < 0 {
		start = 0
	}
	for i := len(m.lookups) - 1; i >= start; i-- {
		entry := m.lookups[i]
		lines = append(lines, helperStyle.Render(fmt.Sprintf("%s [%s]", entry.Term, entry.Category)))
	}
	return strings.Join(lines, "\n")
}

func (m *model) helpView() string {
	lines := []string{
		sectionHeaderStyle.Render("Keys"),
		helperStyle.Render("• Tab / Shift+Tab cycle highlighted terms, Enter explains the active one."),
		helperStyle.Render("• v starts a manual selection; h/l move, +/- grow or shrink, Enter looks it up."),
		helperStyle.Render("• d re-runs term detection, x or Esc dismisses the definition card."),
		helperStyle.Render("• C clears the definition cache, g/G jump to the top or bottom."),
		helperStyle.Render("• ? toggles this help, q or Ctrl+C quits."),
	}
	return helpBoxStyle.Render(strings.Join(lines, "\n"))
}

func (m *model) modeLabel() string {
	if m.mode == modeSelect {
		return "SELECT"
	}
	return "BROWSE"
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
