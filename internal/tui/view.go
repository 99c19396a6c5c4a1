package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/studyquest/internal/content"
	"github.com/verte-zerg/studyquest/internal/model"
	"github.com/verte-zerg/studyquest/internal/session"
	"github.com/verte-zerg/studyquest/internal/stats"
)

// viewSpan is the world distance visible on each side of the player.
const viewSpan = 1000

var (
	textStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	accentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	titleStyle     = accentStyle.Copy().Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAAD14"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	selectedStyle  = textStyle.Copy().Bold(true)
	navActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	navInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	feedbackStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true)
)

// View implements tea.Model.
func (m *Model) View() string {
	width := m.contentWidth()
	var body string
	switch m.engine.State() {
	case model.StateSelection:
		body = m.renderSelection(width)
	case model.StateIntro:
		body = m.renderIntro(width)
	case model.StateActive:
		body = m.renderActive(width)
	case model.StateResults:
		body = m.renderResults(width)
	}
	if m.chromeVisible {
		body = lipgloss.JoinVertical(lipgloss.Center, m.renderNav(), "", body)
	}
	page := lipgloss.NewStyle().Width(width).Render(body)
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return page + "\n" + footer
	}
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, page)
	}
	bodyHeight := m.height - 1
	placed := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, page)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return placed + "\n" + footerLine
}

func (m *Model) renderNav() string {
	tabs := []struct {
		label string
		kind  itemKind
	}{
		{"Learn", itemQuiz},
		{"AI Quiz", itemAdaptive},
		{"Explore", itemExploration},
	}
	current := itemQuiz
	if len(m.items) > 0 {
		current = m.items[m.cursor].kind
	}
	switch m.engine.Status().Session.Mode {
	case model.ModeAdaptive:
		current = itemAdaptive
	case model.ModeExploration:
		current = itemExploration
	case model.ModeStatic:
		current = itemQuiz
	}
	rendered := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		style := navInactiveStyle
		if tab.kind == current {
			style = navActiveStyle
		}
		rendered = append(rendered, style.Render(tab.label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) renderSelection(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Choose what to study"))
	b.WriteString("\n\n")
	for i, item := range m.items {
		marker := "  "
		label := textStyle.Render(item.label)
		if i == m.cursor {
			marker = accentStyle.Render("› ")
			label = selectedStyle.Render(item.label)
		}
		line := marker + label + "  " + mutedStyle.Render(item.detail)
		b.WriteString(truncateStyled(line, width))
		b.WriteByte('\n')
	}
	if m.topicMode {
		b.WriteByte('\n')
		b.WriteString(m.topicInput.View())
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *Model) renderIntro(width int) string {
	quiz := m.engine.Status().Quiz
	var b strings.Builder
	b.WriteString(titleStyle.Render(quiz.Title))
	b.WriteString("\n\n")
	b.WriteString(wrapText(quiz.Description, width, textStyle))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s · %d questions", quiz.Category, len(quiz.Questions))))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("enter start · esc back"))
	return b.String()
}

func (m *Model) renderActive(width int) string {
	st := m.engine.Status()
	var sections []string
	if st.Exploring {
		sections = append(sections, renderWorld(m.engine.Visible(viewSpan), st.ActiveNPC, width))
		sections = append(sections, mutedStyle.Render(fmt.Sprintf("Distance: %dm", int(math.Floor(st.Distance)))))
		if st.Question == nil && st.Feedback == nil && !st.Pending {
			sections = append(sections, "", mutedStyle.Render("←/→ walk · esc quit"))
			return strings.Join(sections, "\n")
		}
		sections = append(sections, "")
	}
	sections = append(sections, m.renderQuestion(st, width))
	if st.Feedback != nil {
		sections = append(sections, "", m.renderFeedback(*st.Feedback, width))
	}
	return strings.Join(sections, "\n")
}

func (m *Model) renderQuestion(st session.Status, width int) string {
	if st.Question == nil {
		if st.Pending {
			return m.spinner.View() + " " + mutedStyle.Render("Fetching a question…")
		}
		return ""
	}
	q := st.Question
	var b strings.Builder
	header := fmt.Sprintf("Question %d of %d", st.Index+1, st.Score.Target)
	if st.Exploring {
		header = "A stranger asks:"
	}
	b.WriteString(mutedStyle.Render(header))
	if q.Tag != "" {
		b.WriteString(mutedStyle.Render(" · " + q.Tag))
	}
	b.WriteString("\n\n")
	b.WriteString(wrapText(q.Prompt, width, textStyle))
	b.WriteString("\n\n")
	if q.IsMultipleChoice() {
		for i, opt := range q.Options() {
			b.WriteString(m.renderOption(st, i, opt, width))
			b.WriteByte('\n')
		}
	} else {
		b.WriteString(m.answerInput.View())
		b.WriteByte('\n')
	}
	if st.Pending {
		b.WriteString("\n" + m.spinner.View() + " " + mutedStyle.Render("Checking your answer…"))
	}
	return b.String()
}

func (m *Model) renderOption(st session.Status, i int, opt string, width int) string {
	label := fmt.Sprintf("%d. %s", i+1, opt)
	style := textStyle
	marker := "  "
	switch {
	case st.Feedback != nil || st.Pending:
		if st.Question.CorrectAnswer != "" && strings.EqualFold(opt, st.Question.CorrectAnswer) && st.Feedback != nil {
			style = correctStyle
		} else if strings.EqualFold(opt, st.Answer) {
			style = selectedStyle
			if st.Feedback != nil {
				style = incorrectStyle
			}
		} else {
			style = mutedStyle
		}
		if strings.EqualFold(opt, st.Answer) {
			marker = "› "
		}
	case i == m.optionCursor:
		marker = "› "
		style = selectedStyle
	}
	return accentStyle.Render(marker) + truncateStyled(style.Render(label), width-2)
}

func (m *Model) renderFeedback(fb model.FeedbackWindow, width int) string {
	style := errorStyle
	border := lipgloss.Color("#FAAD14")
	switch fb.Polarity {
	case model.PolarityCorrect:
		style, border = correctStyle, lipgloss.Color("#52C41A")
	case model.PolarityIncorrect:
		style, border = incorrectStyle, lipgloss.Color("#FF4D4F")
	}
	inner := width - 4
	lines := []string{wrapText(fb.Message, inner, style)}
	if fb.Factoid != "" {
		lines = append(lines, "", wrapText("Did you know? "+fb.Factoid, inner, mutedStyle))
	}
	lines = append(lines, "", m.progress.ViewAs(1-fb.Progress()), mutedStyle.Render("enter continue"))
	return feedbackStyle.Copy().BorderForeground(border).Width(width - 2).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderResults(width int) string {
	st := m.engine.Status()
	title := content.DisplayTopic(st.Session.Topic)
	if st.Quiz.Title != "" {
		title = st.Quiz.Title
	}
	pct := stats.Percentage(st.Score.Correct, st.Score.Answered)
	var b strings.Builder
	b.WriteString(titleStyle.Render(title + " Results"))
	b.WriteString("\n\n")
	b.WriteString(textStyle.Render(fmt.Sprintf("Your Score: %d/%d", st.Score.Correct, st.Score.Answered)))
	b.WriteByte('\n')
	b.WriteString(mutedStyle.Render(fmt.Sprintf("You got %d%% of questions correct!", pct)))
	b.WriteString("\n\n")
	b.WriteString(m.progress.ViewAs(float64(pct) / 100))
	b.WriteString("\n\n")
	b.WriteString(m.results.View())
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("r try again · enter back to selection · q quit"))
	return b.String()
}

func (m *Model) renderReport(width int) string {
	if m.reportErr != "" {
		return errorStyle.Render(m.reportErr)
	}
	r := m.report
	if len(r.Answers) == 0 {
		return mutedStyle.Render("No answers recorded.")
	}
	var b strings.Builder
	b.WriteString(accentStyle.Render("Review Your Answers:"))
	b.WriteByte('\n')
	for _, line := range stats.ReviewLines(r.Answers, max(10, width-40)) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if lines := stats.TopicLines(r.Topics); len(lines) > 0 {
		b.WriteByte('\n')
		b.WriteString(accentStyle.Render("Topic Progress:"))
		b.WriteByte('\n')
		for _, line := range lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	if len(r.WeakTopics) > 0 {
		b.WriteByte('\n')
		b.WriteString(textStyle.Render("Focus next on: " + strings.Join(r.WeakTopics, ", ")))
		b.WriteByte('\n')
	}
	if r.Accuracy != "" {
		b.WriteString(mutedStyle.Render("Accuracy   ") + "[" + r.Accuracy + "]\n")
	}
	if r.Difficulty != "" {
		b.WriteString(mutedStyle.Render("Difficulty ") + "[" + r.Difficulty + "]\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderFooter() string {
	st := m.engine.Status()
	var segments []string
	switch st.State() {
	case model.StateSelection:
		segments = append(segments, "↑/↓ choose", "enter select", "q quit")
	case model.StateIntro:
		segments = append(segments, "enter start", "esc back")
	case model.StateActive:
		if st.Exploring {
			segments = append(segments,
				fmt.Sprintf("Distance %dm", int(math.Floor(st.Distance))),
				fmt.Sprintf("Met %d of %d", st.Score.Answered, st.Score.Target))
		} else {
			segments = append(segments, fmt.Sprintf("Question %d of %d", st.Index+1, st.Score.Target))
		}
		segments = append(segments, fmt.Sprintf("Score %d/%d", st.Score.Correct, st.Score.Answered))
	case model.StateResults:
		segments = append(segments, fmt.Sprintf("Score %d/%d", st.Score.Correct, st.Score.Answered))
	}
	if len(segments) == 0 {
		return ""
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

// renderWorld draws the player at the center of a ground strip with NPCs placed by offset.
func renderWorld(npcs []session.VisibleNPC, active, width int) string {
	if width < 3 {
		return ""
	}
	center := width / 2
	cells := make([]string, width)
	for i := range cells {
		cells[i] = " "
	}
	for _, npc := range npcs {
		col := center + int(math.Round(npc.Offset/viewSpan*float64(center)))
		if col < 0 || col >= width || col == center || runewidth.StringWidth(npc.Glyph) != 1 {
			continue
		}
		style := textStyle
		switch {
		case npc.ID == active:
			style = accentStyle
		case npc.Answered:
			style = mutedStyle
		}
		cells[col] = style.Render(npc.Glyph)
	}
	cells[center] = titleStyle.Render("@")
	ground := mutedStyle.Render(strings.Repeat("─", width))
	return strings.Join(cells, "") + "\n" + ground
}

func truncateStyled(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
