package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/studyquest/internal/content"
	"github.com/verte-zerg/studyquest/internal/model"
)

// ReviewLines formats answered questions as a table. Question text is truncated to questionWidth.
func ReviewLines(records []model.AnswerRecord, questionWidth int) []string {
	if len(records) == 0 {
		return nil
	}
	headers := []string{"#", "", "Question", "Your answer"}
	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		mark := "✗"
		if rec.Correct {
			mark = "✓"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			mark,
			truncate(rec.Question, questionWidth),
			truncate(rec.Answer, 24),
		})
	}
	return formatTable(headers, rows, map[int]bool{0: true})
}

// TopicLines formats per-topic progress.
func TopicLines(aggs []model.TopicAggregate) []string {
	if len(aggs) == 0 {
		return nil
	}
	headers := []string{"Topic", "Correct", "Incorrect", "Accuracy", "Avg difficulty"}
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, []string{
			agg.Tag,
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
			fmt.Sprintf("%d%%", Percentage(agg.Correct, agg.Total())),
			formatDifficulty(agg),
		})
	}
	return formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true})
}

// RenderCatalog prints the static quiz catalog. Descriptions are truncated to fit width when width > 0.
func RenderCatalog(w io.Writer, quizzes []content.Quiz, width int) error {
	if len(quizzes) == 0 {
		_, err := fmt.Fprintln(w, "No quizzes found.")
		return err
	}
	headers := []string{"ID", "Title", "Category", "Questions", "Description"}
	rows := make([][]string, 0, len(quizzes))
	for _, q := range quizzes {
		rows = append(rows, []string{q.ID, q.Title, q.Category, fmt.Sprintf("%d", len(q.Questions)), q.Description})
	}
	lines := formatTable(headers, rows, map[int]bool{3: true})
	for _, line := range lines {
		if width > 0 {
			line = runewidth.Truncate(line, width, "…")
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

func formatDifficulty(agg model.TopicAggregate) string {
	var parts []string
	if agg.Correct > 0 && agg.CorrectDifficulty > 0 {
		parts = append(parts, fmt.Sprintf("✓ %.1f", agg.CorrectDifficulty))
	}
	if agg.Incorrect > 0 && agg.IncorrectDifficulty > 0 {
		parts = append(parts, fmt.Sprintf("✗ %.1f", agg.IncorrectDifficulty))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	if width <= 0 {
		return value
	}
	return runewidth.Truncate(value, width, "…")
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = displayWidth(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return b.String()
}

func padCell(value string, width int, rightAlign bool) string {
	valueWidth := displayWidth(value)
	if valueWidth >= width {
		return value
	}
	padding := width - valueWidth
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
