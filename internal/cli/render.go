package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/locvowork/employee_management_sample/console/internal/controller"
	"github.com/locvowork/employee_management_sample/console/internal/domain"
)

const cardsPerRow = 3

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7c3aed")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	footerStyle = lipgloss.NewStyle().Faint(true)
	nameStyle   = lipgloss.NewStyle().Bold(true)
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6b7280")).
			Padding(0, 1).
			Width(34)

	tagColors = map[string]lipgloss.Color{
		"green":   lipgloss.Color("#22c55e"),
		"orange":  lipgloss.Color("#f97316"),
		"default": lipgloss.Color("#9ca3af"),
		"gray":    lipgloss.Color("#6b7280"),
		"red":     lipgloss.Color("#ef4444"),
	}
	bandColors = map[string]lipgloss.Color{
		"success":   lipgloss.Color("#22c55e"),
		"normal":    lipgloss.Color("#3b82f6"),
		"exception": lipgloss.Color("#ef4444"),
	}
)

var columns = []struct {
	key   string
	title string
}{
	{"", "ID"},
	{domain.ColumnName, "Name"},
	{domain.ColumnDepartment, "Department"},
	{domain.ColumnRole, "Role"},
	{domain.ColumnJoiningDate, "Joining Date"},
	{domain.ColumnStatus, "Status"},
	{domain.ColumnPerformanceScore, "Score"},
}

func statusTag(s domain.Status) string {
	return lipgloss.NewStyle().Foreground(tagColors[domain.StatusColor(s)]).Render(string(s))
}

// scoreBar draws the score as a ten cell progress bar.
func scoreBar(score int) string {
	filled := score / 10
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
	style := lipgloss.NewStyle().Foreground(bandColors[domain.ScoreBand(score)])
	return style.Render(bar) + " " + strconv.Itoa(score)
}

func headers(sort domain.SortPreference) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		title := c.title
		if sort.Active() && sort.ColumnKey == c.key {
			if sort.Order == domain.SortDescend {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		out = append(out, title)
	}
	return out
}

// RenderView writes the page in the state's view mode followed by the
// pagination summary.
func RenderView(w io.Writer, state controller.ViewState) {
	if len(state.Items) == 0 {
		fmt.Fprintln(w, "No employees found")
	} else if state.ViewMode == domain.ViewModeCard {
		renderCards(w, state.Items)
	} else {
		renderTable(w, state)
	}
	fmt.Fprintln(w, footerStyle.Render(fmt.Sprintf("%s · page %d", state.RangeLabel(), state.Page)))
}

func renderTable(w io.Writer, state controller.ViewState) {
	rows := make([][]string, 0, len(state.Items))
	for _, e := range state.Items {
		rows = append(rows, []string{
			strconv.Itoa(e.IDValue()),
			e.Name,
			string(e.Department),
			e.Role,
			e.JoiningDate,
			statusTag(e.Status),
			scoreBar(e.PerformanceScore),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers(state.Sort)...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

func renderCard(e domain.Employee) string {
	lines := []string{
		nameStyle.Render(e.Name) + footerStyle.Render(" #"+strconv.Itoa(e.IDValue())),
		e.Role,
		fmt.Sprintf("%s · joined %s", e.Department, e.JoiningDate),
		statusTag(e.Status),
		scoreBar(e.PerformanceScore),
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func renderCards(w io.Writer, items []domain.Employee) {
	for start := 0; start < len(items); start += cardsPerRow {
		end := start + cardsPerRow
		if end > len(items) {
			end = len(items)
		}
		cards := make([]string, 0, end-start)
		for _, e := range items[start:end] {
			cards = append(cards, renderCard(e))
		}
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
}
