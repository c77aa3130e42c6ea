package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/snake-leaderboard/internal/leaderboard"
)

// ownSuffix marks the player's own row.
const ownSuffix = " (You)"

// newScoreTable creates a table with rank, player, score and date columns.
// own is the index of the player's row, or -1.
func newScoreTable(records []leaderboard.Record, own int) table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "Player", Width: leaderboard.MaxUsernameLen + len(ownSuffix)},
		{Title: "Score", Width: 7},
		{Title: "Date", Width: 14},
	}

	rows := make([]table.Row, len(records))
	for i, r := range records {
		name := r.Username
		if i == own {
			name += ownSuffix
		}
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			name,
			fmt.Sprintf("%d", r.Score),
			r.CreatedAt.Local().Format("Jan 02 15:04"),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(own >= 0),
		table.WithHeight(max(len(rows), 1)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	if own >= 0 {
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true)
		t.SetStyles(s)
		t.SetCursor(own)
	} else {
		s.Selected = lipgloss.NewStyle()
		t.SetStyles(s)
	}
	return t
}

// renderScores renders a titled leaderboard panel. Offline and empty
// boards render a message in place of the table.
func renderScores(title string, records []leaderboard.Record, own int, online bool, footer string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	switch {
	case !online:
		b.WriteString(hintStyle.Italic(true).Render("Leaderboard offline.\nScores are not being saved."))
	case len(records) == 0:
		b.WriteString(hintStyle.Italic(true).Render("No scores recorded yet.\nPlay a game to set a high score!"))
	default:
		b.WriteString(newScoreTable(records, own).View())
	}

	if footer != "" {
		b.WriteString("\n\n")
		b.WriteString(footer)
	}
	return panelStyle.Render(b.String())
}
