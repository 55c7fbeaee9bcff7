package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"notes-app/src/domain"
	"notes-app/src/view"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const timeLayout = "2006-01-02 15:04"

func tableStyle(theme view.Theme) table.Style {
	if theme == view.ThemeLight {
		return table.StyleLight
	}
	return table.StyleColoredDark
}

func newTable(w io.Writer, settings view.Settings) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(tableStyle(settings.Theme))
	t.Style().Options.SeparateRows = !settings.CompactMode
	return t
}

func preview(body string, length int) string {
	flat := strings.Join(strings.Fields(body), " ")
	return text.Snip(flat, length, "…")
}

func displayTitle(note domain.Note) string {
	if note.IsFavorite {
		return "★ " + note.Title
	}
	return note.Title
}

func renderList(w io.Writer, notes []domain.Note, f view.Filter, settings view.Settings) {
	if len(notes) == 0 {
		fmt.Fprintf(w, "No notes in %s\n", f.Section)
		return
	}

	t := newTable(w, settings)
	t.AppendHeader(table.Row{"ID", "Title", "Tag", "Preview", "Updated"})
	for _, n := range notes {
		t.AppendRow(table.Row{
			n.ID,
			displayTitle(n),
			view.PrimaryTag(n),
			preview(n.Body, settings.PreviewLength()),
			n.UpdatedAt.Local().Format(timeLayout),
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d note(s)", len(notes)), "", "", ""})
	t.Render()
}

func renderNote(w io.Writer, note *domain.Note, settings view.Settings) {
	t := newTable(w, settings)
	state := "active"
	if note.IsTrashed {
		state = "trash"
	}

	t.AppendRows([]table.Row{
		{"ID", note.ID},
		{"Title", displayTitle(*note)},
		{"Tags", strings.Join(note.Tags, ", ")},
		{"State", state},
		{"Created", note.CreatedAt.Local().Format(time.RFC3339)},
		{"Updated", note.UpdatedAt.Local().Format(time.RFC3339)},
	})
	t.Render()
	fmt.Fprintln(w)
	fmt.Fprintln(w, note.Body)
}

func renderSettings(w io.Writer, settings view.Settings) {
	t := newTable(w, settings)
	t.AppendHeader(table.Row{"Setting", "Value"})
	t.AppendRows([]table.Row{
		{"theme", settings.Theme},
		{"font_size", settings.FontSize},
		{"compact_mode", settings.CompactMode},
		{"default_section", settings.DefaultSection},
	})
	t.Render()
}
