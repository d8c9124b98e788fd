package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/gophdraft/internal/client/models"
	"github.com/dmitrijs2005/gophdraft/internal/client/session"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	savedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	busyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Faint(true)
)

func autosaveStyle(s models.AutosaveStatus) lipgloss.Style {
	switch s {
	case models.AutosaveError:
		return errorStyle
	case models.AutosavePending, models.AutosaveSaving:
		return busyStyle
	default:
		return savedStyle
	}
}

func renderAutosave(v session.View) string {
	return autosaveStyle(v.Autosave).Render(v.AutosaveText())
}

// renderPrompt is the short draft indicator shown in the REPL prompt.
func renderPrompt(v session.View) string {
	id := string(v.DraftID)
	if id == "" {
		id = "new"
	}
	return promptStyle.Render("["+id+"]") + " " + renderAutosave(v)
}

// renderView is the full 'status' output.
func renderView(v session.View) string {
	var b strings.Builder
	row := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-9s", label+":")), value)
	}

	id := string(v.DraftID)
	if id == "" {
		id = "not created yet"
	}
	row("Draft", id)
	row("Title", orUntitled(v.Fields.Title))
	row("Body", fmt.Sprintf("%d characters", len([]rune(v.Fields.Content))))
	if url := v.Fields.ImageURL(); url != "" {
		row("Image", url)
	}
	row("Autosave", renderAutosave(v))
	if t := v.UploadText(); t != "" {
		style := savedStyle
		if v.Upload == models.UploadError {
			style = errorStyle
		}
		row("Upload", style.Render(t))
	}
	if v.LastErr != nil {
		row("Error", errorStyle.Render(v.LastErr.Error()))
	}
	if v.CanPublish() {
		row("Publish", "ready")
	} else {
		row("Publish", "needs a title and a body")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderPreview renders the draft as the HTML a published post would show.
func renderPreview(f models.DraftFields) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", orUntitled(strings.TrimSpace(f.Title)))
	if url := f.ImageURL(); url != "" {
		fmt.Fprintf(&b, "![cover](%s)\n\n", url)
	}
	b.WriteString(f.Content)

	md := markdown.NormalizeNewlines([]byte(b.String()))
	doc := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs).Parse(md)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return markdown.Render(doc, renderer)
}
