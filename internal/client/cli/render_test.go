package cli

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophdraft/internal/client/models"
	"github.com/dmitrijs2005/gophdraft/internal/client/session"
	"github.com/stretchr/testify/assert"
)

func TestRenderView(t *testing.T) {
	v := session.View{
		State:    models.StateDrafting,
		DraftID:  "d-3",
		Autosave: models.AutosaveError,
		Upload:   models.UploadSuccess,
		Fields: models.DraftFields{
			Title:   "Trip",
			Content: "día uno",
			Image:   &models.ImageRef{URL: "https://cdn/x.png"},
		},
		LastErr: errors.New("backend unavailable"),
	}

	out := renderView(v)
	for _, want := range []string{"d-3", "Trip", "7 characters", "https://cdn/x.png", "Save failed", "Upload successful", "backend unavailable", "ready"} {
		assert.Contains(t, out, want)
	}

	empty := renderView(session.View{})
	assert.Contains(t, empty, "not created yet")
	assert.Contains(t, empty, models.UntitledDraft)
	assert.Contains(t, empty, "needs a title and a body")
	assert.NotContains(t, empty, "Upload")
}

func TestRenderPrompt(t *testing.T) {
	assert.Contains(t, renderPrompt(session.View{}), "[new]")
	assert.Contains(t, renderPrompt(session.View{DraftID: "d-1", Autosave: models.AutosavePending}), "Unsaved changes")
}

func TestRenderPreview(t *testing.T) {
	html := string(renderPreview(models.DraftFields{
		Title:   "Hello",
		Content: "Some **bold** and a [link](https://example.com).\r\n\r\n- one\n- two",
		Image:   &models.ImageRef{URL: "https://cdn/cover.png"},
	}))

	assert.Contains(t, html, "Hello</h1>")
	assert.Contains(t, html, `src="https://cdn/cover.png"`)
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.Contains(t, html, `target="_blank"`)
	assert.Contains(t, html, "<li>one</li>")

	assert.Contains(t, string(renderPreview(models.DraftFields{})), models.UntitledDraft+"</h1>")
}
