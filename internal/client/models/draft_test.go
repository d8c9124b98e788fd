package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftRecord_DirtyTracksBaseline(t *testing.T) {
	r := NewDraftRecord("", DraftFields{})
	require.False(t, r.Dirty())

	r.SetTitle("hello")
	require.True(t, r.Dirty())

	r.SetTitle("")
	require.False(t, r.Dirty(), "reverting to the baseline must clear dirty")

	r.SetImage(&ImageRef{URL: "https://img/1.png"})
	require.True(t, r.Dirty())

	r.Acknowledge(r.Fields())
	require.False(t, r.Dirty())

	r.SetImage(nil)
	require.True(t, r.Dirty())
}

func TestDraftRecord_AssignIDOnce(t *testing.T) {
	r := NewDraftRecord("", DraftFields{})
	require.False(t, r.HasID())

	require.False(t, r.AssignID(""))
	require.True(t, r.AssignID("d1"))
	require.False(t, r.AssignID("d2"))
	require.Equal(t, DraftID("d1"), r.ID())
}

func TestDraftRecord_SeededIsClean(t *testing.T) {
	r := NewDraftRecord("d1", DraftFields{Title: "t", Content: "c", Image: &ImageRef{URL: "u"}})
	require.False(t, r.Dirty())
	require.True(t, r.HasID())
	assert.Equal(t, "u", r.Baseline().ImageURL())
}

func TestDraftRecord_FieldsAreCopies(t *testing.T) {
	r := NewDraftRecord("", DraftFields{})
	r.SetImage(&ImageRef{URL: "a"})

	f := r.Fields()
	f.Image.URL = "b"

	require.Equal(t, "a", r.Fields().ImageURL())
}

func TestDraftFields_Predicates(t *testing.T) {
	tests := []struct {
		name     string
		in       DraftFields
		hasText  bool
		complete bool
	}{
		{"empty", DraftFields{}, false, false},
		{"whitespace", DraftFields{Title: "  ", Content: "\n"}, false, false},
		{"title only", DraftFields{Title: "t"}, true, false},
		{"content only", DraftFields{Content: "c"}, true, false},
		{"both", DraftFields{Title: "t", Content: "c"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.hasText, tt.in.HasText())
			assert.Equal(t, tt.complete, tt.in.Complete())
		})
	}
}

func TestDraftFields_WithPlaceholders(t *testing.T) {
	got := DraftFields{Title: "  ", Content: " body "}.WithPlaceholders()
	assert.Equal(t, UntitledDraft, got.Title)
	assert.Equal(t, "body", got.Content)

	got = DraftFields{Title: "t"}.WithPlaceholders()
	assert.Equal(t, "t", got.Title)
	assert.Equal(t, UntitledContent, got.Content)
}

func TestPatchFrom_CopiesEverything(t *testing.T) {
	f := DraftFields{Title: "t", Content: "c", Image: &ImageRef{URL: "u"}}
	p := PatchFrom(f, 7)

	require.NotNil(t, p.Title)
	require.NotNil(t, p.Content)
	require.NotNil(t, p.Image)
	assert.Equal(t, "t", *p.Title)
	assert.Equal(t, "c", *p.Content)
	assert.Equal(t, "u", p.Image.URL)
	assert.Equal(t, uint64(7), p.Tag)

	f.Image.URL = "changed"
	assert.Equal(t, "u", p.Image.URL)
}

func TestPatchSince_ClearsRemovedImage(t *testing.T) {
	withImage := DraftFields{Title: "t", Content: "c", Image: &ImageRef{URL: "u"}}
	without := DraftFields{Title: "t", Content: "c"}

	p := PatchSince(withImage, without, 3)
	assert.True(t, p.ClearImage)
	assert.Nil(t, p.Image)

	assert.False(t, PatchSince(without, without, 4).ClearImage)
	assert.False(t, PatchSince(withImage, withImage, 5).ClearImage)
	assert.False(t, PatchSince(without, withImage, 6).ClearImage)
}

func TestJournalEntry_Fields(t *testing.T) {
	e := &JournalEntry{SessionKey: "k", Title: "t", Content: "c", UpdatedAt: time.Now()}
	require.Nil(t, e.Fields().Image)

	e.ImageURL = "u"
	require.Equal(t, "u", e.Fields().ImageURL())
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "saving", AutosaveSaving.String())
	assert.Equal(t, "uploading", UploadUploading.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "unknown", AutosaveStatus(42).String())
}
