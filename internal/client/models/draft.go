// Package models defines the draft value objects shared by the session,
// the transports and the local repositories.
package models

import (
	"strings"
	"time"
)

// DraftID identifies a draft persisted by the backend.
type DraftID string

// PostID identifies a published post.
type PostID string

// Placeholders sent in place of empty fields when a draft is created or
// updated before the user filled everything in.
const (
	UntitledDraft   = "Untitled Draft"
	UntitledContent = "Untitled Content"
)

// Field names an editable part of a draft.
type Field string

const (
	FieldTitle   Field = "title"
	FieldContent Field = "content"
	FieldImage   Field = "image"
)

// ImageRef is a reference to an uploaded image.
type ImageRef struct {
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
}

// DraftFields is the editable part of a draft.
type DraftFields struct {
	Title   string
	Content string
	Image   *ImageRef
}

// Equal compares two snapshots field by field. Images compare by URL.
func (f DraftFields) Equal(o DraftFields) bool {
	if f.Title != o.Title || f.Content != o.Content {
		return false
	}
	return f.ImageURL() == o.ImageURL()
}

// ImageURL returns the image URL or "" when there is no image.
func (f DraftFields) ImageURL() string {
	if f.Image == nil {
		return ""
	}
	return f.Image.URL
}

// HasText reports whether title or content holds anything besides whitespace.
func (f DraftFields) HasText() bool {
	return strings.TrimSpace(f.Title) != "" || strings.TrimSpace(f.Content) != ""
}

// Complete reports whether both title and content are filled in.
func (f DraftFields) Complete() bool {
	return strings.TrimSpace(f.Title) != "" && strings.TrimSpace(f.Content) != ""
}

// Clone returns a deep copy.
func (f DraftFields) Clone() DraftFields {
	c := f
	if f.Image != nil {
		img := *f.Image
		c.Image = &img
	}
	return c
}

// WithPlaceholders replaces empty title/content with the Untitled placeholders.
func (f DraftFields) WithPlaceholders() DraftFields {
	c := f.Clone()
	c.Title = strings.TrimSpace(c.Title)
	c.Content = strings.TrimSpace(c.Content)
	if c.Title == "" {
		c.Title = UntitledDraft
	}
	if c.Content == "" {
		c.Content = UntitledContent
	}
	return c
}

// DraftPatch is a partial draft update. Nil fields are left untouched by
// the backend; ClearImage removes the stored image and transports send it
// as an empty image. Tag carries the edit counter the patch was taken at.
type DraftPatch struct {
	Title      *string
	Content    *string
	Image      *ImageRef
	ClearImage bool
	Tag        uint64
}

// PatchFrom builds a full patch from a snapshot.
func PatchFrom(f DraftFields, tag uint64) DraftPatch {
	title, content := f.Title, f.Content
	p := DraftPatch{Title: &title, Content: &content, Tag: tag}
	if f.Image != nil {
		img := *f.Image
		p.Image = &img
	}
	return p
}

// PatchSince is PatchFrom that also clears the image when base had one and
// f does not.
func PatchSince(base, f DraftFields, tag uint64) DraftPatch {
	p := PatchFrom(f, tag)
	p.ClearImage = f.Image == nil && base.Image != nil
	return p
}

// DraftRecord is the editable state of a draft together with the last
// snapshot acknowledged by the backend.
//
// The record is not safe for concurrent use; its owner serializes access.
type DraftRecord struct {
	id       DraftID
	current  DraftFields
	baseline DraftFields
}

// NewDraftRecord returns a record seeded with initial fields. The seed is
// treated as acknowledged, so the record starts clean.
func NewDraftRecord(id DraftID, initial DraftFields) *DraftRecord {
	return &DraftRecord{id: id, current: initial.Clone(), baseline: initial.Clone()}
}

// ID returns the draft identity or "" when it was not assigned yet.
func (r *DraftRecord) ID() DraftID { return r.id }

// HasID reports whether the identity was assigned.
func (r *DraftRecord) HasID() bool { return r.id != "" }

// AssignID sets the identity. It returns false if an identity already exists.
func (r *DraftRecord) AssignID(id DraftID) bool {
	if r.id != "" || id == "" {
		return false
	}
	r.id = id
	return true
}

// Fields returns a copy of the current fields.
func (r *DraftRecord) Fields() DraftFields { return r.current.Clone() }

// Baseline returns a copy of the last acknowledged fields.
func (r *DraftRecord) Baseline() DraftFields { return r.baseline.Clone() }

// Dirty reports whether the current fields differ from the baseline.
func (r *DraftRecord) Dirty() bool { return !r.current.Equal(r.baseline) }

// SetTitle updates the title.
func (r *DraftRecord) SetTitle(v string) { r.current.Title = v }

// SetContent updates the content.
func (r *DraftRecord) SetContent(v string) { r.current.Content = v }

// SetImage updates the image reference; nil removes it.
func (r *DraftRecord) SetImage(img *ImageRef) {
	if img == nil {
		r.current.Image = nil
		return
	}
	c := *img
	r.current.Image = &c
}

// Acknowledge records snap as the snapshot the backend now holds.
func (r *DraftRecord) Acknowledge(snap DraftFields) { r.baseline = snap.Clone() }

// JournalEntry is a locally persisted copy of a draft that may not have
// reached the backend yet.
type JournalEntry struct {
	SessionKey string
	DraftID    DraftID
	Title      string
	Content    string
	ImageURL   string
	UpdatedAt  time.Time
}

// Fields converts the entry back to draft fields.
func (e *JournalEntry) Fields() DraftFields {
	f := DraftFields{Title: e.Title, Content: e.Content}
	if e.ImageURL != "" {
		f.Image = &ImageRef{URL: e.ImageURL}
	}
	return f
}

// LikeState is the like status of a post as seen by the current user.
type LikeState struct {
	Liked bool
	Likes int
}
