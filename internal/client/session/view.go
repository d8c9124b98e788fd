package session

import "github.com/dmitrijs2005/gophdraft/internal/client/models"

// View is a read-only projection of a session used to render feedback.
type View struct {
	State       models.SessionState
	CloseReason models.CloseReason
	DraftID     models.DraftID
	PostID      models.PostID
	Autosave    models.AutosaveStatus
	Upload      models.ImageUploadStatus
	Dirty       bool
	Fields      models.DraftFields
	// LastErr is the error of the most recent failed backend call, if any.
	LastErr error
}

// AutosaveText is the one-line autosave indicator.
func (v View) AutosaveText() string {
	switch v.Autosave {
	case models.AutosaveSaving:
		return "Saving..."
	case models.AutosaveError:
		return "Save failed"
	case models.AutosavePending:
		return "Unsaved changes"
	default:
		if v.DraftID != "" {
			return "Draft saved automatically"
		}
		return "Ready to write"
	}
}

// UploadText describes the image upload; it is empty when idle.
func (v View) UploadText() string {
	switch v.Upload {
	case models.UploadUploading:
		return "Uploading..."
	case models.UploadSuccess:
		return "Upload successful"
	case models.UploadError:
		return "Upload failed"
	default:
		return ""
	}
}

// CanPublish reports whether Publish would pass validation.
func (v View) CanPublish() bool {
	return v.State != models.StateClosed && v.Fields.Complete()
}
