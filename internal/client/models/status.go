package models

// AutosaveStatus tracks the persistence state of the draft text.
type AutosaveStatus int

const (
	AutosaveIdle AutosaveStatus = iota
	AutosavePending
	AutosaveSaving
	AutosaveSaved
	AutosaveError
)

func (s AutosaveStatus) String() string {
	switch s {
	case AutosaveIdle:
		return "idle"
	case AutosavePending:
		return "pending"
	case AutosaveSaving:
		return "saving"
	case AutosaveSaved:
		return "saved"
	case AutosaveError:
		return "error"
	default:
		return "unknown"
	}
}

// ImageUploadStatus tracks the cover image upload.
type ImageUploadStatus int

const (
	UploadIdle ImageUploadStatus = iota
	UploadUploading
	UploadSuccess
	UploadError
)

func (s ImageUploadStatus) String() string {
	switch s {
	case UploadIdle:
		return "idle"
	case UploadUploading:
		return "uploading"
	case UploadSuccess:
		return "success"
	case UploadError:
		return "error"
	default:
		return "unknown"
	}
}

// SessionState is the lifecycle state of a draft session.
type SessionState int

const (
	StateEmpty SessionState = iota
	StateDrafting
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateDrafting:
		return "drafting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// CloseReason records how a session reached StateClosed.
type CloseReason string

const (
	ClosedNone      CloseReason = ""
	ClosedDismissed CloseReason = "dismissed"
	ClosedDiscarded CloseReason = "discarded"
	ClosedPublished CloseReason = "published"
	ClosedSaved     CloseReason = "saved"
)
