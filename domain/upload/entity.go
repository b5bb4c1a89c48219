package upload

// FileCandidate is a file offered by the user through the picker or a drop,
// before it has been accepted into the selection.
type FileCandidate struct {
	Name      string `json:"name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

// Status gates whether an upload cycle may be started.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusUploading Status = "uploading"
)

// Messages shown to the user. They are deliberately generic: no per-file cause
// is ever surfaced.
const (
	MessageInvalidFile  = "Invalid file format or size."
	MessageUploadFailed = "Error uploading file."
)

// Names returns the candidate names in order.
func Names(files []FileCandidate) []string {
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	return names
}
