package staging

import "github.com/example/upload-staging-demo/domain/upload"

// OfferFilesRequest carries the candidates of one picker or drop action.
type OfferFilesRequest struct {
	Files []upload.FileCandidate `json:"files"`
}

// OfferFilesResponse reports the state after an offer. A fully rejected
// batch is not a transport error: Rejected is set and State.Error holds the message.
type OfferFilesResponse struct {
	Accepted []string `json:"accepted"`
	Rejected bool     `json:"rejected"`
	State    Snapshot `json:"state"`
}

// StartUploadRequest asks for a new upload cycle.
type StartUploadRequest struct{}

// StartUploadResponse reports whether a cycle was started.
type StartUploadResponse struct {
	Started bool     `json:"started"`
	CycleID string   `json:"cycle_id,omitempty"`
	State   Snapshot `json:"state"`
}

// GetStateRequest asks for the current state.
type GetStateRequest struct{}

// GetStateResponse carries the current state.
type GetStateResponse struct {
	State Snapshot `json:"state"`
}
