package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// FilesOfferedEvent is emitted after every picker or drop offer, accepted or not.
// Seq orders all staging events by the state change that produced them.
type FilesOfferedEvent struct {
	Seq       uint64    `json:"seq"`
	Offered   int       `json:"offered"`
	Accepted  []string  `json:"accepted"`
	Error     string    `json:"error,omitempty"`
	Selected  int       `json:"selected"`
	Timestamp time.Time `json:"timestamp"`
}

// UploadStartedEvent is emitted when a cycle begins.
type UploadStartedEvent struct {
	Seq       uint64    `json:"seq"`
	CycleID   string    `json:"cycle_id"`
	Files     []string  `json:"files"`
	Timestamp time.Time `json:"timestamp"`
}

// UploadProgressedEvent is emitted after each file of a cycle has been submitted.
type UploadProgressedEvent struct {
	Seq       uint64    `json:"seq"`
	CycleID   string    `json:"cycle_id"`
	Index     int       `json:"index"`
	Total     int       `json:"total"`
	File      string    `json:"file"`
	Failed    bool      `json:"failed"`
	Progress  float64   `json:"progress"`
	Percent   int       `json:"percent"`
	Timestamp time.Time `json:"timestamp"`
}

// UploadCompletedEvent is emitted when a cycle has processed every file and
// the selection has been reset.
type UploadCompletedEvent struct {
	Seq       uint64    `json:"seq"`
	CycleID   string    `json:"cycle_id"`
	Total     int       `json:"total"`
	Failed    int       `json:"failed"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the staging domain.
var (
	FilesOfferedV1 = helper.EventDefinition[FilesOfferedEvent](
		"staging",
		"FilesOffered",
		"v1",
	)

	UploadStartedV1 = helper.EventDefinition[UploadStartedEvent](
		"staging",
		"UploadStarted",
		"v1",
	)

	UploadProgressedV1 = helper.EventDefinition[UploadProgressedEvent](
		"staging",
		"UploadProgressed",
		"v1",
	)

	UploadCompletedV1 = helper.EventDefinition[UploadCompletedEvent](
		"staging",
		"UploadCompleted",
		"v1",
	)
)
