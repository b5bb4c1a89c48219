package upload

import "errors"

// Sentinel errors for staging operations.
var (
	// ErrValidationRejected is returned when every offered candidate failed
	// the format or size check.
	ErrValidationRejected = errors.New("invalid file format or size")

	// ErrUploadStepFailed wraps a transport failure for a single file.
	ErrUploadStepFailed = errors.New("error uploading file")

	// ErrInvalidPolicy is returned when the embedded policy document is unusable.
	ErrInvalidPolicy = errors.New("invalid validation policy")
)
