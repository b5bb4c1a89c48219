package staging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/upload-staging-demo/domain/upload"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// StagingPort defines the staging operations available to other modules.
type StagingPort interface {
	OfferFiles(ctx context.Context, files []upload.FileCandidate) (*OfferFilesResponse, error)
	StartUpload(ctx context.Context) (*StartUploadResponse, error)
	GetState(ctx context.Context) (*Snapshot, error)
}

// stagingAdapter wraps ServiceContainer for type-safe cross-module communication.
type stagingAdapter struct {
	container mono.ServiceContainer
}

// NewStagingAdapter creates a new adapter for staging services.
func NewStagingAdapter(container mono.ServiceContainer) StagingPort {
	if container == nil {
		panic("staging adapter requires non-nil ServiceContainer")
	}
	return &stagingAdapter{container: container}
}

// OfferFiles offers candidates via the offer-files service.
func (a *stagingAdapter) OfferFiles(ctx context.Context, files []upload.FileCandidate) (*OfferFilesResponse, error) {
	req := OfferFilesRequest{Files: files}
	var resp OfferFilesResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"offer-files",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("offer-files service call failed: %w", err)
	}
	return &resp, nil
}

// StartUpload requests a new cycle via the start-upload service.
func (a *stagingAdapter) StartUpload(ctx context.Context) (*StartUploadResponse, error) {
	req := StartUploadRequest{}
	var resp StartUploadResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"start-upload",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("start-upload service call failed: %w", err)
	}
	return &resp, nil
}

// GetState reads the current state via the get-state service.
func (a *stagingAdapter) GetState(ctx context.Context) (*Snapshot, error) {
	req := GetStateRequest{}
	var resp GetStateResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-state",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("get-state service call failed: %w", err)
	}
	return &resp.State, nil
}
