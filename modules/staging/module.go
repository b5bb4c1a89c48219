package staging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/upload-staging-demo/domain/upload"
	"github.com/example/upload-staging-demo/events"
	"github.com/example/upload-staging-demo/modules/transport"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module owns the staging session and exposes it as request-reply services
// and staging events.
type Module struct {
	session  *Session
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
	_ Publisher                  = (*Module)(nil)
)

// NewModule creates the staging module using the compiled-in policy and the
// given transport.
func NewModule(submitter transport.Submitter, logger types.Logger) *Module {
	m := &Module{logger: logger}
	m.session = NewSession(upload.DefaultPolicy(), NewSimulator(submitter), m, logger)
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "staging"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.FilesOfferedV1.ToBase(),
		events.UploadStartedV1.ToBase(),
		events.UploadProgressedV1.ToBase(),
		events.UploadCompletedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"offer-files",
		json.Unmarshal,
		json.Marshal,
		m.offerFiles,
	); err != nil {
		return fmt.Errorf("failed to register offer-files service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"start-upload",
		json.Unmarshal,
		json.Marshal,
		m.startUpload,
	); err != nil {
		return fmt.Errorf("failed to register start-upload service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"get-state",
		json.Unmarshal,
		json.Marshal,
		m.getState,
	); err != nil {
		return fmt.Errorf("failed to register get-state service: %w", err)
	}

	m.logger.Info("Registered staging services", "services", "offer-files, start-upload, get-state")
	return nil
}

// Start logs the active policy.
func (m *Module) Start(_ context.Context) error {
	p := m.session.Policy()
	m.logger.Info("Staging module started",
		"allowedTypes", p.AllowedMimeTypes,
		"maxSize", p.MaxSize())
	return nil
}

// Stop waits for an in-flight upload cycle, bounded by ctx.
func (m *Module) Stop(ctx context.Context) error {
	if err := m.session.Wait(ctx); err != nil {
		m.logger.Warn("Stopping with upload cycle in flight", "error", err)
		return err
	}
	m.logger.Info("Staging module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	snap := m.session.Snapshot()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"status":   snap.Status,
			"selected": len(snap.Files),
			"progress": snap.Percent,
		},
	}
}

// Session returns the staging session.
func (m *Module) Session() *Session {
	return m.session
}

// offerFiles handles the offer-files service request.
func (m *Module) offerFiles(_ context.Context, req OfferFilesRequest, _ *mono.Msg) (OfferFilesResponse, error) {
	snap, accepted, err := m.session.Offer(req.Files)
	if err != nil && !errors.Is(err, upload.ErrValidationRejected) {
		return OfferFilesResponse{}, err
	}
	return OfferFilesResponse{
		Accepted: upload.Names(accepted),
		Rejected: err != nil,
		State:    snap,
	}, nil
}

// startUpload handles the start-upload service request.
func (m *Module) startUpload(_ context.Context, _ StartUploadRequest, _ *mono.Msg) (StartUploadResponse, error) {
	cycleID, started := m.session.StartUpload()
	return StartUploadResponse{
		Started: started,
		CycleID: cycleID,
		State:   m.session.Snapshot(),
	}, nil
}

// getState handles the get-state service request.
func (m *Module) getState(_ context.Context, _ GetStateRequest, _ *mono.Msg) (GetStateResponse, error) {
	return GetStateResponse{State: m.session.Snapshot()}, nil
}

// FilesOffered publishes a FilesOffered event.
func (m *Module) FilesOffered(event events.FilesOfferedEvent) {
	if m.eventBus == nil {
		return
	}
	if err := events.FilesOfferedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish FilesOffered event", "error", err)
	}
}

// UploadStarted publishes an UploadStarted event.
func (m *Module) UploadStarted(event events.UploadStartedEvent) {
	if m.eventBus == nil {
		return
	}
	if err := events.UploadStartedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish UploadStarted event", "error", err)
	}
}

// UploadProgressed publishes an UploadProgressed event.
func (m *Module) UploadProgressed(event events.UploadProgressedEvent) {
	if m.eventBus == nil {
		return
	}
	if err := events.UploadProgressedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish UploadProgressed event", "error", err)
	}
}

// UploadCompleted publishes an UploadCompleted event.
func (m *Module) UploadCompleted(event events.UploadCompletedEvent) {
	if m.eventBus == nil {
		return
	}
	if err := events.UploadCompletedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish UploadCompleted event", "error", err)
	}
}
