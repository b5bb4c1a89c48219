package staging

import (
	"context"
	"testing"
	"time"

	"github.com/example/upload-staging-demo/domain/upload"
	"github.com/example/upload-staging-demo/events"
	"github.com/example/upload-staging-demo/modules/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModule(t *testing.T) {
	m := NewModule(transport.NewSimulated(time.Millisecond), newMockLogger())

	require.NotNil(t, m)
	assert.Equal(t, "staging", m.Name())
	assert.NotNil(t, m.Session())
	assert.Equal(t, upload.DefaultPolicy(), m.Session().Policy())
}

func TestModuleEmitEvents(t *testing.T) {
	m := NewModule(transport.NewSimulated(time.Millisecond), newMockLogger())

	assert.Len(t, m.EmitEvents(), 4)
}

func TestModulePublishWithoutEventBus(t *testing.T) {
	m := NewModule(transport.NewSimulated(time.Millisecond), newMockLogger())

	assert.NotPanics(t, func() {
		m.FilesOffered(events.FilesOfferedEvent{})
		m.UploadStarted(events.UploadStartedEvent{})
		m.UploadProgressed(events.UploadProgressedEvent{})
		m.UploadCompleted(events.UploadCompletedEvent{})
	})
}

func TestModuleServiceHandlers(t *testing.T) {
	m := NewModule(transport.NewSimulated(time.Millisecond), newMockLogger())
	ctx := context.Background()

	offer, err := m.offerFiles(ctx, OfferFilesRequest{Files: []upload.FileCandidate{pngA, exeB}}, nil)
	require.NoError(t, err)
	assert.False(t, offer.Rejected)
	assert.Equal(t, []string{"a.png"}, offer.Accepted)
	assert.Equal(t, []string{"a.png"}, offer.State.Files)

	rejected, err := m.offerFiles(ctx, OfferFilesRequest{Files: []upload.FileCandidate{bigPNG}}, nil)
	require.NoError(t, err)
	assert.True(t, rejected.Rejected)
	assert.Equal(t, upload.MessageInvalidFile, rejected.State.Error)

	state, err := m.getState(ctx, GetStateRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png"}, state.State.Files)

	start, err := m.startUpload(ctx, StartUploadRequest{}, nil)
	require.NoError(t, err)
	assert.True(t, start.Started)
	assert.NotEmpty(t, start.CycleID)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, m.Stop(stopCtx))

	idle, err := m.startUpload(ctx, StartUploadRequest{}, nil)
	require.NoError(t, err)
	assert.False(t, idle.Started)
	assert.Empty(t, idle.State.Files)
}

func TestModuleStartAndHealth(t *testing.T) {
	m := NewModule(transport.NewSimulated(time.Millisecond), newMockLogger())
	ctx := context.Background()

	require.NoError(t, m.Start(ctx))

	health := m.Health(ctx)
	assert.True(t, health.Healthy)
	assert.Equal(t, upload.StatusIdle, health.Details["status"])
	assert.Equal(t, 0, health.Details["selected"])

	require.NoError(t, m.Stop(ctx))
}
