package httpserver

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/docker/go-units"
	"github.com/example/upload-staging-demo/domain/upload"
	"github.com/example/upload-staging-demo/modules/staging"
	"github.com/gin-gonic/gin"
)

// formFilesField is the multipart field of the no-script picker form.
const formFilesField = "files"

// welcomeImageURL is the fixed picture shown on the welcome view.
const welcomeImageURL = "https://picsum.photos/id/1015/960/480"

var (
	errNoFiles      = errors.New("no files provided")
	errBodyTooLarge = errors.New("request body too large")
)

// Handlers contains HTTP request handlers for the staging widget and API.
type Handlers struct {
	staging     staging.StagingPort
	hub         *Hub
	policy      upload.Policy
	mode        Mode
	maxBodySize int64
}

// NewHandlers creates a new handlers instance. Offer requests larger than
// maxBodySize are refused.
func NewHandlers(port staging.StagingPort, hub *Hub, policy upload.Policy, mode Mode, maxBodySize int64) *Handlers {
	return &Handlers{
		staging:     port,
		hub:         hub,
		policy:      policy,
		mode:        mode,
		maxBodySize: maxBodySize,
	}
}

// limitBody caps the request body. A request that declares a larger body is
// refused before any of it is read.
func (h *Handlers) limitBody(c *gin.Context) bool {
	if c.Request.ContentLength > h.maxBodySize {
		writeBodyTooLarge(c, h.maxBodySize)
		return false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodySize)
	return true
}

func writeBodyTooLarge(c *gin.Context, limit int64) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"error":   "Request body too large",
		"details": fmt.Sprintf("limit is %s", units.BytesSize(float64(limit))),
	})
}

// writeBadOffer answers a request whose offer could not be read.
func (h *Handlers) writeBadOffer(c *gin.Context, err error, what string) {
	if errors.Is(err, errBodyTooLarge) {
		writeBodyTooLarge(c, h.maxBodySize)
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid " + what,
		"details": err.Error(),
	})
}

// handleStagingError writes an error response for a failed staging call.
func handleStagingError(c *gin.Context, err error, operation string) {
	c.JSON(http.StatusBadGateway, gin.H{
		"error":   "Failed to " + operation,
		"details": err.Error(),
	})
}

// Home renders the welcome view (GET /, routed mode only).
func (h *Handlers) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", homeView{
		Title:     "Welcome",
		ImageURL:  welcomeImageURL,
		UploadURL: h.mode.WidgetPath(),
	})
}

// UploadView renders the upload widget.
func (h *Handlers) UploadView(c *gin.Context) {
	snap, err := h.staging.GetState(c.Request.Context())
	if err != nil {
		handleStagingError(c, err, "load staging state")
		return
	}
	c.HTML(http.StatusOK, "upload.html", newUploadView(h.mode, h.policy, *snap))
}

// OfferFilesForm accepts the plain form submission used when scripting is
// off and redirects back to the widget. Rejection is shown by the widget itself.
func (h *Handlers) OfferFilesForm(c *gin.Context) {
	if !h.limitBody(c) {
		return
	}
	candidates, err := candidatesFromRequest(c)
	if err != nil && !errors.Is(err, errNoFiles) {
		h.writeBadOffer(c, err, "multipart form")
		return
	}

	if _, err := h.staging.OfferFiles(c.Request.Context(), candidates); err != nil {
		handleStagingError(c, err, "offer files")
		return
	}
	c.Redirect(http.StatusSeeOther, h.mode.WidgetPath())
}

// StartUploadForm handles the Upload Files button and redirects back to the widget.
func (h *Handlers) StartUploadForm(c *gin.Context) {
	if _, err := h.staging.StartUpload(c.Request.Context()); err != nil {
		handleStagingError(c, err, "start upload")
		return
	}
	c.Redirect(http.StatusSeeOther, h.mode.WidgetPath())
}

// GetState handles state requests (GET /api/v1/staging).
func (h *Handlers) GetState(c *gin.Context) {
	snap, err := h.staging.GetState(c.Request.Context())
	if err != nil {
		handleStagingError(c, err, "get staging state")
		return
	}
	c.JSON(http.StatusOK, snap)
}

// OfferFiles handles offers (POST /api/v1/staging/files). The widget sends a
// JSON body of file descriptors; a multipart form with a "files" field is
// also accepted. A rejected offer still answers 200 and carries the error in
// its state.
func (h *Handlers) OfferFiles(c *gin.Context) {
	if !h.limitBody(c) {
		return
	}

	var candidates []upload.FileCandidate
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		var err error
		candidates, err = candidatesFromRequest(c)
		if err != nil && !errors.Is(err, errNoFiles) {
			h.writeBadOffer(c, err, "multipart form")
			return
		}
	} else {
		var req staging.OfferFilesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.writeBadOffer(c, asBodyTooLarge(err), "request body")
			return
		}
		candidates = req.Files
	}

	resp, err := h.staging.OfferFiles(c.Request.Context(), candidates)
	if err != nil {
		handleStagingError(c, err, "offer files")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StartUpload handles upload requests (POST /api/v1/staging/upload).
// It answers 202 when a cycle started and 409 when the request was ignored.
func (h *Handlers) StartUpload(c *gin.Context) {
	resp, err := h.staging.StartUpload(c.Request.Context())
	if err != nil {
		handleStagingError(c, err, "start upload")
		return
	}

	status := http.StatusAccepted
	if !resp.Started {
		status = http.StatusConflict
	}
	c.JSON(status, resp)
}

// ProgressEvents streams staging events as server-sent events
// (GET /api/v1/staging/events). The current state is sent first.
func (h *Handlers) ProgressEvents(c *gin.Context) {
	sub, ok := h.hub.Subscribe()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Progress feed is shutting down"})
		return
	}
	defer h.hub.Unsubscribe(sub)

	snap, err := h.staging.GetState(c.Request.Context())
	if err != nil {
		handleStagingError(c, err, "get staging state")
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("state", snap)
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case msg, ok := <-sub.Messages():
			if !ok {
				return false
			}
			c.SSEvent(msg.Type, msg.Payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// HealthCheck handles health check requests (GET /health). It is unhealthy
// while the staging module cannot be reached.
func (h *Handlers) HealthCheck(c *gin.Context) {
	snap, err := h.staging.GetState(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "upload-staging-demo",
			"mode":    h.mode,
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "upload-staging-demo",
		"mode":    h.mode,
		"staging": gin.H{
			"status":   snap.Status,
			"selected": len(snap.Files),
		},
	})
}

// candidatesFromRequest reads the descriptors of every file in the "files"
// field. Only the part headers are used; contents are discarded.
func candidatesFromRequest(c *gin.Context) ([]upload.FileCandidate, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, errNoFiles
		}
		return nil, asBodyTooLarge(err)
	}
	defer func() { _ = form.RemoveAll() }()

	headers := form.File[formFilesField]
	if len(headers) == 0 {
		return nil, errNoFiles
	}
	return candidatesFromHeaders(headers), nil
}

// asBodyTooLarge maps a read that hit the body cap to errBodyTooLarge.
func asBodyTooLarge(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errBodyTooLarge
	}
	return err
}

func candidatesFromHeaders(headers []*multipart.FileHeader) []upload.FileCandidate {
	candidates := make([]upload.FileCandidate, 0, len(headers))
	for _, header := range headers {
		// Determine content type
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = detectContentType(header.Filename)
		}

		candidates = append(candidates, upload.FileCandidate{
			Name:      header.Filename,
			MimeType:  contentType,
			SizeBytes: header.Size,
		})
	}
	return candidates
}
