package httpserver

import (
	"embed"
	"io/fs"

	"github.com/example/upload-staging-demo/domain/upload"
	"github.com/example/upload-staging-demo/modules/staging"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFiles embed.FS

// staticFS returns the embedded static assets with the static folder as root.
func staticFS() (fs.FS, error) {
	return fs.Sub(staticFiles, "static")
}

type homeView struct {
	Title     string
	ImageURL  string
	UploadURL string
}

type uploadView struct {
	Title        string
	Routed       bool
	HomeURL      string
	WidgetURL    string
	FilesAction  string
	UploadAction string
	OfferURL     string
	EventsURL    string
	Accept       string
	MaxSize      string
	State        staging.Snapshot
}

func newUploadView(mode Mode, policy upload.Policy, snap staging.Snapshot) uploadView {
	base := mode.WidgetPath()
	return uploadView{
		Title:        "File upload functionality",
		Routed:       mode == ModeRouted,
		HomeURL:      "/",
		WidgetURL:    base,
		FilesAction:  joinPath(base, "files"),
		UploadAction: joinPath(base, "upload"),
		OfferURL:     "/api/v1/staging/files",
		EventsURL:    "/api/v1/staging/events",
		Accept:       policy.Accept(),
		MaxSize:      policy.MaxSize(),
		State:        snap,
	}
}
