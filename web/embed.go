package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

// assetFS embeds the server-rendered views and the browser scripts so the
// binary ships without external assets.
//
//go:embed templates/*.html static/*.js
var assetFS embed.FS

// Templates parses the embedded view templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(assetFS, "templates/*.html")
}

// StaticFS exposes the embedded static assets rooted at static/.
func StaticFS() (http.FileSystem, error) {
	sub, err := fs.Sub(assetFS, "static")
	if err != nil {
		return nil, err
	}
	return http.FS(sub), nil
}
