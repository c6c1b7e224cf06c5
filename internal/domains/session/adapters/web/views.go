package web

import (
	"embed"
	"html/template"
)

//go:embed views/*.html
var viewFS embed.FS

// Templates parses the portal views for gin's HTML renderer.
func Templates() (*template.Template, error) {
	return template.ParseFS(viewFS, "views/*.html")
}
