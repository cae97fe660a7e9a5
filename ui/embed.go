// Package ui holds the embedded html templates.
package ui

import (
	"embed"
	"html/template"
)

//go:embed html/*.html
var files embed.FS

func Templates() (*template.Template, error) {
	return template.ParseFS(files, "html/*.html")
}
