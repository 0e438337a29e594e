package views

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses the page templates bundled into the binary.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(files, "templates/*.html"))
}
