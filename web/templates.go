package web

import (
	"embed"
	"html/template"
	"sync"
)

//go:embed *.html *.css *.js static
var content embed.FS

var (
	tmpl *template.Template
	once sync.Once
)

// Templates returns the parsed HTML templates for the admin UI, embedded
// at build time. layout.html pulls the page templates (dashboard.html,
// settings.html, users.html) in via the PageTemplate switch.
func Templates() *template.Template {
	once.Do(func() {
		tmpl = template.Must(template.ParseFS(content, "*.html"))
	})
	return tmpl
}

// Asset returns an embedded static file (CSS, client scripts, icons).
func Asset(name string) ([]byte, error) {
	return content.ReadFile(name)
}
