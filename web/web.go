// Package web embeds the HTML templates and static assets served by the site.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
)

//go:embed template/*.html
var templateFS embed.FS

//go:embed static/js/*.js static/css/*.css
var staticFS embed.FS

// AboutMarkdown is the body of the about page.
//
//go:embed content/about.md
var AboutMarkdown string

var funcs = template.FuncMap{
	"plural": func(n int, word string) string {
		if n == 1 {
			return fmt.Sprintf("%d %s", n, word)
		}
		return fmt.Sprintf("%d %ss", n, word)
	},
}

// Templates parses every page and partial template.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "template/*.html")
}

// Static returns the bundled assets rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
