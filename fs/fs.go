package appfs

import (
	"embed"
	"io/fs"
)

//go:generate curl -fsSL -o static/htmx.min.js https://unpkg.com/htmx.org@1.9.12/dist/htmx.min.js

// FS holds the web and email templates and the static assets.
//
//go:embed templates static
var FS embed.FS

const (
	htmxFile = "static/htmx.min.js"
	htmxCDN  = "https://unpkg.com/htmx.org@1.9.12/dist/htmx.min.js"
)

// HTMXSrc is the script URL pages load htmx from: the embedded copy when it was
// vendored with go generate, the pinned CDN build otherwise.
func HTMXSrc() string { return htmxSrc(FS) }

func htmxSrc(fsys fs.FS) string {
	if _, err := fs.Stat(fsys, htmxFile); err == nil {
		return "/" + htmxFile
	}
	return htmxCDN
}
