// Package web carries the pages, partials and browser assets compiled into
// the financas binary.
package web

import "embed"

// TemplatesFS holds every page and partial; internal/http parses them as one set.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds app.js and app.css, served under /static/.
//
//go:embed static/*.css static/*.js
var StaticFS embed.FS
