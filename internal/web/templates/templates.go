// Package templates embeds the html/template files for the web UI.
package templates

import "embed"

//go:embed base.html pages/*.html partials/*.html
var FS embed.FS
