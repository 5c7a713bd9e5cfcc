// Package templates embeds the receipt layouts.
package templates

import "embed"

//go:embed *.html
var FS embed.FS
