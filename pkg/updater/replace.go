package updater

import (
	"regexp"
	"strings"

	"github.com/lucas-albers-lz4/kubedeps/pkg/dependency"
	"github.com/lucas-albers-lz4/kubedeps/pkg/image"
)

// imageLinePattern matches the text before an image value: an indented
// "image:" key, optionally as a list item, and an optional opening quote.
var imageLinePattern = regexp.MustCompile(`(?m)^[ \t]*(?:-[ \t]+)?image:[ \t]+(["']?)`)

const quoteGroup = 1

// replaceImage rewrites every image value equal to old's reference string
// with new's. The value must end at whitespace, end of text or its closing
// quote, so a reference that merely starts with the old string is left alone.
// When old has no registry an explicit "docker.io/" in front of it also
// matches; it is kept unless new names a registry of its own.
func replaceImage(content, name string, oldSource, newSource dependency.Source) string {
	oldImage := oldSource.ImageString(name)
	newImage := newSource.ImageString(name)
	defaultPrefix := image.DefaultRegistry + image.DefaultSeparator

	var b strings.Builder
	last := 0
	for _, m := range imageLinePattern.FindAllStringSubmatchIndex(content, -1) {
		start := m[1]
		quote := content[m[2*quoteGroup]:m[2*quoteGroup+1]]
		rest := content[start:]

		replaceFrom := start
		switch {
		case strings.HasPrefix(rest, oldImage):
		case oldSource.Registry == "" && strings.HasPrefix(rest, defaultPrefix+oldImage):
			start += len(defaultPrefix)
			if newSource.Registry == "" {
				replaceFrom = start
			}
		default:
			continue
		}

		end := start + len(oldImage)
		if !atBoundary(content, end, quote) {
			continue
		}

		b.WriteString(content[last:replaceFrom])
		b.WriteString(newImage)
		last = end
	}
	if last == 0 {
		return content
	}
	b.WriteString(content[last:])
	return b.String()
}

// atBoundary reports whether the value ends at pos.
func atBoundary(content string, pos int, quote string) bool {
	if pos == len(content) {
		return true
	}
	next := content[pos]
	if quote != "" {
		return string(next) == quote
	}
	return next == ' ' || next == '\t' || next == '\n' || next == '\r'
}
