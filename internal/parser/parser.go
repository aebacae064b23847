// Package parser is the input boundary: it turns raw filing bytes into the
// markup tree the segmentation engine walks. Encoding detection and
// malformed-tag recovery are golang.org/x/net/html's job, not ours.
package parser

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".html": true,
	".htm":  true,
	".md":   true,
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Load reads one filing and returns its parsed markup tree. Markdown
// exhibits are rendered to HTML first so everything downstream sees one
// input shape.
func Load(r io.Reader, filename string) (*html.Node, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".html", ".htm":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filename, err)
		}
		return ParseHTML(data)
	case ".md":
		return parseMarkdown(r, filename)
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

var htmlEnvelopeRe = regexp.MustCompile(`(?is)<html[\s>].*</html\s*>`)

// ParseHTML parses filing bytes into a markup tree. SEC full-text
// submissions wrap the document in an <HTML>...</HTML> envelope inside
// non-HTML header lines; when such an envelope is present, only it is
// parsed.
func ParseHTML(data []byte) (*html.Node, error) {
	if env := htmlEnvelopeRe.Find(data); env != nil {
		data = env
	}
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}
