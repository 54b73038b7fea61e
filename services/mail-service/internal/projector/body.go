package projector

import (
	"encoding/base64"
	"strings"

	"google.golang.org/api/gmail/v1"
)

type partKind int

const (
	partEmpty partKind = iota
	partData
	partChildren
)

func kindOf(p *gmail.MessagePart) partKind {
	switch {
	case p == nil:
		return partEmpty
	case p.Body != nil && p.Body.Data != "":
		return partData
	case len(p.Parts) > 0:
		return partChildren
	default:
		return partEmpty
	}
}

// ExtractBody walks the MIME tree depth-first and returns the decoded body.
//
// A part with inline data is returned as is. Otherwise its direct children
// are scanned for text/html, then for text/plain. If neither carries data,
// each child that has children of its own is searched in order and the first
// non-empty result wins.
func ExtractBody(p *gmail.MessagePart) string {
	switch kindOf(p) {
	case partData:
		return decodeBody(p.Body.Data)
	case partChildren:
		if data, ok := firstLeaf(p.Parts, "text/html"); ok {
			return decodeBody(data)
		}
		if data, ok := firstLeaf(p.Parts, "text/plain"); ok {
			return decodeBody(data)
		}
		for _, child := range p.Parts {
			if child == nil || len(child.Parts) == 0 {
				continue
			}
			if body := ExtractBody(child); body != "" {
				return body
			}
		}
	}
	return ""
}

func firstLeaf(parts []*gmail.MessagePart, mimeType string) (string, bool) {
	for _, part := range parts {
		if part != nil && part.MimeType == mimeType && kindOf(part) == partData {
			return part.Body.Data, true
		}
	}
	return "", false
}

// decodeBody decodes URL-safe base64, padded or not. Undecodable input is
// returned unchanged.
func decodeBody(data string) string {
	normalized := strings.NewReplacer("-", "+", "_", "/").Replace(data)
	normalized = strings.TrimRight(normalized, "=")
	decoded, err := base64.RawStdEncoding.DecodeString(normalized)
	if err != nil {
		return data
	}
	return string(decoded)
}
