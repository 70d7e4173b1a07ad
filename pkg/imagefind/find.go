// Package imagefind locates an output image inside an arbitrary provider
// response: an inline data URI, a remote image URL, a base64 field under one
// of several provider spellings, or a nested inline-data object.
package imagefind

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/andreyxaxa/Photo-Transformer/pkg/jsontree"
)

// MaxDepth bounds the structural search. The root is depth 0.
const MaxDepth = 6

const _defaultMIME = "image/png"

type Kind int

const (
	NotFound Kind = iota
	DataURI
	RemoteURL
)

func (k Kind) String() string {
	switch k {
	case DataURI:
		return "dataUri"
	case RemoteURL:
		return "remoteUrl"
	default:
		return "notFound"
	}
}

type Result struct {
	Kind  Kind
	Value string
}

func (r Result) Found() bool {
	return r.Kind != NotFound
}

var (
	dataURIRe     = regexp.MustCompile(`data:image/[^;]+;base64,[A-Za-z0-9+/=]+`)
	imageURLRe    = regexp.MustCompile(`(?i)https?://[^\s]+\.(png|jpg|jpeg|webp|gif)`)
	httpPrefixRe  = regexp.MustCompile(`(?i)^https?://`)
	imageSuffixRe = regexp.MustCompile(`(?i)\.(png|jpg|jpeg|webp|gif)(\?|$)`)

	base64Keys     = []string{"image_base64", "b64_json", "imageBase64", "b64Json"}
	inlineDataKeys = []string{"inline_data", "inlineData"}
	mimeKeys       = []string{"mime_type", "mimetype", "mimeType"}
)

// Find parses payload and searches it.
func Find(payload []byte) (Result, error) {
	root, err := jsontree.Parse(payload)
	if err != nil {
		return Result{}, fmt.Errorf("imagefind - Find: %w", err)
	}

	return FindValue(root), nil
}

// FindValue probes the chat-style and responses-style content locations
// first, then walks the whole document.
func FindValue(root jsontree.Value) Result {
	if _, ok := root.Path("choices", 0, "message"); ok {
		content, _ := root.Path("choices", 0, "message", "content")
		if r := scanContent(content); r.Found() {
			return r
		}
		if r := deepFind(content, 0); r.Found() {
			return r
		}
	}

	if content, ok := root.Path("output", 0, "content"); ok && content.Kind == jsontree.Array {
		if r := scanContent(content); r.Found() {
			return r
		}
		if r := deepFind(content, 0); r.Found() {
			return r
		}
	}

	return deepFind(root, 0)
}

// scanContent recognises message content: free text or a list of parts.
func scanContent(content jsontree.Value) Result {
	switch content.Kind {
	case jsontree.String:
		return scanText(content.Str)
	case jsontree.Array:
		for _, part := range content.Items {
			if r := scanPart(part); r.Found() {
				return r
			}
		}
	}

	return Result{}
}

func scanPart(part jsontree.Value) Result {
	if part.Kind != jsontree.Object {
		return Result{}
	}

	if r := imageURLField(part); r.Found() {
		return r
	}

	if u, ok := part.GetString("url"); ok {
		if r := classify(u); r.Found() {
			return r
		}
	}

	text, hasText := part.GetString("text")
	if !hasText {
		return Result{}
	}

	if typ, ok := part.GetString("type"); ok && strings.Contains(typ, "image") {
		if m := imageURLRe.FindString(text); m != "" {
			return Result{Kind: RemoteURL, Value: m}
		}
	}

	return scanText(text)
}

func scanText(s string) Result {
	if m := dataURIRe.FindString(s); m != "" {
		return Result{Kind: DataURI, Value: m}
	}
	if m := imageURLRe.FindString(s); m != "" {
		return Result{Kind: RemoteURL, Value: m}
	}

	return Result{}
}

func deepFind(node jsontree.Value, depth int) Result {
	if depth > MaxDepth {
		return Result{}
	}

	switch node.Kind {
	case jsontree.String:
		if r := scanText(node.Str); r.Found() {
			return r
		}
		// double-encoded JSON
		trimmed := strings.TrimSpace(node.Str)
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			if nested, err := jsontree.Parse([]byte(trimmed)); err == nil {
				return deepFind(nested, depth+1)
			}
		}
	case jsontree.Array:
		for _, item := range node.Items {
			if r := deepFind(item, depth+1); r.Found() {
				return r
			}
		}
	case jsontree.Object:
		if r := objectImage(node); r.Found() {
			return r
		}
		for _, f := range node.Fields {
			if r := deepFind(f.Value, depth+1); r.Found() {
				return r
			}
		}
	}

	return Result{}
}

// objectImage checks the fields an object may use to carry an image directly.
func objectImage(obj jsontree.Value) Result {
	if r := imageURLField(obj); r.Found() {
		return r
	}

	if u, ok := obj.GetString("url"); ok && httpPrefixRe.MatchString(u) && imageSuffixRe.MatchString(u) {
		return Result{Kind: RemoteURL, Value: u}
	}

	for _, key := range base64Keys {
		if b64, ok := obj.GetString(key); ok && b64 != "" {
			return Result{Kind: DataURI, Value: toDataURI(b64, firstString(obj, mimeKeys))}
		}
	}

	for _, key := range inlineDataKeys {
		inline, ok := obj.Get(key)
		if !ok {
			continue
		}
		if b64, ok := inline.GetString("data"); ok && b64 != "" {
			return Result{Kind: DataURI, Value: toDataURI(b64, firstString(inline, mimeKeys))}
		}
	}

	return Result{}
}

// imageURLField handles both "image_url": "<url>" and "image_url": {"url": "<url>"}.
func imageURLField(obj jsontree.Value) Result {
	field, ok := obj.Get("image_url")
	if !ok {
		return Result{}
	}

	switch field.Kind {
	case jsontree.String:
		return classify(field.Str)
	case jsontree.Object:
		if u, ok := field.GetString("url"); ok {
			return classify(u)
		}
	}

	return Result{}
}

// classify accepts a literal reference only if it is usable as a result.
func classify(s string) Result {
	switch {
	case strings.HasPrefix(s, "data:image/") && strings.Contains(s, ";base64,"):
		return Result{Kind: DataURI, Value: s}
	case httpPrefixRe.MatchString(s):
		return Result{Kind: RemoteURL, Value: s}
	default:
		return Result{}
	}
}

func toDataURI(b64, mime string) string {
	if !strings.HasPrefix(mime, "image/") {
		mime = _defaultMIME
	}

	return "data:" + mime + ";base64," + b64
}

func firstString(obj jsontree.Value, keys []string) string {
	for _, k := range keys {
		if s, ok := obj.GetString(k); ok && s != "" {
			return s
		}
	}

	return ""
}
