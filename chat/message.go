package chat

import (
	"encoding/base64"
	"strings"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type PartType string

const (
	PartText  PartType = "text"
	PartImage PartType = "image"
)

type ImageSourceType string

const (
	ImageSourceURL     ImageSourceType = "url"
	ImageSourceDataURL ImageSourceType = "data_url"
	ImageSourceBase64  ImageSourceType = "base64"
	ImageSourceFileURI ImageSourceType = "file_uri"
	ImageSourceFileID  ImageSourceType = "file_id"
)

// ImageRef is an opaque reference to image content owned by the caller.
//
// Value is interpreted per SourceType: a URL, a full data URL, raw base64
// payload, a provider file URI, or a provider file id. The core never
// fetches or persists it.
type ImageRef struct {
	SourceType ImageSourceType
	Value      string

	// MIMEType is required for SourceType base64 and derived from the
	// data URL for SourceType data_url.
	MIMEType string

	// Detail is "low", "high", "auto", or empty.
	Detail string
}

// Part is one segment of a canonical message: text or an image.
type Part struct {
	Type  PartType
	Text  string
	Image *ImageRef
}

func TextPart(text string) Part     { return Part{Type: PartText, Text: text} }
func ImagePart(ref ImageRef) Part   { return Part{Type: PartImage, Image: &ref} }
func (p Part) IsImage() bool        { return p.Type == PartImage && p.Image != nil }
func (p Part) IsNonEmptyText() bool { return p.Type == PartText && strings.TrimSpace(p.Text) != "" }

// Message is a canonical chat message. After normalization Parts is
// non-empty and every part is either non-whitespace text or a valid image.
type Message struct {
	Role  Role
	Parts []Part

	// TurnID optionally links the message back to the caller's history row.
	TurnID string
}

func User(text string) Message {
	return Message{Role: RoleUser, Parts: []Part{TextPart(text)}}
}

func Assistant(text string) Message {
	return Message{Role: RoleAssistant, Parts: []Part{TextPart(text)}}
}

func (m Message) Clone() Message {
	out := m
	if m.Parts != nil {
		out.Parts = make([]Part, len(m.Parts))
		copy(out.Parts, m.Parts)
		for i := range out.Parts {
			if out.Parts[i].Image != nil {
				img := *out.Parts[i].Image
				out.Parts[i].Image = &img
			}
		}
	}
	return out
}

// RawImage is an unvalidated image reference from a history row.
type RawImage struct {
	SourceType string `json:"sourceType"`
	Value      string `json:"value"`
	MIMEType   string `json:"mimeType"`
	Detail     string `json:"detail"`
}

// RawPart is an unvalidated message part from a history row.
type RawPart struct {
	Type  string    `json:"type"`
	Text  string    `json:"text"`
	Image *RawImage `json:"image"`
}

// RawMessage is a heterogeneous history row: either structured Parts or a
// legacy plain-text Content field.
type RawMessage struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	Parts   []RawPart `json:"parts"`
	TurnID  string    `json:"turnId"`
}

// NormalizeRole matches raw against user/assistant case-insensitively.
func NormalizeRole(raw string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "user":
		return RoleUser, true
	case "assistant":
		return RoleAssistant, true
	default:
		return "", false
	}
}

// NormalizeImage validates a raw image reference.
//
// base64 sources require an explicit MIME type; data_url sources must be a
// parseable base64 data URL and take their MIME type from it. Detail is
// normalized to low/high/auto or dropped.
func NormalizeImage(raw RawImage) (*ImageRef, bool) {
	value := strings.TrimSpace(raw.Value)
	if value == "" {
		return nil, false
	}

	ref := ImageRef{
		Value:    value,
		MIMEType: strings.TrimSpace(raw.MIMEType),
		Detail:   normalizeDetail(raw.Detail),
	}

	switch ImageSourceType(strings.ToLower(strings.TrimSpace(raw.SourceType))) {
	case ImageSourceURL:
		ref.SourceType = ImageSourceURL
	case ImageSourceDataURL:
		mime, _, ok := ParseDataURL(value)
		if !ok {
			return nil, false
		}
		ref.SourceType = ImageSourceDataURL
		ref.MIMEType = mime
	case ImageSourceBase64:
		if ref.MIMEType == "" {
			return nil, false
		}
		ref.SourceType = ImageSourceBase64
	case ImageSourceFileURI:
		ref.SourceType = ImageSourceFileURI
	case ImageSourceFileID:
		ref.SourceType = ImageSourceFileID
	default:
		return nil, false
	}

	return &ref, true
}

func normalizeDetail(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return "low"
	case "high":
		return "high"
	case "auto":
		return "auto"
	default:
		return ""
	}
}

// ParseDataURL splits a base64 data URL into MIME type and payload.
//
//	data:image/png;base64,aGVsbG8=  ->  ("image/png", "aGVsbG8=", true)
func ParseDataURL(value string) (mime, data string, ok bool) {
	rest, found := strings.CutPrefix(value, "data:")
	if !found {
		return "", "", false
	}
	meta, payload, found := strings.Cut(rest, ",")
	if !found || payload == "" {
		return "", "", false
	}
	meta, found = strings.CutSuffix(meta, ";base64")
	if !found {
		return "", "", false
	}
	mime = strings.TrimSpace(meta)
	if mime == "" {
		return "", "", false
	}
	if !validBase64(payload) {
		return "", "", false
	}
	return mime, payload, true
}

func validBase64(s string) bool {
	if _, err := base64.StdEncoding.DecodeString(s); err == nil {
		return true
	}
	_, err := base64.RawStdEncoding.DecodeString(s)
	return err == nil
}

// NormalizeMessage converts one raw history row into canonical form.
//
// Structured Parts take precedence over the legacy Content field when both
// are present. Whitespace-only text parts and invalid image parts are
// dropped silently; a row with no surviving parts is rejected.
func NormalizeMessage(raw RawMessage) (Message, bool) {
	role, ok := NormalizeRole(raw.Role)
	if !ok {
		return Message{}, false
	}

	var parts []Part
	if len(raw.Parts) > 0 {
		for _, rp := range raw.Parts {
			if rp.Image != nil {
				ref, ok := NormalizeImage(*rp.Image)
				if !ok {
					continue
				}
				parts = append(parts, Part{Type: PartImage, Image: ref})
				continue
			}
			if strings.TrimSpace(rp.Text) != "" {
				parts = append(parts, TextPart(rp.Text))
			}
		}
	} else if strings.TrimSpace(raw.Content) != "" {
		parts = append(parts, TextPart(raw.Content))
	}

	if len(parts) == 0 {
		return Message{}, false
	}
	return Message{Role: role, Parts: parts, TurnID: raw.TurnID}, true
}

// MessageText joins the message's text parts with blank lines.
//
// imagePlaceholder is returned only when the message has zero text parts
// and at least one image part.
func MessageText(m Message, imagePlaceholder string) string {
	var texts []string
	images := 0
	for _, p := range m.Parts {
		switch {
		case p.IsNonEmptyText():
			texts = append(texts, strings.TrimSpace(p.Text))
		case p.IsImage():
			images++
		}
	}
	if len(texts) == 0 {
		if images > 0 {
			return imagePlaceholder
		}
		return ""
	}
	return strings.Join(texts, "\n\n")
}
