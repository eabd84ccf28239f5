package models

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// InlineImagePrefix is prepended to every freshly ingested image. Uploads are
// always labelled as JPEG regardless of their real content type.
const InlineImagePrefix = "data:image/jpeg;base64,"

// ImageKind tells which storage shape an Image holds.
type ImageKind int

const (
	ImageNone ImageKind = iota
	ImageInline
	ImageLegacyBuffer
)

func (k ImageKind) String() string {
	switch k {
	case ImageInline:
		return "inline"
	case ImageLegacyBuffer:
		return "legacy_buffer"
	default:
		return "none"
	}
}

// Image is the stored representation of an entity image. Records written by
// this service hold an inline data-URI string; older records may still hold
// a raw byte buffer under a "data" field.
type Image struct {
	kind   ImageKind
	inline string
	buffer []byte
}

// InlineImage wraps an already encoded inline string.
func InlineImage(s string) Image {
	return Image{kind: ImageInline, inline: s}
}

// LegacyBufferImage wraps raw bytes kept by historical records.
func LegacyBufferImage(b []byte) Image {
	return Image{kind: ImageLegacyBuffer, buffer: b}
}

// EncodeInline builds the inline representation for raw image bytes.
func EncodeInline(data []byte) Image {
	return InlineImage(InlineImagePrefix + base64.StdEncoding.EncodeToString(data))
}

func (i Image) Kind() ImageKind { return i.kind }

func (i Image) IsZero() bool { return i.kind == ImageNone }

// Inline returns the inline string, empty for other shapes.
func (i Image) Inline() string { return i.inline }

// Buffer returns the legacy bytes, nil for other shapes.
func (i Image) Buffer() []byte { return i.buffer }

// Normalize renders the image for transport. Inline strings pass through
// unchanged; legacy buffers become plain base64 with no media-type prefix.
func (i Image) Normalize() string {
	switch i.kind {
	case ImageInline:
		return i.inline
	case ImageLegacyBuffer:
		return base64.StdEncoding.EncodeToString(i.buffer)
	default:
		return ""
	}
}

// nodeBuffer is the JSON form Node.js gives a Buffer.
type nodeBuffer struct {
	Type string `json:"type"`
	Data []int  `json:"data"`
}

// MarshalJSON writes inline images as strings and legacy images as
// {"data":{"type":"Buffer","data":[...]}}, the shape old clients received.
func (i Image) MarshalJSON() ([]byte, error) {
	switch i.kind {
	case ImageInline:
		return json.Marshal(i.inline)
	case ImageLegacyBuffer:
		data := make([]int, len(i.buffer))
		for idx, b := range i.buffer {
			data[idx] = int(b)
		}
		return json.Marshal(map[string]nodeBuffer{"data": {Type: "Buffer", Data: data}})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a string, or an object whose "data" field is a base64
// string, a byte array, or a Node.js Buffer object.
func (i *Image) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*i = Image{}
		return nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("failed to decode inline image: %w", err)
		}
		*i = InlineImage(s)
		return nil
	}

	var holder struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &holder); err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}
	if len(holder.Data) == 0 {
		return fmt.Errorf("image object has no data field")
	}

	buf, err := decodeBufferJSON(holder.Data)
	if err != nil {
		return err
	}
	*i = LegacyBufferImage(buf)
	return nil
}

func decodeBufferJSON(raw json.RawMessage) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("failed to decode image data: %w", err)
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 image data: %w", err)
		}
		return b, nil
	case '[':
		return bytesFromInts(raw)
	case '{':
		var nb nodeBuffer
		if err := json.Unmarshal(raw, &nb); err != nil {
			return nil, fmt.Errorf("failed to decode buffer object: %w", err)
		}
		return intsToBytes(nb.Data)
	default:
		return nil, fmt.Errorf("unsupported image data shape")
	}
}

func bytesFromInts(raw json.RawMessage) ([]byte, error) {
	var ints []int
	if err := json.Unmarshal(raw, &ints); err != nil {
		return nil, fmt.Errorf("failed to decode image byte array: %w", err)
	}
	return intsToBytes(ints)
}

func intsToBytes(ints []int) ([]byte, error) {
	out := make([]byte, len(ints))
	for idx, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("image byte %d out of range: %d", idx, v)
		}
		out[idx] = byte(v)
	}
	return out, nil
}
