// Package payload defines the opaque streaming payload exchanged between
// the server and payload-aware clients.
//
// The wire format is deliberately hidden behind the Codec interface; the
// rest of the framework only negotiates the content type and hands an
// Envelope to the codec. Plain-HTML clients never see this format.
package payload

import (
	"encoding/json"
	"io"
	"mime"
	"strings"
)

// ContentType identifies a streaming payload response.
const ContentType = "text/x-verso"

// Envelope is the application-visible shape of one payload: the action's
// return value and/or the form state a resubmitted form needs.
type Envelope struct {
	ReturnValue any `json:"returnValue,omitempty"`
	FormState   any `json:"formState,omitempty"`
}

// Codec serializes envelopes into the opaque stream.
type Codec interface {
	// ContentType is the media type written responses carry.
	ContentType() string

	// Encode writes one envelope to w.
	Encode(w io.Writer, env *Envelope) error
}

// JSONCodec is the default codec: one JSON document per envelope.
type JSONCodec struct{}

func (JSONCodec) ContentType() string { return ContentType }

func (JSONCodec) Encode(w io.Writer, env *Envelope) error {
	enc := json.NewEncoder(w)
	return enc.Encode(env)
}

// Accepts reports whether the given Accept header value indicates the
// caller understands the streaming payload format.
func Accepts(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if mt == ContentType {
			return true
		}
	}
	return false
}

// IsPayloadResponse reports whether a response Content-Type header carries
// the streaming payload format.
func IsPayloadResponse(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == ContentType
}
