package payload

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestAccepts(t *testing.T) {
	tests := []struct {
		accept string
		want   bool
	}{
		{"text/x-verso", true},
		{"text/html, text/x-verso;q=0.9", true},
		{"text/html", false},
		{"", false},
		{"*/*", false},
	}
	for _, tt := range tests {
		if got := Accepts(tt.accept); got != tt.want {
			t.Errorf("Accepts(%q) = %v, want %v", tt.accept, got, tt.want)
		}
	}
}

func TestIsPayloadResponse(t *testing.T) {
	if !IsPayloadResponse("text/x-verso; charset=utf-8") {
		t.Error("payload content type with params should match")
	}
	if IsPayloadResponse("text/html") {
		t.Error("text/html should not match")
	}
}

func TestJSONCodecRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	codec := JSONCodec{}

	env := &Envelope{ReturnValue: map[string]any{"ok": true, "data": "hi"}}
	if err := codec.Encode(&buf, env); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var got Envelope
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	rv, ok := got.ReturnValue.(map[string]any)
	if !ok || rv["data"] != "hi" {
		t.Errorf("ReturnValue = %#v, want data=hi", got.ReturnValue)
	}
}
