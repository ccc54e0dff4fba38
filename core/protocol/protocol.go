package protocol

import "strings"

// Protocol identifies the shape of a request/response exchange with a
// model provider (chat completion, vision, tool calling, embeddings, or
// audio transcription).
type Protocol string

const (
	Chat       Protocol = "chat"
	Vision     Protocol = "vision"
	Tools      Protocol = "tools"
	Embeddings Protocol = "embeddings"
	Audio      Protocol = "audio"
)

// protocols is the canonical, ordered list of recognized protocols.
var protocols = []Protocol{Chat, Vision, Tools, Embeddings, Audio}

// IsValid reports whether s names a recognized protocol.
func IsValid(s string) bool {
	for _, p := range protocols {
		if string(p) == s {
			return true
		}
	}
	return false
}

// ValidProtocols returns the canonical, ordered list of recognized protocols.
func ValidProtocols() []Protocol {
	return append([]Protocol(nil), protocols...)
}

// ProtocolStrings returns the recognized protocols as a comma-separated
// string, suitable for error messages and flag usage text.
func ProtocolStrings() string {
	names := make([]string, len(protocols))
	for i, p := range protocols {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// SupportsStreaming reports whether this protocol's responses can be
// delivered incrementally. Embeddings and audio transcription are always
// computed as a single batch result.
func (p Protocol) SupportsStreaming() bool {
	switch p {
	case Chat, Vision, Tools:
		return true
	default:
		return false
	}
}

// InitMessages builds a single-message conversation with the given role
// and text content, the common starting point for a new exchange.
func InitMessages(role Role, content string) []Message {
	return []Message{NewMessage(role, content)}
}
