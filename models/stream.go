// Package models provides the core data structures shared by the router,
// the branch builders and the lifecycle driver.
package models

import "strings"

// MediaKind is the closed set of stream kinds the router dispatches on.
type MediaKind int

const (
	MediaUnknown MediaKind = iota
	MediaAudio
	MediaVideo
)

func (k MediaKind) String() string {
	switch k {
	case MediaAudio:
		return "audio"
	case MediaVideo:
		return "video"
	default:
		return "unknown"
	}
}

// ClassifyMediaType maps a capability structure name such as "audio/x-raw"
// to a MediaKind. Anything that is neither audio nor video is MediaUnknown.
func ClassifyMediaType(mediaType string) MediaKind {
	switch {
	case strings.HasPrefix(mediaType, "audio/"):
		return MediaAudio
	case strings.HasPrefix(mediaType, "video/"):
		return MediaVideo
	default:
		return MediaUnknown
	}
}

// StreamDescriptor describes one output discovered on the source node.
//
// Kind is derived once, from MediaType, when the descriptor is created and
// is never re-derived afterwards. Build descriptors with NewStreamDescriptor.
type StreamDescriptor struct {
	Port      string    `json:"port"`
	MediaType string    `json:"media_type"`
	Kind      MediaKind `json:"kind"`
}

// NewStreamDescriptor classifies mediaType and returns the descriptor.
func NewStreamDescriptor(port, mediaType string) StreamDescriptor {
	return StreamDescriptor{
		Port:      port,
		MediaType: mediaType,
		Kind:      ClassifyMediaType(mediaType),
	}
}
