// Package profile declares what the encoder/muxer node must produce: one
// target per stream kind plus the container everything is muxed into.
package profile

import (
	"fmt"
	"strings"

	"watermark/engine"
	"watermark/models"
)

// PresenceUnbounded accepts any number of streams of a kind, including none.
const PresenceUnbounded = 0

// Target is the desired output format for one stream kind or the container.
type Target struct {
	Format   string // capability name, e.g. "audio/x-vorbis"
	Preset   string // optional engine preset name
	Presence int    // how many streams of this kind; PresenceUnbounded for any
}

// NewTarget creates a target with unbounded presence.
func NewTarget(format string) *Target {
	return &Target{Format: format, Presence: PresenceUnbounded}
}

// SetPreset sets the engine preset used for this target.
func (t *Target) SetPreset(preset string) *Target {
	t.Preset = preset
	return t
}

// SetPresence sets how many streams of this kind are accepted.
func (t *Target) SetPresence(presence int) *Target {
	t.Presence = presence
	return t
}

func (t Target) serialize() string {
	var b strings.Builder
	b.WriteString(t.Format)
	if t.Preset != "" {
		b.WriteString("+")
		b.WriteString(t.Preset)
	}
	if t.Presence > 0 {
		fmt.Fprintf(&b, "|%d", t.Presence)
	}
	return b.String()
}

// Profile is an immutable encoding profile. Create it with Build.
type Profile struct {
	container Target
	audio     Target
	video     Target
}

// Build validates the three targets and returns the profile. Every stream
// kind the router can dispatch must have an entry, so a missing or mismatched
// target is rejected here rather than when a branch later links to the
// encoder.
func Build(audio, video, container *Target) (*Profile, error) {
	if audio == nil {
		return nil, &engine.ProfileBuildError{Reason: "audio target is required"}
	}
	if video == nil {
		return nil, &engine.ProfileBuildError{Reason: "video target is required"}
	}
	if container == nil {
		return nil, &engine.ProfileBuildError{Reason: "container target is required"}
	}

	if err := checkTarget("audio", *audio, "audio/"); err != nil {
		return nil, err
	}
	if err := checkTarget("video", *video, "video/"); err != nil {
		return nil, err
	}
	if err := checkTarget("container", *container, ""); err != nil {
		return nil, err
	}

	return &Profile{
		container: *container,
		audio:     *audio,
		video:     *video,
	}, nil
}

func checkTarget(name string, t Target, prefix string) error {
	format := strings.TrimSpace(t.Format)
	if format == "" {
		return &engine.ProfileBuildError{Reason: name + " format is required"}
	}
	if strings.ContainsAny(format, ":|+") {
		return &engine.ProfileBuildError{Reason: fmt.Sprintf("%s format %q contains a reserved character", name, format)}
	}
	if prefix != "" && !strings.HasPrefix(format, prefix) {
		return &engine.ProfileBuildError{Reason: fmt.Sprintf("%s format %q must start with %q", name, format, prefix)}
	}
	if t.Presence < 0 {
		return &engine.ProfileBuildError{Reason: name + " presence cannot be negative"}
	}
	return nil
}

// Container returns the container target.
func (p *Profile) Container() Target { return p.container }

// Audio returns the audio target.
func (p *Profile) Audio() Target { return p.audio }

// Video returns the video target.
func (p *Profile) Video() Target { return p.video }

// Accepts reports whether the profile has an entry for kind.
func (p *Profile) Accepts(kind models.MediaKind) bool {
	switch kind {
	case models.MediaAudio, models.MediaVideo:
		return true
	default:
		return false
	}
}

// PortTemplate returns the encoder request template that accepts raw
// streams of kind.
func (p *Profile) PortTemplate(kind models.MediaKind) (string, error) {
	switch kind {
	case models.MediaAudio:
		return "audio_%u", nil
	case models.MediaVideo:
		return "video_%u", nil
	default:
		return "", fmt.Errorf("no profile entry for %s streams", kind)
	}
}

// Equal reports whether two profiles declare the same targets.
func (p *Profile) Equal(other *Profile) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.container == other.container && p.audio == other.audio && p.video == other.video
}

// String serializes the profile in the engine's textual profile format:
// container, then video, then audio, separated by ':'.
func (p *Profile) String() string {
	return strings.Join([]string{
		p.container.serialize(),
		p.video.serialize(),
		p.audio.serialize(),
	}, ":")
}
