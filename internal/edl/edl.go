package edl

import (
	"bytes"
	"encoding/json"
)

// EditDecisionList is the declarative, platform-agnostic description of the
// edits to apply to one media asset. It is constructed fresh per request and
// never mutated by the engine.
type EditDecisionList struct {
	Timeline     Timeline      `json:"timeline"`
	Crop         Crop          `json:"crop"`
	Filters      []Filter      `json:"filters,omitempty" validate:"dive"`
	Enhancement  Enhancement   `json:"enhancement,omitempty"`
	TextOverlays []TextOverlay `json:"text_overlays,omitempty" validate:"dive"`
	Subtitles    Subtitles     `json:"subtitles,omitempty"`
	Audio        Audio         `json:"audio"`
}

// Timeline is the cut list. Only the first segment currently sets the render
// window; the full ordered list is kept because the wire format declares it.
type Timeline struct {
	DurationSec float64   `json:"duration_sec" validate:"gte=0"`
	Segments    []Segment `json:"segments,omitempty" validate:"dive"`
}

// Segment is one cut within the timeline
type Segment struct {
	StartSec         float64 `json:"start_sec" validate:"gte=0"`
	EndSec           float64 `json:"end_sec" validate:"gtfield=StartSec"`
	Speed            float64 `json:"speed,omitempty" validate:"gte=0"`
	TransitionToNext string  `json:"transition_to_next,omitempty"`
}

// Crop describes target framing and the UI-occlusion safe margins
type Crop struct {
	AspectRatio string   `json:"aspect_ratio,omitempty"`
	SafeZone    SafeZone `json:"safe_zone"`
}

// SafeZone reserves pixel margins near the frame edges for platform UI
type SafeZone struct {
	TopPx    int `json:"top_px" validate:"gte=0"`
	BottomPx int `json:"bottom_px" validate:"gte=0"`
}

// Filter is a named look adjustment; only the first entry is applied
type Filter struct {
	Name      string  `json:"name" validate:"required"`
	Intensity float64 `json:"intensity" validate:"gte=0,lte=1"`
}

// Enhancement declares cleanup passes. Stabilize and upscale are accepted on
// the wire but not wired to a transform yet.
type Enhancement struct {
	Denoise   float64 `json:"denoise,omitempty" validate:"gte=0,lte=1"`
	Sharpen   float64 `json:"sharpen,omitempty" validate:"gte=0,lte=1"`
	Stabilize bool    `json:"stabilize,omitempty"`
	Upscale   bool    `json:"upscale,omitempty"`
}

// TextOverlay is one timed text draw
type TextOverlay struct {
	Text         string  `json:"text" validate:"required"`
	StartSec     float64 `json:"start_sec" validate:"gte=0"`
	EndSec       float64 `json:"end_sec" validate:"gtfield=StartSec"`
	PositionZone string  `json:"position_zone" validate:"oneof=top center bottom"`
	Style        string  `json:"style,omitempty"`
}

// Subtitles configures subtitle treatment
type Subtitles struct {
	Enabled         bool   `json:"enabled"`
	BurnIn          bool   `json:"burn_in"`
	Style           string `json:"style,omitempty"`
	MaxCharsPerLine int    `json:"max_chars_per_line,omitempty" validate:"gte=0"`
}

// Audio configures the audio treatment. Ducking is declared but not wired to
// an audio-level transform at this layer.
type Audio struct {
	MusicEnabled bool   `json:"music_enabled"`
	MusicStyle   string `json:"music_style,omitempty"`
	Ducking      bool   `json:"ducking"`
}

// TrimIntent is the requested trim window of an edit intent
type TrimIntent struct {
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
}

// EditIntent is the capability-resolver view of a requested edit: which kinds
// of edits the caller wants, without the full per-operation detail of the EDL.
type EditIntent struct {
	Trim              *TrimIntent   `json:"trim,omitempty"`
	CropAspect        string        `json:"crop,omitempty"`
	AudioTrackURL     string        `json:"audio_track_url,omitempty"`
	TextOverlays      []TextOverlay `json:"text_overlays,omitempty"`
	GenerateSubtitles bool          `json:"generate_subtitles,omitempty"`
	Filters           []string      `json:"filters,omitempty"`
}

// Parse decodes an EDL from its JSON wire shape. Unknown fields are rejected
// so malformed intents surface at the boundary instead of flowing through as
// opaque maps.
func Parse(data []byte) (*EditDecisionList, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var e EditDecisionList
	if err := dec.Decode(&e); err != nil {
		return nil, &ValidationError{Field: "edl", Reason: err.Error()}
	}
	return &e, nil
}
