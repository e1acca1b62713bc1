package platform

import (
	"fmt"
	"time"

	"github.com/clipforge/clipforge/internal/edl"
)

// Tasks lists the edits that must be rendered server-side before upload
type Tasks struct {
	BurnAudio     bool `json:"burnAudio"`
	BurnText      bool `json:"burnText"`
	BurnSubtitles bool `json:"burnSubtitles"`
	ApplyFilters  bool `json:"applyFilters"`
	ApplyTrim     bool `json:"applyTrim"`
	ApplyCrop     bool `json:"applyCrop"`
}

// Payload is the capability-aware routing decision for one edit intent
type Payload struct {
	Platform                   string   `json:"platform"`
	ServerSideRenderingTasks   Tasks    `json:"serverSideRenderingTasks"`
	ManualFallbackSteps        []string `json:"manualFallbackSteps"`
	IsSchedulingNative         bool     `json:"isSchedulingNative"`
	SchedulingFallbackRequired bool     `json:"schedulingFallbackRequired"`
}

// Resolver decides which edits run server-side versus on the target platform.
// The capability registry is injected so tests and config can substitute
// capability sets without touching shared state.
type Resolver struct {
	registry map[string]Capabilities
}

// NewResolver creates a resolver over the given registry. A nil registry
// falls back to the built-in table.
func NewResolver(registry map[string]Capabilities) *Resolver {
	if registry == nil {
		registry = Defaults()
	}
	return &Resolver{registry: registry}
}

// Lookup returns the capability record for a platform, or the strictest
// record when the platform is unrecognized.
func (r *Resolver) Lookup(name string) Capabilities {
	if caps, ok := r.registry[name]; ok {
		return caps
	}
	return strictest
}

// Resolve maps an edit intent onto server-side tasks and manual fallback
// notes for the given platform. Pure function of its inputs; it never fails,
// an empty intent simply yields all-false task flags.
//
// Trimming and cropping always run server-side when the intent asks for them,
// regardless of platform capability: cutting the asset down before upload
// saves bandwidth even on platforms with native editors.
func (r *Resolver) Resolve(name string, scheduleAt *time.Time, intent edl.EditIntent) Payload {
	caps := r.Lookup(name)

	p := Payload{
		Platform:            name,
		ManualFallbackSteps: []string{},
	}

	p.ServerSideRenderingTasks.ApplyTrim = intent.Trim != nil
	p.ServerSideRenderingTasks.ApplyCrop = intent.CropAspect != ""
	p.ServerSideRenderingTasks.BurnAudio = intent.AudioTrackURL != "" && !caps.NativeAudioUpload
	p.ServerSideRenderingTasks.BurnText = len(intent.TextOverlays) > 0 && !caps.NativeTextOverlays

	if intent.GenerateSubtitles && !caps.NativeSubtitles {
		p.ServerSideRenderingTasks.BurnSubtitles = true
		p.ManualFallbackSteps = append(p.ManualFallbackSteps,
			fmt.Sprintf("%s does not support native subtitle tracks; subtitles will be hard-burned into the video", name))
	}

	if len(intent.Filters) > 0 && !caps.NativeFilters {
		p.ServerSideRenderingTasks.ApplyFilters = true
		p.ManualFallbackSteps = append(p.ManualFallbackSteps,
			fmt.Sprintf("%s does not support native filters; filters will be applied server-side before upload", name))
	}

	if scheduleAt != nil {
		p.IsSchedulingNative = caps.NativeScheduling
		if !caps.NativeScheduling {
			p.SchedulingFallbackRequired = true
			p.ManualFallbackSteps = append(p.ManualFallbackSteps,
				fmt.Sprintf("%s does not support native scheduling; the internal delay queue will hold the post until %s", name, scheduleAt.UTC().Format(time.RFC3339)))
		}
	}

	return p
}
