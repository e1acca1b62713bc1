package platform

// Capabilities records which editing features a target platform supports
// natively at upload time. Records are read-only after construction.
type Capabilities struct {
	NativeScheduling   bool `json:"nativeScheduling" yaml:"native_scheduling"`
	NativeAudioUpload  bool `json:"nativeAudioUpload" yaml:"native_audio_upload"`
	NativeTextOverlays bool `json:"nativeTextOverlays" yaml:"native_text_overlays"`
	NativeSubtitles    bool `json:"nativeSubtitles" yaml:"native_subtitles"`
	NativeFilters      bool `json:"nativeFilters" yaml:"native_filters"`
}

// strictest denies every native feature. Unknown platforms get this record so
// every edit is rendered server-side rather than silently dropped.
var strictest = Capabilities{}

// Defaults returns the built-in capability table. Callers own the returned
// map and may overlay config-provided entries before handing it to a Resolver.
func Defaults() map[string]Capabilities {
	return map[string]Capabilities{
		"instagram_reels": {
			NativeAudioUpload:  true,
			NativeTextOverlays: true,
			NativeSubtitles:    true,
			NativeFilters:      true,
		},
		"facebook_video": {
			NativeScheduling: true,
			NativeSubtitles:  true,
		},
		"tiktok": {
			NativeAudioUpload:  true,
			NativeTextOverlays: true,
			NativeSubtitles:    true,
		},
		"youtube_shorts": {
			NativeScheduling:  true,
			NativeAudioUpload: true,
		},
	}
}
