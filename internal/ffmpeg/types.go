package ffmpeg

import "time"

// MediaInfo contains metadata about a media file
type MediaInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	Bitrate    int64
	VideoCodec string
	HasAudio   bool
	AudioCodec string
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame   int
	FPS     float64
	Bitrate string
	Time    string
	Speed   string
}

// ProgressFunc is called periodically with progress information while an
// engine invocation executes.
type ProgressFunc func(*Progress)

// RunOptions configures one engine invocation
type RunOptions struct {
	Args       []string
	OnProgress ProgressFunc
}
