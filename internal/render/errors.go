package render

import "fmt"

// RenderError reports that the media engine terminated abnormally during the
// transform pass. Detail carries the engine's own diagnostic text verbatim.
// Non-retryable at this layer; retry policy belongs to the caller.
type RenderError struct {
	Detail string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("render failed: %s", e.Detail)
	}
	return fmt.Sprintf("render failed: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// ResourceError reports a scratch-storage write or read failure
type ResourceError struct {
	Op   string
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("scratch storage: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
