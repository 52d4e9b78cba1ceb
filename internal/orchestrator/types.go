package orchestrator

import (
	"fmt"

	"github.com/danielpatrickdp/scene-memory/internal/scene"
)

// #region frame-input

// ExperienceInput is one experience of a FrameInput as it arrives over the
// wire: a source key and its entries in order.
type ExperienceInput struct {
	Source  string        `json:"source"`
	Entries []scene.Entry `json:"entries"`
}

// FrameInput is the transport form of a Frame. JSON-lines ingest, HTTP and
// gRPC all decode into it.
type FrameInput struct {
	Experiences []ExperienceInput `json:"experiences"`
}

// Build turns the input into a Frame with the given options.
func (in FrameInput) Build(opts ...scene.FrameOption) (*scene.Frame, error) {
	f := scene.NewFrame(opts...)
	for _, e := range in.Experiences {
		if err := f.AddExperience(scene.ExperienceOf(e.Entries...), e.Source); err != nil {
			return nil, fmt.Errorf("build frame: %w", err)
		}
	}
	return f, nil
}

// #endregion frame-input

// #region ingest-result

// IngestResult is returned for every ingested frame.
type IngestResult struct {
	FrameSeq int64              `json:"frame_seq"`
	Report   scene.CommitReport `json:"report"`
}

// #endregion ingest-result
