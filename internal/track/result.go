package track

import "time"

// Candidate is the search hit chosen for a record.
type Candidate struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	URL      string        `json:"url"`
	Channel  string        `json:"channel,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// AudioBuffer holds a fully downloaded audio stream.
type AudioBuffer struct {
	Data []byte
	// Container is the demuxer name for the buffer contents (mp4, webm).
	Container string
	MimeType  string
	// Bitrate in bits per second as advertised by the source.
	Bitrate int
}

// Size returns the number of buffered bytes.
func (b *AudioBuffer) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// Outcome is the terminal state of one record in a batch.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeNotFound        Outcome = "not_found"
	OutcomeTranscodeFailed Outcome = "transcode_failed"
	OutcomeNetworkError    Outcome = "network_error"
)

// FetchResult reports what happened to one record.
type FetchResult struct {
	// Position is the record's 1-based position in its catalog.
	Position   int     `json:"position"`
	Record     Record  `json:"record"`
	Outcome    Outcome `json:"outcome"`
	OutputPath string  `json:"output_path,omitempty"`
	// Skipped is set when a success was reported from an output that
	// already existed.
	Skipped bool   `json:"skipped,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Err     error  `json:"-"`
}

// Succeeded reports whether the record produced (or already had) an output.
func (r FetchResult) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// Summary counts outcomes across a batch.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Summarize tallies results.
func Summarize(results []FetchResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Succeeded() {
			s.Succeeded++
			if r.Skipped {
				s.Skipped++
			}
			continue
		}
		s.Failed++
	}
	return s
}
