// Package scripts invokes the out-of-process analysis backends (indexing,
// retrieval, insights, podcast synthesis) and relays their JSON output.
// The backends are opaque collaborators; only their command-line and
// output contracts are modelled here.
package scripts

import "context"

// IngestReport is the indexing backend's result.
type IngestReport struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	ProcessedFiles []string `json:"processed_files"`
	SkippedFiles   []string `json:"skipped_files"`
	ChunkCount     int      `json:"chunks_count"`
}

// Source is one retrieved citation. Page is kept as reported by the
// backend (it is not always numeric).
type Source struct {
	File    string `json:"file"`
	Page    string `json:"page"`
	Content string `json:"content"`
}

// QueryResult is the retrieval backend's answer plus ranked sources.
type QueryResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
	Query   string   `json:"query"`
}

// Insights is the categorized bullet output of the insights backend.
type Insights struct {
	Query          string   `json:"query"`
	Model          string   `json:"model,omitempty"`
	KeyTakeaways   []string `json:"key_takeaways"`
	DidYouKnow     []string `json:"did_you_know"`
	Contradictions []string `json:"contradictions"`
	Examples       []string `json:"examples"`
}

// Podcast references the synthesized two-speaker discussion. AudioFile is
// the serving URL, AudioPath the artifact location on disk.
type Podcast struct {
	Script    string `json:"script"`
	AudioFile string `json:"audio_file"`
	AudioPath string `json:"audio_path"`
}

// Ingester indexes stored documents for later retrieval.
type Ingester interface {
	Ingest(ctx context.Context, paths []string) (IngestReport, error)
}

// Querier answers free text against the indexed library.
type Querier interface {
	Query(ctx context.Context, text string) (QueryResult, error)
}

// Insighter produces categorized insights for a text selection.
type Insighter interface {
	Insights(ctx context.Context, text string) (Insights, error)
}

// PodcastGenerator synthesizes a dialogue and audio artifact for a text
// selection.
type PodcastGenerator interface {
	Generate(ctx context.Context, text, voice string) (Podcast, error)
}
