package crawl

import "time"

// CorpusUpdatedEvent is published after a crawl run finishes rewriting the
// corpus. The search service consumes it to rebuild and swap its index.
type CorpusUpdatedEvent struct {
	Articles   int       `json:"articles"`
	OutputDir  string    `json:"output_dir"`
	FinishedAt time.Time `json:"finished_at"`
}
