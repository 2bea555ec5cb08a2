package store

import (
	"context"
	"errors"
	"time"

	"github.com/peerpath/peerpath/internal/quizgen"
)

// ErrNotFound is returned when a single-record lookup has no match.
var ErrNotFound = errors.New("store: not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	LLMRequestEventData
	Sequence  int64
	Timestamp time.Time
}

// LLMUsageRecord aggregates requests per provider, model and purpose.
type LLMUsageRecord struct {
	Provider     string
	Model        string
	Purpose      string
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns the event with the given sequence or ErrNotFound.
	GetLLMEvent(ctx context.Context, sequence int64) (*LLMRequestEventRecord, error)

	// LLMUsage aggregates token and latency totals.
	LLMUsage(ctx context.Context, opts QueryOpts) ([]LLMUsageRecord, error)
}

// AttemptRecord is one graded quiz attempt.
type AttemptRecord struct {
	ID          string
	Subject     string
	LessonIndex int
	LessonTitle string
	Style       string
	Questions   []quizgen.QuizQuestion
	// Answers maps question index to the chosen choice index.
	Answers   map[int]int
	Correct   int
	Total     int
	Enriched  bool
	Sequence  int64
	Timestamp time.Time
}

// SubjectStats summarizes the attempts for one subject.
type SubjectStats struct {
	Subject  string
	Attempts int
	Correct  int
	Total    int
	Best     float64 // best single-attempt percentage
	Last     time.Time
}

// AttemptQuery filters ListAttempts. Zero values match everything.
type AttemptQuery struct {
	Subject string
	Limit   int
}

// AttemptRepo persists quiz attempts.
type AttemptRepo interface {
	SaveAttempt(ctx context.Context, rec *AttemptRecord) error
	GetAttempt(ctx context.Context, id string) (*AttemptRecord, error)
	// ListAttempts returns attempts newest first.
	ListAttempts(ctx context.Context, q AttemptQuery) ([]AttemptRecord, error)
	SubjectStats(ctx context.Context) ([]SubjectStats, error)
}
