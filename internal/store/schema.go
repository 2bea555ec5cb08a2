package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	llmEventsTable = "llm_request_events"
	attemptsTable  = "quiz_attempts"
	sequenceTable  = "global_sequence"
)

// Every event table carries the shared sequence and timestamp columns.
func eventColumns(extra []*schema.Column) []*schema.Column {
	return append([]*schema.Column{
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}, extra...)
}

var (
	llmEventsColumns = append([]*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
	}, eventColumns([]*schema.Column{
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	})...)

	LLMRequestEventsTable = &schema.Table{
		Name:       llmEventsTable,
		Columns:    llmEventsColumns,
		PrimaryKey: []*schema.Column{llmEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{llmEventsColumns[2]}},
			{Name: "llmrequestevent_provider", Columns: []*schema.Column{llmEventsColumns[3]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmEventsColumns[5]}},
		},
	}

	attemptsColumns = append([]*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
	}, eventColumns([]*schema.Column{
		{Name: "subject", Type: field.TypeString},
		{Name: "lesson_index", Type: field.TypeInt},
		{Name: "lesson_title", Type: field.TypeString},
		{Name: "style", Type: field.TypeString, Default: "mixed"},
		{Name: "questions", Type: field.TypeString, Size: 2147483647},
		{Name: "answers", Type: field.TypeString, Size: 2147483647},
		{Name: "correct", Type: field.TypeInt},
		{Name: "total", Type: field.TypeInt},
		{Name: "enriched", Type: field.TypeBool, Default: false},
	})...)

	QuizAttemptsTable = &schema.Table{
		Name:       attemptsTable,
		Columns:    attemptsColumns,
		PrimaryKey: []*schema.Column{attemptsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "quizattempt_timestamp", Columns: []*schema.Column{attemptsColumns[2]}},
			{Name: "quizattempt_subject", Columns: []*schema.Column{attemptsColumns[3]}},
		},
	}

	sequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}

	GlobalSequenceTable = &schema.Table{
		Name:       sequenceTable,
		Columns:    sequenceColumns,
		PrimaryKey: []*schema.Column{sequenceColumns[0]},
	}

	// Tables holds every table managed by auto-migration.
	Tables = []*schema.Table{
		LLMRequestEventsTable,
		QuizAttemptsTable,
		GlobalSequenceTable,
	}
)
