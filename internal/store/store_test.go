package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/peerpath/peerpath/internal/quizgen"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	// Each test gets its own named in-memory database.
	s, err := Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil database handle")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is checked with a file-based DB below.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestFileDatabaseUsesWAL(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "peerpath.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestReopenKeepsSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peerpath.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Success: true}); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	next, err := s.seq.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if next != 2 {
		t.Errorf("sequence after reopen = %d, want 2", next)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Seeding twice must not reset the counter.
	sc, err := newSequenceCounter(ctx, s.DB())
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"llm_request_events", "quiz_attempts", "global_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("query sqlite_master for %s: %v", table, err)
		}
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude-haiku-4-5", Purpose: "quiz-enrich", InputTokens: 100, OutputTokens: 40, LatencyMs: 300, Success: true, RequestBody: "[user]\nquiz", ResponseBody: "[]"},
		{Provider: "anthropic", Model: "claude-haiku-4-5", Purpose: "quiz-enrich", InputTokens: 50, LatencyMs: 100, ErrorMessage: "rate limited"},
		{Provider: "anthropic", Model: "claude-haiku-4-5", Purpose: "lesson-enrich", InputTokens: 10, OutputTokens: 90, LatencyMs: 900, Success: true},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
	if all[0].Sequence != 3 || all[2].Sequence != 1 {
		t.Errorf("expected newest first, got sequences %d..%d", all[0].Sequence, all[2].Sequence)
	}
	if all[2].RequestBody != "[user]\nquiz" || all[2].ResponseBody != "[]" {
		t.Errorf("bodies not round-tripped: %+v", all[2])
	}
	if all[1].Success || all[1].ErrorMessage != "rate limited" {
		t.Errorf("failure not recorded: %+v", all[1])
	}
	if time.Since(all[0].Timestamp) > time.Minute {
		t.Errorf("unexpected timestamp %s", all[0].Timestamp)
	}

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1, Before: 3})
	if err != nil {
		t.Fatalf("query limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Sequence != 2 {
		t.Errorf("limit/before filter wrong: %+v", limited)
	}

	got, err := repo.GetLLMEvent(ctx, 3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Purpose != "lesson-enrich" {
		t.Errorf("purpose = %q", got.Purpose)
	}
	if _, err := repo.GetLLMEvent(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	usage, err := repo.LLMUsage(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if len(usage) != 2 {
		t.Fatalf("expected 2 usage groups, got %+v", usage)
	}
	// Ordered by purpose: lesson-enrich before quiz-enrich.
	quiz := usage[1]
	if quiz.Purpose != "quiz-enrich" || quiz.Requests != 2 || quiz.Failures != 1 {
		t.Errorf("unexpected quiz usage: %+v", quiz)
	}
	if quiz.InputTokens != 150 || quiz.OutputTokens != 40 || quiz.AvgLatencyMs != 200 {
		t.Errorf("unexpected quiz totals: %+v", quiz)
	}
}

func sampleQuestions() []quizgen.QuizQuestion {
	return []quizgen.QuizQuestion{
		{Question: "What moves water across membranes?", Choices: []string{"Osmosis", "Mitosis", "Meiosis", "Fission"}, AnswerIndex: 0, Type: quizgen.TypeDefinition},
		{Question: "Which organelle produces ATP?", Choices: []string{"Nucleus", "Mitochondria", "Ribosome", "Vacuole"}, AnswerIndex: 1, Explanation: "Mitochondria make ATP."},
	}
}

func TestAttempts(t *testing.T) {
	s := openTestStore(t)
	repo := s.AttemptRepo()
	ctx := context.Background()

	first := &AttemptRecord{
		Subject: "ap-biology", LessonIndex: 1, LessonTitle: "Cell Structure & Function",
		Questions: sampleQuestions(), Answers: map[int]int{0: 0, 1: 2}, Correct: 1, Total: 2,
	}
	if err := repo.SaveAttempt(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.ID == "" || first.Sequence != 1 || first.Style != "mixed" {
		t.Errorf("defaults not assigned: %+v", first)
	}

	second := &AttemptRecord{
		Subject: "ap-biology", LessonIndex: 2, LessonTitle: "Cellular Energetics", Style: "vocab",
		Questions: sampleQuestions(), Answers: map[int]int{0: 0, 1: 1}, Correct: 2, Total: 2, Enriched: true,
	}
	third := &AttemptRecord{Subject: "chemistry", LessonIndex: 1, LessonTitle: "Atomic Structure", Total: 2}
	for _, rec := range []*AttemptRecord{second, third} {
		if err := repo.SaveAttempt(ctx, rec); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := repo.GetAttempt(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Questions) != 2 || got.Questions[1].Choices[1] != "Mitochondria" {
		t.Errorf("questions not round-tripped: %+v", got.Questions)
	}
	if got.Answers[1] != 2 || got.Questions[0].Type != quizgen.TypeDefinition {
		t.Errorf("answers not round-tripped: %+v", got.Answers)
	}
	if _, err := repo.GetAttempt(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	bio, err := repo.ListAttempts(ctx, AttemptQuery{Subject: "ap-biology"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bio) != 2 || bio[0].ID != second.ID || !bio[0].Enriched {
		t.Errorf("unexpected biology attempts: %+v", bio)
	}

	latest, err := repo.ListAttempts(ctx, AttemptQuery{Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(latest) != 1 || latest[0].ID != third.ID {
		t.Errorf("expected latest attempt to be chemistry, got %+v", latest)
	}
	if latest[0].Answers == nil {
		t.Error("empty answers should decode to an empty map")
	}

	stats, err := repo.SubjectStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 subjects, got %+v", stats)
	}
	if stats[0].Subject != "ap-biology" || stats[0].Attempts != 2 || stats[0].Correct != 3 || stats[0].Total != 4 || stats[0].Best != 100 {
		t.Errorf("unexpected biology stats: %+v", stats[0])
	}
	if stats[1].Best != 0 || stats[1].Last.IsZero() {
		t.Errorf("unexpected chemistry stats: %+v", stats[1])
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("PEERPATH_DB", filepath.Join(dir, "custom", "p.db"))
	p, err := DefaultDBPath()
	if err != nil || p != filepath.Join(dir, "custom", "p.db") {
		t.Fatalf("got %q, %v", p, err)
	}

	t.Setenv("PEERPATH_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil || p != filepath.Join(dir, "peerpath", "peerpath.db") {
		t.Fatalf("got %q, %v", p, err)
	}
}
