package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

type attemptRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var attemptSelectColumns = []string{
	"id", "sequence", "timestamp", "subject", "lesson_index", "lesson_title", "style",
	"questions", "answers", "correct", "total", "enriched",
}

// SaveAttempt assigns an ID, sequence and timestamp when they are unset
// and writes the attempt.
func (r *attemptRepo) SaveAttempt(ctx context.Context, rec *AttemptRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	if rec.Style == "" {
		rec.Style = "mixed"
	}

	questions, err := json.Marshal(rec.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	answers := rec.Answers
	if answers == nil {
		answers = map[int]int{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().
		Insert(attemptsTable).
		Columns(attemptSelectColumns...).
		Values(
			rec.ID, seqNum, rec.Timestamp.UTC(), rec.Subject, rec.LessonIndex, rec.LessonTitle, rec.Style,
			string(questions), string(answersJSON), rec.Correct, rec.Total, rec.Enriched,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	rec.Sequence = seqNum
	return nil
}

func (r *attemptRepo) GetAttempt(ctx context.Context, id string) (*AttemptRecord, error) {
	b := builder()
	query, args := b.Select(attemptSelectColumns...).
		From(b.Table(attemptsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	rec, err := scanAttempt(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *attemptRepo) ListAttempts(ctx context.Context, q AttemptQuery) ([]AttemptRecord, error) {
	b := builder()
	sel := b.Select(attemptSelectColumns...).
		From(b.Table(attemptsTable)).
		OrderBy(entsql.Desc("sequence"))
	if q.Subject != "" {
		sel.Where(entsql.EQ("subject", q.Subject))
	}
	if q.Limit > 0 {
		sel.Limit(q.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptRecord
	for rows.Next() {
		rec, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *attemptRepo) SubjectStats(ctx context.Context) ([]SubjectStats, error) {
	b := builder()
	query, args := b.Select(
		"subject",
		entsql.As(entsql.Count("*"), "attempts"),
		"COALESCE(SUM(correct), 0)",
		"COALESCE(SUM(total), 0)",
		"COALESCE(MAX(CASE WHEN total > 0 THEN 100.0 * correct / total ELSE 0 END), 0)",
		"MAX(sequence)",
	).
		From(b.Table(attemptsTable)).
		GroupBy("subject").
		OrderBy("subject").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query subject stats: %w", err)
	}

	type row struct {
		stats   SubjectStats
		lastSeq int64
	}
	var collected []row
	for rows.Next() {
		var rw row
		if err := rows.Scan(&rw.stats.Subject, &rw.stats.Attempts, &rw.stats.Correct,
			&rw.stats.Total, &rw.stats.Best, &rw.lastSeq); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan subject stats: %w", err)
		}
		collected = append(collected, rw)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// The single connection must be free before the follow-up lookups.
	out := make([]SubjectStats, len(collected))
	for i, rw := range collected {
		out[i] = rw.stats
		ts, err := r.timestampAt(ctx, rw.lastSeq)
		if err != nil {
			return nil, err
		}
		out[i].Last = ts
	}
	return out, nil
}

func (r *attemptRepo) timestampAt(ctx context.Context, sequence int64) (time.Time, error) {
	b := builder()
	query, args := b.Select("timestamp").
		From(b.Table(attemptsTable)).
		Where(entsql.EQ("sequence", sequence)).
		Query()
	var ts time.Time
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&ts); err != nil {
		return time.Time{}, fmt.Errorf("attempt timestamp: %w", err)
	}
	return ts, nil
}

func scanAttempt(s scanner) (AttemptRecord, error) {
	var (
		rec       AttemptRecord
		questions string
		answers   string
	)
	err := s.Scan(
		&rec.ID, &rec.Sequence, &rec.Timestamp, &rec.Subject, &rec.LessonIndex, &rec.LessonTitle, &rec.Style,
		&questions, &answers, &rec.Correct, &rec.Total, &rec.Enriched,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, err
	}
	if err != nil {
		return rec, fmt.Errorf("scan attempt: %w", err)
	}
	if err := json.Unmarshal([]byte(questions), &rec.Questions); err != nil {
		return rec, fmt.Errorf("decode attempt %s questions: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(answers), &rec.Answers); err != nil {
		return rec, fmt.Errorf("decode attempt %s answers: %w", rec.ID, err)
	}
	return rec, nil
}
