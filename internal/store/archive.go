package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vivalabs/viva/internal/interview"
)

// ArchivedInterview is one completed-interview row.
type ArchivedInterview struct {
	ID             uuid.UUID `json:"id"`
	SessionID      uuid.UUID `json:"session_id"`
	Modality       string    `json:"modality"`
	TopicCount     int       `json:"topic_count"`
	Transcript     string    `json:"transcript"`
	Strengths      []string  `json:"strengths"`
	Weaknesses     []string  `json:"weaknesses"`
	OverallComment string    `json:"overall_comment"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Archive writes one completed interview. Table: interviews.
func (s *Store) Archive(ctx context.Context, rec interview.ArchiveRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO interviews (id, session_id, modality, topic_count, transcript, strengths, weaknesses, overall_comment, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
		uuid.New(), rec.SessionID, string(rec.Modality), rec.TopicCount, rec.Transcript,
		rec.Assessment.Strengths, rec.Assessment.Weaknesses, rec.Assessment.OverallComment,
	)
	if err != nil {
		return fmt.Errorf("insert interview: %w", err)
	}
	return nil
}

// ListRecent returns the most recently completed interviews, newest
// first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]ArchivedInterview, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, modality, topic_count, transcript, strengths, weaknesses, overall_comment, completed_at
		FROM interviews
		ORDER BY completed_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query interviews: %w", err)
	}
	defer rows.Close()

	var out []ArchivedInterview
	for rows.Next() {
		var a ArchivedInterview
		if err := rows.Scan(&a.ID, &a.SessionID, &a.Modality, &a.TopicCount, &a.Transcript,
			&a.Strengths, &a.Weaknesses, &a.OverallComment, &a.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan interview: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
