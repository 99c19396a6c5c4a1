// Package store keeps the answer ledger for the running session in an in-memory SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/studyquest/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// UntaggedTopic labels answers without a topic tag.
const UntaggedTopic = "Untagged"

// Store wraps SQLite access for answer records. Nothing outlives the process.
type Store struct {
	db *sql.DB
}

// Open creates the in-memory database and applies migrations.
func Open() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS answers (
			id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			mode TEXT NOT NULL,
			topic TEXT NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			correct INTEGER NOT NULL,
			explanation TEXT NOT NULL,
			tag TEXT NOT NULL,
			difficulty INTEGER NOT NULL,
			answered_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_answers_seq ON answers(seq);`,
		`CREATE INDEX IF NOT EXISTS idx_answers_tag ON answers(tag);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordAnswer stores one answered interaction. A missing ID is generated.
func (s *Store) RecordAnswer(ctx context.Context, rec model.AnswerRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.AnsweredAt.IsZero() {
		rec.AnsweredAt = time.Now()
	}
	correct := 0
	if rec.Correct {
		correct = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO answers (id, seq, mode, topic, question, answer, correct, explanation, tag, difficulty, answered_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Seq,
		string(rec.Mode),
		rec.Topic,
		rec.Question,
		rec.Answer,
		correct,
		rec.Explanation,
		rec.Tag,
		rec.Difficulty,
		rec.AnsweredAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert answer: %w", err)
	}
	return nil
}

// Reset drops every recorded answer.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM answers`); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

// ListAnswers returns the recorded answers in answer order.
func (s *Store) ListAnswers(ctx context.Context) ([]model.AnswerRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, seq, mode, topic, question, answer, correct, explanation, tag, difficulty, answered_at
		FROM answers
		ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.AnswerRecord
	for rows.Next() {
		var rec model.AnswerRecord
		var mode, answeredAt string
		var correct int
		if err := rows.Scan(&rec.ID, &rec.Seq, &mode, &rec.Topic, &rec.Question, &rec.Answer, &correct,
			&rec.Explanation, &rec.Tag, &rec.Difficulty, &answeredAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, answeredAt)
		if err != nil {
			return nil, err
		}
		rec.Mode = model.Mode(mode)
		rec.Correct = correct == 1
		rec.AnsweredAt = parsed
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// TopicAggregates groups recorded answers by topic tag.
func (s *Store) TopicAggregates(ctx context.Context) ([]model.TopicAggregate, error) {
	query := `SELECT CASE WHEN tag = '' THEN ? ELSE tag END AS topic_tag,
		SUM(correct) AS correct,
		SUM(1 - correct) AS incorrect,
		COALESCE(AVG(CASE WHEN correct = 1 THEN difficulty END), 0) AS correct_difficulty,
		COALESCE(AVG(CASE WHEN correct = 0 THEN difficulty END), 0) AS incorrect_difficulty
	FROM answers
	GROUP BY topic_tag
	ORDER BY topic_tag ASC`
	rows, err := s.db.QueryContext(ctx, query, UntaggedTopic)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.TopicAggregate
	for rows.Next() {
		var agg model.TopicAggregate
		if err := rows.Scan(&agg.Tag, &agg.Correct, &agg.Incorrect, &agg.CorrectDifficulty, &agg.IncorrectDifficulty); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
