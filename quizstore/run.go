package quizstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hazyhaar/word2quiz/dbopen"
	"github.com/hazyhaar/word2quiz/quiz"
)

// Run is one converted document.
type Run struct {
	ID                string       `json:"id"`
	Source            string       `json:"source"`
	Title             string       `json:"title,omitempty"`
	ExpectedQuestions int          `json:"expected_questions,omitempty"`
	NormalizeFontSize int          `json:"normalize_fontsize,omitempty"`
	SectionCount      int          `json:"section_count"`
	QuestionCount     int          `json:"question_count"`
	CreatedAt         int64        `json:"created_at"`
	Result            *quiz.Result `json:"result,omitempty"`
}

// SaveRun stores a run and its result in one transaction. ID and CreatedAt
// are filled in when empty.
func (s *Store) SaveRun(ctx context.Context, r *Run) error {
	if r.Result == nil {
		return errors.New("quizstore: run has no result")
	}
	if r.ID == "" {
		r.ID = s.newID()
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().UnixMilli()
	}
	if r.Title == "" {
		r.Title = r.Result.Title
	}
	r.SectionCount = len(r.Result.Sections)
	r.QuestionCount = r.Result.QuestionCount()

	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, source, title, expected_questions, normalize_fontsize,
				section_count, question_count, created_at)
			VALUES (?,?,?,?,?,?,?,?)`,
			r.ID, r.Source, r.Title, r.ExpectedQuestions, r.NormalizeFontSize,
			r.SectionCount, r.QuestionCount, r.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for si, sec := range r.Result.Sections {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO sections (run_id, idx, name) VALUES (?,?,?)`,
				r.ID, si, sec.Name,
			); err != nil {
				return fmt.Errorf("insert section %d: %w", si, err)
			}
			for qi, q := range sec.Questions {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO questions (run_id, section_idx, idx, text) VALUES (?,?,?,?)`,
					r.ID, si, qi, q.Text,
				); err != nil {
					return fmt.Errorf("insert question %d.%d: %w", si, qi, err)
				}
				for ai, a := range q.Answers {
					if _, err := tx.ExecContext(ctx, `
						INSERT INTO answers (run_id, section_idx, question_idx, idx, html, weight)
						VALUES (?,?,?,?,?,?)`,
						r.ID, si, qi, ai, a.HTML, a.Weight,
					); err != nil {
						return fmt.Errorf("insert answer %d.%d.%d: %w", si, qi, ai, err)
					}
				}
			}
		}

		for i, text := range r.Result.Unrecognized {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO unrecognized (run_id, idx, text) VALUES (?,?,?)`,
				r.ID, i, text,
			); err != nil {
				return fmt.Errorf("insert unrecognized %d: %w", i, err)
			}
		}
		return nil
	})
}

// GetRun loads a run with its full result. It returns nil, nil when the
// run does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	r := &Run{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, source, title, expected_questions, normalize_fontsize,
			section_count, question_count, created_at
		FROM runs WHERE id = ?`, id).Scan(
		&r.ID, &r.Source, &r.Title, &r.ExpectedQuestions, &r.NormalizeFontSize,
		&r.SectionCount, &r.QuestionCount, &r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	res, err := s.loadResult(ctx, id)
	if err != nil {
		return nil, err
	}
	res.Title = r.Title
	r.Result = res
	return r, nil
}

func (s *Store) loadResult(ctx context.Context, id string) (*quiz.Result, error) {
	res := &quiz.Result{Sections: []quiz.Section{}, Unrecognized: []string{}}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT name FROM sections WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, err
		}
		res.Sections = append(res.Sections, quiz.Section{Name: name, Questions: []quiz.Question{}})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.DB.QueryContext(ctx, `
		SELECT section_idx, text FROM questions WHERE run_id = ?
		ORDER BY section_idx, idx`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var si int
		var text string
		if err := rows.Scan(&si, &text); err != nil {
			rows.Close()
			return nil, err
		}
		if si >= len(res.Sections) {
			rows.Close()
			return nil, fmt.Errorf("quizstore: question of missing section %d", si)
		}
		sec := &res.Sections[si]
		sec.Questions = append(sec.Questions, quiz.Question{Text: text, Answers: []quiz.Answer{}})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.DB.QueryContext(ctx, `
		SELECT section_idx, question_idx, html, weight FROM answers WHERE run_id = ?
		ORDER BY section_idx, question_idx, idx`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var si, qi int
		var a quiz.Answer
		if err := rows.Scan(&si, &qi, &a.HTML, &a.Weight); err != nil {
			rows.Close()
			return nil, err
		}
		if si >= len(res.Sections) || qi >= len(res.Sections[si].Questions) {
			rows.Close()
			return nil, fmt.Errorf("quizstore: answer of missing question %d.%d", si, qi)
		}
		q := &res.Sections[si].Questions[qi]
		q.Answers = append(q.Answers, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.DB.QueryContext(ctx,
		`SELECT text FROM unrecognized WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		res.Unrecognized = append(res.Unrecognized, text)
	}
	return res, rows.Err()
}

// ListRuns returns the most recent runs without their results.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, source, title, expected_questions, normalize_fontsize,
			section_count, question_count, created_at
		FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(&r.ID, &r.Source, &r.Title, &r.ExpectedQuestions,
			&r.NormalizeFontSize, &r.SectionCount, &r.QuestionCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and everything it owns. It reports whether the
// run existed.
func (s *Store) DeleteRun(ctx context.Context, id string) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
