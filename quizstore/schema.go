package quizstore

// Schema contains the DDL for the parse run tables.
const Schema = `
-- One row per converted document
CREATE TABLE IF NOT EXISTS runs (
    id                 TEXT PRIMARY KEY,
    source             TEXT NOT NULL,
    title              TEXT NOT NULL DEFAULT '',
    expected_questions INTEGER NOT NULL DEFAULT 0,
    normalize_fontsize INTEGER NOT NULL DEFAULT 0,
    section_count      INTEGER NOT NULL DEFAULT 0,
    question_count     INTEGER NOT NULL DEFAULT 0,
    created_at         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

CREATE TABLE IF NOT EXISTS sections (
    run_id TEXT NOT NULL,
    idx    INTEGER NOT NULL,
    name   TEXT NOT NULL,
    PRIMARY KEY (run_id, idx),
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS questions (
    run_id      TEXT NOT NULL,
    section_idx INTEGER NOT NULL,
    idx         INTEGER NOT NULL,
    text        TEXT NOT NULL,
    PRIMARY KEY (run_id, section_idx, idx),
    FOREIGN KEY (run_id, section_idx) REFERENCES sections(run_id, idx) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS answers (
    run_id       TEXT NOT NULL,
    section_idx  INTEGER NOT NULL,
    question_idx INTEGER NOT NULL,
    idx          INTEGER NOT NULL,
    html         TEXT NOT NULL,
    weight       INTEGER NOT NULL,
    PRIMARY KEY (run_id, section_idx, question_idx, idx),
    FOREIGN KEY (run_id, section_idx, question_idx)
        REFERENCES questions(run_id, section_idx, idx) ON DELETE CASCADE
);

-- Paragraphs no rule matched, kept for review
CREATE TABLE IF NOT EXISTS unrecognized (
    run_id TEXT NOT NULL,
    idx    INTEGER NOT NULL,
    text   TEXT NOT NULL,
    PRIMARY KEY (run_id, idx),
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`
