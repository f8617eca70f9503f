package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

const defaultHistoryDB = ".vmx/gate-history.db"

// HistoryStore persists gate results in a sqlite database.
type HistoryStore struct {
	DB *sql.DB
}

// GateRun is one recorded gate result.
type GateRun struct {
	ID      int64
	Title   string
	Outcome Outcome
	Started time.Time
	Elapsed time.Duration
	Reason  string
	Steps   []StepRecord
}

func OpenHistory(path string) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	queries := []string{
		`CREATE TABLE IF NOT EXISTS gate_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			outcome TEXT NOT NULL,
			started TEXT NOT NULL,
			elapsed_ns INTEGER NOT NULL,
			reason TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS gate_steps (
			run_id INTEGER NOT NULL REFERENCES gate_runs(id),
			seq INTEGER NOT NULL,
			label TEXT NOT NULL,
			outcome TEXT NOT NULL,
			elapsed_ns INTEGER NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, seq)
		);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &HistoryStore{DB: db}, nil
}

func (h *HistoryStore) Close() error {
	return h.DB.Close()
}

// Record stores res and its steps in one transaction.
func (h *HistoryStore) Record(res *SequenceResult) (int64, error) {
	tx, err := h.DB.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	r, err := tx.Exec(`INSERT INTO gate_runs (title, outcome, started, elapsed_ns, reason) VALUES (?, ?, ?, ?, ?)`,
		res.Title, string(res.Outcome), res.Started.UTC().Format(time.RFC3339Nano), int64(res.Elapsed), res.Reason)
	if err != nil {
		return 0, err
	}
	id, err := r.LastInsertId()
	if err != nil {
		return 0, err
	}
	for i, st := range res.Steps {
		if _, err := tx.Exec(`INSERT INTO gate_steps (run_id, seq, label, outcome, elapsed_ns, reason) VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, st.Label, string(st.Outcome), int64(st.Elapsed), st.Reason); err != nil {
			return 0, err
		}
	}
	return id, tx.Commit()
}

// Recent returns up to limit runs, newest first.
func (h *HistoryStore) Recent(limit int) ([]GateRun, error) {
	rows, err := h.DB.Query(`SELECT id, title, outcome, started, elapsed_ns, reason FROM gate_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	var runs []GateRun
	for rows.Next() {
		var run GateRun
		var outcome, started string
		var elapsed int64
		if err := rows.Scan(&run.ID, &run.Title, &outcome, &started, &elapsed, &run.Reason); err != nil {
			_ = rows.Close()
			return nil, err
		}
		run.Outcome = Outcome(outcome)
		run.Elapsed = time.Duration(elapsed)
		run.Started, _ = time.Parse(time.RFC3339Nano, started)
		runs = append(runs, run)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		steps, err := h.steps(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Steps = steps
	}
	return runs, nil
}

func (h *HistoryStore) steps(runID int64) ([]StepRecord, error) {
	rows, err := h.DB.Query(`SELECT label, outcome, elapsed_ns, reason FROM gate_steps WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StepRecord
	for rows.Next() {
		var st StepRecord
		var outcome string
		var elapsed int64
		if err := rows.Scan(&st.Label, &outcome, &elapsed, &st.Reason); err != nil {
			return nil, err
		}
		st.Outcome = Outcome(outcome)
		st.Elapsed = time.Duration(elapsed)
		out = append(out, st)
	}
	return out, rows.Err()
}

func defaultHistoryPath(home string) string {
	return filepath.Join(home, defaultHistoryDB)
}

func recordGate(path string, res *SequenceResult) error {
	if res == nil {
		return nil
	}
	h, err := OpenHistory(path)
	if err != nil {
		return err
	}
	defer h.Close()
	_, err = h.Record(res)
	return err
}

func handleHistory(_ context.Context, s *Session, inv Invocation) error {
	limit := 10
	if raw := inv.String("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return usageErrorf("--limit must be a positive integer, got %q", raw)
		}
		limit = n
	}
	path := defaultHistoryPath(s.Home)
	if raw := inv.String("db"); raw != "" {
		path = resolve(s.Home, raw)
	}
	if !exists(path) {
		fmt.Fprintf(s.out(), "No gate runs recorded in %s\n", path)
		return nil
	}
	h, err := OpenHistory(path)
	if err != nil {
		return err
	}
	defer h.Close()
	runs, err := h.Recent(limit)
	if err != nil {
		return err
	}
	printHistory(s, runs)
	return nil
}

func printHistory(s *Session, runs []GateRun) {
	w := s.out()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No gate runs recorded")
		return
	}
	for _, run := range runs {
		fmt.Fprintf(w, "#%d  %s  %-9s  %s  [%s]\n", run.ID, run.Started.Local().Format(time.DateTime), run.Outcome, run.Title, run.Elapsed)
		for _, st := range run.Steps {
			fmt.Fprintf(w, "      %-9s  %s  [%s]", st.Outcome, st.Label, st.Elapsed)
			if st.Reason != "" {
				fmt.Fprintf(w, "  %s", st.Reason)
			}
			fmt.Fprintln(w)
		}
	}
}
