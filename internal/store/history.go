package store

import (
	"database/sql"
	"time"

	// sqlite driver for the run history
	_ "github.com/mattn/go-sqlite3"

	"github.com/kashev/singularity-pipeline/internal/perr"
	"github.com/kashev/singularity-pipeline/internal/types"
)

const timeLayout = "2006-01-02T15:04:05.000Z"

// History is the sqlite index of past runs kept next to the run logs.
type History struct {
	db *sql.DB
}

func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, perr.InternalWithMessage("error opening run history " + err.Error())
	}

	createTableSQL := `create table if not exists pipeline_run (
		id integer primary key autoincrement,
		run_id text,
		pipeline text,
		command text,
		state text,
		failures integer default 0,
		started_at text,
		updated_at text
	)`
	if _, err = db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, perr.InternalWithMessage("error creating pipeline_run table " + err.Error())
	}

	createIndexSQL := `create unique index if not exists idx_pipeline_run_run_id on pipeline_run(run_id)`
	if _, err = db.Exec(createIndexSQL); err != nil {
		db.Close()
		return nil, perr.InternalWithMessage("error creating pipeline_run index " + err.Error())
	}

	return &History{db: db}, nil
}

func (h *History) Close() error {
	return h.db.Close()
}

func (h *History) StartRun(runID, pipeline, command string, startedAt time.Time) error {
	now := startedAt.UTC().Format(timeLayout)
	_, err := h.db.Exec("insert into pipeline_run(run_id, pipeline, command, state, started_at, updated_at) values(?, ?, ?, ?, ?, ?)",
		runID, pipeline, command, "running", now, now)
	if err != nil {
		return perr.InternalWithMessage("error recording run " + err.Error())
	}
	return nil
}

func (h *History) FinishRun(runID, state string, failures int) error {
	result, err := h.db.Exec("update pipeline_run set state = ?, failures = ?, updated_at = ? where run_id = ?",
		state, failures, time.Now().UTC().Format(timeLayout), runID)
	if err != nil {
		return perr.InternalWithMessage("error updating run " + err.Error())
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return perr.NotFound("run", runID)
	}
	return nil
}

// List returns the most recent runs first.
func (h *History) List(limit int) ([]types.HistoryEntry, error) {
	rows, err := h.db.Query("select run_id, pipeline, command, state, failures, started_at, updated_at from pipeline_run order by id desc limit ?", limit)
	if err != nil {
		return nil, perr.InternalWithMessage("error querying run history " + err.Error())
	}
	defer rows.Close()

	var entries []types.HistoryEntry
	for rows.Next() {
		var e types.HistoryEntry
		var started, updated string
		if err := rows.Scan(&e.RunID, &e.Pipeline, &e.Command, &e.State, &e.Failures, &started, &updated); err != nil {
			return nil, perr.InternalWithMessage("error scanning run history " + err.Error())
		}
		e.StartedAt, _ = time.Parse(timeLayout, started)
		e.UpdatedAt, _ = time.Parse(timeLayout, updated)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Cleanup deletes runs that started before cutoff and returns how many went.
func (h *History) Cleanup(cutoff time.Time) (int, error) {
	result, err := h.db.Exec("delete from pipeline_run where started_at < ?", cutoff.UTC().Format(timeLayout))
	if err != nil {
		return -1, perr.InternalWithMessage("error cleaning up run history " + err.Error())
	}
	n, err := result.RowsAffected()
	if err != nil {
		return -1, perr.InternalWithMessage("error cleaning up run history " + err.Error())
	}
	return int(n), nil
}
