package db

import (
	"fmt"
)

// WorkflowEvent represents a row in the workflow_events table.
type WorkflowEvent struct {
	ID        int
	RunID     string
	Event     string
	Category  string
	Detail    string
	Timestamp string
}

// ToolRun represents a row in the tool_runs table.
type ToolRun struct {
	ID        int
	RunID     string
	Category  string
	Tool      string
	FilePath  string
	Passed    bool
	Timestamp string
}

// LogWorkflowEvent inserts a workflow event.
func (d *DB) LogWorkflowEvent(runID, event, category, detail string) error {
	_, err := d.conn.Exec(
		`INSERT INTO workflow_events (run_id, event, category, detail) VALUES (?, ?, ?, ?)`,
		runID, event, category, detail,
	)
	if err != nil {
		return fmt.Errorf("log workflow event: %w", err)
	}
	return nil
}

// LogToolRun inserts a tool run record.
func (d *DB) LogToolRun(runID, category, tool, filePath string, passed bool) error {
	_, err := d.conn.Exec(
		`INSERT INTO tool_runs (run_id, category, tool, file_path, passed) VALUES (?, ?, ?, ?, ?)`,
		runID, category, tool, filePath, passed,
	)
	if err != nil {
		return fmt.Errorf("log tool run: %w", err)
	}
	return nil
}

// ListWorkflowEvents returns events for a run in insertion order, or all
// events when runID is empty.
func (d *DB) ListWorkflowEvents(runID string) ([]WorkflowEvent, error) {
	query := `SELECT id, run_id, event, category, detail, timestamp
	          FROM workflow_events ORDER BY id`
	args := []any{}
	if runID != "" {
		query = `SELECT id, run_id, event, category, detail, timestamp
		         FROM workflow_events WHERE run_id = ? ORDER BY id`
		args = append(args, runID)
	}

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workflow events: %w", err)
	}
	defer rows.Close()

	var events []WorkflowEvent
	for rows.Next() {
		var e WorkflowEvent
		if err := rows.Scan(&e.ID, &e.RunID, &e.Event, &e.Category, &e.Detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan workflow event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListToolRuns returns tool runs for a run in insertion order.
func (d *DB) ListToolRuns(runID string) ([]ToolRun, error) {
	rows, err := d.conn.Query(
		`SELECT id, run_id, category, tool, file_path, passed, timestamp
		 FROM tool_runs WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tool runs: %w", err)
	}
	defer rows.Close()

	var runs []ToolRun
	for rows.Next() {
		var r ToolRun
		if err := rows.Scan(&r.ID, &r.RunID, &r.Category, &r.Tool, &r.FilePath, &r.Passed, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan tool run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
