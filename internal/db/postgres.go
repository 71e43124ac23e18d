package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the shared-history event log backend, used when db.url is
// configured. It implements the same logging surface as the SQLite DB.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to the event-log database at the given URL and
// ensures the schema exists.
func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS workflow_events (
    id          BIGSERIAL PRIMARY KEY,
    run_id      TEXT NOT NULL,
    event       TEXT NOT NULL,
    category    TEXT,
    detail      TEXT,
    timestamp   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_workflow_run ON workflow_events(run_id, timestamp);

CREATE TABLE IF NOT EXISTS tool_runs (
    id          BIGSERIAL PRIMARY KEY,
    run_id      TEXT NOT NULL,
    category    TEXT NOT NULL,
    tool        TEXT NOT NULL,
    file_path   TEXT NOT NULL,
    passed      BOOLEAN NOT NULL,
    timestamp   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_tool_run ON tool_runs(run_id, category);
`

func (p *Postgres) migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("apply postgres schema: %w", err)
	}
	return nil
}

// LogWorkflowEvent inserts a workflow event.
func (p *Postgres) LogWorkflowEvent(runID, event, category, detail string) error {
	_, err := p.pool.Exec(context.Background(),
		`INSERT INTO workflow_events (run_id, event, category, detail) VALUES ($1, $2, $3, $4)`,
		runID, event, category, detail,
	)
	if err != nil {
		return fmt.Errorf("log workflow event: %w", err)
	}
	return nil
}

// LogToolRun inserts a tool run record.
func (p *Postgres) LogToolRun(runID, category, tool, filePath string, passed bool) error {
	_, err := p.pool.Exec(context.Background(),
		`INSERT INTO tool_runs (run_id, category, tool, file_path, passed) VALUES ($1, $2, $3, $4, $5)`,
		runID, category, tool, filePath, passed,
	)
	if err != nil {
		return fmt.Errorf("log tool run: %w", err)
	}
	return nil
}

// ListWorkflowEvents returns events for a run in insertion order, or all
// events when runID is empty.
func (p *Postgres) ListWorkflowEvents(runID string) ([]WorkflowEvent, error) {
	ctx := context.Background()
	query := `SELECT id, run_id, event, COALESCE(category, ''), COALESCE(detail, ''), timestamp::text
	          FROM workflow_events ORDER BY id`
	args := []any{}
	if runID != "" {
		query = `SELECT id, run_id, event, COALESCE(category, ''), COALESCE(detail, ''), timestamp::text
		         FROM workflow_events WHERE run_id = $1 ORDER BY id`
		args = append(args, runID)
	}

	rows, err := p.pool.Query(ctx, query, args...)
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
