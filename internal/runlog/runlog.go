package runlog

import (
	"context"
	"database/sql"
	"time"

	"repcal/lib/timezone"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Schema for the scrape journal. Append-only observability data: the
// pipeline writes here after every theater run and nothing ever reads
// it back except the `runs` command.
const Schema = `
CREATE TABLE IF NOT EXISTS scrape_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	theater TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	film_count INTEGER NOT NULL,
	showtime_count INTEGER NOT NULL,
	error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS scrape_runs_started_at ON scrape_runs (started_at);
`

type Entry struct {
	Theater   string
	StartedAt time.Time
	Duration  time.Duration
	Films     int
	Showtimes int
	Err       string
}

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

func (s Store) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scrape_runs
			(theater, started_at, duration_ms, film_count, showtime_count, error)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Theater,
		e.StartedAt.Unix(),
		e.Duration.Milliseconds(),
		e.Films,
		e.Showtimes,
		e.Err,
	)
	return err
}

// Recent returns the newest journal entries, newest first.
func (s Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT theater, started_at, duration_ms, film_count, showtime_count, error
		FROM scrape_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var startedAt, durationMs int64
		err := rows.Scan(&e.Theater, &startedAt, &durationMs, &e.Films, &e.Showtimes, &e.Err)
		if err != nil {
			return nil, err
		}
		e.StartedAt = time.Unix(startedAt, 0).In(timezone.Location)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
