package database

// InsertIngestRun stores the counters of a completed ingestion cycle.
func (db *DB) InsertIngestRun(r *IngestRun) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO ingest_runs (started_at, finished_at, found, admitted, duplicates, purged, parse_drops, filtered, source_errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.StartedAt, r.FinishedAt, r.Found, r.Admitted, r.Duplicates,
		r.Purged, r.ParseDrops, r.Filtered, r.SourceErrors,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetRecentIngestRuns returns the newest ingestion runs, most recent first.
func (db *DB) GetRecentIngestRuns(limit int) ([]IngestRun, error) {
	rows, err := db.conn.Query(
		`SELECT id, started_at, finished_at, found, admitted, duplicates, purged, parse_drops, filtered, source_errors
		FROM ingest_runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []IngestRun
	for rows.Next() {
		var r IngestRun
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Found, &r.Admitted,
			&r.Duplicates, &r.Purged, &r.ParseDrops, &r.Filtered, &r.SourceErrors); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
