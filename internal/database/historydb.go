package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/webperf-tools/psinsight/internal/model"
)

// dbFileName is the SQLite database file created under the data directory.
const dbFileName = "psinsight.db"

// HistoryDB provides SQLite-based storage for analysis results.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We store the full result as JSON plus a few indexed
// metadata columns (url, strategy, score, analyzed_at). Metadata queries
// such as history listings never deserialize result JSON.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Analyses store one row per (url, strategy) analysis with the full
	-- normalized result as JSON.
	CREATE TABLE IF NOT EXISTS analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		strategy TEXT NOT NULL,
		score INTEGER NOT NULL,
		analyzed_at DATETIME NOT NULL,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_url ON analyses(url);
	CREATE INDEX IF NOT EXISTS idx_analyses_strategy ON analyses(strategy);
	CREATE INDEX IF NOT EXISTS idx_analyses_analyzed_at ON analyses(analyzed_at);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// StoredAnalysis pairs a stored result with its database identifier.
type StoredAnalysis struct {
	// ID is the unique identifier of the analysis row.
	ID int64

	// Result is the full deserialized analysis result.
	Result *model.AnalysisResult
}

// Save stores one analysis result and returns its database ID.
// Results with an unknown strategy are rejected: the strategy is an indexed
// query column, and a row with an unparseable strategy would be invisible to
// every history lookup.
func (hdb *HistoryDB) Save(ctx context.Context, result *model.AnalysisResult) (int64, error) {
	if !result.Strategy.Valid() {
		return 0, fmt.Errorf("cannot save analysis with unknown strategy %q", result.Strategy)
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize result: %w", err)
	}

	query := `
	INSERT INTO analyses (url, strategy, score, analyzed_at, result_json)
	VALUES (?, ?, ?, ?, ?)
	`

	res, err := hdb.db.ExecContext(ctx, query,
		result.URL,
		result.Strategy.String(),
		result.Score,
		result.AnalyzedAt.UTC().Format(time.RFC3339),
		string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save analysis: %w", err)
	}

	return res.LastInsertId()
}

// SaveReport stores both strategy results of a URL report.
func (hdb *HistoryDB) SaveReport(ctx context.Context, report *model.URLReport) error {
	for _, result := range report.Results() {
		if _, err := hdb.Save(ctx, result); err != nil {
			return err
		}
	}
	return nil
}

// ListURLs returns all distinct analyzed URLs in alphabetical order.
func (hdb *HistoryDB) ListURLs(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT url FROM analyses
	ORDER BY url
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, u)
	}

	return urls, rows.Err()
}

// History retrieves stored analyses for a URL and strategy, newest first.
// A limit of zero or less returns the complete history.
func (hdb *HistoryDB) History(ctx context.Context, pageURL string, strategy model.Strategy, limit int) ([]StoredAnalysis, error) {
	query := `
	SELECT id, result_json FROM analyses
	WHERE url = ? AND strategy = ?
	ORDER BY analyzed_at DESC, id DESC
	`
	args := []any{pageURL, strategy.String()}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var results []StoredAnalysis
	for rows.Next() {
		var id int64
		var resultJSON string
		if err := rows.Scan(&id, &resultJSON); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}

		var result model.AnalysisResult
		if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
			continue // Skip malformed rows
		}
		results = append(results, StoredAnalysis{ID: id, Result: &result})
	}

	return results, rows.Err()
}

// AnalysisMetadata contains summary information about a stored analysis.
// This is used for displaying history without loading the full result.
type AnalysisMetadata struct {
	// ID is the unique identifier of the analysis row.
	ID int64

	// URL is the analyzed page URL.
	URL string

	// Strategy is the device context of the analysis.
	Strategy model.Strategy

	// Score is the overall 0-100 performance score.
	Score int

	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time
}

// HistoryWithMetadata retrieves analysis metadata for a URL, newest first.
// This is more efficient than History when only metadata is needed.
func (hdb *HistoryDB) HistoryWithMetadata(ctx context.Context, pageURL string) ([]AnalysisMetadata, error) {
	query := `
	SELECT id, url, strategy, score, analyzed_at
	FROM analyses
	WHERE url = ?
	ORDER BY analyzed_at DESC, id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var results []AnalysisMetadata
	for rows.Next() {
		var meta AnalysisMetadata
		var strategy, timestamp string

		if err := rows.Scan(&meta.ID, &meta.URL, &strategy, &meta.Score, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		parsed, err := model.ParseStrategy(strategy)
		if err != nil {
			continue // Skip rows with unknown strategies
		}
		meta.Strategy = parsed
		meta.AnalyzedAt = parseTimestamp(timestamp)

		results = append(results, meta)
	}

	return results, rows.Err()
}

// ResultByID retrieves a stored analysis by its database ID.
// Returns nil without error when no row matches.
func (hdb *HistoryDB) ResultByID(ctx context.Context, id int64) (*StoredAnalysis, error) {
	query := `
	SELECT result_json FROM analyses
	WHERE id = ?
	`

	var resultJSON string
	err := hdb.db.QueryRowContext(ctx, query, id).Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}

	return &StoredAnalysis{ID: id, Result: &result}, nil
}

// LatestPair retrieves the most recent result for each strategy of a URL.
// Returns nil without error when the URL has no stored results for either
// strategy.
func (hdb *HistoryDB) LatestPair(ctx context.Context, pageURL string) (*model.URLReport, error) {
	report := &model.URLReport{URL: pageURL}

	for _, strategy := range model.Strategies() {
		stored, err := hdb.History(ctx, pageURL, strategy, 1)
		if err != nil {
			return nil, err
		}
		if len(stored) == 0 {
			return nil, nil
		}
		switch strategy {
		case model.StrategyDesktop:
			report.Desktop = stored[0].Result
		case model.StrategyMobile:
			report.Mobile = stored[0].Result
		}
	}

	return report, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339,              // Format used when saving
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
