package analytics

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// Store provides database operations for analytics.
type Store struct {
	db   *sql.DB
	salt string
}

// NewStore opens the analytics database, applies the schema, and loads or
// generates the per-installation hashing salt.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if err := s.initSalt(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			visitor_id TEXT NOT NULL,
			browser TEXT NOT NULL,
			os TEXT NOT NULL,
			device TEXT NOT NULL,
			path TEXT NOT NULL,
			referrer TEXT,
			timestamp DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);
		CREATE INDEX IF NOT EXISTS idx_visits_visitor_id ON visits(visitor_id);
		CREATE INDEX IF NOT EXISTS idx_visits_path ON visits(path);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

func (s *Store) initSalt() error {
	salt, err := s.GetSetting("hash_salt")
	if err != nil {
		return fmt.Errorf("read hash salt: %w", err)
	}
	if salt == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("generate salt: %w", err)
		}
		salt = hex.EncodeToString(b)
		if err := s.SetSetting("hash_salt", salt); err != nil {
			return fmt.Errorf("store hash salt: %w", err)
		}
	}
	s.salt = salt
	return nil
}

// GetSetting returns a settings value, or "" when the key is absent.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting inserts or replaces a settings value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	return err
}

// VisitorID derives the anonymous visitor hash from IP and User-Agent.
func (s *Store) VisitorID(ip, userAgent string) string {
	h := sha256.New()
	h.Write([]byte(s.salt + ip + "|" + userAgent))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// RecordVisit inserts one page view.
func (s *Store) RecordVisit(v Visit) error {
	_, err := s.db.Exec(`
		INSERT INTO visits (visitor_id, browser, os, device, path, referrer, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.VisitorID, v.Browser, v.OS, v.Device, v.Path, v.Referrer, v.Timestamp)
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// Stats aggregates the last N days of visits.
func (s *Store) Stats(days int) (Stats, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	stats := Stats{Days: days}

	err := s.db.QueryRow(
		"SELECT COUNT(*), COUNT(DISTINCT visitor_id) FROM visits WHERE timestamp >= ?",
		since).Scan(&stats.TotalViews, &stats.UniqueVisitors)
	if err != nil {
		return Stats{}, fmt.Errorf("count visits: %w", err)
	}

	stats.TopPages, err = s.topPages(since, 10)
	if err != nil {
		return Stats{}, err
	}
	stats.Browsers, err = s.dimension("browser", since, 5)
	if err != nil {
		return Stats{}, err
	}
	stats.Referrers, err = s.dimension("referrer", since, 10)
	if err != nil {
		return Stats{}, err
	}
	stats.DailyViews, err = s.dailyViews(since)
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (s *Store) topPages(since time.Time, limit int) ([]PageStat, error) {
	rows, err := s.db.Query(`
		SELECT path, COUNT(*) AS views FROM visits
		WHERE timestamp >= ?
		GROUP BY path ORDER BY views DESC LIMIT ?`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("top pages: %w", err)
	}
	defer rows.Close()

	var pages []PageStat
	for rows.Next() {
		var p PageStat
		if err := rows.Scan(&p.Path, &p.Views); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (s *Store) dimension(column string, since time.Time, limit int) ([]DimensionStat, error) {
	// column is one of the fixed schema columns, never user input.
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT %s, COUNT(*) AS n FROM visits
		WHERE timestamp >= ?
		GROUP BY %s ORDER BY n DESC LIMIT ?`, column, column), since, limit)
	if err != nil {
		return nil, fmt.Errorf("dimension %s: %w", column, err)
	}
	defer rows.Close()

	var out []DimensionStat
	for rows.Next() {
		var d DimensionStat
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) dailyViews(since time.Time) ([]DailyView, error) {
	rows, err := s.db.Query(`
		SELECT DATE(timestamp) AS day, COUNT(*) AS views FROM visits
		WHERE timestamp >= ?
		GROUP BY day ORDER BY day`, since)
	if err != nil {
		return nil, fmt.Errorf("daily views: %w", err)
	}
	defer rows.Close()

	var out []DailyView
	for rows.Next() {
		var d DailyView
		if err := rows.Scan(&d.Date, &d.Views); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteOlderThan removes visits beyond the retention window.
func (s *Store) DeleteOlderThan(days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	res, err := s.db.Exec("DELETE FROM visits WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old visits: %w", err)
	}
	return res.RowsAffected()
}

// StartCleanupScheduler deletes visits older than retentionDays on the given
// interval. The returned func stops the scheduler.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration) func() {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := s.DeleteOlderThan(retentionDays); err != nil {
					log.Printf("analytics: cleanup failed: %v", err)
				} else if n > 0 {
					log.Printf("analytics: removed %d expired visits", n)
				}
			case <-stop:
				return
			}
		}
	}()
	return func() { close(stop) }
}
