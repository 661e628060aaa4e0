// Package audit persists a local trail of firewall mutations: every
// applied directive batch, deletion and provisioning run, tagged with
// the invoking user and a per-process session ID.
package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"grimm.is/nftadm/internal/logging"
)

// Event is a single audit log entry.
type Event struct {
	ID        int64          `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	User      string         `json:"user"`
	Session   string         `json:"session,omitempty"`
	Action    string         `json:"action"`
	Resource  string         `json:"resource"`
	Details   map[string]any `json:"details,omitempty"`
	OK        bool           `json:"ok"`
}

// DefaultRetentionDays bounds how long events are kept before Prune
// discards them.
const DefaultRetentionDays = 90

// Store provides persistent storage for audit events. It satisfies the
// recorder interface the apply layer expects.
type Store struct {
	mu            sync.RWMutex
	db            *sql.DB
	session       string
	user          string
	retentionDays int
	log           *logging.Logger
}

// NewStore opens (creating if necessary) the audit database at dbPath.
// Each store instance carries a fresh session ID so events from one
// process invocation group together.
func NewStore(dbPath string, retentionDays int) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			user TEXT NOT NULL,
			session TEXT,
			action TEXT NOT NULL,
			resource TEXT NOT NULL,
			details TEXT,
			ok INTEGER DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp);
		CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_events(action);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create audit table: %w", err)
	}

	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}

	return &Store{
		db:            db,
		session:       uuid.NewString(),
		user:          currentUser(),
		retentionDays: retentionDays,
		log:           logging.WithComponent("audit"),
	}, nil
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}

// Session returns this store's session ID.
func (s *Store) Session() string {
	return s.session
}

// Record satisfies the apply layer's recorder interface. Persistence
// failures are logged and swallowed; auditing never blocks a firewall
// operation.
func (s *Store) Record(action, resource string, details map[string]any, ok bool) {
	evt := Event{
		Timestamp: time.Now(),
		User:      s.user,
		Session:   s.session,
		Action:    action,
		Resource:  resource,
		Details:   details,
		OK:        ok,
	}
	if err := s.Write(evt); err != nil {
		s.log.Warn("audit write failed", "action", action, "error", err)
	}
}

// Write persists an audit event.
func (s *Store) Write(evt Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var detailsJSON []byte
	if evt.Details != nil {
		var err error
		detailsJSON, err = json.Marshal(evt.Details)
		if err != nil {
			detailsJSON = []byte("{}")
		}
	}

	okInt := 0
	if evt.OK {
		okInt = 1
	}

	_, err := s.db.Exec(`
		INSERT INTO audit_events (timestamp, user, session, action, resource, details, ok)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, evt.Timestamp, evt.User, evt.Session, evt.Action, evt.Resource, string(detailsJSON), okInt)

	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// Query returns audit events in the given time window, newest first,
// optionally filtered by action.
func (s *Store) Query(start, end time.Time, action string, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, timestamp, user, session, action, resource, details, ok
		FROM audit_events WHERE timestamp >= ? AND timestamp <= ?`
	args := []any{start, end}

	if action != "" {
		query += " AND action = ?"
		args = append(args, action)
	}

	query += " ORDER BY timestamp DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var evt Event
		var detailsJSON sql.NullString
		var session sql.NullString
		var okInt int

		err := rows.Scan(&evt.ID, &evt.Timestamp, &evt.User, &session, &evt.Action,
			&evt.Resource, &detailsJSON, &okInt)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		evt.OK = okInt != 0
		if session.Valid {
			evt.Session = session.String
		}
		if detailsJSON.Valid && detailsJSON.String != "" {
			json.Unmarshal([]byte(detailsJSON.String), &evt.Details)
		}

		events = append(events, evt)
	}

	return events, rows.Err()
}

// Prune removes events older than the retention period.
func (s *Store) Prune() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	result, err := s.db.Exec("DELETE FROM audit_events WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune audit events: %w", err)
	}
	return result.RowsAffected()
}

// Count returns the total number of events in the store.
func (s *Store) Count() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	err := s.db.QueryRow("SELECT COUNT(*) FROM audit_events").Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
