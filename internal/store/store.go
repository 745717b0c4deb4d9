package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/julienfritschheydon/doodates-scheduler/internal/engine"
)

// Store handles persistent storage using SQLite.
type Store struct {
	db *sql.DB
}

// Poll is one scheduling poll participants declare availability against.
type Poll struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// AvailabilityEntry is a stored availability window, owned by a poll.
type AvailabilityEntry struct {
	ID     string `json:"id"`
	PollID string `json:"poll_id"`
	engine.Availability
}

// MarshalJSON renders the date as a plain calendar day and omits it for
// recurring entries; an omitempty tag cannot suppress a zero time.Time.
func (e *AvailabilityEntry) MarshalJSON() ([]byte, error) {
	out := struct {
		ID      string             `json:"id"`
		PollID  string             `json:"poll_id"`
		Weekday engine.Weekday     `json:"weekday,omitempty"`
		Date    string             `json:"date,omitempty"`
		Ranges  []engine.TimeRange `json:"ranges"`
	}{ID: e.ID, PollID: e.PollID, Weekday: e.Weekday, Ranges: e.Ranges}
	if !e.Date.IsZero() {
		out.Date = e.Date.Format("2006-01-02")
	}
	return json.Marshal(out)
}

// NewStore creates a new store and initializes the database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// initialize creates the database schema.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS polls (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS availability (
		id TEXT PRIMARY KEY,
		poll_id TEXT NOT NULL,
		weekday INTEGER DEFAULT 0,
		date TEXT,
		ranges TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (poll_id) REFERENCES polls(id)
	);

	CREATE TABLE IF NOT EXISTS rules (
		poll_id TEXT PRIMARY KEY,
		slot_duration INTEGER DEFAULT 0,
		lookahead_weeks INTEGER DEFAULT 0,
		prefer_near_term INTEGER DEFAULT 0,
		prefer_half_days INTEGER DEFAULT 0,
		preferred_times TEXT,
		min_latency INTEGER DEFAULT 0,
		max_latency INTEGER DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (poll_id) REFERENCES polls(id)
	);

	CREATE INDEX IF NOT EXISTS idx_availability_poll ON availability(poll_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreatePoll saves a new poll, assigning an ID when missing.
func (s *Store) CreatePoll(p *Poll) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	query := `INSERT OR REPLACE INTO polls (id, title, created_at) VALUES (?, ?, ?)`
	_, err := s.db.Exec(query, p.ID, p.Title, p.CreatedAt)
	return err
}

// GetPoll retrieves a poll by ID.
func (s *Store) GetPoll(id string) (*Poll, error) {
	var p Poll
	query := `SELECT id, title, created_at FROM polls WHERE id = ?`
	err := s.db.QueryRow(query, id).Scan(&p.ID, &p.Title, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPolls retrieves all polls, newest first.
func (s *Store) ListPolls() ([]*Poll, error) {
	rows, err := s.db.Query(`SELECT id, title, created_at FROM polls ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	polls := []*Poll{}
	for rows.Next() {
		var p Poll
		if err := rows.Scan(&p.ID, &p.Title, &p.CreatedAt); err != nil {
			continue
		}
		polls = append(polls, &p)
	}
	return polls, rows.Err()
}

// SaveAvailability saves an availability entry, assigning an ID when missing.
func (s *Store) SaveAvailability(e *AvailabilityEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	rangesJSON, _ := json.Marshal(e.Ranges)

	var dateStr sql.NullString
	if !e.Date.IsZero() {
		dateStr = sql.NullString{String: e.Date.Format("2006-01-02"), Valid: true}
	}

	query := `INSERT OR REPLACE INTO availability (id, poll_id, weekday, date, ranges)
		VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query, e.ID, e.PollID, int(e.Weekday), dateStr, string(rangesJSON))
	return err
}

// ListAvailability retrieves all availability entries for a poll.
func (s *Store) ListAvailability(pollID string) ([]*AvailabilityEntry, error) {
	query := `SELECT id, poll_id, weekday, date, ranges FROM availability
		WHERE poll_id = ? ORDER BY created_at, rowid`

	rows, err := s.db.Query(query, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*AvailabilityEntry{}
	for rows.Next() {
		var e AvailabilityEntry
		var weekday int
		var dateStr sql.NullString
		var rangesJSON string

		if err := rows.Scan(&e.ID, &e.PollID, &weekday, &dateStr, &rangesJSON); err != nil {
			continue
		}

		e.Weekday = engine.Weekday(weekday)
		if dateStr.Valid {
			d, err := time.Parse("2006-01-02", dateStr.String)
			if err == nil {
				e.Date = d
			}
		}
		json.Unmarshal([]byte(rangesJSON), &e.Ranges)

		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// DeleteAvailability deletes an availability entry by ID.
func (s *Store) DeleteAvailability(id string) error {
	_, err := s.db.Exec(`DELETE FROM availability WHERE id = ?`, id)
	return err
}

// SaveRules saves the scheduling rules for a poll.
func (s *Store) SaveRules(pollID string, r engine.Rules) error {
	preferredJSON, _ := json.Marshal(r.PreferredTimes)

	query := `INSERT OR REPLACE INTO rules
		(poll_id, slot_duration, lookahead_weeks, prefer_near_term, prefer_half_days,
		 preferred_times, min_latency, max_latency, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query, pollID, r.SlotDuration, r.LookaheadWeeks,
		boolToInt(r.PreferNearTerm), boolToInt(r.PreferHalfDays),
		string(preferredJSON), r.MinLatencyMinutes, r.MaxLatencyMinutes, time.Now())
	return err
}

// GetRules retrieves the scheduling rules for a poll. A poll without saved
// rules gets the zero value, which the engine fills with defaults.
func (s *Store) GetRules(pollID string) (engine.Rules, error) {
	query := `SELECT slot_duration, lookahead_weeks, prefer_near_term, prefer_half_days,
		preferred_times, min_latency, max_latency FROM rules WHERE poll_id = ?`

	var r engine.Rules
	var nearTerm, halfDays int
	var preferredJSON sql.NullString

	err := s.db.QueryRow(query, pollID).Scan(&r.SlotDuration, &r.LookaheadWeeks,
		&nearTerm, &halfDays, &preferredJSON, &r.MinLatencyMinutes, &r.MaxLatencyMinutes)
	if err == sql.ErrNoRows {
		return engine.Rules{}, nil
	}
	if err != nil {
		return engine.Rules{}, err
	}

	r.PreferNearTerm = nearTerm == 1
	r.PreferHalfDays = halfDays == 1
	if preferredJSON.Valid {
		json.Unmarshal([]byte(preferredJSON.String), &r.PreferredTimes)
	}
	return r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
