package session

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store persists session records and tags in sqlite. Records are
// append-only; the store assigns ids and creation times at write time.
// Subscribers receive the full current session set immediately and
// again after every change, so readers always recompute from a complete
// snapshot rather than tracking deltas.
type Store struct {
	db *sql.DB

	mu   sync.Mutex
	subs map[int]func([]Record)
	next int
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, subs: make(map[int]func([]Record))}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	sessionsQuery := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		duration_min REAL NOT NULL,
		tag_name TEXT,
		tag_color TEXT,
		completed INTEGER NOT NULL DEFAULT 0,
		mode TEXT NOT NULL DEFAULT 'timer'
	)
	`
	if _, err := s.db.Exec(sessionsQuery); err != nil {
		return err
	}

	tagsQuery := `
	CREATE TABLE IF NOT EXISTS tags (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT NOT NULL,
		created_at TEXT NOT NULL
	)
	`
	_, err := s.db.Exec(tagsQuery)
	return err
}

// Append writes a new record. The store assigns the id and the creation
// time so client clock skew cannot corrupt the timeline. The tag
// snapshot is stored denormalized on the row: later tag edits never
// touch it.
func (s *Store) Append(ctx context.Context, in Input) (Record, error) {
	if in.Duration < 0 {
		return Record{}, fmt.Errorf("append session: negative duration %v", in.Duration)
	}

	rec := Record{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Duration:  in.Duration,
		Completed: in.Completed,
		Mode:      in.Mode,
	}
	var tagName, tagColor sql.NullString
	if in.Tag != nil {
		ref := *in.Tag
		rec.Tag = &ref
		tagName = sql.NullString{String: ref.Name, Valid: true}
		tagColor = sql.NullString{String: ref.Color, Valid: true}
	}

	completed := 0
	if rec.Completed {
		completed = 1
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, created_at, duration_min, tag_name, tag_color, completed, mode) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.CreatedAt.Format(time.RFC3339), rec.Duration, tagName, tagColor, completed, string(rec.Mode),
	)
	if err != nil {
		return Record{}, fmt.Errorf("append session: %w", err)
	}

	s.notify()
	return rec, nil
}

// All returns every record, newest first.
func (s *Store) All(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, created_at, duration_min, tag_name, tag_color, completed, mode FROM sessions ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var createdAt string
		var tagName, tagColor sql.NullString
		var completed int
		var mode string
		if err := rows.Scan(&r.ID, &createdAt, &r.Duration, &tagName, &tagColor, &completed, &mode); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		r.Completed = completed == 1
		r.Mode = Mode(mode)
		if tagName.Valid {
			r.Tag = &TagRef{Name: tagName.String, Color: tagColor.String}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Subscribe registers fn to receive the full current session set now
// and after every change. The returned func cancels the subscription.
func (s *Store) Subscribe(fn func([]Record)) (func(), error) {
	records, err := s.All(context.Background())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	fn(records)
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}, nil
}

func (s *Store) notify() {
	records, err := s.All(context.Background())
	if err != nil {
		return
	}
	s.mu.Lock()
	fns := make([]func([]Record), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(records)
	}
}

// Tags returns the user's tags in creation order.
func (s *Store) Tags(ctx context.Context) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, color FROM tags ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *Store) AddTag(ctx context.Context, name, color string) (Tag, error) {
	if name == "" {
		return Tag{}, fmt.Errorf("add tag: name is required")
	}
	t := Tag{ID: uuid.NewString(), Name: name, Color: color}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tags (id, name, color, created_at) VALUES (?, ?, ?, ?)",
		t.ID, t.Name, t.Color, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return Tag{}, fmt.Errorf("add tag: %w", err)
	}
	return t, nil
}

// UpdateTag renames or recolors a tag. Historical records keep the
// snapshot they were saved with.
func (s *Store) UpdateTag(ctx context.Context, t Tag) error {
	if t.Name == "" {
		return fmt.Errorf("update tag: name is required")
	}
	res, err := s.db.ExecContext(ctx, "UPDATE tags SET name = ?, color = ? WHERE id = ?", t.Name, t.Color, t.ID)
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update tag: no tag with id %s", t.ID)
	}
	return nil
}

func (s *Store) DeleteTag(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM tags WHERE id = ?", id)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
