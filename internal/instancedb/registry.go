package instancedb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Instance is one row of the instance registry.
type Instance struct {
	ID          string
	Seed        int64
	CreatedAt   time.Time
	LastActive  time.Time
	ClientCount int
}

// Registry is the sqlite-backed instance registry a server process
// updates on every tick. internal/server does not consult it when
// handling an Instantiate request.
type Registry struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite file at path and migrates
// it to the current schema.
func Open(path string) (*Registry, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &Registry{db: db}, nil
}

// Close releases the underlying database handle.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Create inserts a new instance row with a fresh id and the given
// world seed, and returns it.
func (r *Registry) Create(seed int64) (Instance, error) {
	inst := Instance{
		ID:         uuid.NewString(),
		Seed:       seed,
		CreatedAt:  time.Now(),
		LastActive: time.Now(),
	}
	_, err := r.db.Exec(
		"INSERT INTO instances (id, seed, created_at, last_active, client_count) VALUES (?, ?, ?, ?, 0)",
		inst.ID, inst.Seed, inst.CreatedAt, inst.LastActive,
	)
	if err != nil {
		return Instance{}, fmt.Errorf("instancedb: create instance: %w", err)
	}
	return inst, nil
}

// EnsureInstance returns the instance row for id, inserting one with
// the given seed if it doesn't already exist. Unlike Create, the
// caller supplies the id directly, so a server process's own instance
// identifier (its --instance flag) is also the registry's primary key.
func (r *Registry) EnsureInstance(id string, seed int64) (Instance, error) {
	existing, ok, err := r.Get(id)
	if err != nil {
		return Instance{}, err
	}
	if ok {
		return existing, nil
	}

	inst := Instance{
		ID:         id,
		Seed:       seed,
		CreatedAt:  time.Now(),
		LastActive: time.Now(),
	}
	_, err = r.db.Exec(
		"INSERT INTO instances (id, seed, created_at, last_active, client_count) VALUES (?, ?, ?, ?, 0)",
		inst.ID, inst.Seed, inst.CreatedAt, inst.LastActive,
	)
	if err != nil {
		return Instance{}, fmt.Errorf("instancedb: ensure instance %s: %w", id, err)
	}
	return inst, nil
}

// Get looks up an instance by id.
func (r *Registry) Get(id string) (Instance, bool, error) {
	var inst Instance
	row := r.db.QueryRow(
		"SELECT id, seed, created_at, last_active, client_count FROM instances WHERE id = ?", id,
	)
	err := row.Scan(&inst.ID, &inst.Seed, &inst.CreatedAt, &inst.LastActive, &inst.ClientCount)
	if err == sql.ErrNoRows {
		return Instance{}, false, nil
	}
	if err != nil {
		return Instance{}, false, fmt.Errorf("instancedb: get instance %s: %w", id, err)
	}
	return inst, true, nil
}

// Touch updates an instance's last-active timestamp and client count,
// the row-level bookkeeping a server's main loop performs once per
// tick so a restarted process (or an external admin tool) can see
// which instances are actually live.
func (r *Registry) Touch(id string, clientCount int) error {
	_, err := r.db.Exec(
		"UPDATE instances SET last_active = ?, client_count = ? WHERE id = ?",
		time.Now(), clientCount, id,
	)
	if err != nil {
		return fmt.Errorf("instancedb: touch instance %s: %w", id, err)
	}
	return nil
}

// List returns every registered instance, most recently active first.
func (r *Registry) List() ([]Instance, error) {
	rows, err := r.db.Query("SELECT id, seed, created_at, last_active, client_count FROM instances ORDER BY last_active DESC")
	if err != nil {
		return nil, fmt.Errorf("instancedb: list instances: %w", err)
	}
	defer rows.Close()

	var instances []Instance
	for rows.Next() {
		var inst Instance
		if err := rows.Scan(&inst.ID, &inst.Seed, &inst.CreatedAt, &inst.LastActive, &inst.ClientCount); err != nil {
			return nil, fmt.Errorf("instancedb: scan instance row: %w", err)
		}
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}
