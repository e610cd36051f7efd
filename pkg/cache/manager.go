package cache

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	DbName = "responses.db"
)

// Manager persists raw provider responses in a sqlite database that lives
// inside the cache directory.
type Manager struct {
	dir string
	db  *sql.DB
	mu  sync.Mutex
}

func NewManager(dir string) (*Manager, error) {
	m := &Manager{dir: dir}
	if err := m.open(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) Dir() string {
	return m.dir
}

func (m *Manager) open() error {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return errors.Wrapf(err, "creating cache dir %s", m.dir)
	}
	db, err := sql.Open("sqlite3", filepath.Join(m.dir, DbName))
	if err != nil {
		log.Printf("error opening cache database: %s\n", err)
		return errors.Wrap(err, "opening cache database")
	}
	_, err = db.Exec(buildCreateResponsesTable())
	if err != nil {
		log.Printf("error init cache database: %s\n", err)
		db.Close()
		return errors.Wrap(err, "initializing cache database")
	}
	m.db = db
	return nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	return err
}

func (m *Manager) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return nil, false, errors.New("cache is closed")
	}
	query, read := buildSelectResponseCommand()
	rows, err := m.db.Query(query, key)
	if err != nil {
		return nil, false, errors.Wrapf(err, "reading cached response %s", key)
	}
	return read(rows)
}

func (m *Manager) Put(key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return errors.New("cache is closed")
	}
	stmt, args := buildUpsertResponseCommand(key, body)
	_, err := m.db.Exec(stmt, args...)
	if err != nil {
		log.Printf("error updating cache database: %s\n", err)
		return errors.Wrapf(err, "caching response %s", key)
	}
	return nil
}

func (m *Manager) Len() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return 0, errors.New("cache is closed")
	}
	var n int
	err := m.db.QueryRow(buildCountResponsesCommand()).Scan(&n)
	return n, err
}

// Clear deletes the whole cache directory and recreates it empty.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		if err := m.db.Close(); err != nil {
			log.Printf("error closing cache database: %s\n", err)
		}
		m.db = nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return errors.Wrapf(err, "removing cache dir %s", m.dir)
	}
	return m.open()
}
