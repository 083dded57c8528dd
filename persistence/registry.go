package persistence

import (
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// DialectorOpener is an alias for a function that returns a gorm.Dialector
// for a given DSN.
type DialectorOpener = func(string) gorm.Dialector

var (
	registryMu sync.RWMutex
	drivers    = make(map[string]DialectorOpener)
)

// Register adds a database driver to the registry. The sqlite, postgres and
// mysql drivers register themselves; host applications may add more.
func Register(name string, opener DialectorOpener) {
	registryMu.Lock()
	defer registryMu.Unlock()
	drivers[name] = opener
}

// NewRepository opens the named driver with the given DSN and migrates the
// schema unless skipMigrate is set.
func NewRepository(name, dsn string, skipMigrate bool) (*Repository, error) {
	registryMu.RLock()
	opener, ok := drivers[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("persistence: unknown database driver %q", name)
	}

	db, err := gorm.Open(opener(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("persistence: open %s: %w", name, err)
	}

	repo := &Repository{db: db}
	if !skipMigrate {
		if err := repo.AutoMigrate(); err != nil {
			return nil, err
		}
	}
	return repo, nil
}
