package sandbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/goliatone/go-startpage/components/startpage"
)

var errClosed = errors.New("sandbox: database closed")

// Options configures the embedded database.
type Options struct {
	// Path is the SQLite file. Empty selects an ephemeral file that lives
	// only as long as the Sandbox and is restored from Images on start.
	Path string
	// Images persists the database file image after successful statements.
	Images startpage.KeyValueStore
	Logger *slog.Logger
}

// Sandbox is a lazily initialized SQLite database with two default tables,
// api_logs and custom_data.
type Sandbox struct {
	opts Options

	once    sync.Once
	initErr error

	mu        sync.Mutex
	db        *gorm.DB
	sqlDB     *sql.DB
	path      string
	ephemeral string
	closed    bool
}

// New returns an uninitialized sandbox. The database is opened on first use.
func New(opts Options) *Sandbox {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Sandbox{opts: opts}
}

// Init opens the database once. Concurrent callers share the same
// initialization and its error. The open is detached from the first caller's
// cancellation.
func (s *Sandbox) Init(ctx context.Context) error {
	s.once.Do(func() {
		s.initErr = s.open(context.WithoutCancel(ctx))
	})
	if s.initErr != nil {
		return s.initErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	return nil
}

func (s *Sandbox) open(ctx context.Context) error {
	path := s.opts.Path
	if path == "" {
		dir, err := os.MkdirTemp("", "startpage-sandbox-*")
		if err != nil {
			return fmt.Errorf("sandbox: create temp dir: %w", err)
		}
		s.ephemeral = dir
		path = filepath.Join(dir, "sandbox.db")
	}
	if err := ensureDirForSQLite(path); err != nil {
		return err
	}
	if err := s.restoreImage(ctx, path); err != nil {
		return err
	}

	dbLogger := logger.New(
		slog.NewLogLogger(s.opts.Logger.Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return fmt.Errorf("sandbox: open db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("sandbox: open db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.WithContext(ctx).AutoMigrate(&APILog{}, &CustomData{}); err != nil {
		sqlDB.Close()
		return fmt.Errorf("sandbox: migrate db: %w", err)
	}
	s.db = db
	s.sqlDB = sqlDB
	s.path = path
	return nil
}

// DB exposes the gorm handle, initializing on demand.
func (s *Sandbox) DB(ctx context.Context) (*gorm.DB, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	return s.db.WithContext(ctx), nil
}

// Path returns the database file once initialized.
func (s *Sandbox) Path() string {
	return s.path
}

// Close releases the database and removes an ephemeral file.
func (s *Sandbox) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var err error
	if s.sqlDB != nil {
		err = s.sqlDB.Close()
	}
	if s.ephemeral != "" {
		os.RemoveAll(s.ephemeral)
	}
	return err
}

// ensureDirForSQLite creates the parent dir for a SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("sandbox: create db dir %q: %w", dir, err)
	}
	return nil
}
