package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-startpage/components/startpage"
	"github.com/goliatone/go-startpage/pkg/sandbox"
)

// Globals are shared by every command.
type Globals struct {
	DataDir  string `name:"data-dir" type:"path" default:"./data" env:"STARTPAGE_DATA_DIR" help:"Directory holding the config document and database."`
	Storage  string `enum:"file,sqlite,memory" default:"file" env:"STARTPAGE_STORAGE" help:"Config storage backend (file, sqlite, memory)."`
	LogLevel string `name:"log-level" enum:"debug,info,warn,error" default:"info" env:"STARTPAGE_LOG_LEVEL" help:"Minimum log level."`
}

func (g *Globals) logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(g.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// env bundles the storage, database and store every command works against.
type env struct {
	logger  *slog.Logger
	kv      startpage.KeyValueStore
	files   *startpage.FileKV
	db      *sandbox.Sandbox
	store   *startpage.Store
	options startpage.Options
}

// open builds the storage stack selected by --storage. hook, when non-nil,
// receives store events.
func (g *Globals) open(ctx context.Context, hook startpage.EventHook) (*env, error) {
	e := &env{logger: g.logger()}

	switch g.Storage {
	case "sqlite":
		e.db = sandbox.New(sandbox.Options{
			Path:   filepath.Join(g.DataDir, "startpage.db"),
			Logger: e.logger,
		})
		e.kv = e.db.KV()
	case "memory":
		mem := startpage.NewMemoryKV()
		e.kv = mem
		e.db = sandbox.New(sandbox.Options{Images: mem, Logger: e.logger})
	default:
		files, err := startpage.NewFileKV(g.DataDir)
		if err != nil {
			return nil, fmt.Errorf("startpage: open data dir: %w", err)
		}
		e.files = files
		e.kv = files
		e.db = sandbox.New(sandbox.Options{Images: files, Logger: e.logger})
	}

	e.options = startpage.Options{
		Repository: startpage.NewConfigRepository(e.kv, startpage.SchemaVersion),
		Hook:       hook,
		Logger:     e.logger,
	}
	e.store = startpage.NewStore(e.options)
	if err := e.store.Load(ctx); err != nil {
		e.close()
		return nil, err
	}
	return e, nil
}

func (e *env) close() {
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			e.logger.Warn("startpage: close database", "error", err)
		}
	}
}
