package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/sessions"
	"github.com/wader/gormstore/v2"
	"github.com/xtesports/xtesports/internal/admin"
	"github.com/xtesports/xtesports/internal/payment"
	"github.com/xtesports/xtesports/internal/tournament"
	"github.com/xtesports/xtesports/internal/userauth"
	"github.com/xtesports/xtesports/internal/util/slogx"
	"github.com/xtesports/xtesports/internal/webui"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Options struct {
	Path          string        `toml:"path"`
	SessionPath   string        `toml:"session-path"`
	Debug         bool          `toml:"debug"`
	SlowThreshold time.Duration `toml:"slow-threshold"`
	BusyTimeout   time.Duration `toml:"busy-timeout"`
	UseWAL        bool          `toml:"use-wal"`
}

func (o *Options) FillDefaults() {
	if o.Path == "" {
		o.Path = "data/database.db"
	}
	if o.SessionPath == "" {
		o.SessionPath = "data/sessions.db"
	}
	if o.SlowThreshold == 0 {
		o.SlowThreshold = 200 * time.Millisecond
	}
	if o.BusyTimeout == 0 {
		o.BusyTimeout = 1 * time.Minute
	}
}

// DB holds the main database and, in a separate file, the browser sessions.
type DB struct {
	db     *gorm.DB
	sessDB *gorm.DB
	log    *slog.Logger

	mu        sync.Mutex
	sessStore *gormstore.Store
}

var (
	_ tournament.DB             = (*DB)(nil)
	_ payment.DB                = (*DB)(nil)
	_ admin.DB                  = (*DB)(nil)
	_ userauth.DB               = (*DB)(nil)
	_ webui.SessionStoreFactory = (*DB)(nil)
)

func closeGorm(log *slog.Logger, g *gorm.DB) {
	if g == nil {
		return
	}
	db, err := g.DB()
	if err != nil {
		log.Error("could not get underlying db", slogx.Err(err))
		return
	}
	if err := db.Close(); err != nil {
		log.Error("could not close db", slogx.Err(err))
	}
}

func (d *DB) Close() {
	closeGorm(d.log, d.sessDB)
	closeGorm(d.log, d.db)
}

func buildPath(path string, o Options) string {
	var params []string
	if o.UseWAL {
		params = append(params, "_journal_mode=WAL")
		params = append(params, "_synchronous=NORMAL")
	}
	params = append(params, fmt.Sprintf("_busy_timeout=%v", o.BusyTimeout.Milliseconds()))
	params = append(params, "_foreign_keys=1")
	paramStr := strings.Join(params, "&")
	if paramStr == "" {
		return path
	}
	return path + "?" + paramStr
}

func open(log *slog.Logger, path string, o Options) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return gorm.Open(sqlite.Open(buildPath(path, o)), &gorm.Config{
		Logger: Logger(log, o),
	})
}

func New(log *slog.Logger, o Options) (*DB, error) {
	o.FillDefaults()

	log.Info("opening db", slog.String("path", o.Path))
	db, err := open(log, o.Path, o)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	d := &DB{db: db, log: log}

	log.Info("migrating db")
	if err := db.AutoMigrate(models...); err != nil {
		d.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	log.Info("opening session db", slog.String("path", o.SessionPath))
	sessDB, err := open(log, o.SessionPath, o)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("open session db: %w", err)
	}
	d.sessDB = sessDB

	log.Info("db opened")
	return d, nil
}

// NewSessionStore creates the session store. The sessions table is created on first use.
func (d *DB) NewSessionStore(keyPairs ...[]byte) sessions.Store {
	s := gormstore.New(d.sessDB, keyPairs...)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessStore = s
	return s
}

// CleanupSessions removes expired sessions from the store created by NewSessionStore.
func (d *DB) CleanupSessions() {
	d.mu.Lock()
	s := d.sessStore
	d.mu.Unlock()
	if s == nil {
		return
	}
	s.Cleanup()
}
