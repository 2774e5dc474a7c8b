package gravit

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the tunables of an App. It is usually loaded from a TOML
// file:
//
//	debug = true
//
//	[undo]
//	max_entries = 200
//	keep_redo_branch = false
//
//	[view]
//	width = 1024
//	height = 768
//	pixel_mode = false
//	paint_mode = "full"
//
//	[storage]
//	path = "documents.db"
//	bucket = "documents"
type Config struct {
	Debug   bool          `toml:"debug"`
	Undo    UndoConfig    `toml:"undo"`
	View    ViewConfig    `toml:"view"`
	Storage StorageConfig `toml:"storage"`
}

// UndoConfig configures the undo history.
type UndoConfig struct {
	MaxEntries     int  `toml:"max_entries"`
	KeepRedoBranch bool `toml:"keep_redo_branch"`
}

// ViewConfig configures new views.
type ViewConfig struct {
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	PixelMode bool   `toml:"pixel_mode"`
	PaintMode string `toml:"paint_mode"`
}

// StorageConfig selects the document database. An empty path disables
// storage.
type StorageConfig struct {
	Path   string `toml:"path"`
	Bucket string `toml:"bucket"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Undo: UndoConfig{MaxEntries: MaxUndoEntries},
		View: ViewConfig{Width: 800, Height: 600, PaintMode: PaintFull.String()},
		Storage: StorageConfig{
			Bucket: DefaultStorageBucket,
		},
	}
}

// LoadConfig reads a TOML configuration file. Keys missing from the file
// keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	defer f.Close()
	cfg, err := decodeConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a TOML configuration. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	return decodeConfig(bytes.NewReader(data))
}

func decodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Undo.MaxEntries < 0 {
		return fmt.Errorf("%w: undo.max_entries %d", ErrInvalidValue, c.Undo.MaxEntries)
	}
	if c.View.Width < 0 || c.View.Height < 0 {
		return fmt.Errorf("%w: view size %dx%d", ErrInvalidValue, c.View.Width, c.View.Height)
	}
	if _, ok := ParsePaintMode(c.View.PaintMode); !ok && c.View.PaintMode != "" {
		return fmt.Errorf("%w: view.paint_mode %q", ErrInvalidValue, c.View.PaintMode)
	}
	return nil
}

// --- App ---

// App bundles the host services a document session uses: logger,
// clipboard, storage and frame scheduler.
type App struct {
	cfg       Config
	logger    *slog.Logger
	clipboard Clipboard
	storage   Storage
	scheduler FrameScheduler

	ownsStorage bool
}

// AppOption customizes NewApp.
type AppOption func(*App)

// WithLogger sets the logger. The default is slog.Default.
func WithLogger(l *slog.Logger) AppOption {
	return func(a *App) { a.logger = l }
}

// WithClipboard sets the clipboard. The default is a MemoryClipboard.
func WithClipboard(c Clipboard) AppOption {
	return func(a *App) { a.clipboard = c }
}

// WithStorage sets the document storage, overriding storage.path.
func WithStorage(s Storage) AppOption {
	return func(a *App) { a.storage = s }
}

// WithScheduler sets the frame scheduler. The default is a ManualScheduler.
func WithScheduler(s FrameScheduler) AppOption {
	return func(a *App) { a.scheduler = s }
}

// NewApp creates an App. When no storage option is given and cfg names a
// storage path, a BoltStorage is opened there and closed by Close.
func NewApp(cfg Config, opts ...AppOption) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.clipboard == nil {
		a.clipboard = NewMemoryClipboard()
	}
	if a.scheduler == nil {
		a.scheduler = NewManualScheduler()
	}
	if a.storage == nil && cfg.Storage.Path != "" {
		st, err := OpenBoltStorage(cfg.Storage.Path, cfg.Storage.Bucket)
		if err != nil {
			return nil, err
		}
		a.storage = st
		a.ownsStorage = true
	}
	return a, nil
}

// Config returns the configuration the app was created with.
func (a *App) Config() Config { return a.cfg }

// Logger returns the app logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Clipboard returns the app clipboard.
func (a *App) Clipboard() Clipboard { return a.clipboard }

// Storage returns the document storage, or nil.
func (a *App) Storage() Storage { return a.storage }

// Scheduler returns the frame scheduler.
func (a *App) Scheduler() FrameScheduler { return a.scheduler }

// NewScene creates an empty document using the app's logger and debug
// setting.
func (a *App) NewScene() *Scene {
	s := NewScene()
	s.SetLogger(a.logger)
	s.SetDebug(a.cfg.Debug)
	return s
}

// NewEditor creates an editor for s configured from the undo settings.
func (a *App) NewEditor(s *Scene) *Editor {
	e := NewEditor(s)
	e.undo.MaxEntries = a.cfg.Undo.MaxEntries
	e.undo.KeepRedoBranch = a.cfg.Undo.KeepRedoBranch
	e.SetClipboard(a.clipboard)
	return e
}

// NewView creates a view of s configured from the view settings.
func (a *App) NewView(s *Scene) *View {
	v := NewView(s, a.scheduler, a.cfg.View.Width, a.cfg.View.Height)
	v.PixelMode = a.cfg.View.PixelMode
	if m, ok := ParsePaintMode(a.cfg.View.PaintMode); ok {
		v.Layer("scene").SetMode(m)
	}
	return v
}

// Close releases storage opened by NewApp.
func (a *App) Close() error {
	if !a.ownsStorage {
		return nil
	}
	a.ownsStorage = false
	if c, ok := a.storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
