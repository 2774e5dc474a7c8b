package gravit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	bolt "go.etcd.io/bbolt"
)

// --- Clipboard ---

// Clipboard exchanges typed string content with the host.
type Clipboard interface {
	// MimeTypes lists the types currently available.
	MimeTypes() []string
	// Content returns the content stored under mime.
	Content(mime string) (string, bool)
	// SetContent replaces the clipboard content with one typed entry.
	SetContent(mime, content string)
}

// MemoryClipboard is a process-local clipboard holding one entry per type.
type MemoryClipboard struct {
	order   []string
	content map[string]string
}

// NewMemoryClipboard creates an empty clipboard.
func NewMemoryClipboard() *MemoryClipboard {
	return &MemoryClipboard{content: make(map[string]string)}
}

// MimeTypes implements Clipboard.
func (c *MemoryClipboard) MimeTypes() []string {
	return append([]string(nil), c.order...)
}

// Content implements Clipboard.
func (c *MemoryClipboard) Content(mime string) (string, bool) {
	s, ok := c.content[mime]
	return s, ok
}

// SetContent implements Clipboard. Earlier entries are dropped, as a copy
// replaces the whole clipboard.
func (c *MemoryClipboard) SetContent(mime, content string) {
	clear(c.content)
	c.content[mime] = content
	c.order = append(c.order[:0], mime)
}

// SystemClipboard stores typed content in the system clipboard's single text
// slot. The MIME type is kept as a header line so typed reads can tell their
// own content apart from foreign text.
type SystemClipboard struct {
	Logger *slog.Logger
}

func (c SystemClipboard) log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c SystemClipboard) read() (mime, content string, ok bool) {
	if clipboard.Unsupported {
		return "", "", false
	}
	s, err := clipboard.ReadAll()
	if err != nil {
		c.log().Debug("clipboard read", "error", err)
		return "", "", false
	}
	mime, content, ok = strings.Cut(s, "\n")
	if !ok || !strings.HasPrefix(mime, "application/") {
		return "text/plain", s, s != ""
	}
	return mime, content, true
}

// MimeTypes implements Clipboard.
func (c SystemClipboard) MimeTypes() []string {
	mime, _, ok := c.read()
	if !ok {
		return nil
	}
	return []string{mime}
}

// Content implements Clipboard.
func (c SystemClipboard) Content(mime string) (string, bool) {
	m, content, ok := c.read()
	if !ok || m != mime {
		return "", false
	}
	return content, true
}

// SetContent implements Clipboard. Plain text is written without a header.
func (c SystemClipboard) SetContent(mime, content string) {
	if clipboard.Unsupported {
		return
	}
	if mime != "text/plain" {
		content = mime + "\n" + content
	}
	if err := clipboard.WriteAll(content); err != nil {
		c.log().Warn("clipboard write", "mime", mime, "error", err)
	}
}

// --- Storage ---

// Storage loads and saves documents addressed by url.
type Storage interface {
	// IsAvailable reports whether the storage can be used.
	IsAvailable() bool
	// IsSaving reports whether a save is in progress.
	IsSaving() bool
	// Load returns the data stored at url. Text loads (binary false)
	// reject data that is not valid UTF-8.
	Load(ctx context.Context, url string, binary bool) ([]byte, error)
	// Save stores data at url.
	Save(ctx context.Context, url string, data []byte, binary bool) error
}

// DefaultStorageBucket is the bbolt bucket documents are kept in.
const DefaultStorageBucket = "documents"

// BoltStorage keeps documents in a bbolt database, one key per url.
type BoltStorage struct {
	db     *bolt.DB
	bucket []byte
	saving bool
}

// OpenBoltStorage opens or creates the database at path. An empty bucket
// name selects DefaultStorageBucket.
func OpenBoltStorage(path, bucket string) (*BoltStorage, error) {
	if bucket == "" {
		bucket = DefaultStorageBucket
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &BoltStorage{db: db, bucket: []byte(bucket)}, nil
}

// IsAvailable implements Storage.
func (s *BoltStorage) IsAvailable() bool {
	return s != nil && s.db != nil
}

// IsSaving implements Storage.
func (s *BoltStorage) IsSaving() bool {
	return s.saving
}

// Load implements Storage.
func (s *BoltStorage) Load(ctx context.Context, url string, binary bool) ([]byte, error) {
	if !s.IsAvailable() {
		return nil, ErrStorageUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(url))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, url)
		}
		// Values are only valid for the life of the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !binary && !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not text", ErrInvalidValue, url)
	}
	return data, nil
}

// Save implements Storage.
func (s *BoltStorage) Save(ctx context.Context, url string, data []byte, binary bool) error {
	if !s.IsAvailable() {
		return ErrStorageUnavailable
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !binary && !utf8.Valid(data) {
		return fmt.Errorf("%w: text save of non-UTF-8 data", ErrInvalidValue)
	}
	s.saving = true
	defer func() { s.saving = false }()
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(url), data)
	})
}

// Close closes the database.
func (s *BoltStorage) Close() error {
	if !s.IsAvailable() {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// --- Documents ---

// SaveDocument stores the edited scene at url.
func (e *Editor) SaveDocument(ctx context.Context, st Storage, url string) error {
	if st == nil || !st.IsAvailable() {
		return ErrStorageUnavailable
	}
	data, err := StoreScene(e.scene)
	if err != nil {
		return err
	}
	return st.Save(ctx, url, data, false)
}

// LoadDocument replaces the edited scene with the document stored at url.
// The undo history is cleared. Views of the previous scene are not moved;
// create new ones for the returned scene.
func (e *Editor) LoadDocument(ctx context.Context, st Storage, url string) (*Scene, error) {
	if st == nil || !st.IsAvailable() {
		return nil, ErrStorageUnavailable
	}
	data, err := st.Load(ctx, url, false)
	if err != nil {
		return nil, err
	}
	s, err := RestoreScene(data)
	if err != nil {
		return nil, err
	}
	s.debug = e.scene.debug
	s.logger = e.scene.logger
	e.setScene(s)
	return s, nil
}
