package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DefaultFile is the name of the configuration file on the device filesystem
const DefaultFile = "config.json"

var (
	// ErrNoConfig means the configuration file does not exist (first boot)
	ErrNoConfig = errors.New("settings: no configuration file")
	// ErrCorrupt means the configuration file is not a JSON object
	ErrCorrupt = errors.New("settings: configuration file is corrupt")
)

// Store reads and writes the record as one JSON document on an afero.Fs
type Store struct {
	fs   afero.Fs
	path string
}

// NewStore creates a store for path on fs
func NewStore(fs afero.Fs, path string) *Store {
	if path == "" {
		path = DefaultFile
	}
	return &Store{fs: fs, path: path}
}

// Path returns the location of the configuration file
func (s *Store) Path() string {
	return s.path
}

// Load reads the stored record on top of the defaults. Missing keys keep
// their default; the result is normalized. On error the defaults are
// returned together with ErrNoConfig or ErrCorrupt.
func (s *Store) Load() (Record, error) {
	rec := Defaults()

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return rec, ErrNoConfig
		}
		return rec, fmt.Errorf("read %s: %w", s.path, err)
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return rec, fmt.Errorf("parse %s: %w", s.path, ErrCorrupt)
	}

	doc := gjson.ParseBytes(data)
	for _, f := range Schema {
		v := doc.Get(f.Key)
		switch f.Kind {
		case KindFlag:
			// Flags haben keinen Default, fehlend heißt aus
			*f.flag(&rec) = v.String() == Enabled
		case KindNumber:
			if v.Exists() {
				*f.num(&rec) = int(v.Int())
			}
		default:
			if v.Exists() {
				*f.str(&rec) = v.String()
			}
		}
	}
	rec.Normalize()
	return rec, nil
}

// Save writes rec as a full overwrite. The document is written to a temp file
// next to the target and renamed over it.
func (s *Store) Save(rec Record) error {
	doc, err := Encode(rec)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, doc, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// Remove deletes the configuration file; a missing file is not an error.
func (s *Store) Remove() error {
	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", s.path, err)
	}
	return nil
}

// Encode renders rec as the configuration document
func Encode(rec Record) ([]byte, error) {
	doc := []byte("{}")
	var err error
	for _, f := range Schema {
		switch f.Kind {
		case KindNumber:
			doc, err = sjson.SetBytes(doc, f.Key, f.Int(&rec))
		default:
			doc, err = sjson.SetBytes(doc, f.Key, f.String(&rec))
		}
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", f.Key, err)
		}
	}
	return doc, nil
}
