// Package config persists deskpin settings as TOML under ~/.deskpin,
// exposing both a typed settings view and a namespaced key/value surface
// for the enforcement core. Writes preserve sections they do not own.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// WorkspaceFile is the per-workspace override file looked up in the
// workspace root.
const WorkspaceFile = ".deskpin.toml"

// Dir returns the deskpin data directory (~/.deskpin).
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".deskpin"), nil
}

// LogDir returns the log directory (~/.deskpin/logs).
func LogDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

// PinSettings configure what the enforcement engine pins.
type PinSettings struct {
	SourceExt string `toml:"source_ext"`
	OutputExt string `toml:"output_ext"`
	Editor    string `toml:"editor"`
	Viewer    string `toml:"viewer"`
}

// Settings is the typed view over config.toml.
type Settings struct {
	Theme string      `toml:"theme"` // "dark", "light", or "auto"
	Pin   PinSettings `toml:"pin"`
}

func defaults() *Settings {
	return &Settings{
		Theme: "auto",
		Pin: PinSettings{
			SourceExt: ".tex",
			OutputExt: ".pdf",
			Editor:    "",
			Viewer:    "",
		},
	}
}

// normalize applies defaults for empty or invalid values.
func (s *Settings) normalize() {
	d := defaults()
	switch s.Theme {
	case "dark", "light", "auto":
	default:
		s.Theme = d.Theme
	}
	if s.Pin.SourceExt == "" {
		s.Pin.SourceExt = d.Pin.SourceExt
	}
	if s.Pin.OutputExt == "" {
		s.Pin.OutputExt = d.Pin.OutputExt
	}
}

// LoadSettings reads settings from path. A missing file or parse failure
// yields defaults rather than an error.
func LoadSettings(path string) *Settings {
	s := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var loaded Settings
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return s
	}
	loaded.normalize()
	return &loaded
}

// MergeWorkspace overlays per-workspace overrides from dir/.deskpin.toml,
// if present. Only non-empty override values win.
func (s *Settings) MergeWorkspace(dir string) {
	data, err := os.ReadFile(filepath.Join(dir, WorkspaceFile))
	if err != nil {
		return
	}
	var over Settings
	if err := toml.Unmarshal(data, &over); err != nil {
		return
	}
	if over.Theme != "" {
		s.Theme = over.Theme
	}
	if over.Pin.SourceExt != "" {
		s.Pin.SourceExt = over.Pin.SourceExt
	}
	if over.Pin.OutputExt != "" {
		s.Pin.OutputExt = over.Pin.OutputExt
	}
	if over.Pin.Editor != "" {
		s.Pin.Editor = over.Pin.Editor
	}
	if over.Pin.Viewer != "" {
		s.Pin.Viewer = over.Pin.Viewer
	}
	s.normalize()
}

// Store is the namespaced key/value surface over a TOML file. Unknown
// sections survive every write untouched.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a Store over the given TOML file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore returns a Store over ~/.deskpin/config.toml.
func DefaultStore() (*Store, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return NewStore(filepath.Join(dir, "config.toml")), nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

func (s *Store) load() (map[string]interface{}, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]interface{}), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	root := make(map[string]interface{})
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return root, nil
}

// Get reads one key from a section. The second return is false when the
// section or key does not exist.
func (s *Store) Get(section, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.load()
	if err != nil {
		return "", false, err
	}
	sec, ok := root[section].(map[string]interface{})
	if !ok {
		return "", false, nil
	}
	val, ok := sec[key]
	if !ok {
		return "", false, nil
	}
	return fmt.Sprintf("%v", val), true, nil
}

// Set writes one key in a section, creating file and section as needed and
// preserving everything else in the file.
func (s *Store) Set(section, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.load()
	if err != nil {
		return err
	}
	sec, ok := root[section].(map[string]interface{})
	if !ok {
		sec = make(map[string]interface{})
		root[section] = sec
	}
	sec[key] = value

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(root); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
