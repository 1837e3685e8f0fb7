// Package config merges settings from four layers, lowest priority
// first: global config file, local config file, DOCINDEXER_* environment
// variables (including a .env file), and command-line flags.
package config

import (
	"encoding/json"
	"io"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Settings is the effective configuration. JSON tags define the config
// file format; env tags define the environment override names.
type Settings struct {
	SourceFolder  string `json:"source_folder,omitempty" env:"DOCINDEXER_SOURCE_FOLDER"`
	FileName      string `json:"file_name,omitempty" env:"DOCINDEXER_FILE_NAME"`
	Catalogue     string `json:"catalogue,omitempty" env:"DOCINDEXER_CATALOGUE"`
	OutputFolder  string `json:"output_folder,omitempty" env:"DOCINDEXER_OUTPUT_FOLDER"`
	Pattern       string `json:"pattern,omitempty" env:"DOCINDEXER_PATTERN"`
	UseRegex      bool   `json:"use_regex,omitempty" env:"DOCINDEXER_USE_REGEX"`
	Recursive     bool   `json:"recursive" env:"DOCINDEXER_RECURSIVE"`
	MaxDepth      int    `json:"max_depth" env:"DOCINDEXER_MAX_DEPTH"`
	IncludeHidden bool   `json:"include_hidden,omitempty" env:"DOCINDEXER_INCLUDE_HIDDEN"`
	Limit         int    `json:"limit,omitempty" env:"DOCINDEXER_LIMIT"`
	SortBy        string `json:"sort_by,omitempty" env:"DOCINDEXER_SORT_BY"`
	SortDesc      bool   `json:"sort_desc,omitempty" env:"DOCINDEXER_SORT_DESC"`
	Random        bool   `json:"random,omitempty" env:"DOCINDEXER_RANDOM"`

	OmitProperties string `json:"omit_properties,omitempty" env:"DOCINDEXER_OMIT_PROPERTIES"`

	MinChunkSize  int     `json:"min_chunk_size" env:"DOCINDEXER_MIN_CHUNK_SIZE"`
	MaxChunkSize  int     `json:"max_chunk_size" env:"DOCINDEXER_MAX_CHUNK_SIZE"`
	ChunkOverlap  int     `json:"chunk_overlap" env:"DOCINDEXER_CHUNK_OVERLAP"`
	SizeTolerance float64 `json:"size_tolerance" env:"DOCINDEXER_SIZE_TOLERANCE"`

	ListenAddr string `json:"listen_addr,omitempty" env:"DOCINDEXER_LISTEN_ADDR"`
	APIToken   string `json:"api_token,omitempty" env:"DOCINDEXER_API_TOKEN"`

	Debug bool `json:"debug,omitempty" env:"DOCINDEXER_DEBUG"`
}

// Default returns the baseline settings before any layer applies.
func Default() Settings {
	return Settings{
		SourceFolder:  ".",
		Recursive:     true,
		MaxDepth:      -1,
		SortBy:        "name",
		MinChunkSize:  500,
		MaxChunkSize:  2000,
		ChunkOverlap:  50,
		SizeTolerance: 0.1,
		ListenAddr:    ":8080",
	}
}

// Manager loads and layers configuration sources.
type Manager struct {
	GlobalPath string
	LocalPath  string

	settings Settings
	sources  []string
	log      *slog.Logger
}

// NewManager uses the conventional paths: ~/.docindexer/config.json for
// the global layer and ./config.json for the local layer. log may be nil.
func NewManager(log *slog.Logger) *Manager {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	global := ""
	if home, err := os.UserHomeDir(); err == nil {
		global = filepath.Join(home, ".docindexer", "config.json")
	}
	return &Manager{
		GlobalPath: global,
		LocalPath:  "config.json",
		settings:   Default(),
		log:        log,
	}
}

// Load applies all layers in priority order. Missing files are fine;
// malformed files are warnings, matching the tool's tolerant startup.
// Flags are applied afterward by the CLI via the Settings pointer.
func (m *Manager) Load() error {
	m.settings = Default()
	m.sources = []string{"defaults"}

	for _, layer := range []struct {
		name, path string
	}{
		{"global", m.GlobalPath},
		{"local", m.LocalPath},
	} {
		if layer.path == "" {
			continue
		}
		applied, err := m.applyFile(layer.path)
		if err != nil {
			m.log.Warn("skipping unreadable config file", "path", layer.path, "error", err)
			continue
		}
		if applied {
			m.sources = append(m.sources, layer.name+" ("+layer.path+")")
		}
	}

	// A .env file feeds the environment layer when present.
	if err := godotenv.Load(); err == nil {
		m.sources = append(m.sources, ".env")
	}
	if err := env.Parse(&m.settings); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	m.sources = append(m.sources, "environment")

	return nil
}

// applyFile overlays one JSON config file. Only keys present in the
// file change the current settings.
func (m *Manager) applyFile(path string) (bool, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, &m.settings); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// Settings returns the mutable effective settings.
func (m *Manager) Settings() *Settings {
	return &m.settings
}

// Sources lists the layers that contributed, in application order.
func (m *Manager) Sources() []string {
	return m.sources
}

// WriteLocal persists the effective settings as the local config file.
func (m *Manager) WriteLocal() error {
	return writeConfig(m.LocalPath, m.settings)
}

// WriteGlobal persists the effective settings as the global config
// file, creating its directory when needed.
func (m *Manager) WriteGlobal() error {
	if m.GlobalPath == "" {
		return fmt.Errorf("no global config path available")
	}
	if err := os.MkdirAll(filepath.Dir(m.GlobalPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return writeConfig(m.GlobalPath, m.settings)
}

func writeConfig(path string, s Settings) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
