// Package config loads the server configuration from TOML.
package config

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"lodestar/internal/format"
)

// DefaultRequestTimeout bounds every offloaded request.
const DefaultRequestTimeout = 1500 * time.Millisecond

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ServerConfig holds the [server] table.
type ServerConfig struct {
	RequestTimeout time.Duration `toml:"request_timeout" validate:"min=1ms,max=1m"`
	// Workers is the pool size; zero means one per CPU.
	Workers      int    `toml:"workers" validate:"gte=0,lte=256"`
	AnalysisDB   string `toml:"analysis_db,omitempty"`
	BuildResults string `toml:"build_results,omitempty"`
}

// DefinitionConfig holds the [definition] table.
type DefinitionConfig struct {
	RacerFallback bool `toml:"racer_fallback"`
}

// FormatConfig holds the [format] table. Values that were set by the file
// or by the client's workspace settings override the editor's per-request
// formatting options.
type FormatConfig struct {
	HardTabs  bool `toml:"hard_tabs"`
	TabSpaces int  `toml:"tab_spaces" validate:"gte=1,lte=16"`

	hardTabsSet  bool
	tabSpacesSet bool
}

// SetHardTabs sets hard_tabs explicitly.
func (f *FormatConfig) SetHardTabs(v bool) {
	f.HardTabs = v
	f.hardTabsSet = true
}

// SetTabSpaces sets tab_spaces explicitly.
func (f *FormatConfig) SetTabSpaces(v int) {
	f.TabSpaces = v
	f.tabSpacesSet = true
}

// Formatter returns the formatter configuration.
func (f FormatConfig) Formatter() format.Config {
	return format.Config{
		HardTabs:  format.Setting[bool]{Value: f.HardTabs, Set: f.hardTabsSet},
		TabSpaces: format.Setting[int]{Value: f.TabSpaces, Set: f.tabSpacesSet},
	}
}

// Config is the whole configuration. It is a plain value; copy it to take a
// snapshot.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Definition DefinitionConfig `toml:"definition"`
	Format     FormatConfig     `toml:"format"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	fmtDefaults := format.DefaultConfig()
	return Config{
		Server: ServerConfig{
			RequestTimeout: DefaultRequestTimeout,
		},
		Definition: DefinitionConfig{
			RacerFallback: true,
		},
		Format: FormatConfig{
			HardTabs:  fmtDefaults.HardTabs.Value,
			TabSpaces: fmtDefaults.TabSpaces.Value,
		},
	}
}

// Validate checks field bounds.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// Load reads path on top of the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := finish(&cfg, meta); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML from r on top of the defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Defaults()
	meta, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := finish(&cfg, meta); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func finish(cfg *Config, meta toml.MetaData) error {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	cfg.Format.hardTabsSet = meta.IsDefined("format", "hard_tabs")
	cfg.Format.tabSpacesSet = meta.IsDefined("format", "tab_spaces")
	return cfg.Validate()
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}
