// Package config loads tango's project configuration.
//
// A Config is a plain value handed to the engine; there is no global state.
// Files may be YAML or TOML. Unset fields keep their defaults, and the
// result is checked against an embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tango/internal/convert"
	"github.com/roach88/tango/internal/engine"
)

//go:embed schema.cue
var schemaSource string

// Config is the configuration of one project.
type Config struct {
	SourceDir   string `yaml:"source_dir" toml:"source_dir" json:"source_dir"`
	LiterateDir string `yaml:"literate_dir" toml:"literate_dir" json:"literate_dir"`
	SourceExt   string `yaml:"source_ext" toml:"source_ext" json:"source_ext"`
	LiterateExt string `yaml:"literate_ext" toml:"literate_ext" json:"literate_ext"`

	// Stamp is the stamp file, relative to the project root.
	Stamp string `yaml:"stamp" toml:"stamp" json:"stamp"`

	// Lang is the fence language tag.
	Lang string `yaml:"lang" toml:"lang" json:"lang"`

	// Playground is the permalink URL template; it must contain {code}.
	Playground string `yaml:"playground" toml:"playground" json:"playground"`

	// Journal is an optional SQLite database recording every run.
	Journal string `yaml:"journal" toml:"journal" json:"journal,omitempty"`

	// LogFile optionally receives JSON logs in addition to stderr.
	LogFile string `yaml:"log_file" toml:"log_file" json:"log_file,omitempty"`
}

// FileNames are the config files Find looks for, in order.
var FileNames = []string{"tango.yaml", "tango.yml", "tango.toml"}

// Default returns the configuration of a Rust crate whose literate files
// sit next to its sources.
func Default() Config {
	syntax := convert.DefaultSyntax()
	return Config{
		SourceDir:   "src",
		LiterateDir: "src",
		SourceExt:   "rs",
		LiterateExt: "md",
		Stamp:       engine.DefaultStampPath,
		Lang:        syntax.Lang,
		Playground:  syntax.Playground,
	}
}

// Load reads the config file at path. The format follows the extension.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case ".toml":
		meta, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return cfg, fmt.Errorf("failed to parse config file %s: unknown key %q", path, undecoded[0].String())
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// Find returns the first of FileNames present in root, or "" if none is.
func Find(root string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(root, name)
		_, err := os.Stat(path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", nil
}

// Validate checks the configuration against the schema and cross-field
// rules.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := def.Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return err
	}

	if filepath.Clean(c.SourceDir) == filepath.Clean(c.LiterateDir) && c.SourceExt == c.LiterateExt {
		return fmt.Errorf("source_ext and literate_ext must differ when source_dir and literate_dir coincide")
	}
	return nil
}

// Layout returns the path mapping for the engine.
func (c Config) Layout() engine.Layout {
	return engine.Layout{
		SourceDir:   c.SourceDir,
		LiterateDir: c.LiterateDir,
		SourceExt:   c.SourceExt,
		LiterateExt: c.LiterateExt,
	}
}

// Syntax returns the converter syntax.
func (c Config) Syntax() convert.Syntax {
	return convert.Syntax{Lang: c.Lang, Playground: c.Playground}
}
