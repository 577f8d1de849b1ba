package cli

import (
	"io"
	"log/slog"
	"path/filepath"

	"github.com/roach88/tango/internal/config"
	"github.com/roach88/tango/internal/engine"
	"github.com/roach88/tango/internal/journal"
	"github.com/roach88/tango/internal/logging"
)

// project is a configured project tree, as the global flags describe it.
type project struct {
	root       string
	configFile string // empty when running on defaults
	cfg        config.Config
	logger     *slog.Logger
	closeLog   func() error
}

// openProject resolves the config for opts and sets up logging. Failures
// are command errors.
func openProject(opts *RootOptions, stderr io.Writer) (*project, error) {
	p, err := loadProject(opts)
	if err != nil {
		return nil, err
	}

	var logFile string
	if p.cfg.LogFile != "" {
		logFile = p.path(p.cfg.LogFile)
	}
	logger, closeLog, err := logging.New(logging.Options{
		Verbose:  opts.Verbose,
		Terminal: stderr,
		File:     logFile,
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to set up logging", err)
	}
	p.logger = logger
	p.closeLog = closeLog
	p.logger.Debug("project loaded", "root", p.root, "config", p.configFile)
	return p, nil
}

// loadProject resolves the config only.
func loadProject(opts *RootOptions) (*project, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	p := &project{root: root, cfg: config.Default()}

	path := opts.Config
	if path == "" {
		found, err := config.Find(root)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to look for a config file", err)
		}
		path = found
	}
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load config", err)
		}
		p.cfg = cfg
		p.configFile = path
	}

	overridden := false
	for _, o := range []struct {
		flag  string
		field *string
	}{
		{opts.SourceDir, &p.cfg.SourceDir},
		{opts.LiterateDir, &p.cfg.LiterateDir},
		{opts.Lang, &p.cfg.Lang},
	} {
		if o.flag != "" {
			*o.field = o.flag
			overridden = true
		}
	}
	if overridden {
		if err := p.cfg.Validate(); err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid flag override", err)
		}
	}
	return p, nil
}

func (p *project) describeConfig() string {
	if p.configFile == "" {
		return "defaults"
	}
	return p.configFile
}

// path resolves a config path against the project root.
func (p *project) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.root, rel)
}

// openJournal opens the configured journal, or returns nil when none is
// configured.
func (p *project) openJournal() (*journal.Journal, error) {
	if p.cfg.Journal == "" {
		return nil, nil
	}
	j, err := journal.Open(p.path(p.cfg.Journal))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return j, nil
}

// engine builds a Context for the project. rec may be nil.
func (p *project) engine(rec engine.Recorder) *engine.Context {
	return engine.New(engine.Options{
		Root:      p.root,
		Layout:    p.cfg.Layout(),
		Syntax:    p.cfg.Syntax(),
		StampPath: p.cfg.Stamp,
		Logger:    p.logger,
		Recorder:  rec,
	})
}

func (p *project) Close() error {
	if p.closeLog == nil {
		return nil
	}
	return p.closeLog()
}
