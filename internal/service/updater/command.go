package updater

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mitchellh/go-ps"

	"github.com/rosshadden/emcee/internal/archive"
	"github.com/rosshadden/emcee/internal/catalog"
	"github.com/rosshadden/emcee/internal/config"
	"github.com/rosshadden/emcee/internal/domain/addon"
	"github.com/rosshadden/emcee/internal/logger"
	"github.com/rosshadden/emcee/internal/repository/plugins"
	"github.com/rosshadden/emcee/internal/version"
)

const (
	// defaultMapCapacity is the default initial capacity for maps.
	defaultMapCapacity = 8
)

var (
	errUnknownLogLevel = errors.New("unknown log level")
	errRunInterrupted  = errors.New("run interrupted")
)

// Options are inputs accepted by the updater entry point.
// Non-empty fields override the configuration file.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// Directory holds the plugin archives.
	Directory string
	// GameVersion pins the host version.
	GameVersion string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// DryRun reports pending updates without downloading or deleting anything.
	DryRun bool
	// NoProgress disables the download progress bar.
	NoProgress bool
}

// catalogClient is the part of the catalog the updater relies on.
type catalogClient interface {
	Search(ctx context.Context, name, gameVersion string) ([]addon.CatalogEntry, error)
	ResolveDownloadURL(ctx context.Context, entryID, fileID int64) (string, error)
	Download(ctx context.Context, downloadURL string) (io.ReadCloser, int64, error)
}

// metadataReader extracts the metadata embedded in an archive.
type metadataReader interface {
	Read(ctx context.Context, path string) (*archive.Document, error)
}

// pluginStore is the plugin directory.
type pluginStore interface {
	Root() string
	Path(name string) string
	List(ctx context.Context) ([]string, error)
	Install(ctx context.Context, name string, src io.Reader) (int64, error)
	Remove(ctx context.Context, name string) error
}

// runner holds the collaborators of a single update run.
// It is intentionally unexported; call Run(ctx, Options) from callers.
type runner struct {
	resolver      *addon.Resolver
	catalog       catalogClient
	metadata      metadataReader
	store         pluginStore
	hostProcesses []string
	processes     func() ([]ps.Process, error)
	dryRun        bool
	progress      bool
}

// Run executes one update run over the configured plugin directory.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "emcee")

	if opts == nil {
		opts = new(Options)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if err = applyLogLevel(cfg.LogLevel); err != nil {
		return err
	}

	r, err := newRunner(cfg, opts)
	if err != nil {
		return err
	}

	if _, err = r.run(ctx); err != nil {
		return err
	}

	return nil
}

// loadConfig reads the settings file and applies option overrides.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.LoadOptional(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.Directory != "" {
		cfg.Directory = opts.Directory
	}

	if opts.GameVersion != "" {
		cfg.GameVersion = opts.GameVersion
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if opts.NoProgress {
		disabled := false
		cfg.Progress = &disabled
	}

	if err = config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyLogLevel(value string) error {
	level, ok := logger.ParseLogLevel(value)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, value)
	}

	logger.SetLevel(level)

	return nil
}

// newRunner wires the collaborators described by cfg.
func newRunner(cfg *config.Config, opts *Options) (*runner, error) {
	client, err := catalog.New(cfg.CatalogURL,
		catalog.WithGameID(cfg.GameID),
		catalog.WithCallTimeout(cfg.Timeout),
		catalog.WithUserAgent(version.UserAgent()),
	)
	if err != nil {
		return nil, err
	}

	return &runner{
		resolver:      addon.NewResolver(cfg.GameVersion),
		catalog:       client,
		metadata:      archive.NewReader(cfg.MetadataFile),
		store:         plugins.NewDirectory(cfg.Directory, cfg.Extension),
		hostProcesses: cfg.HostProcesses,
		processes:     ps.Processes,
		dryRun:        opts.DryRun,
		progress:      cfg.ProgressEnabled(),
	}, nil
}

// run processes every archive in directory order and stops at the first
// outcome whose policy is ActionAbort.
func (r *runner) run(ctx context.Context) (*Summary, error) {
	if err := r.ensureHostStopped(ctx); err != nil {
		return nil, err
	}

	names, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Checking plugin archives",
		"directory", r.store.Root(),
		"archives", len(names),
		"game_version", r.resolver.GameVersion(),
		"dry_run", r.dryRun,
	)

	summary := newSummary(len(names))

	for _, name := range names {
		if err = ctx.Err(); err != nil {
			summary.log(ctx)

			return summary, fmt.Errorf("%w before %s: %w", errRunInterrupted, name, err)
		}

		archiveCtx := logger.WithKV(ctx, "archive", name)

		outcome := r.process(archiveCtx, name)
		summary.add(outcome)
		report(archiveCtx, outcome)

		if outcome.Kind.Action() == ActionAbort {
			summary.Aborted = name
			summary.log(ctx)

			logger.ErrorKV(ctx, "Aborting run", "archive", name, "error", outcome.Err.Error())

			return summary, fmt.Errorf("process %s: %w", name, outcome.Err)
		}
	}

	summary.log(ctx)

	if err = ctx.Err(); err != nil {
		return summary, fmt.Errorf("%w: %w", errRunInterrupted, err)
	}

	return summary, nil
}
