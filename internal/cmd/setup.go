package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/medley/internal/config"
	"github.com/Iron-Ham/medley/internal/event"
	"github.com/Iron-Ham/medley/internal/librarian"
	"github.com/Iron-Ham/medley/internal/library"
	"github.com/Iron-Ham/medley/internal/logging"
	"github.com/Iron-Ham/medley/internal/store"
	"github.com/Iron-Ham/medley/internal/track"
)

// Shared output styles.
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A78BFA"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

// env bundles the wired application components every command needs:
// configuration, logging, the event bus, the librarian, the track library,
// and its backing store.
type env struct {
	cfg *config.Config
	log *logging.Logger
	bus *event.Bus
	lbn *librarian.Librarian
	lib *library.Library
	st  *store.Store
}

// setup loads and validates configuration, then wires the library stack and
// restores persisted contents from disk.
func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, config.ValidationErrors(errs)
	}

	log, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	bus := event.NewBus()
	lbn := librarian.New(librarian.WithLogger(log))

	opts := []library.Option{
		library.WithBus(bus),
		library.WithLibrarian(lbn),
	}
	if cfg.Library.ValidateOnLoad {
		opts = append(opts, library.WithValidator(track.Validator))
	}
	lib, err := library.New(cfg.Library.Name, opts...)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create library: %w", err)
	}

	st := store.New(cfg.Library.Path, track.NewCodec(), store.WithLogger(log))
	restored, err := st.Load(lib)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to load library: %w", err)
	}
	log.Info("library loaded", "name", lib.Name(), "tracks", restored, "path", st.Path())

	return &env{cfg: cfg, log: log, bus: bus, lbn: lbn, lib: lib, st: st}, nil
}

func (e *env) close() {
	_ = e.log.Close()
}

// scanRoots returns the roots to scan: explicit arguments win over the
// configured defaults.
func (e *env) scanRoots(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return e.cfg.Scan.Roots
}
