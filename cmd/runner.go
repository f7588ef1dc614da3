package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytmigrate/internal/repositories"
	"github.com/desertthunder/ytmigrate/internal/services"
	"github.com/desertthunder/ytmigrate/internal/shared"
	"github.com/desertthunder/ytmigrate/internal/tasks"
	"github.com/desertthunder/ytmigrate/internal/ui"
	"github.com/urfave/cli/v3"
)

// healthChecker is implemented by destinations that expose a health endpoint.
type healthChecker interface {
	Health(ctx context.Context) (map[string]any, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Dependencies left nil are built from the configuration on first use, so tests can inject fakes.
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    tasks.SourceCatalog
	youtube    tasks.Destination
	logger     *log.Logger
	output     io.Writer
	input      *bufio.Reader
	palette    *ui.Palette
	sleep      func(time.Duration)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    tasks.SourceCatalog
	YouTube    tasks.Destination
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	Sleep      func(time.Duration)
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		spotify:    opts.Spotify,
		youtube:    opts.YouTube,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      bufio.NewReader(opts.Input),
		palette:    ui.DefaultPalette,
		sleep:      opts.Sleep,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		migrateCommand, ytmusicCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig resolves the configuration once per process.
//
// The --config flag wins over the path given to [NewRunner]. A missing file falls back to defaults, a malformed one
// is an error.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	if r.config != nil {
		return r.config, nil
	}

	path := r.configPath
	if cmd != nil && cmd.String("config") != "" {
		path = cmd.String("config")
	}

	if path == "" {
		r.config = shared.DefaultConfig()
		return r.config, nil
	}

	if _, err := os.Stat(path); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", path)
		r.config = shared.DefaultConfig()
		return r.config, nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	r.configPath = path
	r.config = config
	return r.config, nil
}

// prepare loads configuration and builds any service that was not injected.
//
// Service construction failures are logged rather than returned; commands that need the service report it as
// unavailable.
func (r *Runner) prepare(ctx context.Context, cmd *cli.Command) (*shared.Config, error) {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if cmd != nil && cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if r.spotify == nil {
		if svc, err := newSpotify(ctx, config.Credentials.Spotify); err != nil {
			r.logger.Debug("spotify service unavailable", "error", err)
		} else {
			r.spotify = svc
		}
	}

	if r.youtube == nil {
		svc := services.NewYouTubeService(services.YouTubeOpts{
			BaseURL:    config.Credentials.YouTube.ProxyURL,
			Timeout:    config.Credentials.YouTube.Timeout(),
			SearchRate: config.Credentials.YouTube.SearchRate,
			Logger:     shared.WithLogger(r.logger, "service", "youtube"),
		})
		if path := config.Credentials.YouTube.HeadersPath; path != "" {
			if err := authenticate(ctx, svc, map[string]string{"auth_file": path}); err != nil {
				r.logger.Warn("failed to configure youtube auth file", "error", err)
			}
		}
		r.youtube = svc
	}

	return config, nil
}

func newSpotify(ctx context.Context, creds shared.SpotifyConfig) (*services.SpotifyService, error) {
	svc, err := services.NewSpotifyService(creds.Map())
	if err != nil {
		return nil, err
	}
	if err := authenticate(ctx, svc, creds.Map()); err != nil {
		return nil, err
	}
	return svc, nil
}

// authenticate hands credentials to svc, naming the service in any error.
func authenticate(ctx context.Context, svc services.Service, credentials map[string]string) error {
	if err := svc.Authenticate(ctx, credentials); err != nil {
		return fmt.Errorf("%s: %w", svc.Name(), err)
	}
	return nil
}

// openRuns opens the history database, applying pending migrations. The returned func closes it.
func (r *Runner) openRuns(config *shared.Config) (*repositories.RunRepository, func(), error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repositories.NewRunRepository(db), func() { db.Close() }, nil
}

// prompt asks for a value on the runner's input, returning fallback for a blank answer or closed input.
func (r *Runner) prompt(label, fallback string) (string, error) {
	if fallback != "" {
		r.writePlain("%s [%s]: ", label, fallback)
	} else {
		r.writePlain("%s: ", label)
	}

	line, err := r.input.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	if answer := strings.TrimSpace(line); answer != "" {
		return answer, nil
	}
	return fallback, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
