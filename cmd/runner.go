package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/repositories"
	"github.com/desertthunder/coursetube/internal/services"
	"github.com/desertthunder/coursetube/internal/shared"
	"github.com/desertthunder/coursetube/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database is opened on first use so commands that only talk to the Data API never touch it.
type Runner struct {
	config     *shared.Config
	configPath string
	youtube    services.Service
	api        *services.APIService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db       *sql.DB
	users    *repositories.UserRepository
	courses  *repositories.CourseRepository
	items    *repositories.CourseItemRepository
	progress *repositories.ProgressRepository
	notes    *repositories.NoteRepository
	jobs     *repositories.ImportJobRepository
	engine   tasks.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	YouTube    services.Service
	API        *services.APIService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB // Optional; opened from Config.Database when nil
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		youtube:    opts.YouTube,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	if opts.DB != nil {
		r.attach(opts.DB)
	}
	return r
}

// SetLogger replaces the runner's logger, e.g. while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	if r.db != nil {
		r.attach(r.db)
	}
}

func (r *Runner) attach(db *sql.DB) {
	r.db = db
	r.users = repositories.NewUserRepository(db)
	r.courses = repositories.NewCourseRepository(db)
	r.items = repositories.NewCourseItemRepository(db)
	r.progress = repositories.NewProgressRepository(db)
	r.notes = repositories.NewNoteRepository(db)
	r.jobs = repositories.NewImportJobRepository(db)
	r.engine = tasks.NewCourseEngine(tasks.EngineOpts{
		Service:     r.youtube,
		Courses:     r.courses,
		Items:       r.items,
		Jobs:        r.jobs,
		Concurrency: r.config.Import.Concurrency,
		Logger:      r.logger,
	})
}

// openStore opens and migrates the configured database unless one is attached already.
func (r *Runner) openStore() error {
	if r.db != nil {
		return nil
	}

	r.logger.Debug("opening database", "path", r.config.Database.Path)
	db, err := shared.OpenAndMigrate(r.config.Database)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	r.attach(db)
	return nil
}

// Close releases the database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// resolveUser accepts a user ID or an email address.
func (r *Runner) resolveUser(ref string) (*models.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: --user is required (or set COURSETUBE_USER)", shared.ErrMissingArgument)
	}
	if err := r.openStore(); err != nil {
		return nil, err
	}
	if strings.Contains(ref, "@") {
		return r.users.GetByEmail(ref)
	}
	return r.users.Get(ref)
}

// saveTokens stores tok in the YouTube credentials and persists the config when a path is known.
func (r *Runner) saveTokens(tok *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrMissingConfig)
	}
	if err := r.config.Credentials.YouTube.Update(tok); err != nil {
		return fmt.Errorf("failed to update youtube configuration: %w", err)
	}
	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, usersCommand, coursesCommand, itemsCommand, importCommand, progressCommand,
		notesCommand, youtubeCommand, apiCommand, authCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// followProgress prints updates until the returned stop function is called.
// stop closes the channel and waits for the printer to drain it.
func (r *Runner) followProgress(print func(tasks.ProgressUpdate)) (chan tasks.ProgressUpdate, func()) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			print(update)
		}
	}()
	return progressCh, func() {
		close(progressCh)
		<-done
	}
}
