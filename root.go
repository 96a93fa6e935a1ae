package main

import (
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sadopc/liftr/internal/config"
	"github.com/sadopc/liftr/internal/logging"
	"github.com/sadopc/liftr/internal/plan"
	"github.com/sadopc/liftr/internal/records"
	"github.com/sadopc/liftr/internal/session"
	"github.com/sadopc/liftr/internal/store"
	"github.com/sadopc/liftr/internal/tui"
)

var (
	version    = "dev"
	configPath string
	planPath   string
	exportDir  string
)

var rootCmd = &cobra.Command{
	Use:   "liftr",
	Short: "liftr - track a strength workout from the terminal",
	Long: `liftr runs an active workout session: sets, rest timer, pause and
personal records. The session is saved as you go and picked up again on the
next start until it is finished or discarded.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runSession,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Path to configuration file")
	rootCmd.Flags().StringVarP(&planPath, "plan", "p", "", "Workout plan (YAML) for a new session")
	rootCmd.Flags().StringVar(&exportDir, "export-dir", "", "Directory for exports made from the TUI (default: home)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what every command needs: configuration, a logger and the database.
type env struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   *store.Store
	closers []io.Closer
}

func openEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, logCloser, err := logging.Setup(cfg.Logging)
	if err != nil {
		return nil, err
	}

	st, err := store.New(cfg.Database.Path)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	log.Debug().Str("path", cfg.Database.Path).Msg("Database opened")

	return &env{cfg: cfg, log: log, store: st, closers: []io.Closer{st, logCloser}}, nil
}

func (e *env) Close() {
	for _, c := range e.closers {
		c.Close()
	}
}

func runSession(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	var p *plan.Plan
	if planPath != "" {
		if p, err = plan.Load(planPath); err != nil {
			return err
		}
	}

	settings, err := e.store.LoadAppSettings()
	if err != nil {
		e.log.Warn().Err(err).Msg("Failed to load settings, using defaults")
		settings = session.DefaultSettings()
	}

	saved, err := e.store.HasSession()
	if err != nil {
		return err
	}
	if saved && p != nil {
		e.log.Info().Str("plan", planPath).Msg("Saved session found, plan ignored")
		fmt.Fprintln(os.Stderr, "Resuming saved session; finish or discard it to start a new plan.")
	}

	initial := session.Load(e.store, func() session.Session {
		return freshSession(p, settings, time.Now())
	}, time.Now(), e.log)

	ctrl := session.NewController(initial, session.Options{
		Store:        e.store,
		Settings:     e.store,
		Logger:       e.log,
		Debounce:     e.cfg.Engine.PersistDebounce,
		SyncInterval: e.cfg.Engine.RestSyncInterval,
	})
	defer ctrl.Close()

	if !saved {
		primeFresh(ctrl, e.store, e.log)
	}

	detector, err := records.New(e.store, e.cfg.History.CacheSize, e.log)
	if err != nil {
		return err
	}
	detector.Prime(ctrl.State())

	app := tui.NewApp(tui.Options{
		Controller:   ctrl,
		Store:        e.store,
		Records:      detector,
		Logger:       e.log,
		Bell:         func() { fmt.Fprint(os.Stderr, "\a") },
		HistoryLimit: e.cfg.History.Limit,
		ExportDir:    exportDir,
	})
	defer app.Close()

	final, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}

	if m, ok := final.(tui.App); ok {
		printResult(m.Result())
	}
	return nil
}

func freshSession(p *plan.Plan, settings session.Settings, now time.Time) session.Session {
	if p == nil {
		return session.New("Workout", nil, 0, settings, now)
	}
	return session.New(p.Name, p.SessionExercises(), 0, settings, now)
}

// primeFresh loads what was lifted last time for the planned exercises and
// asks about a warm-up.
func primeFresh(ctrl *session.Controller, st *store.Store, log zerolog.Logger) {
	s := ctrl.State()
	names := make([]string, 0, len(s.Exercises))
	for _, ex := range s.Exercises {
		names = append(names, ex.Name)
	}
	if len(names) > 0 {
		prev, err := st.PreviousSets(names)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load previous sets")
		} else {
			ctrl.Dispatch(session.SetPreviousExerciseData{Data: prev})
		}
	}
	ctrl.Dispatch(session.OpenOverlay{Overlay: session.OverlayWarmupPrompt})
}

func printResult(r *tui.Result) {
	switch {
	case r == nil:
		fmt.Println("Session saved. Run liftr again to continue.")
	case r.Discarded:
		fmt.Println("Session discarded.")
	case r.Workout != nil:
		w := r.Workout
		fmt.Printf("Finished %s: %d/%d sets, %.1f kg in %s\n",
			w.Name, w.CompletedSets, w.TotalSets, w.TotalVolume, time.Duration(w.Duration)*time.Second)
	}
}
