// Package main provides the CLI entrypoint for langcorrect.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/anprowh/LanguageCorrector/internal/classifier"
	"github.com/anprowh/LanguageCorrector/internal/config"
	"github.com/anprowh/LanguageCorrector/internal/corrector"
	"github.com/anprowh/LanguageCorrector/internal/layout"
	"github.com/anprowh/LanguageCorrector/internal/model"
	"github.com/anprowh/LanguageCorrector/internal/normalize"
	"github.com/anprowh/LanguageCorrector/internal/stats"
	"github.com/anprowh/LanguageCorrector/internal/store"
	"github.com/anprowh/LanguageCorrector/internal/tui"
	"github.com/anprowh/LanguageCorrector/internal/wordlist"
)

const (
	defaultCanonical  = string(layout.RuRU)
	defaultClassifier = string(classifier.KindHeuristic)
	defaultHistory    = true
)

var defaultLayouts = []string{string(layout.EnUS), string(layout.RuRU)}

var (
	flagLayouts    []string
	flagCanonical  string
	flagWindow     int
	flagClassifier string
	flagModel      string
	flagHistory    bool
	flagVerbose    bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "langcorrect [text...]",
		Short:         "Fix text typed in the wrong keyboard layout",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runCorrectCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringSliceVar(&flagLayouts, "layouts", defaultLayouts, "active layouts in detection priority order")
	flags.StringVar(&flagCanonical, "canonical", defaultCanonical, "layout whose letters are used for classification")
	flags.IntVar(&flagWindow, "window", normalize.DefaultWindow, "letters per word seen by the classifier")
	flags.StringVar(&flagClassifier, "classifier", defaultClassifier, "classifier: heuristic or model")
	flags.StringVar(&flagModel, "model", config.DefaultModelPath(), "model artifact for the model classifier")
	flags.BoolVar(&flagHistory, "history", defaultHistory, "record corrections in the history database")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "log diagnostics to stderr")

	rootCmd.AddCommand(newExplainCmd())
	rootCmd.AddCommand(newClipCmd())
	rootCmd.AddCommand(newLayoutsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newTrainCmd())
	rootCmd.AddCommand(newWordlistCmd())
	rootCmd.AddCommand(newEvalCmd())

	return rootCmd
}

func runCorrectCmd(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	switch {
	case len(args) > 0:
		text := strings.Join(args, " ")
		tokens := app.corrector.Explain(text)
		app.record(cmd.Context(), text, tokens)
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), corrector.Join(tokens)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	case !term.IsTerminal(int(os.Stdin.Fd())):
		return correctLines(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), app)
	default:
		m := tui.NewModel(app.corrector, app.recorder, app.logger)
		program := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run TUI: %w", err)
		}
		return nil
	}
}

// correctLines corrects r line by line, writing one output line per input line.
func correctLines(ctx context.Context, r io.Reader, w io.Writer, app *app) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	out := bufio.NewWriter(w)
	for scanner.Scan() {
		line := scanner.Text()
		tokens := app.corrector.Explain(line)
		app.record(ctx, line, tokens)
		if _, err := fmt.Fprintln(out, corrector.Join(tokens)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if err := out.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// app is the assembled correction pipeline shared by subcommands.
type app struct {
	cfg       model.Config
	registry  *layout.Registry
	norm      *normalize.Normalizer
	corrector *corrector.Corrector
	recorder  tui.Recorder
	logger    *zap.Logger
	closers   []func() error
}

func openApp(cmd *cobra.Command, withHistory bool) (*app, error) {
	cfg, fileCfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(flagVerbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func() error {
		// Sync on a console logger reports EINVAL on some terminals.
		_ = logger.Sync()
		return nil
	})

	if err := a.build(cmd.Context(), fileCfg); err != nil {
		a.Close()
		return nil, err
	}
	if withHistory && cfg.History {
		st, err := store.Open(config.DefaultDBPath())
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		a.closers = append(a.closers, st.Close)
		a.recorder = stats.NewRecorder(st, cfg.Classifier)
	}
	return a, nil
}

func (a *app) build(ctx context.Context, fileCfg config.FileConfig) error {
	reg, err := config.BuildRegistry(fileCfg.Layouts, a.cfg.Layouts)
	if err != nil {
		return err
	}
	n, err := normalize.New(reg, layout.ID(a.cfg.Canonical), a.cfg.Window)
	if err != nil {
		return fmt.Errorf("failed to build normalizer: %w", err)
	}
	kind, err := classifier.ParseKind(a.cfg.Classifier)
	if err != nil {
		return err
	}

	var cls classifier.Classifier
	switch kind {
	case classifier.KindModel:
		load := func(path string) (classifier.Scorer, error) {
			m, err := classifier.LoadModel(path)
			if err != nil {
				return nil, err
			}
			lin, err := classifier.NewLinear(m, reg, n)
			if err != nil {
				return nil, err
			}
			return lin, nil
		}
		initial, err := load(a.cfg.ModelPath)
		if err != nil {
			return fmt.Errorf("%w\nTrain one with: langcorrect train", err)
		}
		reloadable := classifier.NewReloadable(initial)
		watcher, err := classifier.WatchModel(ctx, a.cfg.ModelPath, reloadable, load, a.logger)
		if err != nil {
			a.logger.Warn("model hot reload disabled", zap.Error(err))
		} else {
			a.closers = append(a.closers, watcher.Close)
		}
		cls = reloadable
	default:
		s, err := classifier.New(kind, reg, n, classifier.Options{Corpora: a.loadWordLists(reg)})
		if err != nil {
			return fmt.Errorf("failed to build classifier: %w\nDownload word lists with: langcorrect wordlist", err)
		}
		cls = s
	}

	c, err := corrector.New(reg, n, cls)
	if err != nil {
		return fmt.Errorf("failed to build corrector: %w", err)
	}
	a.registry, a.norm, a.corrector = reg, n, c
	a.logger.Debug("pipeline ready",
		zap.Strings("layouts", a.cfg.Layouts),
		zap.String("canonical", a.cfg.Canonical),
		zap.Int("window", a.cfg.Window),
		zap.String("classifier", string(kind)))
	return nil
}

// loadWordLists reads downloaded word lists for the active layouts. Missing
// lists are skipped.
func (a *app) loadWordLists(reg *layout.Registry) map[layout.ID][]string {
	out := make(map[layout.ID][]string)
	for _, id := range reg.IDs() {
		path := config.DefaultWordListPath(string(id))
		words, err := wordlist.LoadWords(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				a.logger.Warn("skipping word list", zap.String("path", path), zap.Error(err))
			}
			continue
		}
		keep := wordlist.FilterForLayout(reg, id)
		filtered := words[:0]
		for _, w := range words {
			if keep(w) {
				filtered = append(filtered, w)
			}
		}
		out[id] = filtered
		a.logger.Debug("loaded word list", zap.String("layout", string(id)), zap.Int("words", len(filtered)))
	}
	return out
}

func (a *app) record(ctx context.Context, input string, tokens []corrector.Token) {
	if a.recorder == nil {
		return
	}
	if err := a.recorder.Record(ctx, input, tokens); err != nil {
		a.logger.Warn("failed to record correction", zap.Error(err))
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logErrf("failed to close: %v\n", err)
		}
	}
	a.closers = nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// resolveConfig layers defaults, the config file, the environment and flags.
func resolveConfig(cmd *cobra.Command) (model.Config, config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	envCfg, err := config.LoadEnv(config.DefaultEnvPath())
	if err != nil {
		return model.Config{}, config.FileConfig{}, err
	}
	settings := fileCfg.Correct
	if err := envCfg.Apply(&settings); err != nil {
		return model.Config{}, config.FileConfig{}, err
	}

	applyStringsConfig(cmd, "layouts", &flagLayouts, settings.Layouts)
	applyStringConfig(cmd, "canonical", &flagCanonical, settings.Canonical)
	applyIntConfig(cmd, "window", &flagWindow, settings.Window)
	applyStringConfig(cmd, "classifier", &flagClassifier, settings.Classifier)
	applyStringConfig(cmd, "model", &flagModel, settings.Model)
	applyBoolConfig(cmd, "history", &flagHistory, settings.History)

	cfg := model.Config{
		Layouts:    flagLayouts,
		Canonical:  flagCanonical,
		Window:     flagWindow,
		Classifier: flagClassifier,
		ModelPath:  flagModel,
		History:    flagHistory,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, config.FileConfig{}, err
	}
	return cfg, fileCfg, nil
}

func applyStringsConfig(cmd *cobra.Command, name string, target *[]string, value []string) {
	if len(value) == 0 {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateConfig(cfg model.Config) error {
	if cfg.Window < 1 {
		return fmt.Errorf("--window must be >= 1")
	}
	if len(cfg.Layouts) < 2 {
		return fmt.Errorf("--layouts needs at least two layouts")
	}
	canonicalActive := false
	for _, id := range cfg.Layouts {
		if id == cfg.Canonical {
			canonicalActive = true
		}
	}
	if !canonicalActive {
		return fmt.Errorf("--canonical %q is not an active layout", cfg.Canonical)
	}
	if _, err := classifier.ParseKind(cfg.Classifier); err != nil {
		return err
	}
	if cfg.Classifier == string(classifier.KindModel) && strings.TrimSpace(cfg.ModelPath) == "" {
		return fmt.Errorf("--model must not be empty")
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# langcorrect configuration
# Uncomment a value to enable it. LANGCORRECT_* environment variables override
# these values; CLI flags override both.

[correct]
# layouts = [%s]   # Active layouts in detection priority order
# canonical = %q          # Layout whose letters the classifier sees
# window = %d                   # Letters per word seen by the classifier
# classifier = %q     # heuristic or model
# model = %q
# history = %t               # Record corrections for history and stats

# Extra layouts. keys lists the character of every physical key in the same
# order as the built-in en_US sequence:
#   %s
# [[layout]]
# id = "xx_XX"
# name = "My layout"
# keys = "..."
# letters = ""   # Optional; defaults to the lowercase letters of keys
`,
		quoteJoin(defaultLayouts),
		defaultCanonical,
		normalize.DefaultWindow,
		defaultClassifier,
		config.DefaultModelPath(),
		defaultHistory,
		builtinKeys(layout.EnUS),
	)
}

func quoteJoin(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}

func builtinKeys(id layout.ID) string {
	l, err := layout.Lookup(id)
	if err != nil {
		return ""
	}
	return l.Keys
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
