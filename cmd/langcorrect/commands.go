package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anprowh/LanguageCorrector/internal/classifier"
	"github.com/anprowh/LanguageCorrector/internal/config"
	"github.com/anprowh/LanguageCorrector/internal/corrector"
	"github.com/anprowh/LanguageCorrector/internal/generator"
	"github.com/anprowh/LanguageCorrector/internal/layout"
	"github.com/anprowh/LanguageCorrector/internal/normalize"
	"github.com/anprowh/LanguageCorrector/internal/stats"
	"github.com/anprowh/LanguageCorrector/internal/store"
	"github.com/anprowh/LanguageCorrector/internal/wordfreq"
	"github.com/anprowh/LanguageCorrector/internal/wordlist"
)

const (
	defaultHistoryLast = 20
	defaultWordlistSz  = 20000
)

var (
	historyLast   int
	historyTokens bool

	statsSince string

	trainOut      string
	trainEpochs   int
	trainRate     float64
	trainL2       float64
	trainSeed     int64
	trainSeedOnly bool

	wordlistSize  int
	wordlistForce bool

	evalCount   int
	evalSeed    int64
	evalMistype float64
	evalCaps    float64
	evalPunct   float64
)

func newExplainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain text...",
		Short: "Show how each token is detected, classified and rewritten",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runExplainCmd,
	}
}

func runExplainCmd(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer app.Close()

	tokens := app.corrector.Explain(strings.Join(args, " "))
	return printLines(cmd, stats.TokenLines(tokens))
}

func newClipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clip",
		Short: "Correct the clipboard contents in place",
		Args:  cobra.NoArgs,
		RunE:  runClipCmd,
	}
}

func runClipCmd(cmd *cobra.Command, _ []string) error {
	app, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	text, err := clipboard.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read clipboard: %w", err)
	}
	tokens := app.corrector.Explain(text)
	out := corrector.Join(tokens)
	if out == text {
		logErrln("Clipboard unchanged")
		return nil
	}
	if err := clipboard.WriteAll(out); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	app.record(cmd.Context(), text, tokens)
	app.logger.Info("clipboard corrected", zap.Int("tokens", len(tokens)))
	logErrf("Clipboard: %s\n", stats.HistoryLine(text, out))
	return nil
}

func newLayoutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "List active layouts in detection priority order",
		Args:  cobra.NoArgs,
		RunE:  runLayoutsCmd,
	}
}

func runLayoutsCmd(cmd *cobra.Command, _ []string) error {
	cfg, fileCfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := config.BuildRegistry(fileCfg.Layouts, cfg.Layouts)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(reg.IDs()))
	for i, l := range reg.Layouts() {
		letters, _ := reg.Letters(l.ID)
		name := string(l.ID)
		if l.ID == layout.ID(cfg.Canonical) {
			name += " *"
		}
		rows = append(rows, []string{fmt.Sprint(i + 1), name, l.Name, fmt.Sprint(letters.Size())})
	}
	lines := stats.FormatTable([]string{"#", "ID", "Name", "Letters"}, rows, map[int]bool{0: true, 3: true})
	lines = append(lines, "", "* canonical layout", "")
	for _, l := range reg.Layouts() {
		lines = append(lines, fmt.Sprintf("%s keys: %s", l.ID, l.Keys))
	}
	return printLines(cmd, lines)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent corrections",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "number of corrections to show")
	cmd.Flags().BoolVar(&historyTokens, "tokens", false, "show the stored per-token breakdown")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLast <= 0 {
		return fmt.Errorf("--last must be greater than 0")
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	corrections, err := st.ListCorrections(cmd.Context(), historyLast)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(corrections) == 0 {
		return printLines(cmd, []string{"No corrections recorded yet."})
	}
	lines := make([]string, 0, len(corrections))
	for i := len(corrections) - 1; i >= 0; i-- {
		c := corrections[i]
		lines = append(lines, fmt.Sprintf("%s  %s", c.CreatedAt.Local().Format("2006-01-02 15:04"), stats.HistoryLine(c.Input, c.Output)))
		if !historyTokens {
			continue
		}
		tokens, err := st.ListTokens(cmd.Context(), c.ID)
		if err != nil {
			return fmt.Errorf("failed to load tokens: %w", err)
		}
		for _, line := range stats.TokenRecordLines(tokens) {
			lines = append(lines, "    "+line)
		}
	}
	return printLines(cmd, lines)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-layout correction counts",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var since time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		since = parsed
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	report, err := stats.BuildReport(cmd.Context(), st, since)
	if err != nil {
		return err
	}
	return printLines(cmd, report.Lines())
}

func newTrainCmd() *cobra.Command {
	defaults := classifier.DefaultTrainOptions()
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the model classifier from word lists",
		Args:  cobra.NoArgs,
		RunE:  runTrainCmd,
	}
	cmd.Flags().StringVar(&trainOut, "out", "", "output path (default: --model)")
	cmd.Flags().IntVar(&trainEpochs, "epochs", defaults.Epochs, "training epochs")
	cmd.Flags().Float64Var(&trainRate, "lr", defaults.LearningRate, "learning rate")
	cmd.Flags().Float64Var(&trainL2, "l2", defaults.L2, "L2 regularisation")
	cmd.Flags().Int64Var(&trainSeed, "seed", defaults.Seed, "shuffle seed")
	cmd.Flags().BoolVar(&trainSeedOnly, "seed-corpus", false, "train on the embedded seed words only")
	return cmd
}

func runTrainCmd(cmd *cobra.Command, _ []string) error {
	if trainEpochs <= 0 {
		return fmt.Errorf("--epochs must be greater than 0")
	}
	if trainRate <= 0 {
		return fmt.Errorf("--lr must be greater than 0")
	}
	cfg, fileCfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := config.BuildRegistry(fileCfg.Layouts, cfg.Layouts)
	if err != nil {
		return err
	}
	a := &app{cfg: cfg, logger: zap.NewNop()}
	n, err := normalize.New(reg, layout.ID(cfg.Canonical), cfg.Window)
	if err != nil {
		return fmt.Errorf("failed to build normalizer: %w", err)
	}

	corpora, err := trainingCorpora(a, reg, !trainSeedOnly)
	if err != nil {
		return err
	}
	opts := classifier.TrainOptions{Epochs: trainEpochs, LearningRate: trainRate, L2: trainL2, Seed: trainSeed}
	logErrf("Training on %s...\n", describeCorpora(corpora))
	m, err := classifier.Train(n, corpora, opts)
	if err != nil {
		return fmt.Errorf("failed to train model: %w", err)
	}
	lin, err := classifier.NewLinear(m, reg, n)
	if err != nil {
		return fmt.Errorf("trained model is invalid: %w", err)
	}

	out := trainOut
	if out == "" {
		out = cfg.ModelPath
	}
	if err := m.Save(out); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	logErrf("Wrote %s (training accuracy %.1f%%)\n", out, 100*classifier.Accuracy(lin, n, corpora))
	return nil
}

// trainingCorpora prefers downloaded word lists and falls back to the
// embedded seed words per layout.
func trainingCorpora(a *app, reg *layout.Registry, useWordLists bool) ([]classifier.Corpus, error) {
	var lists map[layout.ID][]string
	if useWordLists {
		lists = a.loadWordLists(reg)
	}
	corpora := make([]classifier.Corpus, 0, len(reg.IDs()))
	for _, id := range reg.IDs() {
		words := lists[id]
		if len(words) == 0 {
			words = classifier.SeedCorpus(id)
		}
		if len(words) == 0 {
			return nil, fmt.Errorf("no words for layout %s\nDownload word lists with: langcorrect wordlist", id)
		}
		corpora = append(corpora, classifier.Corpus{Label: id, Words: words})
	}
	return corpora, nil
}

func describeCorpora(corpora []classifier.Corpus) string {
	parts := make([]string, len(corpora))
	for i, c := range corpora {
		parts[i] = fmt.Sprintf("%s (%d words)", c.Label, len(c.Words))
	}
	return strings.Join(parts, ", ")
}

func newWordlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordlist",
		Short: "Download word lists for the active layouts",
		Args:  cobra.NoArgs,
		RunE:  runWordlistCmd,
	}
	cmd.Flags().IntVar(&wordlistSize, "size", defaultWordlistSz, "number of words per layout")
	cmd.Flags().BoolVar(&wordlistForce, "force", false, "overwrite existing files")
	return cmd
}

func runWordlistCmd(cmd *cobra.Command, _ []string) error {
	if wordlistSize <= 0 {
		return fmt.Errorf("--size must be greater than 0")
	}
	cfg, fileCfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := config.BuildRegistry(fileCfg.Layouts, cfg.Layouts)
	if err != nil {
		return err
	}

	logErrln("Fetching wordfreq metadata...")
	wheel, err := wordfreq.DownloadLatestWheel(cmd.Context(), config.DefaultWordfreqCacheDir())
	if err != nil {
		return fmt.Errorf("failed to download wordfreq wheel: %w", err)
	}
	if wheel.Cached {
		logErrf("Using cached wheel %s\n", wheel.Filename)
	} else {
		logErrf("Downloaded wheel %s\n", wheel.Filename)
	}

	for _, id := range reg.IDs() {
		outPath := config.DefaultWordListPath(string(id))
		if !wordlistForce {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("word list already exists: %s (use --force to overwrite)", outPath)
			} else if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to stat word list: %w", err)
			}
		}
		lang := wordlist.LangCode(id)
		logErrf("Extracting %s word list (%s)...\n", id, lang)
		words, err := wordfreq.ExtractWordlist(wheel.Path, lang, wordlistSize, wordlist.FilterForLayout(reg, id))
		if err != nil {
			return fmt.Errorf("failed to extract %s word list: %w", id, err)
		}
		if err := wordlist.WriteWords(outPath, words); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		logErrf("Wrote %s (%d words)\n", outPath, len(words))
	}

	if err := wordfreq.WriteAttribution(wheel.Path, config.DefaultWordListDir()); err != nil {
		return fmt.Errorf("failed to write attribution: %w", err)
	}
	logErrln("Wrote ATTRIBUTION.txt and LICENSE.txt")
	return nil
}

func newEvalCmd() *cobra.Command {
	defaults := generator.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Measure correction accuracy on generated mistyped words",
		Args:  cobra.NoArgs,
		RunE:  runEvalCmd,
	}
	cmd.Flags().IntVar(&evalCount, "count", defaults.Count, "number of samples")
	cmd.Flags().Int64Var(&evalSeed, "seed", 1, "generator seed")
	cmd.Flags().Float64Var(&evalMistype, "mistype", defaults.MistypePct, "probability a word is typed in another layout (0-1)")
	cmd.Flags().Float64Var(&evalCaps, "caps", defaults.CapsPct, "probability of capitalized first letter (0-1)")
	cmd.Flags().Float64Var(&evalPunct, "punct", defaults.PunctPct, "punctuation probability per word (0-1)")
	return cmd
}

func runEvalCmd(cmd *cobra.Command, _ []string) error {
	opts := generator.DefaultOptions()
	opts.Count, opts.MistypePct, opts.CapsPct, opts.PunctPct = evalCount, evalMistype, evalCaps, evalPunct
	if err := validateEvalOptions(opts); err != nil {
		return err
	}
	app, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer app.Close()

	corpora, err := trainingCorpora(app, app.registry, true)
	if err != nil {
		return err
	}
	byID := make(map[layout.ID][]string, len(corpora))
	for _, c := range corpora {
		byID[c.Label] = c.Words
	}
	samples, err := generator.New(evalSeed).Generate(app.registry, byID, opts)
	if err != nil {
		return err
	}
	res := generator.Evaluate(samples, app.corrector.Correct)
	rows := [][]string{
		{"samples", fmt.Sprint(res.Total)},
		{"correct", fmt.Sprintf("%d (%.1f%%)", res.Correct, 100*res.Accuracy())},
		{"mistyped fixed", fmt.Sprintf("%d of %d", res.Fixed, res.Mistyped)},
		{"correct words broken", fmt.Sprint(res.Broken)},
	}
	return printLines(cmd, stats.FormatTable([]string{"Metric", "Value"}, rows, map[int]bool{1: true}))
}

func validateEvalOptions(opts generator.Options) error {
	if opts.Count <= 0 {
		return fmt.Errorf("--count must be > 0")
	}
	probs := []struct {
		name  string
		value float64
	}{{"--mistype", opts.MistypePct}, {"--caps", opts.CapsPct}, {"--punct", opts.PunctPct}}
	for _, p := range probs {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", p.name)
		}
	}
	return nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func printLines(cmd *cobra.Command, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
