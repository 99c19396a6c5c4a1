// Package main provides the CLI entrypoint for studyquest.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/studyquest/internal/ai"
	"github.com/verte-zerg/studyquest/internal/config"
	"github.com/verte-zerg/studyquest/internal/content"
	"github.com/verte-zerg/studyquest/internal/model"
	"github.com/verte-zerg/studyquest/internal/session"
	"github.com/verte-zerg/studyquest/internal/stats"
	"github.com/verte-zerg/studyquest/internal/store"
	"github.com/verte-zerg/studyquest/internal/tui"
)

const (
	defaultFeedbackMs     = 1500
	defaultGameFeedbackMs = 2000
	defaultQuestions      = 10
	defaultSpeed          = 3.0
	defaultInteraction    = 50.0
	defaultSpawnInterval  = 450.0
	defaultWorldWidth     = 2500.0
	defaultTickMs         = 16
	defaultTimeoutMs      = 60000
	defaultProvider       = "openai"
)

var (
	sessionMode         string
	sessionTopic        string
	sessionQuiz         string
	sessionQuestions    int
	sessionFeedbackMs   int
	sessionGameFeedback int

	gameSpeed       float64
	gameInteraction float64
	gameSpawn       float64
	gameWidth       float64
	gameTickMs      int

	aiProvider   string
	aiModel      string
	aiBaseURL    string
	aiAPIVersion string
	aiMaxTokens  int
	aiTimeoutMs  int
	aiOffline    bool

	contentQuizDir string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "studyquest",
		Short:         "Terminal study companion with quizzes, AI questions and an exploration game",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runSessionCmd,
	}

	flags := rootCmd.Flags()
	flags.StringVar(&sessionMode, "mode", "", "start directly in a mode: static, adaptive or exploration")
	flags.StringVar(&sessionTopic, "topic", "", "topic for adaptive and exploration modes")
	flags.StringVar(&sessionQuiz, "quiz", "", "static quiz id to open (implies --mode static)")
	flags.IntVar(&sessionQuestions, "questions", defaultQuestions, "questions per adaptive session (max 20)")
	flags.IntVar(&sessionFeedbackMs, "feedback-ms", defaultFeedbackMs, "feedback display time in quiz modes")
	flags.IntVar(&sessionGameFeedback, "game-feedback-ms", defaultGameFeedbackMs, "feedback display time in exploration mode")
	flags.Float64Var(&gameSpeed, "speed", defaultSpeed, "player speed per movement tick")
	flags.Float64Var(&gameInteraction, "interaction-distance", defaultInteraction, "distance at which characters ask a question")
	flags.Float64Var(&gameSpawn, "spawn-interval", defaultSpawnInterval, "distance between characters")
	flags.Float64Var(&gameWidth, "world-width", defaultWorldWidth, "length of the exploration world")
	flags.IntVar(&gameTickMs, "tick-ms", defaultTickMs, "movement tick interval")
	flags.StringVar(&aiProvider, "provider", defaultProvider, "question provider: openai or azure")
	flags.StringVar(&aiModel, "model", "", "model or azure deployment name")
	flags.StringVar(&aiBaseURL, "base-url", "", "OpenAI-compatible API base URL")
	flags.StringVar(&aiAPIVersion, "api-version", "", "azure API version")
	flags.IntVar(&aiMaxTokens, "max-tokens", 0, "maximum tokens per reply (0 uses the provider default)")
	flags.IntVar(&aiTimeoutMs, "timeout-ms", defaultTimeoutMs, "timeout for one question or feedback request")
	flags.BoolVar(&aiOffline, "offline", false, "serve AI modes from the built-in catalog")
	flags.StringVar(&contentQuizDir, "quiz-dir", config.DefaultQuizDir(), "directory with extra quiz TOML files")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newQuizzesCmd())

	return rootCmd
}

func runSessionCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFileConfig(cmd, fileCfg)

	cfg := model.Config{
		FeedbackDuration:     time.Duration(sessionFeedbackMs) * time.Millisecond,
		GameFeedbackDuration: time.Duration(sessionGameFeedback) * time.Millisecond,
		Questions:            sessionQuestions,
		TickInterval:         time.Duration(gameTickMs) * time.Millisecond,
		RequestTimeout:       time.Duration(aiTimeoutMs) * time.Millisecond,
		World: model.WorldConfig{
			Speed:               gameSpeed,
			InteractionDistance: gameInteraction,
			SpawnInterval:       gameSpawn,
			Width:               gameWidth,
		},
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	launch, err := resolveLaunch(sessionMode, sessionTopic, sessionQuiz)
	if err != nil {
		return err
	}

	envCfg, err := config.LoadAIEnv()
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(envCfg.DebugLog)
	if err != nil {
		return err
	}
	defer closeLog()

	catalog, err := content.Load(contentQuizDir)
	if err != nil {
		return fmt.Errorf("failed to load quizzes: %w", err)
	}
	if sessionQuiz != "" {
		if _, ok := catalog.Find(sessionQuiz); !ok {
			return fmt.Errorf("unknown quiz %q (run: studyquest quizzes)", sessionQuiz)
		}
	}

	completer, err := newCompleter(envCfg, catalog)
	if err != nil {
		return err
	}

	st, err := store.Open()
	if err != nil {
		return fmt.Errorf("failed to open answer ledger: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close answer ledger: %v\n", cerr)
		}
	}()

	m := tui.NewModel(session.Options{
		Config:  cfg,
		Catalog: catalog,
		Client:  ai.NewClient(completer, ai.NewQuestionCache()),
	}, st, launch)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newCompleter(envCfg config.AIEnv, catalog *content.Catalog) (ai.Completer, error) {
	aiCfg := model.AIConfig{
		Provider:   aiProvider,
		Model:      aiModel,
		BaseURL:    aiBaseURL,
		APIKey:     envCfg.Key(),
		Endpoint:   envCfg.Endpoint,
		APIVersion: aiAPIVersion,
		MaxTokens:  aiMaxTokens,
		Timeout:    time.Duration(aiTimeoutMs) * time.Millisecond,
		Offline:    aiOffline,
	}
	if aiCfg.BaseURL == "" {
		aiCfg.BaseURL = envCfg.BaseURL
	}
	if strings.EqualFold(aiCfg.Provider, "azure") && aiCfg.Model == "" {
		aiCfg.Model = envCfg.Deployment
	}
	if !aiCfg.Enabled() {
		if !aiOffline {
			logErrln("no AI API key configured; AI modes use the offline question bank")
		}
		return ai.NewOfflineCompleter(catalog), nil
	}
	completer, err := ai.NewOpenAICompleter(aiCfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to configure ai provider: %w", err)
	}
	return completer, nil
}

// setupLogging keeps the standard logger off the terminal while the TUI runs.
func setupLogging(path string) (func(), error) {
	path = strings.TrimSpace(path)
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, "studyquest")
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log: %w", err)
	}
	return func() {
		if cerr := f.Close(); cerr != nil {
			logErrf("failed to close debug log: %v\n", cerr)
		}
	}, nil
}

func resolveLaunch(mode, topic, quizID string) (tui.Launch, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	topic = strings.TrimSpace(topic)
	quizID = strings.TrimSpace(quizID)
	if quizID != "" {
		if mode != "" && mode != string(model.ModeStatic) {
			return tui.Launch{}, fmt.Errorf("--quiz requires --mode static")
		}
		return tui.Launch{Mode: model.ModeStatic, QuizID: quizID}, nil
	}
	switch model.Mode(mode) {
	case "":
		return tui.Launch{Topic: topic}, nil
	case model.ModeStatic:
		return tui.Launch{}, nil
	case model.ModeAdaptive, model.ModeExploration:
		return tui.Launch{Mode: model.Mode(mode), Topic: topic}, nil
	default:
		return tui.Launch{}, fmt.Errorf("--mode must be one of static, adaptive, exploration")
	}
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
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newQuizzesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quizzes",
		Short: "List available static quizzes",
		Args:  cobra.NoArgs,
		RunE:  runQuizzesCmd,
	}
	cmd.Flags().StringVar(&contentQuizDir, "quiz-dir", config.DefaultQuizDir(), "directory with extra quiz TOML files")
	return cmd
}

func runQuizzesCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "quiz-dir", &contentQuizDir, fileCfg.Content.QuizDir)
	catalog, err := content.Load(contentQuizDir)
	if err != nil {
		return fmt.Errorf("failed to load quizzes: %w", err)
	}
	return stats.RenderCatalog(cmd.OutOrStdout(), catalog.Quizzes(), terminalWidth())
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 100
	}
	return width
}

func applyFileConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	applyIntConfig(cmd, "feedback-ms", &sessionFeedbackMs, fileCfg.Session.FeedbackMs)
	applyIntConfig(cmd, "game-feedback-ms", &sessionGameFeedback, fileCfg.Session.GameFeedbackMs)
	applyIntConfig(cmd, "questions", &sessionQuestions, fileCfg.Session.Questions)
	applyFloatConfig(cmd, "speed", &gameSpeed, fileCfg.Game.Speed)
	applyFloatConfig(cmd, "interaction-distance", &gameInteraction, fileCfg.Game.InteractionDistance)
	applyFloatConfig(cmd, "spawn-interval", &gameSpawn, fileCfg.Game.SpawnInterval)
	applyFloatConfig(cmd, "world-width", &gameWidth, fileCfg.Game.WorldWidth)
	applyIntConfig(cmd, "tick-ms", &gameTickMs, fileCfg.Game.TickMs)
	applyStringConfig(cmd, "provider", &aiProvider, fileCfg.AI.Provider)
	applyStringConfig(cmd, "model", &aiModel, fileCfg.AI.Model)
	applyStringConfig(cmd, "base-url", &aiBaseURL, fileCfg.AI.BaseURL)
	applyStringConfig(cmd, "api-version", &aiAPIVersion, fileCfg.AI.APIVersion)
	applyIntConfig(cmd, "max-tokens", &aiMaxTokens, fileCfg.AI.MaxTokens)
	applyIntConfig(cmd, "timeout-ms", &aiTimeoutMs, fileCfg.AI.TimeoutMs)
	applyBoolConfig(cmd, "offline", &aiOffline, fileCfg.AI.Offline)
	applyStringConfig(cmd, "quiz-dir", &contentQuizDir, fileCfg.Content.QuizDir)
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

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
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

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# studyquest configuration
# Uncomment a value to enable it. CLI flags override config values.
# API keys are read from STUDYQUEST_AI_API_KEY or AZURE_OPENAI_API_KEY.

[session]
# feedback-ms = %d          # Feedback display time in quiz modes
# game-feedback-ms = %d     # Feedback display time in exploration mode
# questions = %d              # Questions per adaptive session (max 20)

[game]
# speed = %.1f                # Player speed per movement tick
# interaction-distance = %.0f  # Distance at which characters ask a question
# spawn-interval = %.0f       # Distance between characters
# world-width = %.0f         # Length of the exploration world
# tick-ms = %d                # Movement tick interval

[ai]
# provider = %q         # openai or azure
# model = "gpt-4o"            # Model or azure deployment name
# max-tokens = 2000
# timeout-ms = %d
# offline = false             # Serve AI modes from the built-in catalog

[content]
# quiz-dir = %q
`,
		defaultFeedbackMs,
		defaultGameFeedbackMs,
		defaultQuestions,
		defaultSpeed,
		defaultInteraction,
		defaultSpawnInterval,
		defaultWorldWidth,
		defaultTickMs,
		defaultProvider,
		defaultTimeoutMs,
		config.DefaultQuizDir(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.FeedbackDuration <= 0 {
		return fmt.Errorf("--feedback-ms must be > 0")
	}
	if cfg.GameFeedbackDuration <= 0 {
		return fmt.Errorf("--game-feedback-ms must be > 0")
	}
	if cfg.Questions <= 0 || cfg.Questions > session.MaxQuestions {
		return fmt.Errorf("--questions must be between 1 and %d", session.MaxQuestions)
	}
	if cfg.TickInterval <= 0 {
		return fmt.Errorf("--tick-ms must be > 0")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("--timeout-ms must be > 0")
	}
	w := cfg.World
	if w.Speed <= 0 {
		return fmt.Errorf("--speed must be > 0")
	}
	if w.InteractionDistance <= 0 {
		return fmt.Errorf("--interaction-distance must be > 0")
	}
	if w.SpawnInterval <= 0 {
		return fmt.Errorf("--spawn-interval must be > 0")
	}
	if w.Width <= 0 {
		return fmt.Errorf("--world-width must be > 0")
	}
	return nil
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
