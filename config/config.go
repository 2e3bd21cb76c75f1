package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"clipforge/internal/appdirs"

	"github.com/BurntSushi/toml"
)

type App struct {
	Proxy       string   `toml:"proxy"`
	ParsedProxy *url.URL `toml:"-"`
}

type Server struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LlmConfig is an OpenAI-compatible chat endpoint used by the orchestrator.
type LlmConfig struct {
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// ScoringConfig selects and tunes the vision scoring provider.
type ScoringConfig struct {
	Provider       string  `toml:"provider"` // "openai" or "nvidia"
	BaseUrl        string  `toml:"base_url"`
	ApiKey         string  `toml:"api_key"`
	Model          string  `toml:"model"`
	Temperature    float32 `toml:"temperature"`
	MaxTokens      int     `toml:"max_tokens"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

type HighlightConfig struct {
	MinSceneDuration float64 `toml:"min_scene_duration"`
	MaxSceneDuration float64 `toml:"max_scene_duration"`
	MaxScenes        int     `toml:"max_scenes"`
	TopClipsCount    int     `toml:"top_clips_count"`
	ScoreConcurrency int     `toml:"score_concurrency"`
	ReencodeClips    bool    `toml:"reencode_clips"`
}

type OrchestratorConfig struct {
	MaxIterations  int  `toml:"max_iterations"`
	HistoryWindow  int  `toml:"history_window"`
	StrictOrdering bool `toml:"strict_ordering"`
}

type OssConfig struct {
	Enabled         bool   `toml:"enabled"`
	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyId     string `toml:"access_key_id"`
	AccessKeySecret string `toml:"access_key_secret"`
	Bucket          string `toml:"bucket"`
}

type QueueConfig struct {
	Enabled       bool   `toml:"enabled"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Concurrency   int    `toml:"concurrency"`
}

type Config struct {
	App          App                `toml:"app"`
	Server       Server             `toml:"server"`
	Llm          LlmConfig          `toml:"llm"`
	Scoring      ScoringConfig      `toml:"scoring"`
	Highlight    HighlightConfig    `toml:"highlight"`
	Orchestrator OrchestratorConfig `toml:"orchestrator"`
	Oss          OssConfig          `toml:"oss"`
	Queue        QueueConfig        `toml:"queue"`
}

var Conf Config

var resolveConfigPath = func() (string, error) {
	paths, err := appdirs.Resolve()
	if err != nil {
		return "", err
	}
	return paths.ConfigFile, nil
}

// SetConfigPath pins the config file location, overriding the appdirs
// default. Used by the CLI --config flag.
func SetConfigPath(path string) {
	resolveConfigPath = func() (string, error) {
		return path, nil
	}
}

func defaultConfig() Config {
	return Config{
		Server: Server{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Scoring: ScoringConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			Temperature:    0.2,
			MaxTokens:      512,
			TimeoutSeconds: 30,
		},
		Highlight: HighlightConfig{
			MinSceneDuration: 2.0,
			MaxSceneDuration: 60.0,
			MaxScenes:        20,
			TopClipsCount:    3,
			ScoreConcurrency: 1,
		},
		Orchestrator: OrchestratorConfig{
			MaxIterations: 20,
			HistoryWindow: 5,
		},
		Queue: QueueConfig{
			RedisAddr:   "localhost:6379",
			Concurrency: 3,
		},
	}
}

// LoadOrCreateConfig reads the config file, writing defaults first if it is
// missing. Returns whether a new file was created.
func LoadOrCreateConfig() (bool, error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return false, err
	}

	if _, err = os.Stat(configPath); os.IsNotExist(err) {
		Conf = defaultConfig()
		if err = SaveConfig(); err != nil {
			return false, err
		}
		applyEnvOverrides()
		return true, nil
	}

	if _, err = toml.DecodeFile(configPath, &Conf); err != nil {
		return false, fmt.Errorf("failed to decode config file %s: %w", configPath, err)
	}
	applyDefaultsForZeroValues()
	applyEnvOverrides()
	return false, nil
}

// LoadConfig is the boolean entrypoint used by main; failures are printed
// because the logger may not be usable for fatal config errors yet.
func LoadConfig() bool {
	if _, err := LoadOrCreateConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return false
	}
	return true
}

// CheckConfig validates the parts of the config that are required at startup.
func CheckConfig() error {
	if Conf.App.Proxy != "" {
		parsed, err := url.Parse(Conf.App.Proxy)
		if err != nil {
			return fmt.Errorf("invalid proxy address %q: %w", Conf.App.Proxy, err)
		}
		Conf.App.ParsedProxy = parsed
	}

	switch Conf.Scoring.Provider {
	case "openai", "nvidia":
	default:
		return fmt.Errorf("unsupported scoring provider %q", Conf.Scoring.Provider)
	}

	if Conf.Scoring.ApiKey == "" {
		return fmt.Errorf("scoring api key is empty; set it in config or the %s environment variable", scoringKeyEnv(Conf.Scoring.Provider))
	}

	if Conf.Highlight.MinSceneDuration <= 0 || Conf.Highlight.MaxSceneDuration < Conf.Highlight.MinSceneDuration {
		return fmt.Errorf("invalid scene duration bounds [%.1f, %.1f]",
			Conf.Highlight.MinSceneDuration, Conf.Highlight.MaxSceneDuration)
	}

	return nil
}

func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(Conf)
}

func applyDefaultsForZeroValues() {
	def := defaultConfig()
	if Conf.Server.Host == "" {
		Conf.Server.Host = def.Server.Host
	}
	if Conf.Server.Port == 0 {
		Conf.Server.Port = def.Server.Port
	}
	if Conf.Scoring.Provider == "" {
		Conf.Scoring.Provider = def.Scoring.Provider
	}
	if Conf.Scoring.Model == "" {
		Conf.Scoring.Model = def.Scoring.Model
	}
	if Conf.Scoring.MaxTokens == 0 {
		Conf.Scoring.MaxTokens = def.Scoring.MaxTokens
	}
	if Conf.Scoring.TimeoutSeconds == 0 {
		Conf.Scoring.TimeoutSeconds = def.Scoring.TimeoutSeconds
	}
	if Conf.Highlight.MinSceneDuration == 0 {
		Conf.Highlight.MinSceneDuration = def.Highlight.MinSceneDuration
	}
	if Conf.Highlight.MaxSceneDuration == 0 {
		Conf.Highlight.MaxSceneDuration = def.Highlight.MaxSceneDuration
	}
	if Conf.Highlight.MaxScenes == 0 {
		Conf.Highlight.MaxScenes = def.Highlight.MaxScenes
	}
	if Conf.Highlight.TopClipsCount == 0 {
		Conf.Highlight.TopClipsCount = def.Highlight.TopClipsCount
	}
	if Conf.Highlight.ScoreConcurrency == 0 {
		Conf.Highlight.ScoreConcurrency = def.Highlight.ScoreConcurrency
	}
	if Conf.Orchestrator.MaxIterations == 0 {
		Conf.Orchestrator.MaxIterations = def.Orchestrator.MaxIterations
	}
	if Conf.Orchestrator.HistoryWindow == 0 {
		Conf.Orchestrator.HistoryWindow = def.Orchestrator.HistoryWindow
	}
	if Conf.Queue.RedisAddr == "" {
		Conf.Queue.RedisAddr = def.Queue.RedisAddr
	}
	if Conf.Queue.Concurrency == 0 {
		Conf.Queue.Concurrency = def.Queue.Concurrency
	}
}

// applyEnvOverrides lets API keys come from the environment (or a .env file
// loaded by main) so they never have to live in the config file.
func applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv(scoringKeyEnv(Conf.Scoring.Provider))); v != "" {
		Conf.Scoring.ApiKey = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" && Conf.Llm.ApiKey == "" {
		Conf.Llm.ApiKey = v
	}
}

func scoringKeyEnv(provider string) string {
	if provider == "nvidia" {
		return "NVIDIA_API_KEY"
	}
	return "OPENAI_API_KEY"
}
