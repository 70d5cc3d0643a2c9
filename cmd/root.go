package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "interview-agent"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      *ServerConfig    `mapstructure:"server"`
	AI          *AIConfig        `mapstructure:"ai"`
	Backend     *BackendConfig   `mapstructure:"backend"`
	Interview   *InterviewConfig `mapstructure:"interview"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey          string  `mapstructure:"api-key"`
	APIKeyFile      string  `mapstructure:"api-key-file"`
	Backend         string  `mapstructure:"backend"`
	Project         string  `mapstructure:"project"`
	Location        string  `mapstructure:"location"`
	Model           string  `mapstructure:"model"`
	Temperature     float64 `mapstructure:"temperature"`
	MaxOutputTokens int     `mapstructure:"max-output-tokens"`
	MaxRetries      int     `mapstructure:"max-retries"`
	MaxLogLength    int     `mapstructure:"max-log-length"`
}

type BackendConfig struct {
	URL       string        `mapstructure:"url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Token     string        `mapstructure:"token"`
	TokenFile string        `mapstructure:"token-file"`
}

type InterviewConfig struct {
	CVContextLength int            `mapstructure:"cv-context-length"`
	MaxQuestions    map[string]int `mapstructure:"max-questions"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interview-agent runs AI driven candidate interviews: knockout, technical and soft skills phases with final scoring",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

var envBindings = map[string]string{
	"environment":                 "ENVIRONMENT",
	"server.port":                 "API_PORT",
	"ai.gemini.api-key-file":      "GEMINI_API_KEY_FILE",
	"backend.url":                 "BACKEND_URL",
	"backend.token-file":          "BACKEND_TOKEN_FILE",
	"interview.cv-context-length": "CV_CONTEXT_LENGTH",
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interview-agent.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8001)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.backend", "gemini")
	viper.SetDefault("ai.gemini.model", "gemini-2.0-flash")
	viper.SetDefault("ai.gemini.temperature", 0.3)
	viper.SetDefault("ai.gemini.max-output-tokens", 500)
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
	viper.SetDefault("backend.url", "http://localhost:8000")
	viper.SetDefault("backend.timeout", 30*time.Second)
	viper.SetDefault("interview.cv-context-length", 1000)
	viper.SetDefault("interview.max-questions", map[string]int{
		"knockout":    3,
		"technical":   5,
		"soft_skills": 3,
	})
}

func initConfig() {
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Defaults and environment are enough without a config file, but an explicit or
	// malformed one must load.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
