package cmd

import (
	"errors"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "hireview"
)

type Config struct {
	BackendURL string    `mapstructure:"backend-url"`
	TokenFile  string    `mapstructure:"token-file"`
	Email      string    `mapstructure:"email"`
	AI         *AIConfig `mapstructure:"ai"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hireview is an interactive console for reviewing job candidates against an HR backend",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Local .env first, so the viper env bindings below can pick it up.
	_ = godotenv.Load()

	if err := viper.BindEnv("backend-url", "HIREVIEW_BACKEND_URL"); err != nil {
		log.Fatalf("binding HIREVIEW_BACKEND_URL environment variable: %v", err)
	}
	if err := viper.BindEnv("token-file", "HIREVIEW_TOKEN_FILE"); err != nil {
		log.Fatalf("binding HIREVIEW_TOKEN_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hireview.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// The config file is optional; defaults and environment cover a bare setup.
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

	if config == nil {
		config = &Config{}
	}

	return config, nil
}

// tokenFilePath resolves where the session token is persisted: the configured
// path, or a fixed location under the user's config directory.
func tokenFilePath(config *Config) string {
	if config != nil && config.TokenFile != "" {
		return config.TokenFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", app+"-token")
	}

	return filepath.Join(home, ".config", app, "token")
}
