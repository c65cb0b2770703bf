package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "excel-interviewer"
)

type Config struct {
	QuestionsFile  string           `mapstructure:"questions-file"`
	TranscriptsDir string           `mapstructure:"transcripts-dir"`
	Knowledge      *KnowledgeConfig `mapstructure:"knowledge"`
	Embeddings     *EmbeddingConfig `mapstructure:"embeddings"`
	AI             *AIConfig        `mapstructure:"ai"`
	Report         *ReportConfig    `mapstructure:"report"`
}

type KnowledgeConfig struct {
	// Backend selects the vector store: qdrant or memory.
	Backend    string        `mapstructure:"backend"`
	Collection string        `mapstructure:"collection"`
	TopK       int           `mapstructure:"top-k"`
	Qdrant     *QdrantConfig `mapstructure:"qdrant"`
}

type QdrantConfig struct {
	URL        string `mapstructure:"url"`
	APIKeyFile string `mapstructure:"api-key-file"`
	TimeoutSec int    `mapstructure:"timeout"`
}

type EmbeddingConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	BackoffSec   int    `mapstructure:"backoff"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type ReportConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "excel-interviewer is a cli for running AI-evaluated Excel mock interviews",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is excel-interviewer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is not needed for the version command.
	if runCmd.CalledAs() == "" && indexCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
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
