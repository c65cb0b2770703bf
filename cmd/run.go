package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/saurabhmj11/excel-mock-interviewer/internal/ai/gemini"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/grader"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/interview"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/knowledge"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/logger"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/question"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/report"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	quitSentinel          = "quit"
	defaultQuestionsFile  = "questions.json"
	defaultTranscriptsDir = "sample_transcripts"

	gradingTemperature float32 = 0.2
	reportTemperature  float32 = 0.7
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive Excel mock interview",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("questions-file", "q", "", "question bank file. Default is questions.json in current directory.")

	viper.BindPFlag("questions-file", runCmd.Flags().Lookup("questions-file"))
}

// run is the main command for the cli.
func run(_ *cobra.Command) {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the excel-interviewer", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	questions, err := question.LoadBank(questionsFile(config))
	if err != nil {
		logger.Fatal("loading question bank", zap.Error(err))
	}

	logger.Info("loaded question bank", zap.Int("count", len(questions)))

	retriever := prepareRetriever(ctx, config, questions, logger)

	client, geminiCfg, err := newGeminiClient(ctx, config)
	if err != nil {
		logger.Fatal(
			"preparing the evaluation model",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY environment variable or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
	}

	gradingGenerator, err := gemini.NewGenerator(client, gemini.Config{
		Model:          geminiCfg.Model,
		MaxRetries:     geminiCfg.MaxRetries,
		Backoff:        time.Duration(geminiCfg.BackoffSec) * time.Second,
		Temperature:    genai.Ptr(gradingTemperature),
		ResponseSchema: grader.ResponseSchema(),
	}, logger)
	if err != nil {
		logger.Fatal("building the grading generator", zap.Error(err))
	}

	topK := 0
	if config.Knowledge != nil {
		topK = config.Knowledge.TopK
	}

	maxLogLength := 0
	if config.AI != nil && config.AI.Gemini != nil {
		maxLogLength = config.AI.Gemini.MaxLogLength
	}

	graderCfg := grader.Config{
		TopK:         topK,
		MaxLogLength: maxLogLength,
	}

	// A nil *Retriever must not end up as a non-nil interface inside the grader.
	var g *grader.Grader
	if retriever != nil {
		g = grader.New(gradingGenerator, retriever, graderCfg, logger)
	} else {
		g = grader.New(gradingGenerator, nil, graderCfg, logger)
	}

	session := interview.NewSession()
	logger.Info("starting the interview",
		zap.String("session_id", session.ID),
		zap.Int("questions", len(questions)),
	)

	fmt.Printf("Welcome to the Excel mock interview. %d questions ahead.\n", len(questions))
	fmt.Printf("Type %q at any time to end the interview early.\n\n", quitSentinel)

	conductInterview(ctx, session, questions, g, logger)
	summary := session.Summary()

	fmt.Printf("\nInterview %s. Score: %s of %s.\n",
		summary.Status, formatScore(summary.TotalScore), formatScore(summary.MaxScore))

	if reportEnabled(config) && len(summary.Questions) > 0 {
		reportGenerator, err := gemini.NewGenerator(client, gemini.Config{
			Model:       geminiCfg.Model,
			MaxRetries:  geminiCfg.MaxRetries,
			Backoff:     time.Duration(geminiCfg.BackoffSec) * time.Second,
			Temperature: genai.Ptr(reportTemperature),
		}, logger)
		if err != nil {
			logger.Fatal("building the report generator", zap.Error(err))
		}

		text := report.New(reportGenerator, logger).Generate(ctx, summary)
		fmt.Printf("\n%s\n", text)

		path, err := interview.SaveReport(transcriptsDir(config), summary.SessionID, text)
		if err != nil {
			logger.Warn("saving the feedback report", zap.Error(err))
		} else {
			logger.Info("saved the feedback report", zap.String("filename", path))
		}
	}

	path, err := interview.SaveTranscript(transcriptsDir(config), summary)
	if err != nil {
		logger.Warn("saving the transcript", zap.Error(err))
		return
	}

	logger.Info("saved the transcript", zap.String("filename", path))
}

// conductInterview walks the question bank and grades every answer.
func conductInterview(ctx context.Context, session *interview.Session, questions []question.Question, g *grader.Grader, logger *zap.Logger) {
	for i, q := range questions {
		fmt.Printf("Question %d/%d [%s]: %s\n", i+1, len(questions), q.Difficulty, q.Text)

		answer, quit := askAnswer()
		if quit {
			logger.Info("interview aborted by the candidate", zap.Int("answered", session.Answered()))
			session.Abort()
			return
		}

		verdict := g.Grade(ctx, q, answer)
		session.Record(q, answer, verdict)

		fmt.Printf("\n%s (%s)\n%s\nTips: %s\n\n",
			verdict.Correctness, formatScore(verdict.Score()), verdict.Justification, verdict.Tips)
	}

	session.Complete()
}

var answerPrompt = promptui.Prompt{
	Label: "Your answer",
	Validate: func(input string) error {
		if strings.TrimSpace(input) == "" {
			return errors.New("an answer is required")
		}
		return nil
	},
}

func askAnswer() (string, bool) {
	answer, err := answerPrompt.Run()
	// promptui returns an error on interrupt; treat it the same as quitting.
	if err != nil {
		return "", true
	}

	if strings.EqualFold(strings.TrimSpace(answer), quitSentinel) {
		return "", true
	}

	return answer, false
}

// prepareRetriever builds the retrieval side of grading. Any failure here
// degrades to context-free grading instead of blocking the interview.
func prepareRetriever(ctx context.Context, config *Config, questions []question.Question, logger *zap.Logger) *knowledge.Retriever {
	idx, embedder, err := newKnowledgeIndex(config, logger)
	if err != nil {
		logger.Warn("grading without retrieval context", zap.Error(err))
		return nil
	}

	if err := idx.BulkLoad(ctx, referenceItems(questions)); err != nil {
		logger.Warn("grading without retrieval context", zap.Error(err))
		return nil
	}

	return knowledge.NewRetriever(idx, embedder, logger)
}

func newGeminiClient(ctx context.Context, config *Config) (*genai.Client, GeminiConfig, error) {
	var cfg GeminiConfig
	if config.AI != nil && config.AI.Gemini != nil {
		cfg = *config.AI.Gemini
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		Env:  "GEMINI_API_KEY",
		File: cfg.APIKeyFile,
	})
	if err != nil {
		return nil, cfg, err
	}

	client, err := gemini.NewClient(ctx, apiKey)
	if err != nil {
		return nil, cfg, err
	}

	return client, cfg, nil
}

func newLogger() (*zap.Logger, error) {
	return logger.New(viper.GetBool("json"), viper.GetBool("debug"))
}

func questionsFile(config *Config) string {
	if config != nil && config.QuestionsFile != "" {
		return config.QuestionsFile
	}
	if file := viper.GetString("questions-file"); file != "" {
		return file
	}
	return defaultQuestionsFile
}

func transcriptsDir(config *Config) string {
	if config != nil && config.TranscriptsDir != "" {
		return config.TranscriptsDir
	}
	return defaultTranscriptsDir
}

func reportEnabled(config *Config) bool {
	return config == nil || config.Report == nil || config.Report.Enabled
}

func formatScore(score float64) string {
	return fmt.Sprintf("%.1f", score)
}
