package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/saurabhmj11/excel-mock-interviewer/internal/ai/openai"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/knowledge"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/knowledge/memory"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/knowledge/qdrant"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/question"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/secrets"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultCollection = "excel_interview_qa"

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the knowledge base from the question bank",
	Run: func(cmd *cobra.Command, _ []string) {
		index(cmd)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().Bool("force", false, "drop the existing collection and rebuild it from scratch")
}

// index builds or rebuilds the vector collection backing answer evaluation.
func index(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	questions, err := question.LoadBank(questionsFile(config))
	if err != nil {
		logger.Fatal("loading question bank", zap.Error(err))
	}

	idx, _, err := newKnowledgeIndex(config, logger)
	if err != nil {
		logger.Fatal("building knowledge index", zap.Error(err))
	}

	items := referenceItems(questions)
	logger.Info("indexing reference answers",
		zap.Int("questions", len(questions)),
		zap.Int("indexable", len(items)),
	)

	if cmd.Flag("force").Value.String() == "true" {
		err = idx.Rebuild(ctx, items)
	} else {
		err = idx.BulkLoad(ctx, items)
	}
	if err != nil {
		logger.Fatal("indexing failed", zap.Error(err))
	}

	logger.Info("knowledge base is ready", zap.Int("documents", len(items)))
}

// referenceItems converts the question bank into indexable reference knowledge.
// The ideal answer is the retrievable document; questions without one carry
// nothing worth retrieving and are skipped.
func referenceItems(questions []question.Question) []knowledge.ReferenceItem {
	items := make([]knowledge.ReferenceItem, 0, len(questions))
	for _, q := range questions {
		if strings.TrimSpace(q.IdealAnswer) == "" {
			continue
		}

		items = append(items, knowledge.ReferenceItem{
			ID:           q.ID,
			DocumentText: q.IdealAnswer,
			Tags: knowledge.Tags{
				QuestionID:   q.ID,
				QuestionText: q.Text,
				Difficulty:   q.Difficulty,
				Topic:        q.Topic,
			},
		})
	}

	return items
}

func newKnowledgeIndex(config *Config, logger *zap.Logger) (*knowledge.Index, *openai.Embedder, error) {
	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, nil, err
	}

	store, err := newStore(config)
	if err != nil {
		return nil, nil, err
	}

	return knowledge.NewIndex(store, embedder, logger), embedder, nil
}

func newEmbedder(config *Config) (*openai.Embedder, error) {
	var cfg EmbeddingConfig
	if config.Embeddings != nil {
		cfg = *config.Embeddings
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "openai api key",
		Env:  "OPENAI_API_KEY",
		File: cfg.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set embeddings.api-key-file or OPENAI_API_KEY)", err)
	}

	return openai.New(openai.Config{
		APIKey:  apiKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})
}

func newStore(config *Config) (knowledge.Store, error) {
	cfg := config.Knowledge
	if cfg == nil {
		cfg = &KnowledgeConfig{}
	}

	collection := cfg.Collection
	if collection == "" {
		collection = defaultCollection
	}

	backend := strings.TrimSpace(strings.ToLower(cfg.Backend))
	switch backend {
	case "", "qdrant":
		if cfg.Qdrant == nil || cfg.Qdrant.URL == "" {
			return nil, errors.New("knowledge.qdrant.url is required for the qdrant backend")
		}

		apiKey := ""
		if cfg.Qdrant.APIKeyFile != "" {
			key, err := secrets.Load(secrets.Source{
				Name: "qdrant api key",
				File: cfg.Qdrant.APIKeyFile,
			})
			if err != nil {
				return nil, err
			}
			apiKey = key
		}

		return qdrant.NewStore(qdrant.Config{
			URL:        cfg.Qdrant.URL,
			APIKey:     apiKey,
			Collection: collection,
			Timeout:    time.Duration(cfg.Qdrant.TimeoutSec) * time.Second,
		})
	case "memory":
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unsupported knowledge backend: %s", cfg.Backend)
	}
}
