package cmd

import (
	"mediamail/internal/ai"
	"mediamail/internal/config"
	"mediamail/internal/digest"
	"mediamail/internal/firehose"
	"mediamail/internal/handle"
	"mediamail/internal/index"
	"mediamail/internal/scoring"

	"github.com/redis/go-redis/v9"
)

func buildStore(cfg config.Config, rdb *redis.Client) *index.Store {
	return index.New(rdb, cfg.Index)
}

func buildRules(cfg config.Config) scoring.Rules {
	return scoring.Compile(cfg.Scoring, cfg.UserIdentification.SocialMediaHandles)
}

func buildEngine(cfg config.Config, store *index.Store) *digest.Engine {
	return digest.NewEngine(store, buildRules(cfg))
}

// buildClassifier prefers the LLM classifier when an API key is configured
// and falls back to the lexicon heuristic.
func buildClassifier(cfg config.Config) firehose.Classifier {
	if cfg.OpenAI.APIKey != "" {
		return ai.NewOpenAI(ai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		})
	}
	return firehose.Lexicon{}
}

func buildParser(cfg config.Config) *handle.Parser {
	return handle.NewParser(cfg.Index.HandleWidth, cfg.Index.OpenBracket,
		cfg.Index.CloseBracket, cfg.Index.ReservedTokens)
}
