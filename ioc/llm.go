package ioc

import (
	"context"

	"github.com/google/generative-ai-go/genai"
	"github.com/spf13/viper"
	"google.golang.org/api/option"
)

// InitGeminiCli 未启用时返回 nil, 平仓点评功能随之关闭
func InitGeminiCli() *genai.Client {
	type Config struct {
		Enabled bool     `mapstructure:"enabled"`
		ApiKey  []string `mapstructure:"api_key"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("llm.gemini", &cfg); err != nil {
		panic(err)
	}

	if !cfg.Enabled {
		return nil
	}
	if len(cfg.ApiKey) == 0 {
		panic("llm.gemini enabled but no api key set")
	}

	cli, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.ApiKey[0]))
	if err != nil {
		panic(err)
	}
	return cli
}
