package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/thaoanhhaa1/kltn-backend/config"
)

const clientNameChatModel = "chat_model"

type Config struct {
	Addr        string  `json:"addr"`
	Model       string  `json:"model"`
	Token       string  `json:"token"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
}

// ClientChatModel 大模型调用客户端，进程启动时构造一次
type ClientChatModel struct {
	config *Config
	client *openai.Client
}

func NewClient(cfg *config.Config) *ClientChatModel {
	conf := &Config{
		Addr:        cfg.GetString(config.ClientChatModelAddr),
		Model:       cfg.GetString(config.ClientChatModelModel),
		Token:       cfg.GetString(config.ClientChatModelApiKey),
		Temperature: cast.ToFloat32(cfg.GetFloat64(config.ClientChatModelTemperature)),
		MaxTokens:   cfg.GetInt(config.ClientChatModelMaxTokens),
	}

	clientConfig := openai.DefaultConfig(conf.Token)
	if conf.Addr != "" {
		clientConfig.BaseURL = conf.Addr
	}

	return &ClientChatModel{
		config: conf,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// PostChatCompletionsNonStream 封装非流式调用，返回完整响应
func (zc *ClientChatModel) PostChatCompletionsNonStream(c context.Context, messages []openai.ChatCompletionMessage) (*openai.ChatCompletionResponse, error) {
	request := openai.ChatCompletionRequest{
		Model:       zc.config.Model,
		Messages:    messages,
		MaxTokens:   zc.config.MaxTokens,
		Temperature: zc.config.Temperature,
		Stream:      false,
	}

	response, err := zc.client.CreateChatCompletion(c, request)
	if err != nil {
		log.Errorf("%s chat completion error: %v", clientNameChatModel, err)
		return nil, err
	}

	return &response, nil
}

// PostChatCompletionsNonStreamContent 封装非流式调用，只返回响应内容字符串
func (zc *ClientChatModel) PostChatCompletionsNonStreamContent(c context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	response, err := zc.PostChatCompletionsNonStream(c, messages)
	if err != nil {
		return "", err
	}

	if response == nil {
		log.Errorf("%s chat completion response is nil", clientNameChatModel)
		return "", fmt.Errorf("chat completion response is nil")
	}

	if len(response.Choices) == 0 {
		log.Errorf("%s chat completion response has no choices", clientNameChatModel)
		return "", fmt.Errorf("chat completion response has no choices")
	}

	content := response.Choices[0].Message.Content
	if content == "" {
		log.Warnf("%s chat completion response content is empty", clientNameChatModel)
	}

	return content, nil
}
