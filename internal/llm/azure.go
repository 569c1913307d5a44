package llm

import (
	"context"
	"errors"

	"codecounselor/internal/config"

	openai "github.com/sashabaranov/go-openai"
)

// AzureClient talks to an Azure OpenAI deployment.
type AzureClient struct {
	client     *openai.Client
	deployment string
}

// NewAzureClient builds the upstream client from cfg. It returns
// ErrNotConfigured when any required value is missing.
func NewAzureClient(cfg *config.Config) (*AzureClient, error) {
	if !cfg.UpstreamConfigured() {
		return nil, ErrNotConfigured
	}

	deployment := cfg.DeploymentName
	oc := openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
	oc.APIVersion = cfg.APIVersion
	oc.AzureModelMapperFunc = func(string) string { return deployment }

	return &AzureClient{
		client:     openai.NewClientWithConfig(oc),
		deployment: deployment,
	}, nil
}

// SettingsFrom returns the non-secret view of cfg.
func SettingsFrom(cfg *config.Config) Settings {
	return Settings{
		Endpoint:     cfg.Endpoint,
		Deployment:   cfg.DeploymentName,
		APIVersion:   cfg.APIVersion,
		APIKeyLength: len(cfg.APIKey),
	}
}

func (c *AzureClient) request(req ChatRequest, stream bool) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return openai.ChatCompletionRequest{
		Model:       c.deployment,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	}
}

// OpenStream starts a streaming chat completion.
func (c *AzureClient) OpenStream(ctx context.Context, req ChatRequest) (ChatStream, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, c.request(req, true))
	if err != nil {
		return nil, err
	}
	return &azureStream{stream: stream}, nil
}

// Complete performs a single non-streaming chat completion.
func (c *AzureClient) Complete(ctx context.Context, req ChatRequest) (*Completion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.request(req, false))
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in response")
	}
	return &Completion{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Created: resp.Created,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

type azureStream struct {
	stream *openai.ChatCompletionStream
}

// Recv reads the next delta. Azure sends content-filter frames without
// choices; those come back as empty chunks.
func (s *azureStream) Recv() (string, error) {
	resp, err := s.stream.Recv()
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

func (s *azureStream) Close() error {
	return s.stream.Close()
}
