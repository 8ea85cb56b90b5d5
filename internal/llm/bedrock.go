package llm

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// BedrockConfig selects a Bedrock model. Static keys are optional; when
// empty the default AWS credential chain applies.
type BedrockConfig struct {
	ModelID   string
	Region    string
	AccessKey string
	SecretKey string
	MaxTokens int32
}

// Bedrock is a Generator over the Bedrock Converse API.
type Bedrock struct {
	cfg    BedrockConfig
	client *bedrockruntime.Client
}

// NewBedrock creates a client for the configured region and model.
func NewBedrock(ctx context.Context, cfg BedrockConfig) (*Bedrock, error) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Bedrock{cfg: cfg, client: bedrockruntime.NewFromConfig(awsCfg)}, nil
}

func (b *Bedrock) converseInput(system, user string, temperature float64) *bedrockruntime.ConverseInput {
	return &bedrockruntime.ConverseInput{
		ModelId: aws.String(b.cfg.ModelID),
		System: []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: system},
		},
		Messages: []brtypes.Message{{
			Role:    brtypes.ConversationRoleUser,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: user}},
		}},
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens:   aws.Int32(b.cfg.MaxTokens),
			Temperature: aws.Float32(float32(temperature)),
		},
	}
}

func (b *Bedrock) Generate(ctx context.Context, system, user string, temperature float64) (string, error) {
	out, err := b.client.Converse(ctx, b.converseInput(system, user, temperature))
	if err != nil {
		return "", fmt.Errorf("bedrock converse: %w", err)
	}

	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("bedrock converse: unexpected output type")
	}
	var text string
	for _, block := range msg.Value.Content {
		if t, ok := block.(*brtypes.ContentBlockMemberText); ok {
			text += t.Value
		}
	}
	if text == "" {
		return "", fmt.Errorf("bedrock converse: empty response")
	}
	return text, nil
}

func (b *Bedrock) GenerateStream(ctx context.Context, system, user string, temperature float64) (<-chan Chunk, error) {
	in := b.converseInput(system, user, temperature)
	out, err := b.client.ConverseStream(ctx, &bedrockruntime.ConverseStreamInput{
		ModelId:         in.ModelId,
		System:          in.System,
		Messages:        in.Messages,
		InferenceConfig: in.InferenceConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock converse stream: %w", err)
	}

	ch := make(chan Chunk)
	go func() {
		defer close(ch)
		stream := out.GetStream()
		defer stream.Close()

		for event := range stream.Events() {
			delta, ok := event.(*brtypes.ConverseStreamOutputMemberContentBlockDelta)
			if !ok {
				continue
			}
			text, ok := delta.Value.Delta.(*brtypes.ContentBlockDeltaMemberText)
			if !ok || text.Value == "" {
				continue
			}
			select {
			case ch <- Chunk{Text: text.Value}:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil {
			select {
			case ch <- Chunk{Err: fmt.Errorf("bedrock stream: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()
	return ch, nil
}
