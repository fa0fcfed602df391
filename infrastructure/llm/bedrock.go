package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// ConverseAPI is the subset of the Bedrock runtime client used here
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockProvider completes prompts with the Bedrock Converse API
type BedrockProvider struct {
	client  ConverseAPI
	modelID string
}

// NewBedrockProvider creates a Bedrock-backed provider
func NewBedrockProvider(client ConverseAPI, modelID string) *BedrockProvider {
	return &BedrockProvider{client: client, modelID: modelID}
}

// IsAvailable returns true when a client and model are configured
func (p *BedrockProvider) IsAvailable() bool {
	return p.client != nil && p.modelID != ""
}

// Complete sends a single user message and joins the text blocks of the reply
func (p *BedrockProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(p.modelID),
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: prompt}},
		}},
		InferenceConfig: &types.InferenceConfiguration{
			Temperature: aws.Float32(float32(options.Temperature)),
		},
	}
	if options.MaxTokens > 0 {
		input.InferenceConfig.MaxTokens = aws.Int32(int32(options.MaxTokens))
	}
	if options.System != "" {
		input.System = []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: options.System}}
	}

	out, err := p.client.Converse(ctx, input)
	if err != nil {
		return "", fmt.Errorf("bedrock converse failed: %w", err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("bedrock returned no message")
	}

	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(text.Value)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("bedrock returned no text (stop reason %s)", out.StopReason)
	}
	return sb.String(), nil
}
