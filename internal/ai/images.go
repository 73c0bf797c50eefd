package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ImageGenerator is the illustration capability: one story page in, one
// remote image URL out. Failures are per-page and isolated by the caller.
type ImageGenerator interface {
	GenerateIllustration(ctx context.Context, pageText string, childAge int, storyTitle string) (string, error)
}

const illustrationSystemPrompt = `You are an expert at creating detailed, accurate image prompts for children's book illustrations in the style of DISNEY and PIXAR storybooks. You must maintain absolute character accuracy for established characters: canonical costume colors, emblems, and settings. Show the exact action described in the text, with body language matching the emotional state, lighting matching the mood, and only props the text mentions or implies. The result should read like a single 250-350 word DALL-E prompt beginning with "Professional children's book illustration in DISNEY/PIXAR storybook style:" covering character, action, setting, props, lighting, composition and color palette.`

// OpenAIImageClient generates page illustrations with a two-step flow:
// a chat completion condenses the page into an accurate visual prompt,
// then DALL-E renders it.
type OpenAIImageClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIImageClient(apiKey, model string) (*OpenAIImageClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	return &OpenAIImageClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

func (c *OpenAIImageClient) GenerateIllustration(ctx context.Context, pageText string, childAge int, storyTitle string) (string, error) {
	userPrompt := fmt.Sprintf(
		"Create a DALL-E prompt for a children's book illustration based on this story page.\n\nSTORY TITLE: %s\nTARGET AGE: %d years old\n\nSTORY TEXT:\n%s\n\nIdentify the character, the specific action happening right now, the setting, and the mood, then write the prompt.",
		storyTitle, childAge, pageText,
	)

	chatResp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: illustrationSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("illustration prompt generation failed: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in illustration prompt response")
	}

	finalPrompt := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	// Enforcement suffix keeps DALL-E from drifting on established characters.
	enhancedPrompt := finalPrompt + " CRITICAL: Maintain exact character accuracy with canonical appearance. High quality DISNEY/PIXAR children's book illustration, professional digital art, detailed and expressive, appropriate setting."

	imageResp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Model:          c.model,
		Prompt:         enhancedPrompt,
		N:              1,
		Size:           openai.CreateImageSize1792x1024,
		Quality:        openai.CreateImageQualityStandard,
		Style:          openai.CreateImageStyleVivid,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}
	if len(imageResp.Data) == 0 || imageResp.Data[0].URL == "" {
		return "", fmt.Errorf("no image URL returned in response")
	}

	return imageResp.Data[0].URL, nil
}
