package vision

import (
	"context"
	"errors"
	"fmt"
	"resalelens/internal/config"
	"resalelens/internal/entity"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	arkmodel "github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
)

//文档:https://www.volcengine.com/docs/82379/1362913

// ArkAnnotator runs label extraction through a Volcengine Ark vision model.
type ArkAnnotator struct {
	client *arkruntime.Client
	model  string
}

// NewArkAnnotator creates an Ark-backed annotator.
func NewArkAnnotator(cfg config.Config) (*ArkAnnotator, error) {
	if strings.TrimSpace(cfg.VolcengineAPIKey) == "" {
		return nil, errors.New("volcengine api key is not configured")
	}
	model := strings.TrimSpace(cfg.VolcengineVisionModel)
	if model == "" {
		return nil, errors.New("volcengine vision model is not configured")
	}
	return &ArkAnnotator{
		client: arkruntime.NewClientWithApiKey(cfg.VolcengineAPIKey),
		model:  model,
	}, nil
}

// Annotate asks the vision model for structured labels. Ark accepts the
// image by URL, so the photo is not downloaded locally.
func (a *ArkAnnotator) Annotate(ctx context.Context, imageURL string) (*entity.VisionSignal, error) {
	req := arkmodel.CreateChatCompletionRequest{
		Model: a.model,
		Messages: []*arkmodel.ChatCompletionMessage{
			{
				Role: arkmodel.ChatMessageRoleUser,
				Content: &arkmodel.ChatCompletionMessageContent{
					ListValue: []*arkmodel.ChatCompletionMessageContentPart{
						{
							Type: arkmodel.ChatCompletionMessageContentPartTypeText,
							Text: annotationPrompt,
						},
						{
							Type: arkmodel.ChatCompletionMessageContentPartTypeImageURL,
							ImageURL: &arkmodel.ChatMessageImageURL{
								URL: imageURL,
							},
						},
					},
				},
			},
		},
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("ark vision call: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return nil, errors.New("ark vision returned no choices")
	}

	var text string
	if resp.Choices[0].Message.Content.StringValue != nil {
		text = *resp.Choices[0].Message.Content.StringValue
	}
	logrus.WithFields(logrus.Fields{
		"model":           a.model,
		"response_length": len(text),
	}).Debug("vision_annotation_response")

	return parseVisionSignal(text)
}
