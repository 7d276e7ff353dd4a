package client

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/translate"

	cfgpkg "github.com/InternLink/portal-service/internal/config"
)

// Translator wraps AWS Translate for the listing-content endpoints.
type Translator struct {
	client *translate.Client
}

func NewTranslator(ctx context.Context, cfg cfgpkg.TranslateConfig) (*Translator, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Translator{client: translate.NewFromConfig(awsCfg)}, nil
}

// Translate auto-detects the source language.
func (t *Translator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	out, err := t.client.TranslateText(ctx, &translate.TranslateTextInput{
		Text:               aws.String(text),
		SourceLanguageCode: aws.String("auto"),
		TargetLanguageCode: aws.String(targetLanguage),
	})
	if err != nil {
		return "", fmt.Errorf("translate text: %w", err)
	}
	return aws.ToString(out.TranslatedText), nil
}
