package translate

import (
	"context"
	"fmt"
	"html"

	"google.golang.org/api/option"
	translatev2 "google.golang.org/api/translate/v2"
)

// GoogleBackend использует Cloud Translation API v2 с ключом API
type GoogleBackend struct {
	svc *translatev2.Service
}

func NewGoogleBackend(ctx context.Context, apiKey string, opts ...option.ClientOption) (*GoogleBackend, error) {
	if apiKey == "" {
		return nil, ErrNoBackend
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := translatev2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create translate client: %w", err)
	}
	return &GoogleBackend{svc: svc}, nil
}

func (g *GoogleBackend) Translate(ctx context.Context, text, target string) (string, error) {
	resp, err := g.svc.Translations.List([]string{text}, target).
		Source(SourceLanguage).
		Format("text").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("translate to %s: %w", target, err)
	}
	if len(resp.Translations) == 0 {
		return "", fmt.Errorf("translate to %s: empty response", target)
	}
	return html.UnescapeString(resp.Translations[0].TranslatedText), nil
}

func (g *GoogleBackend) Detect(ctx context.Context, text string) (string, error) {
	resp, err := g.svc.Detections.List([]string{text}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("detect language: %w", err)
	}
	if len(resp.Detections) == 0 || len(resp.Detections[0]) == 0 {
		return "", fmt.Errorf("detect language: empty response")
	}
	return resp.Detections[0][0].Language, nil
}
