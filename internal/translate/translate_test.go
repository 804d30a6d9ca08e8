package translate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type backendStub struct {
	translated string
	detected   string
	err        error
	calls      int
}

func (b *backendStub) Translate(ctx context.Context, text, target string) (string, error) {
	b.calls++
	if b.err != nil {
		return "", b.err
	}
	return b.translated, nil
}

func (b *backendStub) Detect(ctx context.Context, text string) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	return b.detected, nil
}

func newTestTranslator(b Backend) *Translator {
	return New(b, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTranslateRendersFlag(t *testing.T) {
	tr := newTestTranslator(&backendStub{translated: "Hallo"})

	res := tr.Translate(context.Background(), "Hello", "de")
	if res.Outcome != Translated {
		t.Fatalf("expected Translated, got %v", res.Outcome)
	}
	if got := res.Render(); got != "🇩🇪 Hallo" {
		t.Fatalf("unexpected render %q", got)
	}
}

func TestTranslateFallsBackToOriginal(t *testing.T) {
	tests := []struct {
		name    string
		backend Backend
		lang    string
	}{
		{"backend error", &backendStub{err: errors.New("network down")}, "ru"},
		{"empty answer", &backendStub{translated: "  "}, "ru"},
		{"no backend", nil, "ru"},
		{"source language", &backendStub{translated: "x"}, "en"},
		{"empty language", &backendStub{translated: "x"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestTranslator(tt.backend)
			res := tr.Translate(context.Background(), "Welcome", tt.lang)
			if res.Outcome != Unavailable {
				t.Fatalf("expected Unavailable, got %v", res.Outcome)
			}
			if got := res.Render(); got != "Welcome" {
				t.Fatalf("expected original text, got %q", got)
			}
		})
	}
}

func TestTranslateSkipsBackendForEnglish(t *testing.T) {
	b := &backendStub{translated: "x"}
	tr := newTestTranslator(b)

	tr.Translate(context.Background(), "Hello", "en-US")
	if b.calls != 0 {
		t.Fatalf("expected no backend calls, got %d", b.calls)
	}
}

func TestDetect(t *testing.T) {
	tr := newTestTranslator(&backendStub{detected: "pt-BR"})
	if lang, ok := tr.Detect(context.Background(), "Olá"); !ok || lang != "pt" {
		t.Fatalf("expected pt, got %q %v", lang, ok)
	}

	tr = newTestTranslator(&backendStub{detected: "und"})
	if _, ok := tr.Detect(context.Background(), "???"); ok {
		t.Fatal("expected undetermined language to be rejected")
	}

	tr = newTestTranslator(&backendStub{err: errors.New("boom")})
	if _, ok := tr.Detect(context.Background(), "text"); ok {
		t.Fatal("expected detection failure")
	}
}

func TestNormalizeAndFlag(t *testing.T) {
	cases := map[string]string{
		"EN":      "en",
		"zh-hans": "zh-cn",
		"zh":      "zh-cn",
		"pt_BR":   "pt",
		"ru":      "ru",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}

	if Flag("zh-cn") != "🇨🇳" {
		t.Error("expected chinese flag")
	}
	if Flag("sw") != "🌍" {
		t.Error("expected globe for unknown language")
	}
}

func TestNewGoogleBackendRequiresKey(t *testing.T) {
	if _, err := NewGoogleBackend(context.Background(), ""); !errors.Is(err, ErrNoBackend) {
		t.Fatalf("expected ErrNoBackend, got %v", err)
	}
}
