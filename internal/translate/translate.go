// Package translate переводит исходящие сообщения на язык пользователя.
// Перевод best-effort: при любой ошибке отправляется исходный текст.
package translate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

const SourceLanguage = "en"

type Outcome int

const (
	Unavailable Outcome = iota
	Translated
)

// Result - результат перевода. Для Unavailable Text содержит исходный текст.
type Result struct {
	Outcome Outcome
	Text    string
	Lang    string
}

// Render возвращает текст для отправки: перевод с флагом языка или оригинал
func (r Result) Render() string {
	if r.Outcome != Translated {
		return r.Text
	}
	return Flag(r.Lang) + " " + r.Text
}

// Backend - удаленный сервис машинного перевода
type Backend interface {
	Translate(ctx context.Context, text, target string) (string, error)
	Detect(ctx context.Context, text string) (string, error)
}

var ErrNoBackend = errors.New("translation backend is not configured")

type Translator struct {
	backend Backend
	logger  *slog.Logger
}

// New создает переводчик. nil backend означает, что перевод всегда недоступен.
func New(backend Backend, logger *slog.Logger) *Translator {
	return &Translator{backend: backend, logger: logger}
}

func (t *Translator) Translate(ctx context.Context, text, lang string) Result {
	lang = Normalize(lang)
	original := Result{Outcome: Unavailable, Text: text, Lang: lang}
	if lang == "" || lang == SourceLanguage || strings.TrimSpace(text) == "" {
		return original
	}
	if t.backend == nil {
		return original
	}

	translated, err := t.backend.Translate(ctx, text, lang)
	if err != nil {
		t.logger.Debug("translation unavailable", "lang", lang, "error", err)
		return original
	}
	if strings.TrimSpace(translated) == "" {
		t.logger.Debug("translation returned empty text", "lang", lang)
		return original
	}
	return Result{Outcome: Translated, Text: translated, Lang: lang}
}

// Detect определяет язык текста. ok == false, если язык определить не удалось.
func (t *Translator) Detect(ctx context.Context, text string) (string, bool) {
	if t.backend == nil || strings.TrimSpace(text) == "" {
		return "", false
	}
	lang, err := t.backend.Detect(ctx, text)
	if err != nil {
		t.logger.Debug("language detection failed", "error", err)
		return "", false
	}
	lang = Normalize(lang)
	if lang == "" || lang == "und" {
		return "", false
	}
	return lang, true
}

// Normalize приводит код языка к виду, который понимает сервис перевода
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	lang = strings.ReplaceAll(lang, "_", "-")
	switch lang {
	case "zh", "zh-hans":
		return "zh-cn"
	case "zh-hant":
		return "zh-tw"
	}
	if i := strings.IndexByte(lang, '-'); i > 0 && !strings.HasPrefix(lang, "zh-") {
		return lang[:i]
	}
	return lang
}

var flags = map[string]string{
	"en":    "🇺🇸",
	"ru":    "🇷🇺",
	"de":    "🇩🇪",
	"fr":    "🇫🇷",
	"es":    "🇪🇸",
	"zh-cn": "🇨🇳",
	"it":    "🇮🇹",
	"pt":    "🇵🇹",
	"ar":    "🇸🇦",
	"ja":    "🇯🇵",
}

func Flag(lang string) string {
	if f, ok := flags[lang]; ok {
		return f
	}
	return "🌍"
}
