package translator

import "context"

// TranslatorAPI translates text into a target language. An empty result
// means the translation failed; the error has already been logged.
type TranslatorAPI interface {
	Translate(ctx context.Context, text string, targetLanguage string) string
}
