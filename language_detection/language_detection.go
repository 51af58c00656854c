// Package language_detection classifies the language of an utterance and
// routes it to the opposite side of a two-language pair.
package language_detection

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Interface labels text with an ISO 639-1 code, or "" when undetectable.
type Interface interface {
	Detect(text string) string
}

// Pair is the two languages the assistant translates between.
type Pair struct {
	Primary   string
	Secondary string
}

// Target returns the language to translate into: text in the primary
// language goes to the secondary one, everything else goes to the primary.
func (p Pair) Target(detected string) string {
	if strings.EqualFold(detected, p.Primary) {
		return p.Secondary
	}

	return p.Primary
}

type detectorImpl struct {
	options whatlanggo.Options
}

// New builds a detector. When preferred codes are given the guess is limited
// to them, which keeps short utterances from landing on a neighbour language
// sharing the same script.
func New(preferred ...string) Interface {
	whitelist := make(map[whatlanggo.Lang]bool)

	for _, code := range preferred {
		for lang := range whatlanggo.Langs {
			if strings.EqualFold(lang.Iso6391(), code) {
				whitelist[lang] = true
			}
		}
	}

	d := &detectorImpl{}
	if len(whitelist) > 0 {
		d.options.Whitelist = whitelist
	}

	return d
}

func (d *detectorImpl) Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	info := whatlanggo.DetectWithOptions(text, d.options)

	return info.Lang.Iso6391()
}
