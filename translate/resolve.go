package translate

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/script"
)

// Fallback selects what a search does when translation fails.
type Fallback int

const (
	// FallbackEmpty drops the text criterion, so every article passes it.
	FallbackEmpty Fallback = iota
	// FallbackOriginal searches with the untranslated text.
	FallbackOriginal
	// FallbackNoResults makes the search match nothing.
	FallbackNoResults
)

func (f Fallback) String() string {
	switch f {
	case FallbackEmpty:
		return "empty"
	case FallbackOriginal:
		return "original"
	case FallbackNoResults:
		return "none"
	default:
		return "unknown"
	}
}

// ParseFallback reads a fallback name. An empty name is FallbackEmpty.
func ParseFallback(name string) (Fallback, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "empty":
		return FallbackEmpty, nil
	case "original":
		return FallbackOriginal, nil
	case "none", "no_results":
		return FallbackNoResults, nil
	default:
		return FallbackEmpty, fmt.Errorf("unknown fallback %q (expected empty, original or none)", name)
	}
}

// Options controls Resolve. Zero values translate from any language into
// Gujarati with FallbackEmpty.
type Options struct {
	Source   string
	Target   string
	Fallback Fallback
	// Script is the writing system of the target language. Queries already
	// mostly in this script are not translated.
	Script *unicode.RangeTable
}

func (o Options) withDefaults() Options {
	if o.Source == "" {
		o.Source = LangAuto
	}
	if o.Target == "" {
		o.Target = LangGujarati
	}
	if o.Script == nil {
		o.Script = script.Gujarati
	}
	return o
}

// Resolution is the query text a search should use.
type Resolution struct {
	// Text is the text criterion; empty means every article passes it.
	Text string
	// Translated is true when Text came back from the translator.
	Translated bool
	// MatchNone asks the search to return nothing.
	MatchNone bool
	// Err is the translation failure that was degraded, if any.
	Err error
}

// Resolve translates text and degrades failures according to
// opts.Fallback. It never returns an error; a failed translation is recorded
// in Resolution.Err.
func Resolve(ctx context.Context, tr Translator, text string, opts Options) Resolution {
	opts = opts.withDefaults()

	text = strings.TrimSpace(text)
	if text == "" {
		return Resolution{}
	}
	if script.IsMostly(text, opts.Script) || tr == nil {
		return Resolution{Text: text}
	}

	translated, err := tr.Translate(ctx, text, opts.Source, opts.Target)
	if err != nil {
		res := Resolution{Err: err}
		switch opts.Fallback {
		case FallbackOriginal:
			res.Text = text
		case FallbackNoResults:
			res.MatchNone = true
		}
		return res
	}

	return Resolution{Text: translated, Translated: true}
}
