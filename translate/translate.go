// Package translate turns a user query into Gujarati before it is matched
// against the corpus. The translation backend is an external service and
// may fail; Resolve decides what the search does when it does.
package translate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/fetcher"
	"github.com/tidwall/gjson"
)

// Language codes understood by the Google endpoint.
const (
	LangAuto     = "auto"
	LangEnglish  = "en"
	LangGujarati = "gu"
)

// DefaultEndpoint is the public Google Translate endpoint used by browser
// extensions.
const DefaultEndpoint = "https://translate.googleapis.com/translate_a/single"

var (
	// ErrMalformedResponse is returned when the endpoint answers with
	// something other than the expected JSON array.
	ErrMalformedResponse = errors.New("malformed translation response")
	// ErrEmptyTranslation is returned when the endpoint returns no text.
	ErrEmptyTranslation = errors.New("empty translation")
)

// Translator translates text between languages.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// TranslationError reports a failed translation of Text.
type TranslationError struct {
	Text string
	Err  error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("failed to translate %q: %v", e.Text, e.Err)
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}

// GoogleTranslator calls the Google Translate gtx endpoint.
type GoogleTranslator struct {
	fetcher  fetcher.Fetcher
	endpoint string
}

// NewGoogleTranslator creates a translator that sends requests through f. An
// empty endpoint uses DefaultEndpoint.
func NewGoogleTranslator(f fetcher.Fetcher, endpoint string) *GoogleTranslator {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &GoogleTranslator{fetcher: f, endpoint: endpoint}
}

// Translate returns text translated from source to target.
func (g *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", source)
	params.Set("tl", target)
	params.Set("dt", "t")
	params.Set("q", text)

	resp, err := g.fetcher.Fetch(ctx, g.endpoint+"?"+params.Encode())
	if err != nil {
		return "", &TranslationError{Text: text, Err: err}
	}

	translated, err := parseResponse(resp.Body)
	if err != nil {
		return "", &TranslationError{Text: text, Err: err}
	}
	return translated, nil
}

// parseResponse joins the translated segments of a gtx response. The body
// looks like [[["segment","source",...],...],null,"en",...].
func parseResponse(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", ErrMalformedResponse
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return "", ErrMalformedResponse
	}

	var b strings.Builder
	for _, segment := range root.Get("0.#.0").Array() {
		b.WriteString(segment.String())
	}

	translated := strings.TrimSpace(b.String())
	if translated == "" {
		return "", ErrEmptyTranslation
	}
	return translated, nil
}
