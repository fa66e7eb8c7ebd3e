// Package search filters a crawled corpus by query text and publication
// date.
package search

import (
	"fmt"
	"strings"

	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/newsfeed"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/translate"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Field selects which article fields the text criterion looks at.
type Field uint8

const (
	FieldTitle Field = 1 << iota
	FieldSummary
	FieldContent

	// FieldAll is used when no field is selected.
	FieldAll = FieldTitle | FieldSummary | FieldContent
)

// Query is the filter applied to a corpus. The zero Query matches every
// article.
type Query struct {
	// Text must occur in one of the selected fields, ignoring case. Empty
	// text matches every article.
	Text string
	// Date, when set, must equal the article date.
	Date *newsfeed.Date
	// Fields is a set of Field bits; zero means FieldAll.
	Fields Field
	// MatchNone makes the query match nothing.
	MatchNone bool
}

// QueryFromResolution builds a query from a resolved translation.
func QueryFromResolution(r translate.Resolution, date *newsfeed.Date, fields Field) Query {
	return Query{
		Text:      r.Text,
		Date:      date,
		Fields:    fields,
		MatchNone: r.MatchNone,
	}
}

// ParseFields reads a comma-separated field list such as "title,summary".
// An empty list selects all fields.
func ParseFields(list string) (Field, error) {
	var fields Field
	for name := range strings.SplitSeq(list, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "":
		case "title":
			fields |= FieldTitle
		case "summary":
			fields |= FieldSummary
		case "content":
			fields |= FieldContent
		case "all":
			fields |= FieldAll
		default:
			return 0, fmt.Errorf("unknown field %q (expected title, summary or content)", name)
		}
	}
	return fields, nil
}

// Search returns the articles of corpus that satisfy q, in corpus order.
// The corpus is not modified.
func Search(corpus newsfeed.Corpus, q Query) []newsfeed.Article {
	results := make([]newsfeed.Article, 0)
	if q.MatchNone {
		return results
	}

	m := newMatcher(q)
	for _, article := range corpus {
		if m.matches(article) {
			results = append(results, article)
		}
	}
	return results
}

// Matches reports whether a single article satisfies q.
func Matches(article newsfeed.Article, q Query) bool {
	if q.MatchNone {
		return false
	}
	return newMatcher(q).matches(article)
}

type matcher struct {
	needle string
	date   *newsfeed.Date
	fields Field
	folder cases.Caser
}

func newMatcher(q Query) *matcher {
	fields := q.Fields
	if fields == 0 {
		fields = FieldAll
	}
	m := &matcher{
		date:   q.Date,
		fields: fields,
		folder: cases.Fold(),
	}
	m.needle = m.fold(strings.TrimSpace(q.Text))
	return m
}

func (m *matcher) fold(s string) string {
	return m.folder.String(norm.NFC.String(s))
}

func (m *matcher) matches(article newsfeed.Article) bool {
	return m.matchesDate(article) && m.matchesText(article)
}

func (m *matcher) matchesDate(article newsfeed.Article) bool {
	if m.date == nil {
		return true
	}
	if article.Date == nil {
		return false
	}
	return article.Date.Equal(*m.date)
}

func (m *matcher) matchesText(article newsfeed.Article) bool {
	if m.needle == "" {
		return true
	}
	if m.fields&FieldTitle != 0 && strings.Contains(m.fold(article.Title), m.needle) {
		return true
	}
	if m.fields&FieldSummary != 0 && strings.Contains(m.fold(article.Summary), m.needle) {
		return true
	}
	if m.fields&FieldContent != 0 && strings.Contains(m.fold(article.Content), m.needle) {
		return true
	}
	return false
}
