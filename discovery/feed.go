package discovery

import (
	"bytes"
	"fmt"

	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/document"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/newsfeed"
	"github.com/mmcdole/gofeed"
)

// ParseFeed reads an RSS or Atom document into article stubs in feed order.
// gofeed detects the format. Items without a title or link are skipped, and
// relative links are resolved against baseURL.
func ParseFeed(body []byte, baseURL string) ([]newsfeed.ArticleStub, error) {
	fp := gofeed.NewParser()
	feed, err := fp.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	stubs := make([]newsfeed.ArticleStub, 0, len(feed.Items))
	for _, item := range feed.Items {
		stub, ok := feedItemToStub(item, baseURL)
		if !ok {
			continue
		}
		stubs = append(stubs, stub)
	}
	return stubs, nil
}

func feedItemToStub(item *gofeed.Item, baseURL string) (newsfeed.ArticleStub, bool) {
	title := document.NormalizeSpace(item.Title)
	if title == "" || item.Link == "" {
		return newsfeed.ArticleStub{}, false
	}

	link, err := ResolveLink(baseURL, item.Link)
	if err != nil {
		return newsfeed.ArticleStub{}, false
	}

	stub := newsfeed.ArticleStub{
		Title:   title,
		Link:    link,
		Summary: plainText(item.Description),
	}

	// Published first, then updated
	if item.PublishedParsed != nil {
		date := newsfeed.NewDate(*item.PublishedParsed)
		stub.Date = &date
	} else if item.UpdatedParsed != nil {
		date := newsfeed.NewDate(*item.UpdatedParsed)
		stub.Date = &date
	}

	return stub, true
}

// plainText strips markup that feeds commonly embed in descriptions.
func plainText(s string) string {
	if s == "" {
		return ""
	}
	doc, err := document.ParseString(s)
	if err != nil {
		return document.NormalizeSpace(s)
	}
	return document.NormalizeSpace(doc.Text())
}
