package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/discovery"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/newsfeed"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
)

// Output formats.
const (
	formatTable   = "table"
	formatJSON    = "json"
	formatCompact = "compact"
)

// Display widths for table columns, in terminal cells.
const (
	titleWidth   = 48
	summaryWidth = 60
)

func validFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatCompact:
		return nil
	default:
		return fmt.Errorf("unknown format %q (expected table, json or compact)", format)
	}
}

// printArticles writes articles in the given format.
func printArticles(w io.Writer, format string, articles []newsfeed.Article, result *discovery.Result) error {
	switch format {
	case formatJSON:
		return printArticlesJSON(w, articles, result)
	case formatCompact:
		printArticlesCompact(w, articles)
		return nil
	default:
		printArticlesTable(w, articles)
		return nil
	}
}

// printArticlesTable prints articles in a bordered table
func printArticlesTable(w io.Writer, articles []newsfeed.Article) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Date", "Title", "Summary", "Link"})

	for i, article := range articles {
		t.AppendRow(table.Row{
			i + 1,
			dateOrDash(article.Date),
			truncate(article.Title, titleWidth),
			truncate(article.Summary, summaryWidth),
			article.Link,
		})
	}

	t.AppendFooter(table.Row{"", "", "Total", len(articles), ""})
	t.Render()
}

type articlesOutput struct {
	Articles []newsfeed.Article `json:"articles"`
	Total    int                `json:"total"`
	RunID    string             `json:"run_id"`
	Status   string             `json:"status"`
	Warnings []string           `json:"warnings"`
}

// printArticlesJSON prints articles and crawl status as indented JSON
func printArticlesJSON(w io.Writer, articles []newsfeed.Article, result *discovery.Result) error {
	output := articlesOutput{
		Articles: articles,
		Total:    len(articles),
		Warnings: []string{},
	}
	if articles == nil {
		output.Articles = []newsfeed.Article{}
	}
	if result != nil {
		output.RunID = result.RunID.String()
		output.Status = string(result.Status())
		for _, warning := range result.Warnings {
			output.Warnings = append(output.Warnings, warning.String())
		}
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printArticlesCompact prints one line per article
func printArticlesCompact(w io.Writer, articles []newsfeed.Article) {
	for _, article := range articles {
		fmt.Fprintf(w, "%s %s (%s)\n", dateOrDash(article.Date), article.Title, article.Link)
	}
}

// printWarnings lists listing failures of a crawl.
func printWarnings(w io.Writer, result *discovery.Result) {
	if len(result.Warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "Warning: %d listing page(s) could not be read:\n", len(result.Warnings))
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  %s\n", warning.String())
	}
}

// printCrawlSummary prints one line describing a finished crawl.
func printCrawlSummary(w io.Writer, result *discovery.Result) {
	fmt.Fprintf(w, "Crawl %s: %d page(s), %d article(s), %d dropped in %s\n",
		result.Status(),
		result.Pages,
		len(result.Corpus),
		result.Dropped,
		result.Duration().Round(time.Millisecond),
	)
}

func dateOrDash(d *newsfeed.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

// truncate shortens s to at most width display cells. Combining vowel signs
// occupy no cell.
func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, width, "...")
}
