package newsfeed

// ArticleStub is the partial article metadata found on a listing page, before
// the article itself has been fetched.
type ArticleStub struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Summary string `json:"summary"`
	Date    *Date  `json:"date,omitempty"`
}

// Article is a fully extracted article. Content holds the script-filtered
// body text.
type Article struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Summary string `json:"summary"`
	Content string `json:"content"`
	Date    *Date  `json:"date,omitempty"`
}

// NewArticle builds an article from a stub and its extracted content.
func NewArticle(stub ArticleStub, content string) Article {
	return Article{
		Title:   stub.Title,
		Link:    stub.Link,
		Summary: stub.Summary,
		Content: content,
		Date:    stub.Date,
	}
}

// Complete reports whether the article has a title, link and content. Only
// complete articles belong in a Corpus.
func (a Article) Complete() bool {
	return a.Title != "" && a.Link != "" && a.Content != ""
}

// Corpus is the ordered set of articles from one crawl run. Order is
// discovery order: page order first, then position within the page. The same
// link may appear more than once.
type Corpus []Article

// Add appends the article if it is complete and reports whether it did.
func (c *Corpus) Add(a Article) bool {
	if !a.Complete() {
		return false
	}
	*c = append(*c, a)
	return true
}

// Links returns the article links in corpus order.
func (c Corpus) Links() []string {
	links := make([]string, 0, len(c))
	for _, a := range c {
		links = append(links, a.Link)
	}
	return links
}

// Dedupe returns a new corpus keeping only the first article for each link.
func (c Corpus) Dedupe() Corpus {
	seen := make(map[string]struct{}, len(c))
	out := make(Corpus, 0, len(c))
	for _, a := range c {
		if _, ok := seen[a.Link]; ok {
			continue
		}
		seen[a.Link] = struct{}{}
		out = append(out, a)
	}
	return out
}
