// Package crawl is the acquisition collaborator: it fetches news articles
// from configured section pages and writes the metadata table plus one text
// file per article, satisfying the corpus loader's input contract. It knows
// nothing about the retrieval engine.
package crawl

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pressindex/pressindex/pkg/config"
)

// Article is one fetched document before it is written to disk.
type Article struct {
	ID       int
	Title    string
	URL      string
	Date     string
	Filename string
	Content  string
}

// Recorder receives every stored article, e.g. for a database registry.
type Recorder interface {
	Record(ctx context.Context, a Article) error
}

// Crawler fetches articles and materialises the corpus directory.
type Crawler struct {
	cfg      config.CrawlerConfig
	client   *http.Client
	recorder Recorder
	logger   *slog.Logger
}

// New creates a Crawler. recorder may be nil.
func New(cfg config.CrawlerConfig, recorder Recorder) *Crawler {
	return &Crawler{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		recorder: recorder,
		logger:   slog.Default().With("component", "crawler"),
	}
}

// Run crawls the configured sections and writes the corpus. It returns the
// number of articles stored. Individual fetch failures are logged and
// skipped; Run fails only when the output directory or metadata table cannot
// be written.
func (c *Crawler) Run(ctx context.Context) (int, error) {
	articlesDir := filepath.Join(c.cfg.OutputDir, "articles")
	if err := os.MkdirAll(articlesDir, 0755); err != nil {
		return 0, fmt.Errorf("creating articles directory: %w", err)
	}

	links := c.collectLinks(ctx)
	c.logger.Info("article links discovered", "count", len(links))

	articles := make([]Article, 0, c.cfg.MaxArticles)
	nextID := 1
	for _, url := range links {
		if nextID > c.cfg.MaxArticles {
			break
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		article, err := c.fetchArticle(ctx, url)
		if err != nil {
			c.logger.Warn("skipping article", "url", url, "error", err)
			continue
		}
		article.ID = nextID
		article.Date = time.Now().Format("2006-01-02")
		article.Filename = fmt.Sprintf("article_%d.txt", nextID)

		path := filepath.Join(articlesDir, article.Filename)
		if err := os.WriteFile(path, []byte(article.Content), 0644); err != nil {
			return 0, fmt.Errorf("writing article file %s: %w", path, err)
		}
		if c.recorder != nil {
			if err := c.recorder.Record(ctx, article); err != nil {
				c.logger.Error("recording article failed", "doc_id", article.ID, "error", err)
			}
		}

		articles = append(articles, article)
		c.logger.Info("article stored", "doc_id", article.ID, "title", article.Title, "url", url)
		nextID++

		select {
		case <-time.After(c.cfg.FetchDelay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	if err := c.writeMetadata(articles); err != nil {
		return 0, err
	}
	c.logger.Info("crawl complete", "articles", len(articles))
	return len(articles), nil
}

// collectLinks fetches every section page and gathers unique article links,
// returned in sorted order so repeated runs visit them deterministically.
func (c *Crawler) collectLinks(ctx context.Context) []string {
	seen := make(map[string]struct{})
	for _, section := range c.cfg.Sections {
		body, err := c.get(ctx, section)
		if err != nil {
			c.logger.Warn("section fetch failed", "section", section, "error", err)
			continue
		}
		for _, href := range articleLinks(body, section) {
			seen[href] = struct{}{}
		}
	}
	links := make([]string, 0, len(seen))
	for href := range seen {
		links = append(links, href)
	}
	sort.Strings(links)
	return links
}

// fetchArticle downloads one article page and extracts its title and body
// text.
func (c *Crawler) fetchArticle(ctx context.Context, url string) (Article, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return Article{}, err
	}
	title, content, err := parseArticle(body)
	if err != nil {
		return Article{}, err
	}
	if title == "" {
		return Article{}, fmt.Errorf("no title found")
	}
	content = cleanText(content)
	if len(content) < 200 {
		return Article{}, fmt.Errorf("article body too short (%d chars)", len(content))
	}
	return Article{Title: cleanText(title), URL: url, Content: content}, nil
}

func (c *Crawler) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return string(data), nil
}

// writeMetadata writes the metadata CSV the corpus loader consumes.
func (c *Crawler) writeMetadata(articles []Article) error {
	path := filepath.Join(c.cfg.OutputDir, "metadata.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating metadata file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "title", "url", "date", "filename"}); err != nil {
		return fmt.Errorf("writing metadata header: %w", err)
	}
	for _, a := range articles {
		row := []string{strconv.Itoa(a.ID), a.Title, a.URL, a.Date, a.Filename}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing metadata row for doc %d: %w", a.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing metadata file: %w", err)
	}
	return nil
}

// cleanText collapses whitespace and drops non-ASCII characters.
func cleanText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
