// Package rss pulls headlines from optional feed sources configured in YAML.
package rss

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/Rayan37307/news-notify/internal/scrape"
)

type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type sourcesFile struct {
	Feeds []Source `yaml:"feeds"`
}

// LoadSources reads the feed list. A missing path is not an error: the
// feature is opt-in and the scripted source works without it.
func LoadSources(path string) ([]Source, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading sources config: %w", err)
	}

	var cfg sourcesFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing sources config: %w", err)
	}

	sources := make([]Source, 0, len(cfg.Feeds))
	for _, s := range cfg.Feeds {
		if strings.TrimSpace(s.URL) == "" {
			continue
		}
		sources = append(sources, s)
	}
	return sources, nil
}

// Fetcher polls RSS/Atom feeds and normalizes their items into articles.
type Fetcher struct {
	parser  *gofeed.Parser
	sources []Source
	limit   int // max items taken per feed
}

func NewFetcher(sources []Source) *Fetcher {
	return &Fetcher{
		parser:  gofeed.NewParser(),
		sources: sources,
		limit:   10,
	}
}

// FetchAll collects recent items across all configured feeds. A feed
// that fails to parse is logged and skipped so one dead source never
// stalls the whole cycle.
func (f *Fetcher) FetchAll(ctx context.Context) []scrape.Article {
	var articles []scrape.Article
	for _, src := range f.sources {
		feed, err := f.parser.ParseURLWithContext(src.URL, ctx)
		if err != nil {
			slog.Warn("feed fetch failed", "source", src.Name, "url", src.URL, "error", err)
			continue
		}

		count := 0
		for _, item := range feed.Items {
			if count >= f.limit {
				break
			}
			title := strings.TrimSpace(item.Title)
			link := strings.TrimSpace(item.Link)
			if title == "" || link == "" {
				continue
			}
			articles = append(articles, scrape.Article{Title: title, URL: link})
			count++
		}
		slog.Debug("feed fetched", "source", src.Name, "items", count)
	}
	return articles
}
