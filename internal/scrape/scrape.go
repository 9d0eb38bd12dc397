// Package scrape extracts the article list from the rendered front page.
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Rayan37307/news-notify/internal/render"
)

// Article is one list entry. Identity is URL.
type Article struct {
	Title string
	URL   string
}

// ListConfig describes where and how to find articles on the front page.
type ListConfig struct {
	URL           string
	WaitSelector  string // element the renderer waits for
	ItemSelector  string // one match per article
	TitleSelector string // title element inside an item
}

// Latest renders the list page and returns every article it can parse. An
// article that is missing its link or title is skipped; the others proceed.
func Latest(ctx context.Context, r render.Renderer, cfg ListConfig) ([]Article, error) {
	html, err := r.Render(ctx, cfg.URL, cfg.WaitSelector)
	if err != nil {
		return nil, fmt.Errorf("render list page: %w", err)
	}
	return Parse(html, cfg)
}

// Parse extracts articles from already-rendered markup.
func Parse(html string, cfg ListConfig) ([]Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse list page: %w", err)
	}

	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse list url: %w", err)
	}

	var articles []Article
	doc.Find(cfg.ItemSelector).Each(func(i int, item *goquery.Selection) {
		href, ok := item.Find("a").First().Attr("href")
		if !ok || href == "" {
			slog.Debug("list item without link, skipping", "index", i)
			return
		}

		title := strings.TrimSpace(item.Find(cfg.TitleSelector).First().Text())
		if title == "" {
			slog.Debug("list item without title, skipping", "index", i)
			return
		}

		link := absolute(base, href)
		if link == "" {
			return
		}
		articles = append(articles, Article{Title: title, URL: link})
	})

	return articles, nil
}

func absolute(base *url.URL, ref string) string {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}
