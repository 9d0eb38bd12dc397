// Package app wires the pipeline together and runs the polling loop.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Rayan37307/news-notify/internal/card"
	"github.com/Rayan37307/news-notify/internal/config"
	"github.com/Rayan37307/news-notify/internal/images"
	"github.com/Rayan37307/news-notify/internal/metrics"
	"github.com/Rayan37307/news-notify/internal/render"
	"github.com/Rayan37307/news-notify/internal/rss"
	"github.com/Rayan37307/news-notify/internal/sanitize"
	"github.com/Rayan37307/news-notify/internal/scrape"
	"github.com/Rayan37307/news-notify/internal/store"
	"github.com/Rayan37307/news-notify/internal/telegram"
)

// Publisher is the slice of the Telegram client the pipeline needs.
type Publisher interface {
	SendPhoto(ctx context.Context, chatID string, photo []byte, caption string) error
	SendMessage(ctx context.Context, chatID, text string) error
}

type App struct {
	cfg        *config.Config
	store      store.Store
	renderer   render.Renderer
	resolver   *images.Resolver
	compositor *card.Compositor
	publisher  Publisher
	feeds      *rss.Fetcher
}

func New(cfg *config.Config) (*App, error) {
	var st store.Store
	if cfg.DatabaseURL != "" {
		ps, err := store.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		st = ps
	} else {
		st = store.NewFileStore(cfg.PostedLinksFile)
	}

	renderer := render.NewChrome(cfg.ChromeBin, cfg.ChromeExtraArgs, cfg.RenderCacheDir, cfg.RenderTimeout)
	validator := images.NewValidator(nil)

	sources, err := rss.LoadSources(cfg.SourcesPath)
	if err != nil {
		return nil, err
	}
	var feeds *rss.Fetcher
	if len(sources) > 0 {
		feeds = rss.NewFetcher(sources)
	}

	return &App{
		cfg:        cfg,
		store:      st,
		renderer:   renderer,
		resolver:   images.NewResolver(renderer, validator),
		compositor: card.New(cfg.TemplatePath, card.DefaultFontPaths),
		publisher:  telegram.New(cfg.TelegramToken),
		feeds:      feeds,
	}, nil
}

// Run loads the dedup store, then polls until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	if err := a.store.Load(); err != nil {
		return fmt.Errorf("loading posted links: %w", err)
	}

	a.notifyDebug(ctx, "🤖 News bot started")
	slog.Info("bot started", "source", a.cfg.NewsURL, "interval", a.cfg.CheckInterval)

	for {
		start := time.Now()
		err := a.runCycle(ctx)
		metrics.Global.RecordCycle(time.Since(start))

		delay := a.cfg.CheckInterval
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			slog.Error("cycle failed", "error", err)
			metrics.Global.SetError(err.Error())
			a.notifyDebug(ctx, fmt.Sprintf("⚠️ Cycle failed: %v", err))
			delay = a.cfg.ErrorCooldown
		}

		if !sleep(ctx, delay) {
			break
		}
	}

	if err := a.store.Save(); err != nil {
		slog.Error("saving posted links on shutdown", "error", err)
	}
	slog.Info("bot stopped")
	return nil
}

func (a *App) runCycle(ctx context.Context) error {
	articles, err := scrape.Latest(ctx, a.renderer, scrape.ListConfig{
		URL:           a.cfg.NewsURL,
		WaitSelector:  a.cfg.WaitSelector,
		ItemSelector:  a.cfg.ItemSelector,
		TitleSelector: a.cfg.TitleSelector,
	})
	if err != nil {
		return fmt.Errorf("fetching latest articles: %w", err)
	}
	if a.feeds != nil {
		articles = append(articles, a.feeds.FetchAll(ctx)...)
	}
	metrics.Global.AddArticlesSeen(len(articles))

	for _, article := range articles {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if a.store.Contains(article.URL) {
			metrics.Global.IncrementDuplicatesSkipped()
			continue
		}

		metrics.Global.IncrementNewArticles()
		slog.Info("new article", "title", article.Title, "url", article.URL)

		if err := a.processArticle(ctx, article); err != nil {
			slog.Error("publish failed", "url", article.URL, "error", err)
			metrics.Global.IncrementPublishFailures()
			a.notifyDebug(ctx, fmt.Sprintf("⚠️ Failed to post: %s\n%v", article.Title, err))
			continue
		}

		if !sleep(ctx, a.cfg.PublishPause) {
			return ctx.Err()
		}
	}
	return nil
}

// processArticle carries one article from headline to posted card. The
// article is marked posted only after Telegram accepts the photo, so a
// failed send is retried on the next cycle.
func (a *App) processArticle(ctx context.Context, article scrape.Article) error {
	img := a.resolver.Resolve(ctx, article.URL)
	if img != nil {
		metrics.Global.IncrementImagesResolved()
	} else {
		metrics.Global.IncrementPlaceholderCards()
		slog.Warn("no usable image, using placeholder", "url", article.URL)
	}

	photo, err := a.compositor.Compose(article.Title, article.URL, img)
	if err != nil {
		return fmt.Errorf("composing card: %w", err)
	}
	metrics.Global.IncrementCardsComposed()

	caption := fmt.Sprintf("📰 <b>%s</b>\n\n🔗 <a href='%s'>Read Full Article</a>",
		sanitize.Mask(article.Title), article.URL)

	if err := a.publisher.SendPhoto(ctx, a.cfg.TelegramChatID, photo, caption); err != nil {
		return fmt.Errorf("sending photo: %w", err)
	}
	metrics.Global.IncrementPhotosSent()

	if err := a.store.Add(article.URL); err != nil {
		slog.Error("recording posted link", "url", article.URL, "error", err)
	}
	if err := a.store.Save(); err != nil {
		slog.Error("saving posted links", "error", err)
	}

	a.notifyDebug(ctx, fmt.Sprintf("✅ Posted: %s", article.Title))
	return nil
}

func (a *App) notifyDebug(ctx context.Context, text string) {
	if a.cfg.DebugChatID == "" {
		return
	}
	if err := a.publisher.SendMessage(ctx, a.cfg.DebugChatID, text); err != nil {
		slog.Debug("debug notification failed", "error", err)
	}
}

// sleep waits for d or until ctx is done; it reports whether the full
// delay elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
