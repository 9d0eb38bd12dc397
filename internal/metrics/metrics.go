// Package metrics keeps run counters for the monitoring endpoints.
package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesSeen      int64
	NewArticles       int64
	ImagesResolved    int64
	PlaceholderCards  int64
	CardsComposed     int64
	PhotosSent        int64
	PublishFailures   int64
	DuplicatesSkipped int64

	// Status
	LastCycleTime     time.Duration
	LastRunTime       time.Time
	LastErrorTime     time.Time
	LastError         string
	IsHealthy         bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddArticlesSeen(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesSeen += int64(n)
}

func (m *Metrics) IncrementNewArticles() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NewArticles++
}

func (m *Metrics) IncrementImagesResolved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ImagesResolved++
}

func (m *Metrics) IncrementPlaceholderCards() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlaceholderCards++
}

func (m *Metrics) IncrementCardsComposed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CardsComposed++
}

func (m *Metrics) IncrementPhotosSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PhotosSent++
}

func (m *Metrics) IncrementPublishFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishFailures++
}

func (m *Metrics) IncrementDuplicatesSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesSkipped++
}

func (m *Metrics) RecordCycle(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastCycleTime = duration
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_seen":      m.ArticlesSeen,
		"new_articles":       m.NewArticles,
		"images_resolved":    m.ImagesResolved,
		"placeholder_cards":  m.PlaceholderCards,
		"cards_composed":     m.CardsComposed,
		"photos_sent":        m.PhotosSent,
		"publish_failures":   m.PublishFailures,
		"duplicates_skipped": m.DuplicatesSkipped,
		"last_cycle_time_ms": m.LastCycleTime.Milliseconds(),
		"last_run_time":      m.LastRunTime.Format(time.RFC3339),
		"last_error_time":    m.LastErrorTime.Format(time.RFC3339),
		"last_error":         m.LastError,
		"is_healthy":         m.IsHealthy,
	}
}
