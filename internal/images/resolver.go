// Package images finds and validates the best available image for an article.
//
// The resolver runs a fixed priority order of extraction stages over the
// article's rendered markup: meta tags, then JSON-LD structured data, then
// scored inline <img> elements with a single one-hop link follow. The first
// stage that produces a validator-accepted image wins; if none does, the
// caller falls back to a placeholder card.
package images

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Rayan37307/news-notify/internal/render"
)

// Stage names one extraction strategy, for logging.
type Stage string

const (
	StageMeta   Stage = "meta"
	StageJSONLD Stage = "jsonld"
	StageInline Stage = "inline"
)

// logoKeywords reject URLs that point at site chrome rather than content.
// An absent or unparseable URL is treated the same way.
var logoKeywords = []string{"logo", "favicon", "sprite", "placeholder", "default", "avatar"}

// contentKeywords boost images nested in article containers (+2).
var contentKeywords = []string{"article", "entry", "content", "post", "news"}

// prominenceKeywords boost images that are marked as the lead visual (+3).
var prominenceKeywords = []string{"featured", "main", "hero", "lead"}

// maxInlineCandidates caps how many scored inline images are validated.
const maxInlineCandidates = 8

// Resolver drives the staged search. It is a pure function of its inputs:
// the same markup and the same validator verdicts produce the same image.
type Resolver struct {
	renderer  render.Renderer
	validator *Validator
}

func NewResolver(r render.Renderer, v *Validator) *Resolver {
	return &Resolver{renderer: r, validator: v}
}

// Resolve renders the article page and returns the first validator-accepted
// image, or nil when every stage comes up empty. Failures inside a stage
// degrade to the next stage rather than propagating.
func (r *Resolver) Resolve(ctx context.Context, articleURL string) *ValidatedImage {
	html, err := r.renderer.Render(ctx, articleURL, "body")
	if err != nil {
		slog.Warn("article page render failed", "url", articleURL, "error", err)
		return nil
	}
	return r.ResolveFromHTML(ctx, articleURL, html)
}

// ResolveFromHTML runs the stages over already-rendered markup. The one-hop
// follow in the inline stage still uses the renderer.
func (r *Resolver) ResolveFromHTML(ctx context.Context, articleURL, html string) *ValidatedImage {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		slog.Warn("article page parse failed", "url", articleURL, "error", err)
		return nil
	}

	base, err := url.Parse(articleURL)
	if err != nil {
		slog.Warn("bad article url", "url", articleURL, "error", err)
		return nil
	}

	if img := r.fromMetaTags(doc, base); img != nil {
		return img
	}
	if img := r.fromJSONLD(doc, base); img != nil {
		return img
	}
	if img := r.fromInlineImages(ctx, doc, base, articleURL); img != nil {
		return img
	}

	slog.Warn("no usable image found", "url", articleURL)
	return nil
}

// fromMetaTags walks og:image, twitter:image (name then property) and
// itemprop=image in order, validating each present, non-logo candidate.
func (r *Resolver) fromMetaTags(doc *goquery.Document, base *url.URL) *ValidatedImage {
	selectors := []string{
		`meta[property="og:image"]`,
		`meta[name="twitter:image"]`,
		`meta[property="twitter:image"]`,
		`meta[itemprop="image"]`,
	}

	for _, sel := range selectors {
		content, ok := doc.Find(sel).First().Attr("content")
		if !ok {
			continue
		}
		abs := absolute(base, content)
		if isLogoLike(abs) {
			continue
		}
		if img := r.validator.Validate(abs); img != nil {
			slog.Info("using image", "stage", StageMeta, "url", abs)
			return img
		}
	}
	return nil
}

// fromJSONLD parses each embedded JSON-LD block and tries any image field it
// finds. The field may be a plain string, a list (first element), or an
// object carrying a url key. Malformed blocks are skipped.
func (r *Resolver) fromJSONLD(doc *goquery.Document, base *url.URL) *ValidatedImage {
	var found *ValidatedImage

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data interface{}
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}

		var objects []map[string]interface{}
		switch v := data.(type) {
		case map[string]interface{}:
			objects = append(objects, v)
		case []interface{}:
			for _, item := range v {
				if obj, ok := item.(map[string]interface{}); ok {
					objects = append(objects, obj)
				}
			}
		}

		for _, obj := range objects {
			candidate := imageFieldURL(obj["image"])
			if candidate == "" {
				continue
			}
			abs := absolute(base, candidate)
			if isLogoLike(abs) {
				continue
			}
			if img := r.validator.Validate(abs); img != nil {
				slog.Info("using image", "stage", StageJSONLD, "url", abs)
				found = img
				return false
			}
		}
		return true
	})

	return found
}

// imageFieldURL extracts a URL string from a JSON-LD image field.
func imageFieldURL(field interface{}) string {
	switch v := field.(type) {
	case string:
		return v
	case []interface{}:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	case map[string]interface{}:
		if s, ok := v["url"].(string); ok {
			return s
		}
	}
	return ""
}

type inlineCandidate struct {
	url        string
	score      int
	parentHref string
}

// fromInlineImages collects every <img>-like element, scores the survivors by
// placement keywords, and validates the top candidates in score order. When a
// candidate fails validation but sits inside a link to another page, that
// link is followed exactly once for a substitute.
func (r *Resolver) fromInlineImages(ctx context.Context, doc *goquery.Document, base *url.URL, articleURL string) *ValidatedImage {
	var candidates []inlineCandidate

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := firstAttr(img, "src", "data-src", "data-original")
		if src == "" {
			if srcset, ok := img.Attr("srcset"); ok {
				src = firstSrcsetURL(srcset)
			}
		}
		if src == "" {
			return
		}

		abs := absolute(base, src)
		if isLogoLike(abs) {
			return
		}

		score := 0
		parentClass := strings.ToLower(img.Parent().AttrOr("class", ""))
		if containsAny(parentClass, contentKeywords) {
			score += 2
		}
		if classHasAny(img.AttrOr("class", ""), prominenceKeywords) {
			score += 3
		}

		var parentHref string
		if parent := img.Parent(); goquery.NodeName(parent) == "a" {
			if href, ok := parent.Attr("href"); ok {
				parentHref = absolute(base, href)
			}
		}

		candidates = append(candidates, inlineCandidate{url: abs, score: score, parentHref: parentHref})
	})

	// Stable: document order breaks score ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	for i, c := range candidates {
		if i >= maxInlineCandidates {
			break
		}
		if img := r.validator.Validate(c.url); img != nil {
			slog.Info("using image", "stage", StageInline, "url", c.url, "score", c.score)
			return img
		}
		if c.parentHref != "" && c.parentHref != articleURL {
			if img := r.followLink(ctx, c.parentHref); img != nil {
				return img
			}
		}
	}
	return nil
}

// followLink fetches the linked page and tries its og:image, then its first
// inline image. One hop only; failures here are silent and the caller moves
// on to the next original candidate.
func (r *Resolver) followLink(ctx context.Context, href string) *ValidatedImage {
	html, err := r.renderer.Render(ctx, href, "body")
	if err != nil {
		slog.Debug("follow render failed", "url", href, "error", err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	base, err := url.Parse(href)
	if err != nil {
		return nil
	}

	if content, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok {
		abs := absolute(base, content)
		if !isLogoLike(abs) {
			if img := r.validator.Validate(abs); img != nil {
				slog.Info("using followed page meta image", "url", abs)
				return img
			}
		}
	}

	if src, ok := doc.Find("img").First().Attr("src"); ok {
		abs := absolute(base, src)
		if !isLogoLike(abs) {
			if img := r.validator.Validate(abs); img != nil {
				slog.Info("using followed page inline image", "url", abs)
				return img
			}
		}
	}

	return nil
}

func absolute(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// isLogoLike rejects site-chrome URLs; empty means unresolved and rejected.
func isLogoLike(u string) bool {
	if u == "" {
		return true
	}
	return containsAny(strings.ToLower(u), logoKeywords)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// classHasAny checks whole class tokens, not substrings.
func classHasAny(class string, keywords []string) bool {
	for _, token := range strings.Fields(class) {
		for _, k := range keywords {
			if token == k {
				return true
			}
		}
	}
	return false
}

func firstAttr(s *goquery.Selection, names ...string) string {
	for _, name := range names {
		if v, ok := s.Attr(name); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// firstSrcsetURL pulls the first URL out of a srcset attribute.
func firstSrcsetURL(srcset string) string {
	entry, _, _ := strings.Cut(srcset, ",")
	fields := strings.Fields(entry)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
