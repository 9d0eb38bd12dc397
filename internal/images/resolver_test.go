package images

import (
	"context"
	"fmt"
	"testing"
)

// pageRenderer maps URLs to canned markup and counts renders per URL.
type pageRenderer struct {
	pages   map[string]string
	renders map[string]int
}

func newPageRenderer(pages map[string]string) *pageRenderer {
	return &pageRenderer{pages: pages, renders: make(map[string]int)}
}

func (p *pageRenderer) Render(_ context.Context, url, _ string) (string, error) {
	p.renders[url]++
	html, ok := p.pages[url]
	if !ok {
		return "", fmt.Errorf("no page for %s", url)
	}
	return html, nil
}

func TestResolve_MetaStageWinsOverInline(t *testing.T) {
	t.Parallel()

	srv := imageServer(t, map[string][]byte{
		"/meta.png":   pngBytes(t, 800, 600),
		"/inline.png": pngBytes(t, 500, 500),
	})

	// The inline image carries the highest possible score, but stage order is
	// the top-level tie-break: the og:image must win.
	article := "https://news.example.com/story"
	html := fmt.Sprintf(`<html><head>
		<meta property="og:image" content="%s/meta.png">
	</head><body>
		<div class="article-content"><img class="featured" src="%s/inline.png"></div>
	</body></html>`, srv.URL, srv.URL)

	r := NewResolver(newPageRenderer(map[string]string{article: html}), NewValidator(srv.Client()))
	img := r.Resolve(context.Background(), article)
	if img == nil {
		t.Fatal("expected an image")
	}
	if img.Width != 800 || img.Height != 600 {
		t.Fatalf("got %dx%d image, want the 800x600 meta image", img.Width, img.Height)
	}
}

func TestResolve_MetaFallsThroughToLaterMetaTags(t *testing.T) {
	t.Parallel()

	srv := imageServer(t, map[string][]byte{
		"/twitter.png": pngBytes(t, 640, 480),
	})

	// og:image is present but undersized at the server, twitter:image works.
	srvSmall := imageServer(t, map[string][]byte{"/og.png": pngBytes(t, 100, 100)})

	article := "https://news.example.com/story"
	html := fmt.Sprintf(`<html><head>
		<meta property="og:image" content="%s/og.png">
		<meta name="twitter:image" content="%s/twitter.png">
	</head><body></body></html>`, srvSmall.URL, srv.URL)

	r := NewResolver(newPageRenderer(map[string]string{article: html}), NewValidator(nil))
	if img := r.Resolve(context.Background(), article); img == nil {
		t.Fatal("expected twitter:image fallback to be used")
	}
}

func TestResolve_LogoLikeMetaSkipped(t *testing.T) {
	t.Parallel()

	srv := imageServer(t, map[string][]byte{
		"/site-logo.png": pngBytes(t, 800, 600),
	})

	article := "https://news.example.com/story"
	html := fmt.Sprintf(`<html><head>
		<meta property="og:image" content="%s/site-logo.png">
	</head><body></body></html>`, srv.URL)

	r := NewResolver(newPageRenderer(map[string]string{article: html}), NewValidator(srv.Client()))
	if img := r.Resolve(context.Background(), article); img != nil {
		t.Fatal("logo-like URL must be rejected regardless of validity")
	}
}

func TestResolve_JSONLDShapes(t *testing.T) {
	t.Parallel()

	srv := imageServer(t, map[string][]byte{
		"/ld.png": pngBytes(t, 800, 600),
	})

	shapes := []string{
		fmt.Sprintf(`{"@type":"NewsArticle","image":"%s/ld.png"}`, srv.URL),
		fmt.Sprintf(`{"@type":"NewsArticle","image":["%s/ld.png","%s/other.png"]}`, srv.URL, srv.URL),
		fmt.Sprintf(`{"@type":"NewsArticle","image":{"url":"%s/ld.png"}}`, srv.URL),
		fmt.Sprintf(`[{"@type":"WebPage"},{"@type":"NewsArticle","image":"%s/ld.png"}]`, srv.URL),
	}

	for i, block := range shapes {
		article := "https://news.example.com/story"
		html := fmt.Sprintf(`<html><head>
			<script type="application/ld+json">not json at all</script>
			<script type="application/ld+json">%s</script>
		</head><body></body></html>`, block)

		r := NewResolver(newPageRenderer(map[string]string{article: html}), NewValidator(srv.Client()))
		if img := r.Resolve(context.Background(), article); img == nil {
			t.Errorf("shape %d: expected JSON-LD image to resolve", i)
		}
	}
}

func TestResolve_InlineScoringOrder(t *testing.T) {
	t.Parallel()

	// Only the hero image exists on the server; lower-scored candidates fail
	// validation, so the hero must come out on top and be returned.
	srv := imageServer(t, map[string][]byte{
		"/hero.png": pngBytes(t, 800, 600),
	})

	article := "https://news.example.com/story"
	html := fmt.Sprintf(`<html><body>
		<img src="%s/plain.png">
		<div class="article-content"><img src="%s/in-article.png"></div>
		<div class="sidebar"><img class="hero" src="%s/hero.png"></div>
	</body></html>`, srv.URL, srv.URL, srv.URL)

	r := NewResolver(newPageRenderer(map[string]string{article: html}), NewValidator(srv.Client()))
	img := r.Resolve(context.Background(), article)
	if img == nil {
		t.Fatal("expected the hero image to be resolved")
	}
}

func TestResolve_SrcsetAndLazyAttrs(t *testing.T) {
	t.Parallel()

	srv := imageServer(t, map[string][]byte{
		"/lazy.png":   pngBytes(t, 640, 480),
		"/srcset.png": pngBytes(t, 640, 480),
	})

	for _, tag := range []string{
		fmt.Sprintf(`<img data-src="%s/lazy.png">`, srv.URL),
		fmt.Sprintf(`<img data-original="%s/lazy.png">`, srv.URL),
		fmt.Sprintf(`<img srcset="%s/srcset.png 1x, %s/srcset2x.png 2x">`, srv.URL, srv.URL),
	} {
		article := "https://news.example.com/story"
		html := fmt.Sprintf(`<html><body>%s</body></html>`, tag)
		r := NewResolver(newPageRenderer(map[string]string{article: html}), NewValidator(srv.Client()))
		if img := r.Resolve(context.Background(), article); img == nil {
			t.Errorf("tag %q: expected lazy attribute candidate to resolve", tag)
		}
	}
}

func TestResolve_OneHopFollowNoSecondHop(t *testing.T) {
	t.Parallel()

	srv := imageServer(t, map[string][]byte{
		"/detail-og.png": pngBytes(t, 800, 600),
	})

	article := "https://news.example.com/story"
	detail := "https://news.example.com/photo-detail"

	// The inline candidate 404s; its wrapping link leads to a detail page
	// whose og:image validates. The detail page also links onward, but no
	// second hop may be attempted.
	articleHTML := fmt.Sprintf(`<html><body>
		<a href="%s"><img src="%s/broken.png"></a>
	</body></html>`, detail, srv.URL)
	detailHTML := fmt.Sprintf(`<html><head>
		<meta property="og:image" content="%s/detail-og.png">
	</head><body>
		<a href="https://news.example.com/deeper"><img src="%s/also-broken.png"></a>
	</body></html>`, srv.URL, srv.URL)

	renderer := newPageRenderer(map[string]string{article: articleHTML, detail: detailHTML})
	r := NewResolver(renderer, NewValidator(srv.Client()))

	img := r.Resolve(context.Background(), article)
	if img == nil {
		t.Fatal("expected the followed page's og:image to be used")
	}
	if renderer.renders["https://news.example.com/deeper"] != 0 {
		t.Fatal("a second hop was attempted")
	}
	if renderer.renders[detail] != 1 {
		t.Fatalf("detail page rendered %d times, want 1", renderer.renders[detail])
	}
}

func TestResolve_OneHopFailureIsSilent(t *testing.T) {
	t.Parallel()

	article := "https://news.example.com/story"
	detail := "https://news.example.com/photo-detail"

	articleHTML := fmt.Sprintf(`<html><body>
		<a href="%s"><img src="https://img.example.com/broken.png"></a>
	</body></html>`, detail)

	// Detail page render fails (not in map); resolver must return nil, not error.
	renderer := newPageRenderer(map[string]string{article: articleHTML})
	r := NewResolver(renderer, NewValidator(nil))
	if img := r.Resolve(context.Background(), article); img != nil {
		t.Fatal("expected nil when every stage fails")
	}
}

func TestResolve_EmptyPage(t *testing.T) {
	t.Parallel()

	article := "https://news.example.com/story"
	r := NewResolver(newPageRenderer(map[string]string{article: "<html><body></body></html>"}), NewValidator(nil))
	if img := r.Resolve(context.Background(), article); img != nil {
		t.Fatal("expected nil for a page without images")
	}
}

func TestIsLogoLike(t *testing.T) {
	t.Parallel()

	rejected := []string{
		"",
		"https://cdn.example.com/assets/LOGO.png",
		"https://cdn.example.com/favicon.ico",
		"https://cdn.example.com/img/sprite-sheet.png",
		"https://cdn.example.com/img/placeholder.jpg",
		"https://cdn.example.com/themes/default/banner.jpg",
		"https://cdn.example.com/user/avatar.jpg",
	}
	for _, u := range rejected {
		if !isLogoLike(u) {
			t.Errorf("expected %q rejected as logo-like", u)
		}
	}
	if isLogoLike("https://cdn.example.com/2026/08/flood-dhaka.jpg") {
		t.Error("content image wrongly rejected")
	}
}

func TestFirstSrcsetURL(t *testing.T) {
	t.Parallel()

	if got := firstSrcsetURL("https://a/1.jpg 480w, https://a/2.jpg 800w"); got != "https://a/1.jpg" {
		t.Errorf("got %q", got)
	}
	if got := firstSrcsetURL("   "); got != "" {
		t.Errorf("got %q for blank srcset", got)
	}
}
