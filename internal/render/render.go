// Package render is the seam between the pipeline and the headless browser.
// The source pages are script-rendered, so a plain HTTP GET is not enough.
package render

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// Renderer returns fully script-executed markup for a URL. waitSelector names
// an element that must be present before the markup is captured.
type Renderer interface {
	Render(ctx context.Context, url, waitSelector string) (string, error)
}

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"

// Chrome renders pages with a headless Chrome instance. Every call gets its
// own scratch user-data dir so concurrent or crashed runs never fight over a
// profile lock; the dir is removed on every exit path.
type Chrome struct {
	binPath   string
	extraArgs []string
	cacheDir  string
	timeout   time.Duration
}

// NewChrome builds a renderer. binPath and cacheDir may be empty; extraArgs
// holds additional whitespace-separated launch flags.
func NewChrome(binPath, extraArgs, cacheDir string, timeout time.Duration) *Chrome {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Chrome{
		binPath:   binPath,
		extraArgs: strings.Fields(extraArgs),
		cacheDir:  cacheDir,
		timeout:   timeout,
	}
}

func (c *Chrome) Render(ctx context.Context, url, waitSelector string) (html string, err error) {
	profileDir, err := os.MkdirTemp(c.cacheDir, "newsnotify-chrome-")
	if err != nil {
		return "", fmt.Errorf("create scratch profile dir: %w", err)
	}
	defer os.RemoveAll(profileDir)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(userAgent),
		chromedp.UserDataDir(profileDir),
	)
	if c.binPath != "" {
		opts = append(opts, chromedp.ExecPath(c.binPath))
	}
	for _, arg := range c.extraArgs {
		name, value := splitFlag(arg)
		opts = append(opts, chromedp.Flag(name, value))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, c.timeout)
	defer cancelTimeout()

	if waitSelector == "" {
		waitSelector = "body"
	}

	err = chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(waitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	return html, nil
}

// splitFlag turns "--foo=bar" or "foo" into a chromedp flag name and value.
func splitFlag(arg string) (string, interface{}) {
	arg = strings.TrimLeft(arg, "-")
	if name, value, ok := strings.Cut(arg, "="); ok {
		return name, value
	}
	return arg, true
}
