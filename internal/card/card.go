// Package card composites article titles and images onto the branded
// template. All geometry is proportional to the loaded template's size, so
// swapping the asset for a bigger one keeps the layout intact.
package card

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/Rayan37307/news-notify/internal/images"
	"github.com/Rayan37307/news-notify/internal/sanitize"
)

const (
	// Plain background used when the template asset is missing.
	fallbackWidth  = 900
	fallbackHeight = 600

	// The article image is first upscaled to this height to maximize
	// sampling quality before the cover crop.
	preScaleHeight = 680

	maxTitleLines = 3
	lineGap       = 6
	ellipsis      = "…"

	placeholderLabel = "NEWS IMAGE"
)

// DefaultFontPaths is the ordered font candidate list; the compositor falls
// back to a built-in face when none of these load.
var DefaultFontPaths = []string{
	"/usr/share/fonts/cambria-bold.ttf",
	"/usr/share/fonts/cambria.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

const (
	titleFontPoints = 60.0
	dateFontPoints  = 18.0
	labelFontPoints = 16.0
)

var (
	accentColor     = color.NRGBA{R: 220, G: 0, B: 0, A: 255}
	placeholderFill = color.NRGBA{R: 240, G: 240, B: 240, A: 255}
	placeholderInk  = color.NRGBA{R: 150, G: 150, B: 150, A: 255}
	backgroundSolid = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// Compositor renders finished cards. It is stateless between calls; the same
// inputs produce the same card (modulo the clock).
type Compositor struct {
	templatePath string
	fontPaths    []string
	now          func() time.Time
}

// New builds a compositor. fontPaths may be nil to use DefaultFontPaths.
func New(templatePath string, fontPaths []string) *Compositor {
	if len(fontPaths) == 0 {
		fontPaths = DefaultFontPaths
	}
	return &Compositor{
		templatePath: templatePath,
		fontPaths:    fontPaths,
		now:          time.Now,
	}
}

// Compose produces a PNG card for the article. img may be nil, in which case
// the image region holds a placeholder. Compose never panics; unrecoverable
// failures come back as an error and the article is simply retried next poll.
func (c *Compositor) Compose(title, articleURL string, img *images.ValidatedImage) (card []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			card = nil
			err = fmt.Errorf("compose: %v", r)
		}
	}()

	slog.Debug("composing card", "url", articleURL, "has_image", img != nil)
	title = sanitize.Mask(title)

	canvas := c.loadTemplate()
	w := canvas.Bounds().Dx()
	h := canvas.Bounds().Dy()
	dc := gg.NewContextForImage(canvas)

	// Image region: proportional margins, slight inset, small top cut.
	margin := int(float64(w) * 0.027)
	topY := margin
	topHeight := int(float64(h)*0.55) + 12
	const inset, topCut = 4, 5
	x0 := margin + inset
	y0 := topY + topCut
	x1 := w - margin - inset
	y1 := topY + topHeight - margin
	boxW := x1 - x0
	boxH := y1 - y0
	radius := float64(min(boxW, boxH)) * 0.03

	if img != nil {
		if decoded, derr := imaging.Decode(bytes.NewReader(img.Bytes)); derr == nil {
			c.drawArticleImage(dc, decoded, x0, y0, boxW, boxH, radius)
		} else {
			slog.Error("article image decode failed, using placeholder", "error", derr)
			c.drawPlaceholder(dc, x0, y0, boxW, boxH, radius)
		}
	} else {
		c.drawPlaceholder(dc, x0, y0, boxW, boxH, radius)
	}

	// Info bar: current Dhaka date, left-aligned, no time-of-day.
	barHeight := int(float64(h) * 0.10)
	barY := y1 + margin/2
	c.setFont(dc, dateFontPoints)
	dc.SetColor(color.White)
	dc.DrawString(dhakaDate(c.now()), float64(margin+20), float64(barY+40)+dc.FontHeight())

	// Title: up to three centered lines below the bar.
	c.setFont(dc, titleFontPoints)
	sideInset := int(float64(margin) * 1.5)
	maxTextWidth := float64(w - 2*sideInset)
	y := float64(barY + barHeight + 28)
	for _, line := range wrapTitle(dc, title, maxTextWidth) {
		lw, lh := dc.MeasureString(line)
		dc.DrawString(line, (float64(w)-lw)/2, y+lh)
		y += lh + lineGap
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encode card: %w", err)
	}
	return buf.Bytes(), nil
}

// loadTemplate opens the background asset, falling back to a plain canvas.
func (c *Compositor) loadTemplate() image.Image {
	tpl, err := imaging.Open(c.templatePath)
	if err != nil {
		slog.Warn("template missing, using plain background", "path", c.templatePath, "error", err)
		return imaging.New(fallbackWidth, fallbackHeight, backgroundSolid)
	}
	return tpl
}

// drawArticleImage cover-fills the box with the article image under a
// rounded mask and draws the accent border.
func (c *Compositor) drawArticleImage(dc *gg.Context, src image.Image, x, y, w, h int, radius float64) {
	fitted := coverFill(src, w, h)

	dc.Push()
	dc.DrawRoundedRectangle(float64(x), float64(y), float64(w), float64(h), radius)
	dc.Clip()
	dc.DrawImage(fitted, x, y)
	dc.ResetClip()
	dc.Pop()

	dc.SetColor(accentColor)
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(float64(x), float64(y), float64(w), float64(h), radius)
	dc.Stroke()
}

// drawPlaceholder fills the box with a neutral rectangle, centers the label
// and draws the same accent border as the image path.
func (c *Compositor) drawPlaceholder(dc *gg.Context, x, y, w, h int, radius float64) {
	dc.SetColor(placeholderFill)
	dc.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
	dc.Fill()

	c.setFont(dc, labelFontPoints)
	dc.SetColor(placeholderInk)
	dc.DrawStringAnchored(placeholderLabel, float64(x)+float64(w)/2, float64(y)+float64(h)/2, 0.5, 0.5)

	dc.SetColor(accentColor)
	dc.SetLineWidth(3)
	dc.DrawRoundedRectangle(float64(x), float64(y), float64(w), float64(h), radius)
	dc.Stroke()
}

// coverFill resizes src so it fully covers a w×h box without distortion,
// cropping the longer dimension. The intermediate upscale keeps sampling
// quality high for small sources.
func coverFill(src image.Image, w, h int) image.Image {
	pre := imaging.Resize(src, 0, preScaleHeight, imaging.Lanczos)
	return imaging.Fill(pre, w, h, imaging.Center, imaging.Lanczos)
}

// setFont loads the first available candidate font at the given size; the
// built-in face is the guaranteed last resort.
func (c *Compositor) setFont(dc *gg.Context, points float64) {
	for _, path := range c.fontPaths {
		if err := dc.LoadFontFace(path, points); err == nil {
			return
		}
	}
	dc.SetFontFace(basicfont.Face7x13)
}

// dhakaDate formats the current date for the info bar in Bangladesh time.
// When the tz database is unavailable the fixed UTC+6 offset is used.
func dhakaDate(t time.Time) string {
	loc, err := time.LoadLocation("Asia/Dhaka")
	if err != nil {
		loc = time.FixedZone("BST", 6*3600)
	}
	return t.In(loc).Format("Monday | 02 January 2006")
}

// wrapTitle greedily wraps title into at most maxTitleLines lines that fit
// maxWidth as rendered with the context's current font. A single word wider
// than the column is hard-truncated so the loop always makes progress; if
// words remain after the last line, that line is ellipsized back to fit.
func wrapTitle(dc *gg.Context, title string, maxWidth float64) []string {
	words := strings.Fields(title)
	var lines []string
	current := ""
	i := 0

	for i < len(words) && len(lines) < maxTitleLines {
		test := words[i]
		if current != "" {
			test = current + " " + words[i]
		}
		if tw, _ := dc.MeasureString(test); tw <= maxWidth {
			current = test
			i++
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
			continue
		}
		// Single word wider than the column: trim runes until it fits.
		hard := []rune(words[i])
		for len(hard) > 0 {
			if hw, _ := dc.MeasureString(string(hard)); hw <= maxWidth {
				break
			}
			hard = hard[:len(hard)-1]
		}
		if len(hard) == 0 {
			hard = []rune(words[i])[:1]
		}
		lines = append(lines, string(hard))
		i++
	}

	if current != "" && len(lines) < maxTitleLines {
		lines = append(lines, current)
	}

	// Unconsumed words: mark the last line with an ellipsis that still fits.
	if i < len(words) && len(lines) > 0 {
		last := []rune(lines[len(lines)-1])
		for {
			if ew, _ := dc.MeasureString(string(last) + ellipsis); ew <= maxWidth || len(last) == 0 {
				break
			}
			last = last[:len(last)-1]
		}
		lines[len(lines)-1] = string(last) + ellipsis
	}

	return lines
}

