package service

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"os"
	"regexp"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/semaphore"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/repository"
	"echo-vintage-ecard/slots"
)

//go:embed templates/card.html
var templateFS embed.FS

var cardTemplate = template.Must(template.ParseFS(templateFS, "templates/card.html"))

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// cardContentStyles are the inline CSS properties kept in card content
var cardContentStyles = []string{
	"color", "background-color", "font-size", "font-family", "font-weight",
	"font-style", "text-align", "text-decoration", "line-height", "letter-spacing",
}

const (
	defaultBackground    = "#fffaf0"
	defaultEnvelopeColor = "#c8a27a"
	previewWidth         = 600
	previewHeight        = 900

	// MaxConcurrentBrowsers bounds how many Chrome processes render at once
	MaxConcurrentBrowsers = 2
)

// ErrPreviewBusy is returned when no browser slot frees up before the request times out
var ErrPreviewBusy = errors.New("too many previews are being rendered, try again later")

// PreviewService renders a card as standalone HTML and, through headless
// Chrome, as a PNG screenshot or a printable PDF
type PreviewService struct {
	envelopes  repository.EnvelopeRepositoryInterface
	stamps     repository.StampRepositoryInterface
	music      repository.MusicRepositoryInterface
	frames     repository.PhotoFrameRepositoryInterface
	stickers   repository.StickerRepositoryInterface
	policy     *bluemonday.Policy
	chromePath string
	browsers   *semaphore.Weighted
}

// NewPreviewService creates a new PreviewService. An empty chromePath means
// the usual install locations are probed.
func NewPreviewService(
	envelopes repository.EnvelopeRepositoryInterface,
	stamps repository.StampRepositoryInterface,
	music repository.MusicRepositoryInterface,
	frames repository.PhotoFrameRepositoryInterface,
	stickers repository.StickerRepositoryInterface,
	chromePath string,
) *PreviewService {
	if chromePath == "" {
		chromePath = detectChromePath()
	}
	policy := bluemonday.UGCPolicy()
	policy.AllowStyling()
	// Only text styling survives; url() values and layout properties are dropped
	policy.AllowAttrs("style").Globally()
	policy.AllowStyles(cardContentStyles...).Globally()

	return &PreviewService{
		envelopes:  envelopes,
		stamps:     stamps,
		music:      music,
		frames:     frames,
		stickers:   stickers,
		policy:     policy,
		chromePath: chromePath,
		browsers:   semaphore.NewWeighted(MaxConcurrentBrowsers),
	}
}

// detectChromePath returns the first Chrome/Chromium binary found, or "" to
// let chromedp look it up itself
func detectChromePath() string {
	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

type placedPhoto struct {
	slots.Slot
	PhotoURL string
}

type cardView struct {
	Card          *models.Card
	Content       template.HTML
	Background    string
	EnvelopeColor string
	Stamp         *models.Stamp
	Music         *models.MusicTrack
	Frame         *models.PhotoFrame
	Slots         []placedPhoto
	Stickers      []models.Sticker
}

// RenderHTML builds the card page. Missing catalogue items are left out of
// the page instead of failing the render.
func (s *PreviewService) RenderHTML(ctx context.Context, card *models.Card) (string, error) {
	view := cardView{
		Card:          card,
		Content:       template.HTML(s.policy.Sanitize(card.Content)),
		Background:    safeColor(card.BackgroundColor, defaultBackground),
		EnvelopeColor: defaultEnvelopeColor,
	}

	if card.EnvelopeID != nil {
		env, err := s.envelopes.GetByID(ctx, *card.EnvelopeID)
		if err := skipMissing(err); err != nil {
			return "", err
		}
		if env != nil {
			view.EnvelopeColor = safeColor(env.Color, defaultEnvelopeColor)
		}
	}
	if card.StampID != nil {
		stamp, err := s.stamps.GetByID(ctx, *card.StampID)
		if err := skipMissing(err); err != nil {
			return "", err
		}
		view.Stamp = stamp
	}
	if card.MusicID != nil {
		track, err := s.music.GetByID(ctx, *card.MusicID)
		if err := skipMissing(err); err != nil {
			return "", err
		}
		view.Music = track
	}
	if card.PhotoFrameID != nil {
		frame, err := s.frames.GetByID(ctx, *card.PhotoFrameID)
		if err := skipMissing(err); err != nil {
			return "", err
		}
		view.Frame = frame
		if frame != nil {
			view.Slots = placePhotos(frame.Slots, card.PhotoURLs)
		}
	}
	for _, id := range card.StickerIDs {
		sticker, err := s.stickers.GetByID(ctx, id)
		if err := skipMissing(err); err != nil {
			return "", err
		}
		if sticker != nil {
			view.Stickers = append(view.Stickers, *sticker)
		}
	}

	var buf bytes.Buffer
	if err := cardTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// placePhotos pairs photos with slots in order; extra photos or slots are dropped
func placePhotos(frameSlots []slots.Slot, photos []string) []placedPhoto {
	n := len(frameSlots)
	if len(photos) < n {
		n = len(photos)
	}
	placed := make([]placedPhoto, 0, n)
	for i := 0; i < n; i++ {
		placed = append(placed, placedPhoto{Slot: frameSlots[i], PhotoURL: photos[i]})
	}
	return placed
}

func skipMissing(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

func safeColor(c, fallback string) string {
	if colorPattern.MatchString(c) {
		return c
	}
	return fallback
}

// browser starts a headless Chrome once a slot is free. The returned cancel
// func closes the browser and frees the slot.
func (s *PreviewService) browser(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if err := s.browsers.Acquire(ctx, 1); err != nil {
		log.Printf("⚠️  Preview: no browser slot available: %v", err)
		return nil, nil, ErrPreviewBusy
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
		chromedp.WindowSize(previewWidth, previewHeight),
	)
	if s.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(s.chromePath))
	} else {
		log.Printf("⚠️  Chrome not found in common paths, letting chromedp auto-detect")
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	return browserCtx, func() {
		browserCancel()
		allocCancel()
		s.browsers.Release(1)
	}, nil
}

// loadHTML replaces the blank page's document with the rendered card
func loadHTML(htmlContent string) chromedp.Tasks {
	return chromedp.Tasks{
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.Sleep(500 * time.Millisecond), // let images load
	}
}

// RenderPNG screenshots the rendered card
func (s *PreviewService) RenderPNG(ctx context.Context, card *models.Card) ([]byte, error) {
	htmlContent, err := s.RenderHTML(ctx, card)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	browserCtx, closeBrowser, err := s.browser(ctx)
	if err != nil {
		return nil, err
	}
	defer closeBrowser()

	var buf []byte
	err = chromedp.Run(browserCtx,
		chromedp.EmulateViewport(previewWidth, previewHeight),
		loadHTML(htmlContent),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}
	log.Printf("✅ PNG preview generated for card %s (%d bytes)", card.Slug, len(buf))
	return buf, nil
}

// RenderPDF prints the rendered card to an A5 PDF
func (s *PreviewService) RenderPDF(ctx context.Context, card *models.Card) ([]byte, error) {
	htmlContent, err := s.RenderHTML(ctx, card)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	browserCtx, closeBrowser, err := s.browser(ctx)
	if err != nil {
		return nil, err
	}
	defer closeBrowser()

	var pdfBuf []byte
	err = chromedp.Run(browserCtx,
		loadHTML(htmlContent),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A5 portrait: 148mm x 210mm
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(5.83).
				WithPaperHeight(8.27).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	log.Printf("✅ PDF preview generated for card %s (%d bytes)", card.Slug, len(pdfBuf))
	return pdfBuf, nil
}
