// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/AlanSynn/paperef/internal/bibtex"
	"github.com/AlanSynn/paperef/pkg/types"
)

// scholarBase is the Google Scholar search endpoint.
var scholarBase = "https://scholar.google.com/scholar"

// ErrChallenge marks a bot-challenge page. The session retries once after a
// fixed delay before giving up.
var ErrChallenge = errors.New("bot challenge page")

// challengeMarkers are page-text fragments that identify a bot challenge.
var challengeMarkers = []string{
	"unusual traffic",
	"not a robot",
	"captcha",
}

// Scholar drives a headless browser session against Google Scholar. The
// session holds single-threaded UI state, so calls are serialized with a
// mutex; use one Scholar per worker for concurrent resolution.
type Scholar struct {
	cfg types.ScholarConfig

	mu          sync.Mutex
	browser     context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// NewScholar starts a browser session. The caller must Close it on every
// exit path; an unclosed session leaks a browser process.
func NewScholar(cfg types.ScholarConfig) (*Scholar, error) {
	if cfg.WaitMin <= 0 {
		cfg.WaitMin = 500 * time.Millisecond
	}
	if cfg.WaitMax <= cfg.WaitMin {
		cfg.WaitMax = cfg.WaitMin + 500*time.Millisecond
	}
	if cfg.ChallengeDelay <= 0 {
		cfg.ChallengeDelay = 5 * time.Second
	}
	if cfg.ElementTimeout <= 0 {
		cfg.ElementTimeout = 15 * time.Second
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Flag("headless", cfg.Headless))
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browser, cancelCtx := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browser); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	return &Scholar{
		cfg:         cfg,
		browser:     browser,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
	}, nil
}

// Name returns the provider identifier.
func (s *Scholar) Name() string { return "scholar" }

// Close shuts the browser down.
func (s *Scholar) Close() error {
	s.cancelCtx()
	s.cancelAlloc()
	return nil
}

// FetchBibTeX searches Scholar for the query's title and extracts the first
// result's BibTeX export. A bot-challenge page triggers one retry after a
// fixed delay.
func (s *Scholar) FetchBibTeX(ctx context.Context, q types.Query) (string, error) {
	if q.Title == "" {
		return "", fmt.Errorf("scholar lookup requires a title")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.fetchOnce(ctx, q.Title)
	if errors.Is(err, ErrChallenge) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.cfg.ChallengeDelay):
		}
		raw, err = s.fetchOnce(ctx, q.Title)
	}
	if err != nil {
		return "", err
	}

	// Validate before returning so callers never cache garbage.
	if _, err := bibtex.Parse(raw); err != nil {
		return "", fmt.Errorf("scholar returned unparsable citation: %w", err)
	}
	return raw, nil
}

func (s *Scholar) fetchOnce(ctx context.Context, title string) (string, error) {
	run, cancel := s.taskContext(ctx)
	defer cancel()

	searchURL := scholarBase + "?q=" + url.QueryEscape(`"`+title+`"`)

	var pageText string
	err := chromedp.Run(run,
		chromedp.Navigate(searchURL),
		chromedp.WaitReady("body"),
		chromedp.Text("body", &pageText, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("scholar search: %w", err)
	}
	if isChallenge(pageText) {
		return "", ErrChallenge
	}

	s.pause()

	// Open the first result's cite dialog, then follow its BibTeX link.
	var bibURL string
	err = chromedp.Run(run,
		chromedp.Click(".gs_r .gs_or_cit", chromedp.ByQuery),
		chromedp.WaitVisible("#gs_citd", chromedp.ByQuery),
		chromedp.Evaluate(scholarBibTeXLink, &bibURL),
	)
	if err != nil {
		return "", fmt.Errorf("scholar cite dialog: %w", err)
	}
	if bibURL == "" {
		return "", fmt.Errorf("scholar cite dialog has no BibTeX link")
	}

	s.pause()

	var raw string
	err = chromedp.Run(run,
		chromedp.Navigate(bibURL),
		chromedp.Text("pre", &raw, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("scholar citation export: %w", err)
	}
	if isChallenge(raw) {
		return "", ErrChallenge
	}
	return strings.TrimSpace(raw), nil
}

// scholarBibTeXLink locates the BibTeX export link inside the cite dialog.
const scholarBibTeXLink = `(() => {
	const links = document.querySelectorAll('#gs_citd a.gs_citi');
	for (const a of links) {
		if (a.textContent.trim() === 'BibTeX') return a.href;
	}
	return '';
})()`

// taskContext derives a per-action context from the browser session, bounded
// by the element timeout and released early if the caller's context ends.
func (s *Scholar) taskContext(ctx context.Context) (context.Context, context.CancelFunc) {
	run, cancel := context.WithTimeout(s.browser, s.cfg.ElementTimeout)
	stop := context.AfterFunc(ctx, cancel)
	return run, func() {
		stop()
		cancel()
	}
}

// pause sleeps a randomized interval between browser actions to stay under
// rate defenses.
func (s *Scholar) pause() {
	span := s.cfg.WaitMax - s.cfg.WaitMin
	time.Sleep(s.cfg.WaitMin + time.Duration(rand.Int63n(int64(span))))
}

func isChallenge(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range challengeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
