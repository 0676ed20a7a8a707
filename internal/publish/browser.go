// Package publish - browser.go drives a headless browser to post on
// platforms without a usable publishing API. Requires Chrome/Chromium and a
// browser profile that is already logged in to the target platform.
package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/mktdept/content-pipeline/internal/config"
)

// browserTimeout bounds one automated posting session, pacing included.
const browserTimeout = 120 * time.Second

// settleDelay is the pause between automated actions, approximating human
// pacing so platform UIs have time to react.
const settleDelay = 3 * time.Second

// browserTarget describes the composer flow for one platform.
type browserTarget struct {
	FeedURL     string
	ComposerSel string
	EditorSel   string
	SubmitSel   string
}

var browserTargets = map[string]browserTarget{
	"linkedin_browser": {
		FeedURL:     "https://www.linkedin.com/feed/",
		ComposerSel: `button[class*="share-box-feed-entry"]`,
		EditorSel:   `div[role="textbox"]`,
		SubmitSel:   `button[class*="share-actions__primary-action"]`,
	},
	"x_browser": {
		FeedURL:     "https://x.com/home",
		ComposerSel: `a[data-testid="SideNav_NewTweet_Button"]`,
		EditorSel:   `div[data-testid="tweetTextarea_0"]`,
		SubmitSel:   `button[data-testid="tweetButton"]`,
	},
}

// BrowserPublisher posts content by automating a logged-in browser session.
type BrowserPublisher struct {
	userDataDir string
}

// NewBrowserPublisher creates a browser publisher using the default Chrome
// profile directory.
func NewBrowserPublisher() *BrowserPublisher {
	return &BrowserPublisher{}
}

// WithUserDataDir sets the Chrome profile directory holding the logged-in
// session.
func (b *BrowserPublisher) WithUserDataDir(dir string) *BrowserPublisher {
	b.userDataDir = dir
	return b
}

// Publish opens the platform feed, fills the composer, and submits.
// There is no mid-flight cancellation beyond the session timeout.
func (b *BrowserPublisher) Publish(ctx context.Context, profile *config.Profile, content Content) (*Result, error) {
	target, ok := browserTargets[profile.Platform]
	if !ok {
		return nil, fmt.Errorf("no browser automation flow for platform %q", profile.Platform)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if b.userDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(b.userDataDir))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, browserTimeout)
	defer cancel()

	err := chromedp.Run(browserCtx,
		chromedp.Navigate(target.FeedURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settleDelay),
		chromedp.Click(target.ComposerSel, chromedp.NodeVisible),
		chromedp.Sleep(settleDelay),
		chromedp.SendKeys(target.EditorSel, content.Body, chromedp.NodeVisible),
		chromedp.Sleep(settleDelay),
		chromedp.Click(target.SubmitSel, chromedp.NodeVisible),
		chromedp.Sleep(settleDelay),
	)
	if err != nil {
		return &Result{
			Message: fmt.Sprintf("browser automation failed on %s: %v", profile.Platform, err),
		}, nil
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("posted to %s via browser automation", profile.Platform),
	}, nil
}
