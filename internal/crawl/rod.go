package crawl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// RodNavigator drives a headless Chromium via rod and records every outbound
// request the page makes.
type RodNavigator struct {
	browser *rod.Browser
	page    *rod.Page
	timeout time.Duration
	log     *zap.Logger

	mu       sync.Mutex
	requests []string

	stopEvents func()
}

func NewRodNavigator(ctx context.Context, timeout time.Duration, log *zap.Logger) (*RodNavigator, error) {
	u, err := launcher.New().Headless(true).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}

	n := &RodNavigator{
		browser: browser,
		page:    page,
		timeout: timeout,
		log:     log,
	}

	eventCtx, cancel := context.WithCancel(ctx)
	n.stopEvents = cancel
	wait := page.Context(eventCtx).EachEvent(func(ev *proto.NetworkRequestWillBeSent) {
		n.mu.Lock()
		n.requests = append(n.requests, ev.Request.URL)
		n.mu.Unlock()
	})
	go wait()

	return n, nil
}

func (n *RodNavigator) Goto(ctx context.Context, url string) error {
	p := n.page.Context(ctx).Timeout(n.timeout)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	return nil
}

func (n *RodNavigator) ClickByRole(ctx context.Context, role, name string) error {
	p := n.page.Context(ctx).Timeout(n.timeout)
	xpath := fmt.Sprintf(`//*[@role=%q]`, role)
	if name != "" {
		xpath = fmt.Sprintf(`//*[@role=%q and contains(normalize-space(.), %q)]`, role, name)
	}
	el, err := p.ElementX(xpath)
	if err != nil {
		return fmt.Errorf("find role=%s name=%s: %w", role, name, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click role=%s name=%s: %w", role, name, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait after click: %w", err)
	}
	return nil
}

func (n *RodNavigator) Wait(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *RodNavigator) CurrentURL() (string, error) {
	info, err := n.page.Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

func (n *RodNavigator) Snapshot(ctx context.Context, expr string) (any, error) {
	res, err := n.page.Context(ctx).Timeout(n.timeout).Evaluate(&rod.EvalOptions{
		JS:           expr,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate snapshot: %w", err)
	}
	return res.Value.Val(), nil
}

func (n *RodNavigator) DrainRequests() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.requests
	n.requests = nil
	return out
}

func (n *RodNavigator) Close() error {
	if n.stopEvents != nil {
		n.stopEvents()
	}
	if err := n.browser.Close(); err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}
