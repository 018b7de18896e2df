package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Options configures the headless browser session.
type Options struct {
	Headless       bool
	SlowMo         time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	NavTimeout     time.Duration
}

// Rod implements Session on a rod-driven Chrome page.
type Rod struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	opts     Options
}

// Launch starts a browser and opens the single page the crawler will use.
func Launch(opts Options) (*Rod, error) {
	l := launcher.New().
		Headless(opts.Headless).
		Set("user-agent", opts.UserAgent).
		Set("disable-blink-features", "AutomationControlled")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if opts.SlowMo > 0 {
		browser = browser.SlowMotion(opts.SlowMo)
	}
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		browser.Close()
		l.Cleanup()
		return nil, fmt.Errorf("open page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.ViewportWidth,
		Height:            opts.ViewportHeight,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}); err != nil {
		browser.Close()
		l.Cleanup()
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	return &Rod{launcher: l, browser: browser, page: page, opts: opts}, nil
}

// Close shuts the browser down and removes its temporary profile.
func (r *Rod) Close() error {
	err := r.browser.Close()
	r.launcher.Cleanup()
	return err
}

// Navigate loads url, capturing the status of the document response.
func (r *Rod) Navigate(ctx context.Context, url string) (*Response, error) {
	page := r.page.Context(ctx).Timeout(r.opts.NavTimeout)

	status := 0
	start := time.Now()
	wait := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		status = int(e.Response.Status)
		return true
	})

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	wait()
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load %s: %w", url, err)
	}

	return &Response{Status: status, Elapsed: time.Since(start)}, nil
}

// WaitLoad waits for the load event and a short DOM-stability window,
// which covers the marketplace's late-rendered detail sections.
func (r *Rod) WaitLoad(ctx context.Context) error {
	page := r.page.Context(ctx).Timeout(r.opts.NavTimeout)
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}
	if err := page.WaitStable(time.Second); err != nil {
		return fmt.Errorf("wait stable: %w", err)
	}
	return nil
}

// WaitForSelector blocks until selector appears or timeout elapses.
func (r *Rod) WaitForSelector(selector string, timeout time.Duration) error {
	if _, err := r.page.Timeout(timeout).Element(selector); err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

// Query returns the first match without waiting.
func (r *Rod) Query(selector string) (Element, error) {
	has, el, err := r.page.Has(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	if !has {
		return nil, ErrNoElement
	}
	return &rodElement{el: el}, nil
}

// QueryAll returns every match without waiting.
func (r *Rod) QueryAll(selector string) ([]Element, error) {
	els, err := r.page.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query all %q: %w", selector, err)
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out, nil
}

// HTML returns the full current document markup.
func (r *Rod) HTML() (string, error) {
	return r.page.HTML()
}

// Screenshot captures the current viewport as PNG bytes.
func (r *Rod) Screenshot() ([]byte, error) {
	return r.page.Screenshot(false, nil)
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Text() (string, error) {
	return e.el.Text()
}

func (e *rodElement) Attribute(name string) (string, error) {
	value, err := e.el.Attribute(name)
	if err != nil {
		return "", fmt.Errorf("attribute %q: %w", name, err)
	}
	if value == nil {
		return "", nil
	}
	return *value, nil
}

func (e *rodElement) Query(selector string) (Element, error) {
	has, el, err := e.el.Has(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	if !has {
		return nil, ErrNoElement
	}
	return &rodElement{el: el}, nil
}

func (e *rodElement) QueryAll(selector string) ([]Element, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query all %q: %w", selector, err)
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out, nil
}
