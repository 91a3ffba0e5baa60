package scraper

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// RenderHandle is the narrow surface the control loop needs from a
// rendered browser session. The production implementation wraps a Rod
// page; tests substitute a scripted fake so the pagination loop runs
// without a browser.
type RenderHandle interface {
	// Navigate loads the given URL in the session.
	Navigate(url string) error

	// Eval runs a JS function source ("() => ...") in page context and
	// returns its value.
	Eval(js string) (gson.JSON, error)

	// Elements returns every element matching the CSS selector. A
	// selector matching nothing returns an empty slice, not an error.
	Elements(selector string) ([]ElementHandle, error)

	// Close releases the session.
	Close() error
}

// ElementHandle is one matched element.
type ElementHandle interface {
	Text() (string, error)
	Attribute(name string) (string, error)
	Click() error
	ScrollIntoView() error
}

// rodHandle adapts a *rod.Page to RenderHandle.
type rodHandle struct {
	page *rod.Page
}

func newRodHandle(page *rod.Page) *rodHandle {
	return &rodHandle{page: page}
}

func (h *rodHandle) Navigate(url string) error {
	return h.page.Navigate(url)
}

func (h *rodHandle) Eval(js string) (gson.JSON, error) {
	res, err := h.page.Eval(js)
	if err != nil {
		return gson.New(nil), err
	}
	return res.Value, nil
}

func (h *rodHandle) Elements(selector string) ([]ElementHandle, error) {
	els, err := h.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	handles := make([]ElementHandle, len(els))
	for i, el := range els {
		handles[i] = &rodElement{el: el}
	}
	return handles, nil
}

func (h *rodHandle) Close() error {
	return h.page.Close()
}

// rodElement adapts a *rod.Element to ElementHandle.
type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Text() (string, error) {
	return e.el.Text()
}

func (e *rodElement) Attribute(name string) (string, error) {
	v, err := e.el.Attribute(name)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

func (e *rodElement) Click() error {
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}

func (e *rodElement) ScrollIntoView() error {
	return e.el.ScrollIntoView()
}
