// Package summontest provides helpers for testing compositions: render a
// root to HTML, drive the manual scheduler, and round-trip callbacks
// through the HTTP endpoint.
package summontest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/summonui/summon"
)

// Result holds the output of rendering a composition for testing.
type Result struct {
	HTML        string
	CallbackIDs []string

	Registry   *summon.CallbackRegistry
	Recomposer *summon.Recomposer
	Scheduler  *summon.ManualScheduler
}

// Render composes root once through an HTMLRenderer backed by a fresh
// registry and manual scheduler. The composition root re-renders on every
// pass, so after state writes, Tick refreshes Result.HTML:
//
//	res := summontest.Render(func(c *summon.Composer, r summon.Renderer) {
//	    count := summon.RememberState(c, func() int { return 0 })
//	    r.RenderText(strconv.Itoa(count.Get()), summon.NewModifier())
//	})
func Render(root func(c *summon.Composer, r summon.Renderer)) *Result {
	registry := summon.NewCallbackRegistry()
	renderer := summon.NewHTMLRenderer(registry)
	scheduler := summon.NewManualScheduler()

	res := &Result{
		Registry:  registry,
		Scheduler: scheduler,
	}

	res.Recomposer = summon.Compose(func(c *summon.Composer) {
		renderer.Begin()
		root(c, renderer)
		res.HTML, res.CallbackIDs = renderer.Finish()
	}, scheduler)

	return res
}

// Tick runs one scheduler tick, executing any pending recomposition.
func (r *Result) Tick() {
	r.Scheduler.Tick()
}

// HTMLContains reports whether the rendered HTML contains s.
func (r *Result) HTMLContains(s string) bool {
	return strings.Contains(r.HTML, s)
}

// PostCallback posts a callback id to handler the way a client would and
// returns the recorded response.
func PostCallback(handler http.Handler, id string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Set("id", id)

	req := httptest.NewRequest(http.MethodPost, "/_summon/callback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}
