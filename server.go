package summon

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/summonui/summon/lib/encoding"
)

// callbackResponse is the tagged outcome of a callback invocation.
type callbackResponse struct {
	Status string `json:"status"`
	Reload bool   `json:"reload,omitempty"`
}

// CallbackHandler is the server round-trip endpoint: a client posts a
// callback id (or signed binding), the handler resolves it through the
// registry, and the response tells the client whether to reload.
//
// Mount it wherever the rendered page points its callback requests:
//
//	http.Handle("/_summon/callback", summon.NewCallbackHandler(reg))
type CallbackHandler struct {
	registry *CallbackRegistry
	encoder  *encoding.Encoder
	logger   *slog.Logger

	// OnError is called for malformed requests before the 400 is written.
	// Customize to integrate with application-level error reporting.
	OnError func(r *http.Request, err error)
}

// CallbackHandlerOption configures a CallbackHandler.
type CallbackHandlerOption func(*CallbackHandler)

// WithCallbackEncoder requires ids to arrive as signed bindings produced by
// enc; raw ids are rejected.
func WithCallbackEncoder(enc *encoding.Encoder) CallbackHandlerOption {
	return func(h *CallbackHandler) { h.encoder = enc }
}

// WithCallbackLogger overrides the handler's logger.
func WithCallbackLogger(l *slog.Logger) CallbackHandlerOption {
	return func(h *CallbackHandler) { h.logger = l }
}

// NewCallbackHandler creates the endpoint for reg.
func NewCallbackHandler(reg *CallbackRegistry, opts ...CallbackHandlerOption) *CallbackHandler {
	h := &CallbackHandler{
		registry: reg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw := r.FormValue("id")
	if raw == "" {
		http.Error(w, "missing callback id", http.StatusBadRequest)
		return
	}

	id := raw
	if h.encoder != nil {
		binding, err := h.encoder.Decode(raw, false)
		if err != nil {
			if h.OnError != nil {
				h.OnError(r, err)
			}
			h.logger.Warn("rejected callback binding", "err", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		id = binding.ID
	}

	w.Header().Set("Content-Type", "application/json")
	if !h.registry.ExecuteCallback(id) {
		h.logger.Info("callback id not found", "id", id)
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(callbackResponse{Status: "not-found"})
		return
	}

	json.NewEncoder(w).Encode(callbackResponse{Status: "executed", Reload: true})
}

// Render writes a templ component to the HTTP response with an HTML
// content type. Use for page routes that embed rendered compositions:
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    summon.Render(w, r, page())
//	}
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}
