package server

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"sync"

	"github.com/desertthunder/coursetube/internal/shared"
	"golang.org/x/oauth2"
)

const defaultCallbackPath = "/callback"

// OAuthResult carries the outcome of one authorization code callback.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler receives the Google authorization code callback and exchanges the code for a token.
//
// The exchange presents the PKCE verifier whose challenge went into the consent URL. Only the first
// callback is processed; later ones get 400.
type OAuthHandler struct {
	config     *oauth2.Config
	state      string
	verifier   string
	resultChan chan OAuthResult
	once       sync.Once
	handled    bool
	mu         sync.Mutex
}

// NewOAuthHandler creates a handler expecting state and exchanging codes with verifier.
func NewOAuthHandler(config *oauth2.Config, state, verifier string) *OAuthHandler {
	return &OAuthHandler{
		config:     config,
		state:      state,
		verifier:   verifier,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the path of the configured redirect URL.
func (h *OAuthHandler) Routes() []string {
	u, err := url.Parse(h.config.RedirectURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return []string{defaultCallbackPath}
	}
	return []string{u.Path}
}

// ServeHTTP validates state, exchanges the code and publishes the result on [OAuthHandler.Result].
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.handled {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.handled = true
	h.mu.Unlock()

	q := r.URL.Query()
	if q.Get("state") != h.state {
		h.Send(OAuthResult{err: fmt.Errorf("%w: state mismatch", shared.ErrNotAuthenticated)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := q.Get("code")
	if code == "" {
		err := fmt.Errorf("%w: %s %s", shared.ErrNotAuthenticated, q.Get("error"), q.Get("error_description"))
		h.Send(OAuthResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(r.Context(), code, oauth2.VerifierOption(h.verifier))
	if err != nil {
		h.Send(OAuthResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusBadGateway)
		return
	}

	h.Send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = successPage.Execute(w, nil)
}

// Send publishes result once; later calls are dropped.
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result receives exactly one result and is then closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>coursetube: YouTube connected</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f9f9f9; }
        .card { text-align: center; background: white; padding: 2rem;
                border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #FF0000; margin: 0 0 1rem 0; }
        p { color: #606060; margin: 0; }
    </style>
</head>
<body>
    <div class="card">
        <h1>✓ YouTube connected</h1>
        <p>Private playlists can now be imported. You can close this window.</p>
    </div>
</body>
</html>
`))
