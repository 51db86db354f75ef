package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/desertthunder/coursetube/internal/server"
	"github.com/desertthunder/coursetube/internal/services"
	"github.com/desertthunder/coursetube/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const authTimeout = 2 * time.Minute

var openBrowser = shared.OpenBrowser

// AuthYouTube performs the OAuth2 authorization code flow for read-only YouTube access.
//
// Starts a local HTTP server on the redirect URI, sends the user to the consent page and exchanges the
// returned code for tokens, which are written back to the config file.
func (r *Runner) AuthYouTube(ctx context.Context, cmd *cli.Command) error {
	yt := r.config.Credentials.YouTube
	if yt.ClientID == "" || yt.ClientSecret == "" {
		return fmt.Errorf("%w: youtube client_id and client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	oauthConfig, err := services.NewYouTubeOAuthConfig(yt.ClientID, yt.ClientSecret, yt.RedirectURI)
	if err != nil {
		return err
	}

	token, err := r.doOAuth(ctx, oauthConfig, !cmd.Bool("no-browser"), authTimeout)
	if err != nil {
		return err
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	if r.configPath != "" {
		r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	}
	r.writePlain("Private playlists can now be imported.\n")
	return nil
}

func (r *Runner) doOAuth(ctx context.Context, oauthConfig *oauth2.Config, launch bool, timeout time.Duration) (*oauth2.Token, error) {
	state := shared.GenerateID()
	verifier := oauth2.GenerateVerifier()

	authURL := services.AuthCodeURL(oauthConfig, state, verifier)
	oauthHandler := server.NewOAuthHandler(oauthConfig, state, verifier)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	addr := r.config.Server.Addr()
	if u, err := url.Parse(oauthConfig.RedirectURL); err == nil && u.Host != "" {
		addr = u.Host
	}
	httpServer := server.New(addr, router)

	srvCtx, stop := context.WithCancel(ctx)
	defer stop()
	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", addr)
		serverErrors <- server.ListenAndServe(srvCtx, httpServer, r.logger)
	}()

	if launch {
		r.writePlain("→ Opening browser for YouTube authorization...\n")
	}
	if !launch || openBrowser(authURL) != nil {
		if launch {
			r.writePlainln("⚠ Could not open browser automatically.")
		}
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%v timeout)...\n", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result server.OAuthResult
	select {
	case result = <-oauthHandler.Result():
	case err := <-serverErrors:
		if err == nil {
			err = errors.New("callback server stopped")
		}
		return nil, fmt.Errorf("server error: %w", err)
	case <-timer.C:
		return nil, fmt.Errorf("%w: authorization timed out after %v", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	stop()
	<-serverErrors

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}
	return result.Token, nil
}

// AuthStatus reports which YouTube credentials are configured, without calling the API.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	yt := r.config.Credentials.YouTube

	check := func(ok bool) string {
		if ok {
			return "✓"
		}
		return "✗"
	}

	r.writePlainHeader("YouTube credentials")
	r.writePlain("API key:        %s\n", check(yt.APIKey != ""))
	r.writePlain("OAuth client:   %s\n", check(yt.ClientID != "" && yt.ClientSecret != ""))

	tok := yt.Token()
	switch {
	case tok == nil:
		r.writePlain("Access token:   ✗ (run: coursetube auth youtube)\n")
	case yt.TokenExpiry.IsZero():
		r.writePlain("Access token:   ✓\n")
	case time.Now().After(yt.TokenExpiry):
		r.writePlain("Access token:   expired %s\n", yt.TokenExpiry.Format(time.DateTime))
	default:
		r.writePlain("Access token:   ✓ valid until %s\n", yt.TokenExpiry.Format(time.DateTime))
	}
	r.writePlain("Auto refresh:   %s\n", check(tok != nil && yt.CanRefresh()))

	if yt.APIKey == "" && tok == nil {
		return fmt.Errorf("%w: set credentials.youtube.api_key or YOUTUBE_API_KEY", shared.ErrMissingCredentials)
	}
	return nil
}
