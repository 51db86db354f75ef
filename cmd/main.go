package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/coursetube/internal/services"
	"github.com/desertthunder/coursetube/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	configPath := defaultConfigPath
	if p := os.Getenv("COURSETUBE_CONFIG"); p != "" {
		configPath = p
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}
	config.ApplyEnv()

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})
	runner.youtube = newYouTubeService(context.Background(), runner, logger)
	runner.api = services.NewAPIService(config.Credentials.YouTube.BaseURL, config.Credentials.YouTube.APIKey, nil)
	defer runner.Close()

	app := &cli.Command{
		Name:     "coursetube",
		Usage:    "Turn YouTube playlists into courses",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		runner.Close()
		logger.Fatalf("application error: %v", err)
	}
}

// newYouTubeService builds the Data API client. A stored OAuth token is refreshed on demand and
// written back to the config file whenever it changes.
func newYouTubeService(ctx context.Context, r *Runner, logger *log.Logger) *services.YouTubeService {
	yt := r.config.Credentials.YouTube
	opts := services.YouTubeOpts{
		BaseURL:           yt.BaseURL,
		APIKey:            yt.APIKey,
		RequestsPerSecond: r.config.Import.RequestsPerSecond,
		Logger:            logger,
	}

	tok := yt.Token()
	switch {
	case tok != nil && yt.CanRefresh():
		oauthConfig, err := services.NewYouTubeOAuthConfig(yt.ClientID, yt.ClientSecret, yt.RedirectURI)
		if err != nil {
			logger.Warn("ignoring stored OAuth token", "error", err)
			break
		}
		opts.TokenSource = services.NewNotifyingTokenSource(oauthConfig.TokenSource(ctx, tok), tok, func(t *oauth2.Token) {
			if err := r.saveTokens(t); err != nil {
				logger.Warn("failed to persist refreshed token", "error", err)
			}
		})
	case tok != nil:
		opts.AccessToken = tok.AccessToken
	}

	return services.NewYouTubeService(opts)
}
