// YouTube Data API v3 [Service] implementation
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/coursetube/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

// DefaultYouTubeBaseURL is the public Data API v3 endpoint.
const DefaultYouTubeBaseURL string = "https://www.googleapis.com/youtube/v3"

// APIError is returned for any non-2xx response from the Data API.
//
// It unwraps to [shared.ErrAPIRequest] so callers can match either the sentinel or the concrete type.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("youtube API error (status %d) on %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("youtube API error (status %d) on %s", e.StatusCode, e.Endpoint)
}

func (e *APIError) Unwrap() error { return shared.ErrAPIRequest }

// StatusCode extracts the HTTP status carried by err, or 0 when err is not an [APIError].
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// YouTubeOpts configures a [YouTubeService].
type YouTubeOpts struct {
	BaseURL           string
	APIKey            string
	AccessToken       string             // Optional static OAuth2 bearer token, needed for private playlists
	TokenSource       oauth2.TokenSource // Optional refreshing token source; takes precedence over AccessToken
	RequestsPerSecond float64            // Client-side pacing; 0 disables it
	HTTPClient        *http.Client       // Base client; http.DefaultClient when nil
	Logger            *log.Logger
}

// YouTubeService implements the Service interface on the generated Data API v3 client.
type YouTubeService struct {
	baseURL    string
	apiKey     string
	authorized bool
	baseClient *http.Client
	httpClient *http.Client
	client     *ytapi.Service
	clientErr  error
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewYouTubeService creates a new Data API service instance.
func NewYouTubeService(opts YouTubeOpts) *YouTubeService {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultYouTubeBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	y := &YouTubeService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		baseClient: opts.HTTPClient,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
	if opts.RequestsPerSecond > 0 {
		y.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	switch {
	case opts.TokenSource != nil:
		y.setTokenSource(context.Background(), opts.TokenSource)
	case opts.AccessToken != "":
		y.setTokenSource(context.Background(), staticToken(opts.AccessToken))
	default:
		y.connect(context.Background())
	}
	return y
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube"
}

// Authenticate stores credentials for subsequent requests.
//
// Expects credentials["api_key"], credentials["access_token"], or both.
func (y *YouTubeService) Authenticate(ctx context.Context, credentials map[string]string) error {
	apiKey := credentials["api_key"]
	token := credentials["access_token"]
	if apiKey == "" && token == "" {
		return fmt.Errorf("%w: api_key or access_token required", shared.ErrMissingCredentials)
	}

	y.apiKey = apiKey
	if token != "" {
		y.setTokenSource(ctx, staticToken(token))
	}
	return nil
}

// HasCredentials reports whether an API key or bearer token is configured.
func (y *YouTubeService) HasCredentials() bool {
	return y.apiKey != "" || y.authorized
}

func staticToken(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
}

// setTokenSource routes requests through an [oauth2] client that attaches bearer tokens from ts.
func (y *YouTubeService) setTokenSource(ctx context.Context, ts oauth2.TokenSource) {
	y.authorized = true
	ctx = context.WithValue(ctx, oauth2.HTTPClient, y.baseClient)
	y.httpClient = oauth2.NewClient(ctx, ts)
	y.connect(ctx)
}

// connect rebuilds the generated client over the current HTTP client.
func (y *YouTubeService) connect(ctx context.Context) {
	y.client, y.clientErr = ytapi.NewService(ctx,
		option.WithHTTPClient(y.httpClient),
		option.WithEndpoint(serviceEndpoint(y.baseURL)),
	)
}

// serviceEndpoint maps a ".../youtube/v3" base URL onto the root the generated client resolves its paths against.
func serviceEndpoint(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/youtube/v3") + "/"
}

// prepare paces the call and returns the per-call options carrying the API key.
func (y *YouTubeService) prepare(ctx context.Context) ([]googleapi.CallOption, error) {
	if y.clientErr != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, y.clientErr)
	}
	if y.limiter != nil {
		if err := y.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	var opts []googleapi.CallOption
	if y.apiKey != "" {
		opts = append(opts, googleapi.QueryParameter("key", y.apiKey))
	}
	return opts, nil
}

// wrap converts a failed call into an [APIError] when the platform answered, and an ErrAPIRequest otherwise.
func (y *YouTubeService) wrap(resource string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		y.logger.Debug("youtube request", "resource", resource, "status", gerr.Code)
		return &APIError{Endpoint: resource, StatusCode: gerr.Code, Message: gerr.Message}
	}
	return fmt.Errorf("%w: %s: %w", shared.ErrAPIRequest, resource, err)
}

// Playlists calls GET playlists?part=snippet&id={id}.
func (y *YouTubeService) Playlists(ctx context.Context, playlistID string) ([]PlaylistResource, error) {
	opts, err := y.prepare(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := y.client.Playlists.List([]string{"snippet"}).Id(playlistID).Context(ctx).Do(opts...)
	if err != nil {
		return nil, y.wrap("playlists", err)
	}
	y.logger.Debug("youtube request", "resource", "playlists", "status", resp.HTTPStatusCode)

	items := make([]PlaylistResource, 0, len(resp.Items))
	for _, p := range resp.Items {
		res := PlaylistResource{ID: p.Id}
		if p.Snippet != nil {
			res.Snippet = snippet(p.Snippet.Title, p.Snippet.Description, p.Snippet.Thumbnails)
		}
		items = append(items, res)
	}
	return items, nil
}

// PlaylistItems calls GET playlistItems?part=contentDetails,snippet&maxResults=50&playlistId={id}[&pageToken={t}].
func (y *YouTubeService) PlaylistItems(ctx context.Context, playlistID, pageToken string) (*PlaylistItemsPage, error) {
	opts, err := y.prepare(ctx)
	if err != nil {
		return nil, err
	}

	call := y.client.PlaylistItems.List([]string{"contentDetails,snippet"}).
		PlaylistId(playlistID).
		MaxResults(MaxResults)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Context(ctx).Do(opts...)
	if err != nil {
		return nil, y.wrap("playlistItems", err)
	}
	y.logger.Debug("youtube request", "resource", "playlistItems", "status", resp.HTTPStatusCode)

	page := &PlaylistItemsPage{
		NextPageToken: resp.NextPageToken,
		Items:         make([]PlaylistItemResource, 0, len(resp.Items)),
	}
	for _, item := range resp.Items {
		res := PlaylistItemResource{ID: item.Id}
		if item.Snippet != nil {
			res.Snippet = snippet(item.Snippet.Title, item.Snippet.Description, item.Snippet.Thumbnails)
			if rid := item.Snippet.ResourceId; rid != nil {
				res.Snippet.ResourceID.Kind = rid.Kind
				res.Snippet.ResourceID.VideoID = rid.VideoId
			}
		}
		if item.ContentDetails != nil {
			res.ContentDetails.VideoID = item.ContentDetails.VideoId
		}
		page.Items = append(page.Items, res)
	}
	return page, nil
}

// Videos calls GET videos?part=snippet,contentDetails&id={ids}.
func (y *YouTubeService) Videos(ctx context.Context, videoIDs []string) ([]VideoResource, error) {
	if len(videoIDs) == 0 {
		return nil, fmt.Errorf("%w: no video IDs provided", shared.ErrInvalidArgument)
	}
	if len(videoIDs) > MaxResults {
		return nil, fmt.Errorf("%w: maximum %d video IDs allowed, got %d", shared.ErrInvalidArgument, MaxResults, len(videoIDs))
	}

	opts, err := y.prepare(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := y.client.Videos.List([]string{"snippet,contentDetails"}).
		Id(strings.Join(videoIDs, ",")).
		Context(ctx).
		Do(opts...)
	if err != nil {
		return nil, y.wrap("videos", err)
	}
	y.logger.Debug("youtube request", "resource", "videos", "status", resp.HTTPStatusCode, "ids", len(videoIDs))

	videos := make([]VideoResource, 0, len(resp.Items))
	for _, v := range resp.Items {
		res := VideoResource{ID: v.Id}
		if v.Snippet != nil {
			res.Snippet = snippet(v.Snippet.Title, v.Snippet.Description, v.Snippet.Thumbnails)
		}
		if v.ContentDetails != nil {
			res.ContentDetails.Duration = v.ContentDetails.Duration
		}
		videos = append(videos, res)
	}
	return videos, nil
}

func snippet(title, description string, t *ytapi.ThumbnailDetails) Snippet {
	s := Snippet{Title: title, Description: description}
	if t != nil {
		s.Thumbnails = Thumbnails{
			Default:  thumbnail(t.Default),
			Medium:   thumbnail(t.Medium),
			High:     thumbnail(t.High),
			Standard: thumbnail(t.Standard),
			Maxres:   thumbnail(t.Maxres),
		}
	}
	return s
}

func thumbnail(t *ytapi.Thumbnail) *Thumbnail {
	if t == nil {
		return nil
	}
	return &Thumbnail{URL: t.Url, Width: int(t.Width), Height: int(t.Height)}
}
