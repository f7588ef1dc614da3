// YouTube Music destination
//
// Communicates with the FastAPI proxy server wrapping the ytmusicapi Python library.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytmigrate/internal/models"
	"github.com/desertthunder/ytmigrate/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultYTBaseURL = "http://localhost:8080"

	// addStatusSucceeded is the ytmusicapi status for a successful playlist edit.
	addStatusSucceeded = "STATUS_SUCCEEDED"
	playlistFetchLimit = 10000
)

// YouTubeArtist represents an artist in YouTube Music responses.
type YouTubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YouTubeSearchResult is a single entry of GET /api/search.
type YouTubeSearchResult struct {
	VideoID     string          `json:"videoId"`
	Title       string          `json:"title"`
	Artists     []YouTubeArtist `json:"artists"`
	Duration    string          `json:"duration"`         // "M:SS"
	DurationSec int             `json:"duration_seconds"` // 0 when the proxy omitted it
	ResultType  string          `json:"resultType"`
}

// YouTubePlaylist represents a playlist from GET /api/playlists/{id}.
type YouTubePlaylist struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Privacy     string                `json:"privacy"`
	TrackCount  *int                  `json:"trackCount"`
	Tracks      []YouTubeSearchResult `json:"tracks"`
}

// YouTubeOpts configures a [YouTubeService].
type YouTubeOpts struct {
	BaseURL    string
	Timeout    time.Duration // per request, 0 disables
	SearchRate float64       // searches per second, 0 disables
	HTTPClient *http.Client
	Logger     *log.Logger
}

// YouTubeService is the migration destination, backed by the proxy.
type YouTubeService struct {
	baseURL    string
	authFile   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewYouTubeService creates a new YouTube Music service instance.
func NewYouTubeService(opts YouTubeOpts) *YouTubeService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultYTBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	svc := &YouTubeService{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
	if opts.SearchRate > 0 {
		svc.limiter = rate.NewLimiter(rate.Limit(opts.SearchRate), 1)
	}
	return svc
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube Music"
}

// Authenticate stores the authentication file path for subsequent requests.
//
// Expects credentials["auth_file"] to contain the path to browser.json or oauth.json.
func (y *YouTubeService) Authenticate(ctx context.Context, credentials map[string]string) error {
	authFile := credentials["auth_file"]
	if authFile == "" {
		return fmt.Errorf("%w: missing auth_file", shared.ErrMissingCredentials)
	}

	y.authFile = authFile
	return nil
}

func (y *YouTubeService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	headers := map[string]string{}
	if y.authFile != "" {
		headers["X-Auth-File"] = y.authFile
	}

	return doJSON(ctx, y.httpClient, "youtube music", jsonRequest{
		method:  method,
		url:     y.baseURL + endpoint,
		headers: headers,
		body:    body,
		result:  result,
	})
}

// Health calls GET /health on the proxy and returns its decoded status payload.
func (y *YouTubeService) Health(ctx context.Context) (map[string]any, error) {
	var status map[string]any
	if err := y.doRequest(ctx, http.MethodGet, "/health", nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// SearchCandidates searches the catalog, returning results in the proxy's ranking order.
//
// Calls GET /api/search?q={query}&filter={kind}. Results without a video ID are dropped.
func (y *YouTubeService) SearchCandidates(ctx context.Context, query string, kind models.Kind) ([]models.CandidateResult, error) {
	if y.limiter != nil {
		if err := y.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	endpoint := fmt.Sprintf("/api/search?q=%s&filter=%s", url.QueryEscape(query), url.QueryEscape(string(kind)))

	var results []YouTubeSearchResult
	if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &results); err != nil {
		return nil, err
	}

	candidates := make([]models.CandidateResult, 0, len(results))
	for _, r := range results {
		if r.VideoID == "" {
			continue
		}
		candidates = append(candidates, y.toCandidate(r, kind))
	}
	return candidates, nil
}

func (y *YouTubeService) toCandidate(r YouTubeSearchResult, kind models.Kind) models.CandidateResult {
	artists := make([]string, 0, len(r.Artists))
	for _, a := range r.Artists {
		artists = append(artists, a.Name)
	}

	duration := r.DurationSec
	if duration <= 0 && r.Duration != "" {
		parsed, err := shared.ParseDuration(r.Duration)
		if err != nil {
			y.logger.Debug("unparseable duration", "video", r.VideoID, "duration", r.Duration, "error", err)
		} else {
			duration = parsed
		}
	}

	return models.CandidateResult{
		Title:           r.Title,
		Artists:         artists,
		DurationSeconds: max(duration, 0),
		ExternalID:      r.VideoID,
		Kind:            kind,
	}
}

// CreatePlaylist creates a private playlist via POST /api/playlists and returns its ID.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, name, description string) (string, error) {
	body := struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		PrivacyStatus string `json:"privacy_status"`
	}{
		Title:         name,
		Description:   description,
		PrivacyStatus: "PRIVATE",
	}

	var resp struct {
		PlaylistID string `json:"playlist_id"`
	}
	if err := y.doRequest(ctx, http.MethodPost, "/api/playlists", body, &resp); err != nil {
		return "", err
	}
	if resp.PlaylistID == "" {
		return "", fmt.Errorf("%w: proxy returned no playlist_id", shared.ErrAPIRequest)
	}
	return resp.PlaylistID, nil
}

// AddItems appends video IDs via POST /api/playlists/{id}/items.
//
// A 2xx response whose status field is present but not STATUS_SUCCEEDED is a failure.
func (y *YouTubeService) AddItems(ctx context.Context, playlistID string, ids []string) error {
	body := struct {
		VideoIDs []string `json:"video_ids"`
	}{VideoIDs: ids}

	var raw json.RawMessage

	endpoint := fmt.Sprintf("/api/playlists/%s/items", url.PathEscape(playlistID))
	if err := y.doRequest(ctx, http.MethodPost, endpoint, body, &raw); err != nil {
		return err
	}

	if status, ok := editStatus(raw); ok && status != addStatusSucceeded {
		return fmt.Errorf("%w: add items returned status %s", shared.ErrAPIRequest, status)
	}
	return nil
}

// editStatus extracts the ytmusicapi edit status from either {"status": "..."} or a bare JSON string.
func editStatus(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}

	var obj struct {
		Status *string `json:"status"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Status == nil {
			return "", false
		}
		return *obj.Status, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return "", false
}

// PlaylistTrackCount returns the number of tracks currently in the playlist.
//
// Calls GET /api/playlists/{id}?limit=10000 and counts the returned tracks, falling back to trackCount.
func (y *YouTubeService) PlaylistTrackCount(ctx context.Context, playlistID string) (int, error) {
	var playlist YouTubePlaylist

	endpoint := fmt.Sprintf("/api/playlists/%s?limit=%d", url.PathEscape(playlistID), playlistFetchLimit)
	if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &playlist); err != nil {
		return 0, err
	}

	if playlist.Tracks != nil {
		return len(playlist.Tracks), nil
	}
	if playlist.TrackCount != nil {
		return *playlist.TrackCount, nil
	}
	return 0, nil
}
