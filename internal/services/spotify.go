// Spotify Web API source catalog
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/ytmigrate/internal/models"
	"github.com/desertthunder/ytmigrate/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	spotifyPageSize = 100
)

// SpotifyArtist is the simplified artist object embedded in tracks.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum is the simplified album object embedded in tracks.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyTrack is a playlist item's track (or episode) object.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"` // "track" or "episode"
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	IsLocal    bool            `json:"is_local"`
}

// SpotifyPlaylistItem wraps a track within a playlist. Track is nil for removed or unavailable items.
type SpotifyPlaylistItem struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPlaylistItems is one page of playlist items.
type SpotifyPlaylistItems struct {
	Items  []SpotifyPlaylistItem `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
	Next   *string               `json:"next"`
}

// ToSourceTrack converts a Spotify track into the migration source model.
func (t SpotifyTrack) ToSourceTrack() models.SourceTrack {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a.Name != "" {
			artists = append(artists, a.Name)
		}
	}
	return models.SourceTrack{
		Title:           t.Name,
		Artists:         artists,
		Album:           t.Album.Name,
		DurationSeconds: t.DurationMS / 1000,
	}
}

// SpotifyService reads playlists from the Spotify Web API.
//
// Tokens are obtained outside of ytmigrate. The [oauth2] client refreshes an expired access token with the refresh token.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	baseURL    string
}

// NewSpotifyService creates a Spotify client from the credentials map returned by [shared.SpotifyConfig.Map].
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID := credentials["client_id"]
	if clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret := credentials["client_secret"]
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI := credentials["redirect_uri"]
	if redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{"playlist-read-private", "playlist-read-collaborative"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate installs the access token and optional refresh token from credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	accessToken := credentials["access_token"]
	if accessToken == "" {
		return fmt.Errorf("%w: missing access_token", shared.ErrMissingCredentials)
	}

	s.token = &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: credentials["refresh_token"],
		TokenType:    "Bearer",
	}
	s.httpClient = s.config.Client(ctx, s.token)
	return nil
}

func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	apiURL := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		apiURL = s.baseURL + endpoint
	}

	return doJSON(ctx, s.httpClient, "spotify", jsonRequest{method: http.MethodGet, url: apiURL, result: result})
}

// ParsePlaylistRef extracts a playlist ID from a bare ID, an open.spotify.com URL or a spotify:playlist: URI.
func ParsePlaylistRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty playlist reference", shared.ErrInvalidInput)
	}

	if id, ok := strings.CutPrefix(ref, "spotify:playlist:"); ok {
		if id == "" {
			return "", fmt.Errorf("%w: %q has no playlist ID", shared.ErrInvalidInput, ref)
		}
		return id, nil
	}

	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i := 0; i < len(parts)-1; i++ {
			if parts[i] == "playlist" && parts[i+1] != "" {
				return parts[i+1], nil
			}
		}
		return "", fmt.Errorf("%w: %q is not a playlist URL", shared.ErrInvalidInput, ref)
	}

	if strings.ContainsAny(ref, ":/ ") {
		return "", fmt.Errorf("%w: %q is not a playlist ID", shared.ErrInvalidInput, ref)
	}
	return ref, nil
}

// FetchSourceTracks returns every track of the referenced playlist in playlist order.
//
// Pages are followed through the next link. Removed items and podcast episodes are skipped.
func (s *SpotifyService) FetchSourceTracks(ctx context.Context, ref string) ([]models.SourceTrack, error) {
	playlistID, err := ParsePlaylistRef(ref)
	if err != nil {
		return nil, err
	}

	var tracks []models.SourceTrack
	next := fmt.Sprintf("/playlists/%s/tracks?limit=%d", url.PathEscape(playlistID), spotifyPageSize)

	for next != "" {
		var page SpotifyPlaylistItems
		if err := s.doRequest(ctx, next, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track == nil || (item.Track.Type != "" && item.Track.Type != "track") {
				continue
			}
			tracks = append(tracks, item.Track.ToSourceTrack())
		}

		next = ""
		if page.Next != nil {
			next = *page.Next
		}
	}

	return tracks, nil
}
