// Package services implements the HTTP clients a migration talks to.
//
// # Spotify
//
// [SpotifyService] is the source catalog. It reads playlist items page by page from the Web API using an
// [oauth2.Client], which refreshes an expired access token when a refresh token is configured.
// Playlist references may be bare IDs, open.spotify.com URLs or spotify:playlist: URIs (see [ParsePlaylistRef]).
//
// # YouTube Music
//
// [YouTubeService] is the destination. It communicates with the FastAPI proxy server wrapping ytmusicapi.
// The auth_file path is sent via X-Auth-File header on each request. Searches can be throttled with a token
// bucket limiter when a search rate is configured.
//
// # Error Handling
//
// Non-2xx responses are mapped onto sentinels from the shared package:
//   - [shared.ErrNotAuthenticated] : 401/403, or Authenticate() not called
//   - [shared.ErrPlaylistNotFound] : 404
//   - [shared.ErrServiceUnavailable] : 502/503
//   - [shared.ErrAPIRequest] : any other failure, including a non-succeeded playlist edit status
package services
