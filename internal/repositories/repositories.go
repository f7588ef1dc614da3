package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// encodeArtists stores an artist list as a JSON array so names containing separators survive a round trip.
func encodeArtists(artists []string) (string, error) {
	if artists == nil {
		artists = []string{}
	}
	data, err := json.Marshal(artists)
	if err != nil {
		return "", fmt.Errorf("failed to encode artists: %w", err)
	}
	return string(data), nil
}

func decodeArtists(raw string) ([]string, error) {
	var artists []string
	if err := json.Unmarshal([]byte(raw), &artists); err != nil {
		return nil, fmt.Errorf("failed to decode artists: %w", err)
	}
	return artists, nil
}

// nullString maps an empty string to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
