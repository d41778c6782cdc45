package domain

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

const spotifyArtistURIPrefix = "spotify:artist:"

var (
	// ErrInvalidSpotifyArtist marks input that is neither an artist URL nor URI.
	ErrInvalidSpotifyArtist = errors.New("invalid spotify artist reference")

	spotifyIDPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

// SpotifyArtist is a normalized reference to an artist profile.
type SpotifyArtist struct {
	ID string
}

// URI renders the canonical spotify:artist:<id> form.
func (a SpotifyArtist) URI() string {
	return spotifyArtistURIPrefix + a.ID
}

// ParseSpotifyArtist accepts open.spotify.com/artist/<id> links and spotify:artist:<id> URIs.
func ParseSpotifyArtist(raw string) (SpotifyArtist, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return SpotifyArtist{}, ErrInvalidSpotifyArtist
	}

	if strings.HasPrefix(value, spotifyArtistURIPrefix) {
		return artistFromID(strings.TrimPrefix(value, spotifyArtistURIPrefix))
	}

	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return SpotifyArtist{}, ErrInvalidSpotifyArtist
	}
	if !strings.EqualFold(u.Hostname(), "open.spotify.com") {
		return SpotifyArtist{}, ErrInvalidSpotifyArtist
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	// Localized links look like /intl-de/artist/<id>.
	if len(parts) > 0 && strings.HasPrefix(parts[0], "intl-") {
		parts = parts[1:]
	}
	if len(parts) != 2 || parts[0] != "artist" {
		return SpotifyArtist{}, ErrInvalidSpotifyArtist
	}
	return artistFromID(parts[1])
}

func artistFromID(id string) (SpotifyArtist, error) {
	if !spotifyIDPattern.MatchString(id) {
		return SpotifyArtist{}, ErrInvalidSpotifyArtist
	}
	return SpotifyArtist{ID: id}, nil
}
