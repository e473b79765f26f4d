package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var trackIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,64}$`)

// ExtractTrackID accepts a bare track ID, a "spotify:track:<id>" URI, or an
// open.spotify.com track URL and returns the ID.
func ExtractTrackID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty track reference")
	}

	if strings.HasPrefix(ref, "spotify:") {
		parts := strings.Split(ref, ":")
		if len(parts) == 3 && parts[1] == "track" && IsValidTrackID(parts[2]) {
			return parts[2], nil
		}
		return "", fmt.Errorf("unsupported URI: %s", ref)
	}

	if IsTrackURL(ref) {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i := 0; i+1 < len(segments); i++ {
			if segments[i] == "track" && IsValidTrackID(segments[i+1]) {
				return segments[i+1], nil
			}
		}
		return "", fmt.Errorf("no track ID found in URL: %s", ref)
	}

	if IsValidTrackID(ref) {
		return ref, nil
	}
	return "", fmt.Errorf("unable to extract track ID from: %s", ref)
}

// IsValidTrackID reports whether id looks like a provider track ID.
func IsValidTrackID(id string) bool {
	return trackIDPattern.MatchString(id)
}

func IsTrackURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)
	return host == "open.spotify.com" || strings.HasSuffix(host, ".spotify.com")
}
