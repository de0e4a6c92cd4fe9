package util

import (
	"net/url"
	"path"
)

// ResolveURLPath joins a request path onto the engine API base URL, keeping
// any prefix the base carries (a versioned API like http://localhost/v1.43).
// Absolute URLs pass through untouched. url.ResolveReference is avoided since
// it would drop the base prefix for paths starting with "/".
func ResolveURLPath(baseURL, pathOrURL string) string {
	if baseURL == "" {
		return pathOrURL
	}
	if pathOrURL == "" {
		return baseURL
	}

	if parsed, err := url.Parse(pathOrURL); err == nil && parsed.IsAbs() {
		return pathOrURL
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return pathOrURL
	}

	base.Path = path.Join(base.Path, pathOrURL)
	return base.String()
}
