package transport

import (
	"fmt"
	"net/url"
)

// ChatURL derives the websocket endpoint from the server base URL, carrying the
// nickname as the username query argument.
func ChatURL(base *url.URL, username string) (string, error) {
	u := base.JoinPath("ws")
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server scheme %q", base.Scheme)
	}
	q := url.Values{}
	q.Set("username", username)
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String(), nil
}

// StatsURL derives the aggregate statistics endpoint from the server base URL.
func StatsURL(base *url.URL) (string, error) {
	u := base.JoinPath("api", "stats")
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "http"
	case "https", "wss":
		u.Scheme = "https"
	default:
		return "", fmt.Errorf("unsupported server scheme %q", base.Scheme)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
