// Package site decides whether a crawled page belongs to the audited site and
// canonicalizes page URLs for directory matching. Locality is evaluated once
// per row and gates every field audit on that row.
package site

import (
	"fmt"
	"net/url"
	"strings"
)

// Site identifies the audited property by its canonical host.
type Site struct {
	Host string
}

func New(host string) (Site, error) {
	host = strings.TrimSpace(strings.ToLower(host))
	if host == "" {
		return Site{}, fmt.Errorf("site host required")
	}
	return Site{Host: host}, nil
}

// Belongs reports whether raw parses to a URL on the audited host.
// A parse failure is returned to the caller so the row can be degraded to
// Invalid URL rather than silently passed through.
func (s Site) Belongs(raw string) (bool, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("parse url %q: %w", raw, err)
	}
	return strings.EqualFold(u.Hostname(), s.Host), nil
}

// Canonicalize reduces a page URL to scheme + host + path with the trailing
// slash stripped. Query and fragment never participate in directory matching.
func Canonicalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}
	canon := u.Scheme + "://" + u.Host + u.Path
	return strings.TrimSuffix(canon, "/"), nil
}

// Segments returns the directory segment list a url-directory-match index
// addresses: the host followed by each non-empty path segment.
func Segments(raw string) ([]string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", raw, err)
	}
	segs := []string{u.Host}
	for _, part := range strings.Split(u.Path, "/") {
		if part != "" {
			segs = append(segs, part)
		}
	}
	return segs, nil
}
