// Package canonical normalizes article URLs into stable deduplication
// keys. Two articles are duplicates when their canonical URLs match,
// or (secondary rule) when their title fingerprints match.
package canonical

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode"
)

// trackingParams are query parameters that never change the document
// being addressed and must not split duplicates apart.
var trackingParams = map[string]bool{
	"fbclid":      true,
	"gclid":       true,
	"dclid":       true,
	"igshid":      true,
	"mc_cid":      true,
	"mc_eid":      true,
	"ref":         true,
	"ref_src":     true,
	"ncid":        true,
	"cmpid":       true,
	"ocid":        true,
	"smid":        true,
	"partner":     true,
	"share":       true,
	"spm":         true,
	"_hsenc":      true,
	"_hsmi":       true,
	"yclid":       true,
	"wt_mc":       true,
	"feature":     true,
	"at_medium":   true,
	"at_campaign": true,
}

func isTrackingParam(name string) bool {
	name = strings.ToLower(name)
	if strings.HasPrefix(name, "utm_") {
		return true
	}
	return trackingParams[name]
}

// Canonicalize produces the canonical form of a URL: https scheme,
// lowercased host without www. or default port, tracking parameters
// removed, surviving parameters sorted, fragment dropped, trailing
// slash trimmed. The result is idempotent.
func Canonicalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty url")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}

	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "http", "https":
		// http and https republications of the same story collapse
		scheme = "https"
	default:
		return "", fmt.Errorf("unsupported scheme %q in %q", u.Scheme, raw)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", fmt.Errorf("url %q has no host", raw)
	}
	host = strings.TrimPrefix(host, "www.")

	port := u.Port()
	if port == "80" || port == "443" {
		port = ""
	}
	if port != "" {
		host = host + ":" + port
	}

	path := strings.TrimRight(u.EscapedPath(), "/")

	query := ""
	if u.RawQuery != "" {
		values, err := url.ParseQuery(u.RawQuery)
		if err != nil {
			return "", fmt.Errorf("parse query of %q: %w", raw, err)
		}
		kept := url.Values{}
		for name, vals := range values {
			if isTrackingParam(name) {
				continue
			}
			for _, v := range vals {
				kept.Add(name, v)
			}
		}
		if len(kept) > 0 {
			// Encode sorts keys; sort repeated values for stability.
			for name := range kept {
				sort.Strings(kept[name])
			}
			query = kept.Encode()
		}
	}

	canon := scheme + "://" + host + path
	if query != "" {
		canon += "?" + query
	}
	return canon, nil
}

// TitleFingerprint reduces a title to a whitespace/punctuation
// insensitive key for the secondary duplicate rule. Returns "" for
// titles with no letters or digits, which callers must not dedupe on.
func TitleFingerprint(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			// punctuation splits words so "mega-parc" == "mega parc"
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
