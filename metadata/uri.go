package metadata

import (
	"encoding/json"
	"fmt"
	"strings"
)

const IPFSScheme = "ipfs://"

// DefaultGateways is the gateway order used when a resolver isn't given one.
var DefaultGateways = []string{
	"https://ipfs.io/ipfs/",
	"https://cloudflare-ipfs.com/ipfs/",
	"https://dweb.link/ipfs/",
	"https://gateway.pinata.cloud/ipfs/",
}

// ContentPath strips the ipfs:// prefix from raw. Any other input is
// returned unchanged and is treated as a content path by the resolver.
func ContentPath(raw string) string {
	return strings.TrimPrefix(raw, IPFSScheme)
}

// IsIPFS reports whether raw uses the ipfs:// scheme.
func IsIPFS(raw string) bool {
	return strings.HasPrefix(raw, IPFSScheme)
}

// IsHTTP reports whether raw is a plain http(s) URL.
func IsHTTP(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

// RewriteIPFS replaces a leading ipfs:// in link with gateway. Links
// without the prefix are returned as is.
func RewriteIPFS(link string, gateway string) string {
	if !IsIPFS(link) {
		return link
	}
	return gateway + ContentPath(link)
}

// TokenURIFromResult normalizes the raw value returned by a tokenURI call.
// It accepts a string or a one element sequence holding a string.
func TokenURIFromResult(v interface{}) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []string:
		if len(t) == 1 {
			return t[0], nil
		}
		return "", fmt.Errorf("%w: got %d strings", ErrMalformedURIShape, len(t))
	case []interface{}:
		if len(t) != 1 {
			return "", fmt.Errorf("%w: got %d values", ErrMalformedURIShape, len(t))
		}
		s, ok := t[0].(string)
		if !ok {
			return "", fmt.Errorf("%w: element is %T", ErrMalformedURIShape, t[0])
		}
		return s, nil
	}
	return "", fmt.Errorf("%w: got %T", ErrMalformedURIShape, v)
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	}
	return fmt.Sprintf("%v", v)
}
