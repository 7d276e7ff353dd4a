package util

import "strings"

// Coarse device/browser families derived from the User-Agent header.
// Matching is case-sensitive substring search, first keyword wins; an
// empty or unrecognized UA classifies as Other.
const (
	OSWindows = "Windows"
	OSMac     = "Mac"
	OSiOS     = "iOS"
	OSAndroid = "Android"
	OSOther   = "Other"

	BrowserChrome = "Google Chrome"
	BrowserEdge   = "Microsoft Edge"
	BrowserOther  = "Other"
)

func OSFamily(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Windows"):
		return OSWindows
	case strings.Contains(userAgent, "Macintosh"):
		return OSMac
	case strings.Contains(userAgent, "iPhone"), strings.Contains(userAgent, "iPad"):
		return OSiOS
	case strings.Contains(userAgent, "Android"):
		return OSAndroid
	default:
		return OSOther
	}
}

// BrowserFamily checks Chrome before Edge: Edge UAs also carry "Chrome",
// and first-match-wins is the documented policy for both classifiers.
func BrowserFamily(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Chrome"):
		return BrowserChrome
	case strings.Contains(userAgent, "Edge"):
		return BrowserEdge
	default:
		return BrowserOther
	}
}

// IsMobileOS reports whether the family is subject to the access window.
func IsMobileOS(family string) bool {
	return family == OSiOS || family == OSAndroid
}
