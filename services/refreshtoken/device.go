package refreshtoken

import (
	"strings"

	"github.com/mileusna/useragent"
)

// DescribeDevice renders a short human-readable description of a User-Agent,
// e.g. "Chrome 120.0 on macOS (desktop)".
func DescribeDevice(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return ""
	}

	ua := useragent.Parse(userAgent)

	deviceType := "unknown"
	switch {
	case ua.Bot:
		deviceType = "bot"
	case ua.Tablet:
		deviceType = "tablet"
	case ua.Mobile:
		deviceType = "mobile"
	case ua.Desktop:
		deviceType = "desktop"
	}

	browser := ua.Name
	if browser == "" {
		browser = "Unknown browser"
	}
	if ua.Version != "" {
		browser += " " + ua.Version
	}

	os := ua.OS
	if os == "" {
		os = "unknown OS"
	}

	description := browser + " on " + os + " (" + deviceType + ")"
	if len(description) > 500 {
		description = description[:500]
	}
	return description
}
