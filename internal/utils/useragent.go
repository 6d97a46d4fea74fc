package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// Booking sources recorded on each booking row
const (
	SourceWeb       = "web"
	SourceMobileWeb = "mobile_web"
	SourceAPI       = "api"
)

// DeviceInfo holds parsed information from a User-Agent string
type DeviceInfo struct {
	DeviceType string `json:"device_type"` // mobile, tablet, desktop, unknown
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	IsBot      bool   `json:"is_bot"`
	Platform   string `json:"platform"` // android, ios, windows, mac, linux
}

// ParseUserAgent parses a User-Agent string and extracts device information
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" || userAgent == "Unknown" {
		return DeviceInfo{
			DeviceType: "unknown",
			OS:         "Unknown",
			Browser:    "Unknown",
			Platform:   "unknown",
		}
	}

	parser := ua.New(userAgent)

	return DeviceInfo{
		DeviceType: deviceType(parser),
		OS:         osName(parser),
		Browser:    browserName(parser),
		IsBot:      parser.Bot(),
		Platform:   platform(parser),
	}
}

// BookingSource classifies the client that submitted a booking or parcel.
// Requests without a browser User-Agent (scripts, bots, other services) count as api.
func BookingSource(userAgent string) string {
	info := ParseUserAgent(userAgent)
	switch {
	case info.DeviceType == "unknown" || info.IsBot || info.Browser == "Unknown":
		return SourceAPI
	case info.DeviceType == "mobile" || info.DeviceType == "tablet":
		return SourceMobileWeb
	default:
		return SourceWeb
	}
}

func deviceType(parser *ua.UserAgent) string {
	if !parser.Mobile() {
		if isTablet(parser.UA()) {
			return "tablet"
		}
		return "desktop"
	}
	if isTablet(parser.UA()) {
		return "tablet"
	}
	return "mobile"
}

func isTablet(userAgent string) bool {
	lower := strings.ToLower(userAgent)
	for _, indicator := range []string{"ipad", "tablet", "kindle", "playbook", "sm-t"} {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func osName(parser *ua.UserAgent) string {
	info := parser.OSInfo()
	if info.Name == "" {
		return "Unknown"
	}
	if info.Version != "" {
		return info.Name + " " + info.Version
	}
	return info.Name
}

func browserName(parser *ua.UserAgent) string {
	name, _ := parser.Browser()
	if name == "" {
		return "Unknown"
	}
	return name
}

func platform(parser *ua.UserAgent) string {
	name := strings.ToLower(parser.OSInfo().Name)

	// Ordered: "ios" must be checked before the generic "os" families.
	platforms := []struct{ key, value string }{
		{"android", "android"},
		{"iphone os", "ios"},
		{"ios", "ios"},
		{"windows", "windows"},
		{"mac os x", "mac"},
		{"macos", "mac"},
		{"chrome os", "chromeos"},
		{"linux", "linux"},
		{"ubuntu", "linux"},
	}
	for _, p := range platforms {
		if strings.Contains(name, p.key) {
			return p.value
		}
	}
	return "unknown"
}
