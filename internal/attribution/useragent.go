package attribution

import (
	"strings"

	"github.com/mssola/useragent"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
)

// Device is the parsed form of a User-Agent header.
type Device struct {
	DeviceType string
	Browser    string
	OS         string
}

var unknownDevice = Device{
	DeviceType: domain.DeviceUnknown,
	Browser:    domain.DeviceUnknown,
	OS:         domain.DeviceUnknown,
}

// ParseUserAgent classifies a raw User-Agent. Device type precedence is
// mobile, then tablet, then desktop. Empty input yields "unknown" everywhere.
func ParseUserAgent(raw string) Device {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return unknownDevice
	}

	ua := useragent.New(raw)
	name, version := ua.Browser()
	osName := ua.OS()
	if name == "" && osName == "" {
		return unknownDevice
	}

	tablet := isTablet(raw)
	mobile := !tablet && (ua.Mobile() || strings.Contains(strings.ToLower(raw), "mobi"))

	deviceType := domain.DeviceDesktop
	switch {
	case mobile:
		deviceType = domain.DeviceMobile
	case tablet:
		deviceType = domain.DeviceTablet
	}

	return Device{
		DeviceType: deviceType,
		Browser:    orUnknown(strings.TrimSpace(name + " " + version)),
		OS:         orUnknown(osName),
	}
}

// isTablet recognises the common tablet signatures: iPads, Android builds
// without the "Mobile" token, and anything that calls itself a tablet.
func isTablet(raw string) bool {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "ipad"):
		return true
	case strings.Contains(lower, "tablet"):
		return true
	case strings.Contains(lower, "android") && !strings.Contains(lower, "mobile"):
		return true
	}
	return false
}

func orUnknown(s string) string {
	if s == "" {
		return domain.DeviceUnknown
	}
	return s
}
