// Package tracking derives device, browser and OS information from the
// User-Agent header of ingestion requests, so records carry the same
// submission metadata whether they arrive through a form or the API.
package tracking

import (
	"regexp"
	"strings"
)

const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

var (
	mobileRe = regexp.MustCompile(`(?i)mobile|android|iphone|ipod|blackberry|iemobile|opera mini`)
	tabletRe = regexp.MustCompile(`(?i)tablet|ipad|playbook|silk`)

	chromeVerRe  = regexp.MustCompile(`Chrome/(\d+\.\d+)`)
	edgeVerRe    = regexp.MustCompile(`Edg/(\d+\.\d+)`)
	firefoxVerRe = regexp.MustCompile(`Firefox/(\d+\.\d+)`)
	safariVerRe  = regexp.MustCompile(`Version/(\d+\.\d+)`)
	operaVerRe   = regexp.MustCompile(`OPR/(\d+\.\d+)`)
)

// Info summarizes what a User-Agent string reveals about the client.
type Info struct {
	DeviceType     string `json:"deviceType"`
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browserVersion"`
	OS             string `json:"os"`
}

// Parse inspects a raw User-Agent header. It never fails; unrecognized or
// empty agents come back as "unknown" across the board.
func Parse(userAgent string) Info {
	if userAgent == "" {
		return Info{
			DeviceType:     DeviceUnknown,
			Browser:        "unknown",
			BrowserVersion: "unknown",
			OS:             "unknown",
		}
	}

	info := Info{
		DeviceType: DeviceType(userAgent),
		OS:         operatingSystem(userAgent),
	}
	info.Browser, info.BrowserVersion = browser(userAgent)
	return info
}

// DeviceType classifies a User-Agent as mobile, tablet or desktop. Tablets
// are checked after phones since iPad agents also mention Mobile.
func DeviceType(userAgent string) string {
	if userAgent == "" {
		return DeviceUnknown
	}
	if tabletRe.MatchString(userAgent) {
		return DeviceTablet
	}
	if mobileRe.MatchString(userAgent) {
		return DeviceMobile
	}
	return DeviceDesktop
}

func browser(userAgent string) (name, version string) {
	switch {
	case strings.Contains(userAgent, "Edg"):
		return "Edge", matchVersion(edgeVerRe, userAgent)
	case strings.Contains(userAgent, "OPR"):
		return "Opera", matchVersion(operaVerRe, userAgent)
	case strings.Contains(userAgent, "Chrome"):
		return "Chrome", matchVersion(chromeVerRe, userAgent)
	case strings.Contains(userAgent, "Firefox"):
		return "Firefox", matchVersion(firefoxVerRe, userAgent)
	case strings.Contains(userAgent, "Safari"):
		return "Safari", matchVersion(safariVerRe, userAgent)
	}
	return "unknown", "unknown"
}

func matchVersion(re *regexp.Regexp, userAgent string) string {
	if m := re.FindStringSubmatch(userAgent); m != nil {
		return m[1]
	}
	return "unknown"
}

func operatingSystem(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Windows NT 10"):
		return "Windows 10"
	case strings.Contains(userAgent, "Windows NT 11"):
		return "Windows 11"
	case strings.Contains(userAgent, "Windows"):
		return "Windows"
	// iOS agents contain "like Mac OS X", so the Apple mobile checks come first
	case strings.Contains(userAgent, "iPhone"), strings.Contains(userAgent, "iPad"), strings.Contains(userAgent, "iPod"), strings.Contains(userAgent, "iOS"):
		return "iOS"
	case strings.Contains(userAgent, "Mac OS X"):
		return "macOS"
	case strings.Contains(userAgent, "Android"):
		return "Android"
	case strings.Contains(userAgent, "Linux"):
		return "Linux"
	}
	return "unknown"
}
