package tracking

import "testing"

const (
	uaChromeWin   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	uaEdgeWin     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.2478.51"
	uaFirefoxMac  = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:125.0) Gecko/20100101 Firefox/125.0"
	uaSafariIPh   = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1"
	uaSafariIPad  = "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1"
	uaChromeDroid = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Mobile Safari/537.36"
)

func TestDeviceType(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{uaChromeWin, DeviceDesktop},
		{uaFirefoxMac, DeviceDesktop},
		{uaSafariIPh, DeviceMobile},
		{uaSafariIPad, DeviceTablet},
		{uaChromeDroid, DeviceMobile},
		{"", DeviceUnknown},
	}
	for _, tt := range tests {
		if got := DeviceType(tt.ua); got != tt.want {
			t.Errorf("DeviceType(%q) = %q, want %q", tt.ua, got, tt.want)
		}
	}
}

func TestParseBrowser(t *testing.T) {
	tests := []struct {
		ua          string
		wantName    string
		wantVersion string
	}{
		{uaChromeWin, "Chrome", "124.0"},
		{uaEdgeWin, "Edge", "124.0"},
		{uaFirefoxMac, "Firefox", "125.0"},
		{uaSafariIPh, "Safari", "17.4"},
		{"curl/8.5.0", "unknown", "unknown"},
	}
	for _, tt := range tests {
		info := Parse(tt.ua)
		if info.Browser != tt.wantName || info.BrowserVersion != tt.wantVersion {
			t.Errorf("Parse(%q) browser = %s/%s, want %s/%s",
				tt.ua, info.Browser, info.BrowserVersion, tt.wantName, tt.wantVersion)
		}
	}
}

func TestParseOS(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{uaChromeWin, "Windows 10"},
		{uaFirefoxMac, "macOS"},
		{uaSafariIPh, "iOS"},
		{uaChromeDroid, "Android"},
		{"Mozilla/5.0 (X11; Linux x86_64) Gecko/20100101 Firefox/125.0", "Linux"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		if got := Parse(tt.ua).OS; got != tt.want {
			t.Errorf("Parse(%q).OS = %q, want %q", tt.ua, got, tt.want)
		}
	}
}

func TestParseEmptyAgent(t *testing.T) {
	info := Parse("")
	if info.DeviceType != DeviceUnknown || info.Browser != "unknown" || info.OS != "unknown" {
		t.Errorf("unexpected info for empty agent: %+v", info)
	}
}
