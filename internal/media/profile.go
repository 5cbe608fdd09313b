// Package media decides how hero videos are delivered to a visitor and models the
// player's state machine shared with the page script.
package media

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/mileusna/useragent"
)

// Network is the effective connection type reported by the ECT client hint.
type Network string

const (
	NetworkUnknown Network = ""
	NetworkSlow2G  Network = "slow-2g"
	Network2G      Network = "2g"
	Network3G      Network = "3g"
	Network4G      Network = "4g"
)

// ClientProfile is what the server can learn about the visitor from request headers.
type ClientProfile struct {
	Mobile        bool
	Tablet        bool
	Bot           bool
	ReducedMotion bool
	SaveData      bool
	Network       Network
}

// ProfileFromRequest reads User-Agent and the client hint headers.
func ProfileFromRequest(r *http.Request) ClientProfile {
	ua := useragent.Parse(r.UserAgent())

	profile := ClientProfile{
		Mobile: ua.Mobile,
		Tablet: ua.Tablet,
		Bot:    ua.Bot,
	}

	if hint := strings.TrimSpace(r.Header.Get("Sec-CH-UA-Mobile")); hint == "?1" {
		profile.Mobile = true
	}
	profile.ReducedMotion = strings.EqualFold(strings.TrimSpace(r.Header.Get("Sec-CH-Prefers-Reduced-Motion")), "reduce")
	profile.SaveData = strings.EqualFold(strings.TrimSpace(r.Header.Get("Save-Data")), "on")
	profile.Network = parseNetwork(r.Header.Get("ECT"), r.Header.Get("Downlink"))

	return profile
}

// parseNetwork prefers ECT; without it a Downlink estimate in Mbps is bucketed the way
// browsers derive ECT.
func parseNetwork(ect, downlink string) Network {
	switch Network(strings.ToLower(strings.TrimSpace(ect))) {
	case NetworkSlow2G:
		return NetworkSlow2G
	case Network2G:
		return Network2G
	case Network3G:
		return Network3G
	case Network4G:
		return Network4G
	}

	mbps, err := strconv.ParseFloat(strings.TrimSpace(downlink), 64)
	if err != nil || mbps <= 0 {
		return NetworkUnknown
	}
	switch {
	case mbps < 0.05:
		return NetworkSlow2G
	case mbps < 0.07:
		return Network2G
	case mbps < 0.7:
		return Network3G
	default:
		return Network4G
	}
}

// Handheld reports phones and tablets.
func (p ClientProfile) Handheld() bool {
	return p.Mobile || p.Tablet
}
