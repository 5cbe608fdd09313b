package media

// Preload mirrors the values of the <video preload> attribute.
type Preload string

const (
	PreloadNone     Preload = "none"
	PreloadMetadata Preload = "metadata"
	PreloadAuto     Preload = "auto"
)

// Playback is the delivery decision for one hero video.
type Playback struct {
	Preload  Preload
	Autoplay bool
	Muted    bool
	// ShowPlayButton is set whenever autoplay is not attempted.
	ShowPlayButton bool
	Reason         string
}

// Decide chooses preload and autoplay for a visitor. Motion and data preferences win
// over everything, then network quality, then device class.
func Decide(p ClientProfile) Playback {
	switch {
	case p.ReducedMotion:
		return manual(PreloadNone, "reduced-motion")
	case p.SaveData:
		return manual(PreloadNone, "save-data")
	case p.Bot:
		return manual(PreloadNone, "bot")
	case p.Network == NetworkSlow2G || p.Network == Network2G:
		return manual(PreloadNone, "slow-network")
	case p.Network == Network3G:
		return manual(PreloadMetadata, "medium-network")
	case p.Handheld():
		return Playback{Preload: PreloadMetadata, Autoplay: true, Muted: true, Reason: "mobile"}
	default:
		return Playback{Preload: PreloadAuto, Autoplay: true, Muted: true, Reason: "desktop"}
	}
}

func manual(preload Preload, reason string) Playback {
	return Playback{Preload: preload, ShowPlayButton: true, Reason: reason}
}
