package media

// State is a hero video player state.
type State string

const (
	StateUnloaded State = "unloaded"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StatePlaying  State = "playing"
	StateErrored  State = "errored"
)

// Event is a media event that drives the player.
type Event string

const (
	EventLoad    Event = "load"
	EventCanPlay Event = "canplay"
	EventPlay    Event = "play"
	EventPause   Event = "pause"
	EventWaiting Event = "waiting"
	EventEnded   Event = "ended"
	EventError   Event = "error"
	EventRetry   Event = "retry"
)

// Transitions is the complete state table; pairs not listed are ignored. The page
// script receives it as JSON so both sides agree.
var Transitions = map[State]map[Event]State{
	StateUnloaded: {
		EventLoad:  StateLoading,
		EventPlay:  StateLoading,
		EventError: StateErrored,
	},
	StateLoading: {
		EventCanPlay: StateReady,
		EventPlay:    StatePlaying,
		EventError:   StateErrored,
	},
	StateReady: {
		EventPlay:    StatePlaying,
		EventWaiting: StateLoading,
		EventError:   StateErrored,
	},
	StatePlaying: {
		EventPause:   StateReady,
		EventEnded:   StateReady,
		EventWaiting: StateLoading,
		EventError:   StateErrored,
	},
	StateErrored: {
		EventRetry: StateLoading,
	},
}

// Player tracks one video element.
type Player struct {
	state    State
	playback Playback
}

// NewPlayer starts a player for the given decision. A missing source starts errored so
// the poster is shown straight away.
func NewPlayer(pb Playback, hasSource bool) *Player {
	p := &Player{state: StateUnloaded, playback: pb}
	if !hasSource {
		p.state = StateErrored
		return p
	}
	if pb.Preload != PreloadNone || pb.Autoplay {
		p.state = StateLoading
	}
	return p
}

// State returns the current state.
func (p *Player) State() State {
	return p.state
}

// Fire applies an event and reports whether it changed anything.
func (p *Player) Fire(ev Event) bool {
	next, ok := Transitions[p.state][ev]
	if !ok {
		return false
	}
	p.state = next
	return true
}

// ShowPoster reports whether the static poster should cover the video.
func (p *Player) ShowPoster() bool {
	return p.state != StatePlaying
}

// ShowPlayButton reports whether the manual play control should be visible.
func (p *Player) ShowPlayButton() bool {
	if p.state == StateErrored {
		return false
	}
	return p.playback.ShowPlayButton && p.state != StatePlaying
}
