package models

// PlayerState is the full snapshot pushed to the kiosk UI. The coordinator
// owns all of this; nothing here is shared mutable state.
type PlayerState struct {
	Current           *Track  `json:"current,omitempty"`
	Queue             []Track `json:"queue"`
	Credits           int     `json:"credits"`
	AdminMode         bool    `json:"adminMode"`
	StreamSecondsLeft int     `json:"streamSecondsLeft"` // remaining metered seconds for streamed playback
	IdleFilling       bool    `json:"idleFilling"`       // true while the idle scheduler is injecting filler
	Paused            bool    `json:"paused"`
}
