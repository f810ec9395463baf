package feed

type SlotState string

const (
	SlotIdle        SlotState = "idle"
	SlotLoading     SlotState = "loading"
	SlotReadyPaused SlotState = "ready_paused"
	SlotPlaying     SlotState = "playing"
)

// Slot is one of the at most three mounted players, keyed by position
// relative to the current index.
type Slot struct {
	Position  int       `json:"position"`
	EpisodeId string    `json:"episode_id"`
	Title     string    `json:"title"`
	PlayURL   string    `json:"play_url,omitempty"`
	IsLocked  bool      `json:"is_locked"`
	State     SlotState `json:"state"`
	// tap-to-play overlay shown over the cover before the first
	// qualifying user input
	ShowTapOverlay bool `json:"show_tap_overlay"`
}

type Episode struct {
	Id       string `json:"id"`
	Title    string `json:"title"`
	IsLocked bool   `json:"is_locked"`
}

type FeedView struct {
	VideoId      string `json:"video_id"`
	CurrentIndex int    `json:"current_index"`
	EpisodeCount int    `json:"episode_count"`
	Slots        []Slot `json:"slots"`
}

type GateOffer struct {
	EpisodeId          string  `json:"episode_id"`
	EpisodeTitle       string  `json:"episode_title"`
	SingleEpisodePrice float64 `json:"single_episode_price"`
	AllEpisodesPrice   float64 `json:"all_episodes_price"`
	GuestRequired      bool    `json:"guest_required"`
}

type GateEvent struct {
	Type     string    `json:"type"`
	Episodes []Episode `json:"episodes,omitempty"`
	Error    string    `json:"error,omitempty"`
}

const (
	GateEventUnlocked       = "UNLOCKED"
	GateEventPaymentTimeout = "PAYMENT_TIMEOUT"
	GateEventError          = "ERROR"
)
