package net

// Message types for the JSON protocol over TCP.

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "notify"
	Event *EventView `json:"event,omitempty"`

	// For "choose_action"
	Actions []ActionView `json:"actions,omitempty"`
	State   *StateView   `json:"state,omitempty"`

	// For "choose_options"; Kind "confirm" expects a "yes_no" reply
	Kind    string       `json:"kind,omitempty"`
	Effect  string       `json:"effect,omitempty"`
	Prompt  string       `json:"prompt,omitempty"`
	Message string       `json:"message,omitempty"`
	Options []OptionView `json:"options,omitempty"`
	Min     int          `json:"min,omitempty"`
	Max     int          `json:"max,omitempty"`

	// For "game_over"
	Winner int    `json:"winner,omitempty"`
	Result string `json:"result,omitempty"`

	// For "error"
	Error string `json:"error,omitempty"`
}

// EventView is a simplified game event for the client.
type EventView struct {
	Seq     int    `json:"seq,omitempty"`
	Turn    int    `json:"turn"`
	Phase   string `json:"phase"`
	Player  int    `json:"player"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Amount  int    `json:"amount,omitempty"`
	Details string `json:"details"`
}

// ActionView is a numbered action choice.
type ActionView struct {
	Index int    `json:"index"`
	Desc  string `json:"desc"`
}

// OptionView is one choice of a decision point.
type OptionView struct {
	Index    int           `json:"index"`
	Label    string        `json:"label"`
	Card     string        `json:"card,omitempty"`
	Creature *CreatureView `json:"creature,omitempty"`
}

// StateView is the game state from one player's perspective.
type StateView struct {
	You        PlayerView `json:"you"`
	Opponent   PlayerView `json:"opponent"`
	Turn       int        `json:"turn"`
	Phase      string     `json:"phase"`
	IsYourTurn bool       `json:"is_your_turn"`
	Stadium    string     `json:"stadium,omitempty"`
	Pending    string     `json:"pending,omitempty"` // effect waiting on a decision
}

// PlayerView shows one side of the board.
type PlayerView struct {
	Active         *CreatureView  `json:"active,omitempty"`
	Bench          []CreatureView `json:"bench"`
	HandCount      int            `json:"hand_count"`
	Hand           []string       `json:"hand,omitempty"` // card names (only for "you")
	DeckCount      int            `json:"deck_count"`
	DiscardCount   int            `json:"discard_count"`
	LostZoneCount  int            `json:"lost_zone_count,omitempty"`
	Prizes         int            `json:"prizes"`
	EnergyAttached bool           `json:"energy_attached,omitempty"`
	SupporterUsed  bool           `json:"supporter_used,omitempty"`
}

// CreatureView describes a Pokémon in play.
type CreatureView struct {
	Name     string   `json:"name"`
	Stage    string   `json:"stage"`
	Type     string   `json:"type"`
	EX       bool     `json:"ex,omitempty"`
	HP       int      `json:"hp"`
	MaxHP    int      `json:"max_hp"`
	Damage   int      `json:"damage,omitempty"`
	Energies []string `json:"energies,omitempty"`
	Tool     string   `json:"tool,omitempty"`
	Status   string   `json:"status,omitempty"`
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "action"
	Index int `json:"index,omitempty"`

	// For "options"; "cancel" carries no payload
	Indices []int `json:"indices,omitempty"`

	// For "yes_no"
	Answer bool `json:"answer,omitempty"`

	// For "join" (initial handshake)
	DeckNumber int `json:"deck_number,omitempty"`
}
