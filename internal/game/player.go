package game

// PlayerID is the index of a player in turn order.
type PlayerID int

// NoPlayer marks an unowned territory or an unset winner.
const NoPlayer PlayerID = -1

// PlayerColor represents a player's color.
type PlayerColor string

const (
	ColorRed    PlayerColor = "red"
	ColorBlue   PlayerColor = "blue"
	ColorGreen  PlayerColor = "green"
	ColorYellow PlayerColor = "yellow"
	ColorPurple PlayerColor = "purple"
	ColorOrange PlayerColor = "orange"
	ColorCyan   PlayerColor = "cyan"
	ColorBrown  PlayerColor = "brown"
)

// AllColors returns all available player colors in assignment order.
func AllColors() []PlayerColor {
	return []PlayerColor{
		ColorRed,
		ColorBlue,
		ColorGreen,
		ColorYellow,
		ColorPurple,
		ColorOrange,
		ColorCyan,
		ColorBrown,
	}
}

// MaxPlayers is bounded by the color palette.
const MaxPlayers = 8

// Player represents a player in the game. Territories, Units, Buildings and
// Score are derived from the board and refreshed after every change.
type Player struct {
	ID          PlayerID             `json:"id"`
	Name        string               `json:"name"`
	Color       PlayerColor          `json:"color"`
	Resources   Resources            `json:"resources"`
	Territories []TerritoryID        `json:"territories"`
	Units       []UnitID             `json:"units"`
	Buildings   map[BuildingType]int `json:"buildings"`
	Score       int                  `json:"score"`
	SetupClaim  TerritoryID          `json:"setupClaim"`
	Eliminated  bool                 `json:"eliminated"`
}

// NewPlayer creates a new player.
func NewPlayer(id PlayerID, name string, color PlayerColor, start Resources) *Player {
	return &Player{
		ID:          id,
		Name:        name,
		Color:       color,
		Resources:   start,
		Territories: []TerritoryID{},
		Units:       []UnitID{},
		Buildings:   make(map[BuildingType]int),
		SetupClaim:  NoTerritory,
	}
}

// HasClaimed reports whether the player has made their setup claim.
func (p *Player) HasClaimed() bool {
	return p.SetupClaim != NoTerritory
}

// BuildingCount returns the total number of buildings the player owns.
func (p *Player) BuildingCount() int {
	n := 0
	for _, c := range p.Buildings {
		n += c
	}
	return n
}

func (p *Player) clone() *Player {
	c := *p
	c.Territories = append([]TerritoryID{}, p.Territories...)
	c.Units = append([]UnitID{}, p.Units...)
	c.Buildings = make(map[BuildingType]int, len(p.Buildings))
	for k, v := range p.Buildings {
		c.Buildings[k] = v
	}
	return &c
}
