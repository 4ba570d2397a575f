package game

// ResourceType names one of the four resource counters.
type ResourceType string

const (
	ResourceGold  ResourceType = "gold"
	ResourceWood  ResourceType = "wood"
	ResourceStone ResourceType = "stone"
	ResourceFood  ResourceType = "food"
)

// AllResources lists the resource types in display order.
func AllResources() []ResourceType {
	return []ResourceType{ResourceGold, ResourceWood, ResourceStone, ResourceFood}
}

// Resources is a bundle of the four counters. A zero field in a cost means
// that resource is not required.
type Resources struct {
	Gold  int `json:"gold"`
	Wood  int `json:"wood"`
	Stone int `json:"stone"`
	Food  int `json:"food"`
}

// Get returns the amount of a resource.
func (r Resources) Get(t ResourceType) int {
	switch t {
	case ResourceGold:
		return r.Gold
	case ResourceWood:
		return r.Wood
	case ResourceStone:
		return r.Stone
	case ResourceFood:
		return r.Food
	default:
		return 0
	}
}

// IsZero reports whether every counter is zero.
func (r Resources) IsZero() bool {
	return r == Resources{}
}

// HasEnoughResources reports whether have covers every field of cost.
func HasEnoughResources(have, cost Resources) bool {
	return have.Gold >= cost.Gold &&
		have.Wood >= cost.Wood &&
		have.Stone >= cost.Stone &&
		have.Food >= cost.Food
}

// AddResources returns the field-wise sum.
func AddResources(a, b Resources) Resources {
	return Resources{
		Gold:  a.Gold + b.Gold,
		Wood:  a.Wood + b.Wood,
		Stone: a.Stone + b.Stone,
		Food:  a.Food + b.Food,
	}
}

// SubtractResources returns the field-wise difference. Callers gate spends
// with HasEnoughResources; only food may go negative, during upkeep.
func SubtractResources(a, b Resources) Resources {
	return Resources{
		Gold:  a.Gold - b.Gold,
		Wood:  a.Wood - b.Wood,
		Stone: a.Stone - b.Stone,
		Food:  a.Food - b.Food,
	}
}

// ClampFood floors food at zero and reports whether clamping was needed.
func ClampFood(r Resources) (Resources, bool) {
	if r.Food >= 0 {
		return r, false
	}
	r.Food = 0
	return r, true
}
