package entities

// Achievement is a gamification badge. The catalog is fixed; unlock state is
// computed from the user's stored records on every read.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	BadgeIcon   string `json:"badge_icon"`
	Points      int    `json:"points"`
	Unlocked    bool   `json:"unlocked"`
}
