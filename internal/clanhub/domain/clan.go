package domain

import "time"

// Clan themes accepted by the settings surface.
const (
	ThemeOrange = "orange"
	ThemeBlue   = "blue"
	ThemeYellow = "yellow"
)

// ValidTheme reports whether theme is one of the accepted clan themes.
func ValidTheme(theme string) bool {
	switch theme {
	case ThemeOrange, ThemeBlue, ThemeYellow:
		return true
	}
	return false
}

// Clan is an authority domain. It exclusively owns its memberships,
// applications and invitations; deleting a clan cascades to all three.
type Clan struct {
	ID           string
	Tag          string // unique short tag
	Name         string
	Description  string
	Theme        string
	BannerURL    string
	LogoURL      string
	Requirements string // free-form recruiting requirements, JSON
	Level        int
	Winrate      float64
	CreatedAt    time.Time
}
