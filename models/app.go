package models

// MaxScreenshots screenshots stored per app
const MaxScreenshots = 5

// App registry record
type App struct {
	ID uint64 `json:"id"` // sequential, first id is 1

	// Immutable after submission
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	ChainID           uint64  `json:"chain_id"`
	LogoURL           string  `json:"logo_url"`
	RepoURL           string  `json:"repo_url"`
	Tier              string  `json:"tier"` // infrastructure tier, optional
	Developer         Account `json:"developer"`
	BuiltWithPlatform bool    `json:"built_with_platform"`
	CreatedAt         int64   `json:"created_at"` // unix seconds

	// Mutable by the developer
	Description string   `json:"description"`
	AppURL      string   `json:"app_url"`
	Screenshots []string `json:"screenshots"`

	State     AppState `json:"state"`
	UpdatedAt int64    `json:"updated_at"`
}

// IsActive derived from State
func (a *App) IsActive() bool {
	return a.State.IsActive()
}

// IsApproved derived from State
func (a *App) IsApproved() bool {
	return a.State.IsApproved()
}

// Listed app shows up in the public listings
func (a *App) Listed() bool {
	return a.IsActive() && a.IsApproved()
}
