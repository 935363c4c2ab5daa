package domain

import "time"

// TemplateCategory selects which rendering template slot a choice applies to.
type TemplateCategory string

const (
	// TemplateProfile is the template slot used for the account profile card.
	TemplateProfile TemplateCategory = "profile"
	// TemplateCard is the template slot used for per-character build cards.
	TemplateCard TemplateCategory = "card"
)

// DefaultTemplateIndex is used whenever a user has not chosen a template.
const DefaultTemplateIndex = 1

// TemplateRange returns the inclusive upper bound of valid indices for a category.
func TemplateRange(category TemplateCategory) int {
	switch category {
	case TemplateProfile:
		return 2
	case TemplateCard:
		return 5
	default:
		return 0
	}
}

// UserPreference is the durable per-user record: the linked game account and
// the chosen template index per category. LinkedAccountID is empty until the
// user completes a link flow.
type UserPreference struct {
	UserID          int64
	LinkedAccountID string
	ProfileTemplate int
	CardTemplate    int
	UpdatedAt       time.Time
}

// TemplateChoice returns the stored index for a category, falling back to the
// default when unset.
func (p *UserPreference) TemplateChoice(category TemplateCategory) int {
	if p == nil {
		return DefaultTemplateIndex
	}

	var idx int
	switch category {
	case TemplateProfile:
		idx = p.ProfileTemplate
	case TemplateCard:
		idx = p.CardTemplate
	}

	if idx <= 0 {
		return DefaultTemplateIndex
	}
	return idx
}

// PortraitLink maps a (user, character name) pair to a custom portrait URL
// consumed by the rendering service.
type PortraitLink struct {
	UserID     int64
	EntityName string // stored lowercased
	ImageURL   string
	UpdatedAt  time.Time
}
