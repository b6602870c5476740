package validation

import (
	"fmt"
	"unicode/utf8"

	"github.com/varity-labs/varity-app-store/models"
	"github.com/varity-labs/varity-app-store/service/apperrors"
)

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 1000
)

// Rules validates submission and update fields. Enumerations are configurable;
// matching is exact and case-sensitive.
type Rules struct {
	categories map[string]struct{}
	chains     map[uint64]struct{}
	tiers      map[string]struct{}
}

// NewRules create rules for the recognized categories, chains and tiers
func NewRules(categories []string, chains []uint64, tiers []string) *Rules {
	r := &Rules{
		categories: make(map[string]struct{}, len(categories)),
		chains:     make(map[uint64]struct{}, len(chains)),
		tiers:      make(map[string]struct{}, len(tiers)),
	}
	for _, c := range categories {
		r.categories[c] = struct{}{}
	}
	for _, c := range chains {
		r.chains[c] = struct{}{}
	}
	for _, t := range tiers {
		r.tiers[t] = struct{}{}
	}
	return r
}

func invalid(field, reason string) error {
	return fmt.Errorf("%s %s: %w", field, reason, apperrors.ErrInvalidInput)
}

func boundedText(field, value string, max int) error {
	if value == "" {
		return invalid(field, "is empty")
	}
	if utf8.RuneCountInString(value) > max {
		return invalid(field, fmt.Sprintf("exceeds %d characters", max))
	}
	return nil
}

// ValidateName non-empty, at most 100 characters
func ValidateName(name string) error {
	return boundedText("name", name, MaxNameLength)
}

// ValidateDescription non-empty, at most 1000 characters
func ValidateDescription(description string) error {
	return boundedText("description", description, MaxDescriptionLength)
}

// ValidateURL only non-emptiness is checked
func ValidateURL(field, url string) error {
	if url == "" {
		return invalid(field, "is empty")
	}
	return nil
}

// ValidateScreenshots at most 5 entries, none empty. No screenshots is valid.
func ValidateScreenshots(screenshots []string) error {
	if len(screenshots) > models.MaxScreenshots {
		return invalid("screenshots", fmt.Sprintf("exceeds %d entries", models.MaxScreenshots))
	}
	for i, s := range screenshots {
		if s == "" {
			return invalid(fmt.Sprintf("screenshots[%d]", i), "is empty")
		}
	}
	return nil
}

func (r *Rules) ValidateCategory(category string) error {
	if _, ok := r.categories[category]; !ok {
		return fmt.Errorf("category %q: %w", category, apperrors.ErrInvalidEnum)
	}
	return nil
}

func (r *Rules) ValidateChain(chainID uint64) error {
	if _, ok := r.chains[chainID]; !ok {
		return fmt.Errorf("chain %d: %w", chainID, apperrors.ErrInvalidEnum)
	}
	return nil
}

func (r *Rules) ValidateTier(tier string) error {
	if _, ok := r.tiers[tier]; !ok {
		return fmt.Errorf("tier %q: %w", tier, apperrors.ErrInvalidEnum)
	}
	return nil
}

// Submission fields a developer provides when registering an app
type Submission struct {
	Name              string
	Description       string
	AppURL            string
	LogoURL           string
	RepoURL           string // optional
	Category          string
	ChainID           uint64
	Tier              string // optional
	Screenshots       []string
	BuiltWithPlatform bool
}

// ValidateSubmission checks every field, returning the first failure
func (r *Rules) ValidateSubmission(s *Submission) error {
	if err := ValidateName(s.Name); err != nil {
		return err
	}
	if err := ValidateDescription(s.Description); err != nil {
		return err
	}
	if err := ValidateURL("app_url", s.AppURL); err != nil {
		return err
	}
	if err := ValidateURL("logo_url", s.LogoURL); err != nil {
		return err
	}
	if err := ValidateScreenshots(s.Screenshots); err != nil {
		return err
	}
	if err := r.ValidateCategory(s.Category); err != nil {
		return err
	}
	if err := r.ValidateChain(s.ChainID); err != nil {
		return err
	}
	if s.Tier != "" {
		return r.ValidateTier(s.Tier)
	}
	return nil
}

// ValidateUpdate checks the developer-mutable fields
func ValidateUpdate(description, appURL string, screenshots []string) error {
	if err := ValidateDescription(description); err != nil {
		return err
	}
	if err := ValidateURL("app_url", appURL); err != nil {
		return err
	}
	return ValidateScreenshots(screenshots)
}
