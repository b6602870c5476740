package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/varity-labs/varity-app-store/service/apperrors"
)

func testRules() *Rules {
	return NewRules([]string{"DeFi", "Analytics"}, []uint64{33529, 42161}, []string{"free", "growth"})
}

func validSubmission() *Submission {
	return &Submission{
		Name:        "Ledgerly",
		Description: "Bookkeeping for DAOs",
		AppURL:      "https://ledgerly.app",
		LogoURL:     "https://ledgerly.app/logo.png",
		Category:    "DeFi",
		ChainID:     33529,
	}
}

func TestTextBounds(t *testing.T) {
	assert.NoError(t, ValidateName(strings.Repeat("a", 100)))
	assert.ErrorIs(t, ValidateName(strings.Repeat("a", 101)), apperrors.ErrInvalidInput)
	assert.ErrorIs(t, ValidateName(""), apperrors.ErrInvalidInput)

	// characters, not bytes
	assert.NoError(t, ValidateName(strings.Repeat("é", 100)))

	assert.NoError(t, ValidateDescription(strings.Repeat("d", 1000)))
	assert.ErrorIs(t, ValidateDescription(strings.Repeat("d", 1001)), apperrors.ErrInvalidInput)
	assert.ErrorIs(t, ValidateDescription(""), apperrors.ErrInvalidInput)
}

func TestScreenshots(t *testing.T) {
	assert.NoError(t, ValidateScreenshots(nil))
	assert.NoError(t, ValidateScreenshots([]string{"1", "2", "3", "4", "5"}))
	assert.ErrorIs(t, ValidateScreenshots([]string{"1", "2", "3", "4", "5", "6"}), apperrors.ErrInvalidInput)
	assert.ErrorIs(t, ValidateScreenshots([]string{"1", ""}), apperrors.ErrInvalidInput)
}

func TestEnumerations(t *testing.T) {
	r := testRules()

	assert.NoError(t, r.ValidateCategory("DeFi"))
	err := r.ValidateCategory("defi")
	assert.ErrorIs(t, err, apperrors.ErrInvalidEnum)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidInput)

	assert.NoError(t, r.ValidateChain(42161))
	assert.ErrorIs(t, r.ValidateChain(137), apperrors.ErrInvalidEnum)

	assert.NoError(t, r.ValidateTier("growth"))
	assert.ErrorIs(t, r.ValidateTier("Growth"), apperrors.ErrInvalidEnum)
}

func TestValidateSubmission(t *testing.T) {
	r := testRules()
	assert.NoError(t, r.ValidateSubmission(validSubmission()))

	s := validSubmission()
	s.LogoURL = ""
	assert.ErrorIs(t, r.ValidateSubmission(s), apperrors.ErrInvalidInput)

	s = validSubmission()
	s.Tier = "platinum"
	assert.ErrorIs(t, r.ValidateSubmission(s), apperrors.ErrInvalidEnum)

	s = validSubmission()
	s.Tier = "free"
	s.RepoURL = ""
	assert.NoError(t, r.ValidateSubmission(s))
}

func TestValidateUpdate(t *testing.T) {
	assert.NoError(t, ValidateUpdate("new", "https://x", []string{"a"}))
	assert.ErrorIs(t, ValidateUpdate("new", "", nil), apperrors.ErrInvalidInput)
	assert.ErrorIs(t, ValidateUpdate("", "https://x", nil), apperrors.ErrInvalidInput)
}
