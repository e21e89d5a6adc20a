package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fisworks/product-engine/pkg/apperrors"
	"github.com/fisworks/product-engine/pkg/models"
)

func newPolicy(t *testing.T) *Policy {
	t.Helper()
	p, err := NewPolicy()
	require.NoError(t, err)
	return p
}

func TestCanEdit(t *testing.T) {
	p := newPolicy(t)

	// Strict equality, no role overrides another
	for _, current := range models.AllRoles {
		for _, owner := range models.AllRoles {
			assert.Equal(t, current == owner, p.CanEdit(current, owner))
		}
	}
}

func TestCanEditField(t *testing.T) {
	p := newPolicy(t)

	allowed, owner := p.CanEditField(models.RoleProductOwner, "marketingName")
	assert.True(t, allowed)
	assert.Equal(t, models.RoleProductOwner, owner)

	allowed, owner = p.CanEditField(models.RoleActuary, "marketingName")
	assert.False(t, allowed)
	assert.Equal(t, models.RoleProductOwner, owner)

	allowed, owner = p.CanEditField(models.RoleUnderwriter, "currencies")
	assert.True(t, allowed)
	assert.Equal(t, models.RoleUnderwriter, owner)

	// Unknown fields are denied for everyone
	for _, role := range models.AllRoles {
		allowed, _ := p.CanEditField(role, "noSuchField")
		assert.False(t, allowed)
	}
}

func TestControlStates(t *testing.T) {
	p := newPolicy(t)

	states := p.ControlStates(models.RoleMethodologist)
	require.Len(t, states, len(p.Fields()))

	byName := make(map[string]ControlState, len(states))
	for _, cs := range states {
		byName[cs.Name] = cs
	}

	own := byName["contractTemplate"]
	assert.False(t, own.Disabled)
	assert.Empty(t, own.Message)

	foreign := byName["tariffTable"]
	assert.True(t, foreign.Disabled)
	assert.Equal(t, "Это поле заполняет Актуарий", foreign.Message)
}

func TestValidateCollectsOwnMissingFields(t *testing.T) {
	p := newPolicy(t)

	err := p.Validate(models.RoleProductOwner, map[string]any{
		"marketingName": "Защита дома",
		"partner":       "Банк",
	})
	verr, ok := apperrors.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, models.RoleProductOwner.String(), verr.Role)
	assert.ElementsMatch(t,
		[]string{"priority", "launchDate", "segment", "productGroup"},
		verr.Fields)
}

func TestValidateIgnoresForeignFields(t *testing.T) {
	p := newPolicy(t)

	// Product owner's own fields are complete; everyone else's are empty.
	data := map[string]any{
		"priority":      "Высокий",
		"launchDate":    "2026-01-01",
		"marketingName": "Защита дома",
		"partner":       "Банк",
		"segment":       "Розница",
		"productGroup":  "ИСЖ",
	}
	assert.NoError(t, p.Validate(models.RoleProductOwner, data))

	// The underwriter sending the same product is blocked by their own
	// fields only.
	err := p.Validate(models.RoleUnderwriter, data)
	verr, ok := apperrors.IsValidation(err)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"currencies", "paymentFrequencies"}, verr.Fields)
}

func TestValidateMultiFields(t *testing.T) {
	p := newPolicy(t)

	err := p.Validate(models.RoleUnderwriter, map[string]any{
		"currencies":         []any{},
		"paymentFrequencies": []string{"ежегодно"},
	})
	verr, ok := apperrors.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"currencies"}, verr.Fields)

	assert.NoError(t, p.Validate(models.RoleUnderwriter, map[string]any{
		"currencies":         []any{"RUB"},
		"paymentFrequencies": []string{"ежегодно"},
	}))
}

func TestValidateRichTextStripsMarkup(t *testing.T) {
	p := newPolicy(t)

	// Markup with no visible text does not count as filled
	err := p.Validate(models.RoleMethodologist, map[string]any{
		"contractTemplate": "<p>&nbsp;</p><br>",
	})
	_, ok := apperrors.IsValidation(err)
	require.True(t, ok)

	assert.NoError(t, p.Validate(models.RoleMethodologist, map[string]any{
		"contractTemplate": "<p>Договор страхования</p>",
	}))
}

func TestValidateWhitespaceOnlyText(t *testing.T) {
	p := newPolicy(t)

	err := p.Validate(models.RoleActuary, map[string]any{
		"tariffTable": "   ",
	})
	verr, ok := apperrors.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"tariffTable"}, verr.Fields)
}

func TestFieldsDeclareKnownSections(t *testing.T) {
	p := newPolicy(t)
	sections := make(map[string]bool)
	for _, s := range p.Sections() {
		sections[s.Key] = true
	}
	for _, f := range p.Fields() {
		assert.True(t, sections[f.Section], "field %s references unknown section %s", f.Name, f.Section)
	}
}
