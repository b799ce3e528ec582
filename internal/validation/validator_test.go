package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/homeshelf/homeshelf-server/internal/errors"
)

type sampleRequest struct {
	Title    string `json:"title" validate:"required,max=10"`
	GiftFrom string `json:"gift_from,omitempty" validate:"max=5"`
}

func TestValidate_Passes(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(sampleRequest{Title: "ok", GiftFrom: "Nana"}))
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(sampleRequest{Title: "ok", GiftFrom: "too long"})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must not exceed 5 characters", details["gift_from"])
}

func TestValidate_RequiredField(t *testing.T) {
	v := New()

	err := v.Validate(sampleRequest{})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["title"])
}
