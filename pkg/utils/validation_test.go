package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "cloudmap-backend/pkg/errors"
)

type sampleRequest struct {
	RequestText string `json:"requestText" validate:"required,max=10"`
	Format      string `json:"format" validate:"omitempty,oneof=json text"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("Should accept a valid struct", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(sampleRequest{RequestText: "api", Format: "json"}))
	})

	t.Run("Should name fields by their JSON tag", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{})

		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
		assert.Equal(t, "requestText is required", pkgerrors.GetAppError(err).Message)
	})

	t.Run("Should join multiple failures", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{RequestText: "far too long text", Format: "xml"})

		require.Error(t, err)
		msg := pkgerrors.GetAppError(err).Message
		assert.Contains(t, msg, "requestText must be at most 10 characters")
		assert.Contains(t, msg, "format must be one of: json text")
	})
}
