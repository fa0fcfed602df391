package commands

import (
	"strings"

	pkgerrors "cloudmap-backend/pkg/errors"
	"cloudmap-backend/pkg/utils"
)

// MaxRequestTextLength bounds the natural-language request sent to the model
const MaxRequestTextLength = 20000

// CreateArchitectureCommand asks for a new architecture generated from a request
type CreateArchitectureCommand struct {
	RequestText string `json:"requestText" validate:"required,max=20000"`
}

// NewCreateArchitectureCommand trims the request text
func NewCreateArchitectureCommand(requestText string) CreateArchitectureCommand {
	return CreateArchitectureCommand{RequestText: strings.TrimSpace(requestText)}
}

// Validate implements bus.Command
func (c CreateArchitectureCommand) Validate() error {
	if strings.TrimSpace(c.RequestText) == "" {
		return pkgerrors.NewMissingFieldError("requestText")
	}
	return utils.ValidateStruct(c)
}

// GenerateCodeCommand asks for infrastructure code for an existing architecture.
// A non-zero ExpectedVersion makes the update fail if the record changed since it was read.
type GenerateCodeCommand struct {
	ArchitectureID  string `json:"architectureId" validate:"required"`
	ExpectedVersion int    `json:"expectedVersion,omitempty" validate:"gte=0"`
}

// Validate implements bus.Command
func (c GenerateCodeCommand) Validate() error {
	if strings.TrimSpace(c.ArchitectureID) == "" {
		return pkgerrors.NewMissingFieldError("architectureId")
	}
	return utils.ValidateStruct(c)
}

