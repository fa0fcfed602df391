package queries

import (
	"strings"

	"cloudmap-backend/domain/architecture"
	pkgerrors "cloudmap-backend/pkg/errors"
)

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return pkgerrors.NewMissingFieldError("id")
	}
	return nil
}

// GetArchitectureQuery fetches a full record
type GetArchitectureQuery struct {
	ID string
}

// Validate validates the GetArchitectureQuery
func (q GetArchitectureQuery) Validate() error { return requireID(q.ID) }

// ExportArchitectureQuery fetches the graph document projection
type ExportArchitectureQuery struct {
	ID string
}

// Validate validates the ExportArchitectureQuery
func (q ExportArchitectureQuery) Validate() error { return requireID(q.ID) }

// ExportCodeQuery fetches the generated code of a record
type ExportCodeQuery struct {
	ID string
}

// Validate validates the ExportCodeQuery
func (q ExportCodeQuery) Validate() error { return requireID(q.ID) }

// CheckArchitectureQuery runs the graph checker on a stored record
type CheckArchitectureQuery struct {
	ID string
}

// Validate validates the CheckArchitectureQuery
func (q CheckArchitectureQuery) Validate() error { return requireID(q.ID) }

// ExportArchitectureResult carries the projected document and the record id
type ExportArchitectureResult struct {
	ID       string
	Document architecture.GraphDocument
}

// ExportCodeResult carries generated code
type ExportCodeResult struct {
	ID          string `json:"id"`
	CDKCode     string `json:"cdkCode"`
	GeneratedAt string `json:"cdkGeneratedAt,omitempty"`
}

// CheckArchitectureResult carries a checker report
type CheckArchitectureResult struct {
	ID     string              `json:"id"`
	Report architecture.Report `json:"report"`
}
