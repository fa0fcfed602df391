package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"cloudmap-backend/application/commands"
	"cloudmap-backend/application/commands/bus"
	"cloudmap-backend/application/queries"
	querybus "cloudmap-backend/application/queries/bus"
	"cloudmap-backend/domain/architecture"
	"cloudmap-backend/infrastructure/export"
	pkgerrors "cloudmap-backend/pkg/errors"
)

// maxBodyBytes bounds request bodies; request text is capped well below this
const maxBodyBytes = 1 << 20

// ArchitectureHandler handles architecture HTTP requests
type ArchitectureHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	logger       *zap.Logger
	errorHandler *pkgerrors.ErrorHandler
}

// NewArchitectureHandler creates a new architecture handler
func NewArchitectureHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
	errorHandler *pkgerrors.ErrorHandler,
) *ArchitectureHandler {
	return &ArchitectureHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// CreateArchitectureRequest is the body of POST /architectures
type CreateArchitectureRequest struct {
	RequestText string `json:"requestText"`
}

// GenerateCodeRequest is the optional body of POST /architectures/{id}/code
type GenerateCodeRequest struct {
	ExpectedVersion int `json:"expectedVersion,omitempty"`
}

// GenerateCodeResponse is returned after code generation
type GenerateCodeResponse struct {
	ID      string `json:"id"`
	CDKCode string `json:"cdkCode"`
}

// legacyGenerateRequest is the body of POST /api/generate
type legacyGenerateRequest struct {
	Prompt string `json:"prompt"`
}

// legacyGenerateCodeRequest is the body of POST /api/generate-cdk
type legacyGenerateCodeRequest struct {
	ArchitectureID string `json:"architectureId"`
}

// CreateArchitecture handles POST /architectures
func (h *ArchitectureHandler) CreateArchitecture(w http.ResponseWriter, r *http.Request) {
	var req CreateArchitectureRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.create(w, r, req.RequestText)
}

// LegacyGenerate handles POST /api/generate
func (h *ArchitectureHandler) LegacyGenerate(w http.ResponseWriter, r *http.Request) {
	var req legacyGenerateRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.create(w, r, req.Prompt)
}

func (h *ArchitectureHandler) create(w http.ResponseWriter, r *http.Request, requestText string) {
	cmd := commands.NewCreateArchitectureCommand(requestText)

	// The pipeline runs to completion even if the client goes away.
	result, err := h.commandBus.Send(context.WithoutCancel(r.Context()), cmd)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	record := result.(*architecture.Record)
	h.logger.Info("Architecture created",
		zap.String("architectureID", record.ID),
		zap.Int("nodes", len(record.Nodes)),
		zap.Int("edges", len(record.Edges)),
	)
	respondJSON(w, http.StatusCreated, record)
}

// GetArchitecture handles GET /architectures/{id}
func (h *ArchitectureHandler) GetArchitecture(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetArchitectureQuery{ID: chi.URLParam(r, "id")})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GenerateCode handles POST /architectures/{id}/code
func (h *ArchitectureHandler) GenerateCode(w http.ResponseWriter, r *http.Request) {
	var req GenerateCodeRequest
	if !h.decodeOptional(w, r, &req) {
		return
	}
	h.generateCode(w, r, commands.GenerateCodeCommand{
		ArchitectureID:  chi.URLParam(r, "id"),
		ExpectedVersion: req.ExpectedVersion,
	})
}

// LegacyGenerateCode handles POST /api/generate-cdk
func (h *ArchitectureHandler) LegacyGenerateCode(w http.ResponseWriter, r *http.Request) {
	var req legacyGenerateCodeRequest
	if !h.decodeOptional(w, r, &req) {
		return
	}
	h.generateCode(w, r, commands.GenerateCodeCommand{ArchitectureID: req.ArchitectureID})
}

func (h *ArchitectureHandler) generateCode(w http.ResponseWriter, r *http.Request, cmd commands.GenerateCodeCommand) {
	result, err := h.commandBus.Send(context.WithoutCancel(r.Context()), cmd)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	record := result.(*architecture.Record)
	code, _ := record.Metadata.CDKCode()
	h.logger.Info("Architecture code generated",
		zap.String("architectureID", record.ID),
		zap.Int("codeLength", len(code)),
		zap.Int("version", record.Version),
	)
	respondJSON(w, http.StatusOK, GenerateCodeResponse{ID: record.ID, CDKCode: code})
}

// ExportArchitecture handles GET /architectures/{id}/export. format=hcl
// renders HCL; anything else is JSON.
func (h *ArchitectureHandler) ExportArchitecture(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ExportArchitectureQuery{ID: chi.URLParam(r, "id")})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	exported := result.(*queries.ExportArchitectureResult)

	switch r.URL.Query().Get("format") {
	case "", "json":
		w.Header().Set("Content-Disposition", attachment(fmt.Sprintf("architecture-%s.json", exported.ID)))
		respondJSON(w, http.StatusOK, exported.Document)
	case "hcl":
		body, err := export.HCL(exported.ID, exported.Document)
		if err != nil {
			h.errorHandler.Handle(w, r, pkgerrors.NewInternalError("failed to render HCL").WithCause(err))
			return
		}
		w.Header().Set("Content-Disposition", attachment(fmt.Sprintf("architecture-%s.hcl", exported.ID)))
		respondText(w, "text/plain; charset=utf-8", body)
	default:
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("format must be json or hcl"))
	}
}

// DownloadCode handles GET /architectures/{id}/code/download
func (h *ArchitectureHandler) DownloadCode(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ExportCodeQuery{ID: chi.URLParam(r, "id")})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	code := result.(*queries.ExportCodeResult)

	w.Header().Set("Content-Disposition", attachment(fmt.Sprintf("architecture-%s-cdk.ts", code.ID)))
	respondText(w, "text/typescript; charset=utf-8", []byte(code.CDKCode))
}

// CheckArchitecture handles GET /architectures/{id}/check
func (h *ArchitectureHandler) CheckArchitecture(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.CheckArchitectureQuery{ID: chi.URLParam(r, "id")})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// decode reads a required JSON body
func (h *ArchitectureHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("invalid request body").WithCause(err))
		return false
	}
	return true
}

// decodeOptional is decode but accepts an empty body
func (h *ArchitectureHandler) decodeOptional(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("invalid request body").WithCause(err))
		return false
	}
	return true
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondText(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
