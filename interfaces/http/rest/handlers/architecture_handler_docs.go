package handlers

// OpenAPI annotations for ArchitectureHandler. Regenerate rest/docs with
// swag init -g interfaces/http/rest/router.go -o interfaces/http/rest/docs

// CreateArchitecture generates a graph from a request text
// @Summary Generate an architecture
// @Description Asks the model for a graph and stores it as version 1
// @Tags architectures
// @Accept json
// @Produce json
// @Param request body handlers.CreateArchitectureRequest true "Request text"
// @Success 201 {object} architecture.Record
// @Failure 400 {object} errors.ErrorResponse "Invalid request text"
// @Failure 429 {object} errors.ErrorResponse "Rate limited"
// @Failure 502 {object} errors.ErrorResponse "Model failure"
// @Failure 504 {object} errors.ErrorResponse "Model timeout"
// @Router /architectures [post]

// GetArchitecture returns a stored record
// @Summary Get an architecture
// @Tags architectures
// @Produce json
// @Param id path string true "Architecture ID"
// @Success 200 {object} architecture.Record
// @Failure 404 {object} errors.ErrorResponse "Not found"
// @Router /architectures/{id} [get]

// GenerateCode augments a record with CDK code
// @Summary Generate CDK code
// @Description Asks the model for CDK code and stores it on the record
// @Tags architectures
// @Accept json
// @Produce json
// @Param id path string true "Architecture ID"
// @Param request body handlers.GenerateCodeRequest false "Optional expected version"
// @Success 200 {object} handlers.GenerateCodeResponse
// @Failure 404 {object} errors.ErrorResponse "Not found"
// @Failure 409 {object} errors.ErrorResponse "Version conflict"
// @Failure 502 {object} errors.ErrorResponse "Model failure"
// @Router /architectures/{id}/code [post]

// DownloadCode serves the stored CDK code
// @Summary Download CDK code
// @Tags export
// @Produce plain
// @Param id path string true "Architecture ID"
// @Success 200 {string} string "TypeScript source"
// @Failure 404 {object} errors.ErrorResponse "Not found or no code yet"
// @Router /architectures/{id}/code/download [get]

// ExportArchitecture serves the graph document
// @Summary Export an architecture
// @Tags export
// @Produce json
// @Produce plain
// @Param id path string true "Architecture ID"
// @Param format query string false "json or hcl" Enums(json, hcl)
// @Success 200 {object} architecture.GraphDocument
// @Failure 400 {object} errors.ErrorResponse "Unknown format"
// @Failure 404 {object} errors.ErrorResponse "Not found"
// @Router /architectures/{id}/export [get]

// CheckArchitecture reports structural findings
// @Summary Check an architecture
// @Tags architectures
// @Produce json
// @Param id path string true "Architecture ID"
// @Success 200 {object} queries.CheckArchitectureResult
// @Failure 404 {object} errors.ErrorResponse "Not found"
// @Router /architectures/{id}/check [get]
