// Package prompts builds the text sent to the generative model for both
// generation passes. Output depends only on the inputs.
package prompts

import (
	"encoding/json"
	"fmt"

	"cloudmap-backend/domain/architecture"
)

const (
	defaultRequirements = "Unknown requirements"
	defaultRationale    = "No rationale provided"
)

// Generation wraps a natural-language request with instructions for producing
// an architecture graph and rationale.
func Generation(requestText string) string {
	return fmt.Sprintf(`You are an expert AWS solutions architect. Design a cloud architecture for the requirements below.

Requirements:
%s

Return a single JSON object with this structure:
{
  "nodes": [
    {"id": "n1", "type": "awsService", "position": {"x": 0, "y": 0}, "data": {"label": "Short name", "service": "AWS service", "description": "What it does", "estCost": "Estimated monthly cost", "faultTolerance": "How it survives failure", "latency": "Expected latency", "scalability": "How it scales", "security": "Security controls", "iamRoles": ["RoleName"]}}
  ],
  "edges": [
    {"id": "e1", "source": "n1", "target": "n2", "label": "What flows between them"}
  ],
  "rationale": "Why this design fits the requirements"
}

Rules:
1. Every edge source and target must be the id of a node in the list
2. Use one node per AWS resource
3. Lay nodes out left to right following the request flow
4. Explain trade-offs in the rationale
`, requestText)
}

// Augmentation serializes a record's graph, prompt and rationale into the
// template that asks for AWS CDK code.
func Augmentation(record architecture.Record) (string, error) {
	nodes := record.Nodes
	if nodes == nil {
		nodes = []architecture.Node{}
	}
	edges := record.Edges
	if edges == nil {
		edges = []architecture.Edge{}
	}

	nodesJSON, err := json.MarshalIndent(nodes, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode nodes: %w", err)
	}
	edgesJSON, err := json.MarshalIndent(edges, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode edges: %w", err)
	}

	requirements := record.Metadata.Prompt()
	if requirements == "" {
		requirements = defaultRequirements
	}
	rationale := record.Metadata.Rationale()
	if rationale == "" {
		rationale = defaultRationale
	}

	return fmt.Sprintf(`I have a cloud architecture design with the following details:

Original Requirements:
%s

Architecture Description:
%s

Architecture Nodes (AWS Services):
%s

Architecture Edges (Service Connections):
%s

Generate complete, deployable AWS CDK code in TypeScript for this architecture. Include:
1. All necessary imports
2. The main stack definition
3. Every resource in the architecture
4. Wiring between resources that matches the edges
5. IAM roles and permissions
6. Security best practices
7. Comments explaining the key parts of the code

The code must be usable directly in an AWS CDK project.
Return a single JSON object with this structure:
{"cdkCode": "the complete TypeScript source"}
`, requirements, rationale, nodesJSON, edgesJSON), nil
}
