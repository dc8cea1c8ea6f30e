package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/plantr/policyhub/internal/db/models"
)

// catalogueLimit caps how many markdown characters of each document are
// included in a prompt.
const catalogueLimit = 2000

// Suggestion is one proposed requirement-to-document mapping returned by
// an auto-map job. It is a proposal only; a reviewer accepts or discards
// it before any mapping row is written.
type Suggestion struct {
	RequirementID uint   `json:"requirementId"`
	DocumentID    uint   `json:"documentId"`
	Status        string `json:"status"`
	Rationale     string `json:"rationale"`
	Confidence    int    `json:"confidence"`
}

// Assessment is the result of an AI coverage review of one mapping.
type Assessment struct {
	Status          string `json:"status"`
	Rationale       string `json:"rationale"`
	Recommendations string `json:"recommendations"`
}

const autoMapSystem = `You are a compliance analyst. You map regulatory requirements to internal policy documents and judge how well each document covers each requirement. Respond with JSON only, no prose.`

// BuildAutoMapPrompt renders the auto-map request: the full requirement
// catalogue and the document catalogue, with instructions to propose
// mappings as a JSON array of Suggestion objects.
func BuildAutoMapPrompt(requirements []models.Requirement, documents []models.Document) *Request {
	var b strings.Builder

	b.WriteString("Propose mappings between the requirements and documents below.\n")
	b.WriteString("Return a JSON array of objects with fields: requirementId, documentId, ")
	b.WriteString(`status (one of "Covered", "Partially Covered", "Not Covered"), rationale, confidence (0-100).`)
	b.WriteString("\nOnly propose pairs with a genuine topical relationship.\n")

	b.WriteString("\n## Requirements\n")

	for i := range requirements {
		req := &requirements[i]
		fmt.Fprintf(&b, "- id=%d [%s] %s: %s\n", req.ID, req.Code, req.Title, req.Description)
	}

	b.WriteString("\n## Documents\n")

	for i := range documents {
		doc := &documents[i]
		fmt.Fprintf(&b, "- id=%d %q (%s)\n", doc.ID, doc.Title, doc.DocType)

		if doc.HasMarkdown() {
			fmt.Fprintf(&b, "%s\n", truncate(doc.Markdown, catalogueLimit))
		}
	}

	return &Request{System: autoMapSystem, Prompt: b.String()}
}

const assessSystem = `You are a compliance analyst reviewing whether one policy document covers one regulatory requirement. Respond with JSON only, no prose.`

// BuildAssessPrompt renders an AI coverage review request for one
// requirement and one document.
func BuildAssessPrompt(req *models.Requirement, doc *models.Document) *Request {
	var b strings.Builder

	b.WriteString("Judge how well the document covers the requirement.\n")
	b.WriteString(`Return a JSON object with fields: status (one of "Covered", "Partially Covered", "Not Covered"), rationale, recommendations.`)

	fmt.Fprintf(&b, "\n\n## Requirement [%s] %s\n%s\n", req.Code, req.Title, req.Description)
	fmt.Fprintf(&b, "\n## Document %q\n%s\n", doc.Title, truncate(doc.Markdown, catalogueLimit))

	return &Request{System: assessSystem, Prompt: b.String()}
}

// ParseSuggestions extracts the suggestion array from a completion.
// Invalid entries (unknown status, missing ids) are dropped rather than
// failing the whole response.
func ParseSuggestions(content string) ([]Suggestion, error) {
	var raw []Suggestion
	if err := json.Unmarshal([]byte(stripFences(content)), &raw); err != nil {
		return nil, errors.Wrapf(err, "parse suggestions (body %s)", truncate(content, 200))
	}

	suggestions := make([]Suggestion, 0, len(raw))

	for _, s := range raw {
		if s.RequirementID == 0 || s.DocumentID == 0 {
			continue
		}

		if !models.CoverageStatus(s.Status).Valid() {
			continue
		}

		suggestions = append(suggestions, s)
	}

	return suggestions, nil
}

// ParseAssessment extracts the assessment object from a completion.
func ParseAssessment(content string) (*Assessment, error) {
	var a Assessment
	if err := json.Unmarshal([]byte(stripFences(content)), &a); err != nil {
		return nil, errors.Wrapf(err, "parse assessment (body %s)", truncate(content, 200))
	}

	if !models.CoverageStatus(a.Status).Valid() {
		return nil, errors.Errorf("assessment has invalid status %q", a.Status)
	}

	return &a, nil
}

// stripFences removes a surrounding markdown code fence, which models
// emit even when asked for bare JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)

	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}
