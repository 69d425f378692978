package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nveloso/roscope/internal/model"
)

// Document is the complete analysis result handed to callers: the canonical
// entity sets plus the derived metrics, narrative, and warnings.
type Document struct {
	AnalysisID      string            `json:"analysis_id,omitempty"`
	Nodes           []model.Node      `json:"nodes"`
	Topics          []model.Topic     `json:"topics"`
	Services        []model.Service   `json:"services"`
	Parameters      []model.Parameter `json:"parameters"`
	Metrics         Metrics           `json:"metrics"`
	BehaviorSummary string            `json:"behavior_summary"`
	Warnings        []string          `json:"warnings"`
}

// Formatter renders a Document into output bytes.
type Formatter interface {
	Format(doc *Document) ([]byte, error)
}

// JSONFormatter outputs the Document as indented JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format marshals the Document as indented JSON.
func (f *JSONFormatter) Format(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// MarkdownFormatter outputs the Document as human-readable Markdown.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format renders the Document as Markdown.
func (f *MarkdownFormatter) Format(doc *Document) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Analysis\n\n")
	if doc.AnalysisID != "" {
		fmt.Fprintf(&b, "Analysis ID: `%s`\n\n", doc.AnalysisID)
	}

	b.WriteString("## Metrics\n\n")
	fmt.Fprintf(&b, "- Nodes: %d\n", doc.Metrics.NodesCount)
	fmt.Fprintf(&b, "- Topics: %d\n", doc.Metrics.TopicsCount)
	fmt.Fprintf(&b, "- Publish relationships: %d\n", doc.Metrics.PublishersCount)
	fmt.Fprintf(&b, "- Subscribe relationships: %d\n", doc.Metrics.SubscribersCount)
	fmt.Fprintf(&b, "- Services: %d\n", doc.Metrics.ServicesCount)
	fmt.Fprintf(&b, "- Parameters: %d\n", doc.Metrics.ParametersCount)

	b.WriteString("\n## Behavior\n\n")
	b.WriteString(doc.BehaviorSummary)
	b.WriteString("\n")

	if len(doc.Nodes) > 0 {
		b.WriteString("\n## Nodes\n\n")
		for _, n := range doc.Nodes {
			fmt.Fprintf(&b, "- **%s** (%s, %s)\n", n.DisplayName, n.OriginKind, n.OriginFile)
		}
	}

	if len(doc.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range doc.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return []byte(b.String()), nil
}
