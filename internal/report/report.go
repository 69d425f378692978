// Package report computes summary metrics and the human-readable
// communication narrative from a canonical model, and formats the combined
// analysis for output.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nveloso/roscope/internal/model"
)

// noCommunication is the fixed narrative when no topic publishes anything.
const noCommunication = "No communication patterns detected."

// Metrics are direct cardinalities of the canonical sets, never of raw
// mentions: nodes_count always equals len(model.Nodes), and so on.
type Metrics struct {
	NodesCount       int `json:"nodes_count"`
	TopicsCount      int `json:"topics_count"`
	PublishersCount  int `json:"publishers_count"`
	SubscribersCount int `json:"subscribers_count"`
	ServicesCount    int `json:"services_count"`
	ParametersCount  int `json:"parameters_count"`
}

// Analysis is the caller-facing analysis result.
type Analysis struct {
	Metrics         Metrics  `json:"metrics"`
	BehaviorSummary string   `json:"behavior_summary"`
	Warnings        []string `json:"warnings"`
}

// ComputeMetrics counts the canonical model's entities and relationships.
func ComputeMetrics(m *model.CanonicalModel) Metrics {
	metrics := Metrics{
		NodesCount:      len(m.Nodes),
		TopicsCount:     len(m.Topics),
		ServicesCount:   len(m.Services),
		ParametersCount: len(m.Parameters),
	}
	for _, t := range m.Topics {
		metrics.PublishersCount += len(t.Publishers)
		metrics.SubscribersCount += len(t.Subscribers)
	}
	return metrics
}

// BuildSummary renders the communication narrative: one clause per topic
// with at least one publisher, in topic name order, followed by one clause
// per service. Topics with no relationships are omitted here but still
// counted in the metrics.
func BuildSummary(m *model.CanonicalModel) string {
	var clauses []string

	topics := make([]model.Topic, len(m.Topics))
	copy(topics, m.Topics)
	sort.Slice(topics, func(i, j int) bool { return topics[i].ID < topics[j].ID })

	for _, t := range topics {
		if len(t.Publishers) == 0 {
			continue
		}
		msgType := t.MessageType
		if msgType == "" {
			msgType = "untyped"
		}
		subs := "none"
		if len(t.Subscribers) > 0 {
			subs = strings.Join(t.Subscribers, ", ")
		}
		clauses = append(clauses, fmt.Sprintf("• %s (%s): pub %s → sub %s",
			t.ID, msgType, strings.Join(t.Publishers, ", "), subs))
	}

	for _, s := range m.Services {
		if len(s.Servers) == 0 && len(s.Clients) == 0 {
			continue
		}
		srvType := s.ServiceType
		if srvType == "" {
			srvType = "untyped"
		}
		servers := "none"
		if len(s.Servers) > 0 {
			servers = strings.Join(s.Servers, ", ")
		}
		clients := "none"
		if len(s.Clients) > 0 {
			clients = strings.Join(s.Clients, ", ")
		}
		clauses = append(clauses, fmt.Sprintf("• Service %s (%s): server %s ↔ client %s",
			s.ID, srvType, servers, clients))
	}

	if len(clauses) == 0 {
		return noCommunication
	}
	return "Detected communication:\n\n" + strings.Join(clauses, "\n")
}
