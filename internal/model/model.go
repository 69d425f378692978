// Package model defines the canonical entity set produced by one analysis
// run: the nodes, topics, services, and parameters of a ROS project, after
// all extractor output has been reconciled. Canonical entities are built
// once by the reconciler and are not mutated afterwards.
package model

// Origin identifies which kind of file an entity was extracted from.
type Origin string

const (
	// OriginSource marks entities found in Python or C++ source files.
	OriginSource Origin = "source"
	// OriginLaunch marks entities declared in launch descriptor files.
	OriginLaunch Origin = "launch"
)

// Node is one executable unit of the analyzed project. The ID is the
// identity key used for deduplication: the node's registered display name.
type Node struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	OriginFile  string `json:"file"`
	OriginKind  Origin `json:"origin"`
}

// Topic is a named asynchronous message channel. Publishers and Subscribers
// hold node IDs in first-mention order without duplicates. MessageType is
// empty when no extractor reported a type.
type Topic struct {
	ID            string   `json:"name"`
	MessageType   string   `json:"message_type,omitempty"`
	Publishers    []string `json:"publishers"`
	Subscribers   []string `json:"subscribers"`
	LowConfidence bool     `json:"low_confidence,omitempty"`
}

// Service is a named synchronous request/response channel.
type Service struct {
	ID            string   `json:"name"`
	ServiceType   string   `json:"type,omitempty"`
	Servers       []string `json:"servers"`
	Clients       []string `json:"clients"`
	LowConfidence bool     `json:"low_confidence,omitempty"`
}

// Parameter is a named configuration value read by one or more nodes.
type Parameter struct {
	ID            string   `json:"name"`
	UsedBy        []string `json:"used_by"`
	DefaultValue  string   `json:"default_value,omitempty"`
	LowConfidence bool     `json:"low_confidence,omitempty"`
}

// CanonicalModel is the deduplicated, authoritative entity set for one
// analysis run. Nodes keep discovery order; topics, services, and
// parameters are sorted by name so re-reconciling the same mention
// sequence yields an identical model.
type CanonicalModel struct {
	Nodes      []Node      `json:"nodes"`
	Topics     []Topic     `json:"topics"`
	Services   []Service   `json:"services"`
	Parameters []Parameter `json:"parameters"`
}

// NodeByID returns the canonical node with the given identity key, or nil.
func (m *CanonicalModel) NodeByID(id string) *Node {
	for i := range m.Nodes {
		if m.Nodes[i].ID == id {
			return &m.Nodes[i]
		}
	}
	return nil
}

// TopicByID returns the canonical topic with the given name, or nil.
func (m *CanonicalModel) TopicByID(id string) *Topic {
	for i := range m.Topics {
		if m.Topics[i].ID == id {
			return &m.Topics[i]
		}
	}
	return nil
}
