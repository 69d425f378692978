// Package extract turns project source and launch files into raw entity
// mentions. Three extractors share the Mention shape: a structural
// tree-sitter walk for Python, a lexical call-signature scan for C++, and
// an XML element walk for launch descriptors. Mentions are intermediate
// records; the reconciler merges them into the canonical model.
package extract

import "github.com/nveloso/roscope/internal/model"

// Kind is the entity category a mention refers to.
type Kind string

const (
	KindNode      Kind = "node"
	KindTopic     Kind = "topic"
	KindService   Kind = "service"
	KindParameter Kind = "parameter"
)

// Role is the relationship between the mentioning node and the entity.
type Role string

const (
	RoleDeclaration Role = "declaration"
	RolePublisher   Role = "publisher"
	RoleSubscriber  Role = "subscriber"
	RoleServer      Role = "server"
	RoleClient      Role = "client"
	RoleReader      Role = "reader"
)

// Priority orders mentions at the reconciliation boundary. The reconciler
// requires its input to be non-decreasing in priority, so merge precedence
// never depends on which extraction task finished first.
type Priority int

const (
	// PriorityStructured is the Python structural extractor. Its field
	// values win over all other sources.
	PriorityStructured Priority = iota
	// PriorityPattern is the C++ lexical extractor.
	PriorityPattern
	// PriorityLaunch is the launch descriptor extractor. Launch node
	// declarations are dropped when a source node with the same identity
	// key already exists.
	PriorityLaunch
)

// Mention is one unreconciled observation of an entity in one file.
type Mention struct {
	Kind     Kind
	EntityID string
	Role     Role

	// NodeID is the identity key of the node the mention belongs to:
	// the nearest preceding node registration in the file, the file's
	// first registration, or the file base name when the file registers
	// no node at all.
	NodeID string

	OriginFile string
	OriginKind model.Origin
	Priority   Priority

	// Descriptive fields, filled when statically determinable.
	MessageType  string
	ServiceType  string
	QueueSize    int
	DefaultValue string

	// LowConfidence marks mentions whose identifying argument could not
	// be resolved to a literal. They carry a placeholder EntityID and are
	// retained through reconciliation rather than dropped.
	LowConfidence bool
}

// Failure records a non-fatal per-file extraction problem. The run
// continues with the remaining files.
type Failure struct {
	File   string
	Stage  string
	Reason string
}

// RunLog collects per-file failures across all extractors in one run.
type RunLog struct {
	Failures []Failure
}

// Addf appends a failure note for the given file and stage.
func (l *RunLog) Addf(file, stage, reason string) {
	l.Failures = append(l.Failures, Failure{File: file, Stage: stage, Reason: reason})
}

// Merge appends another log's failures to this one.
func (l *RunLog) Merge(other *RunLog) {
	if other == nil {
		return
	}
	l.Failures = append(l.Failures, other.Failures...)
}
