// Package reconcile merges raw entity mentions from all extractors into the
// canonical model. It is the only component that resolves identity
// collisions: nodes are deduplicated under the source-precedes-launch rule,
// while topic, service, and parameter relationships accumulate across every
// origin. Descriptive scalar fields follow first-non-empty-wins in extractor
// priority order (structured, pattern, launch).
package reconcile

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nveloso/roscope/internal/extract"
	"github.com/nveloso/roscope/internal/model"
)

// ErrOutOfOrder reports mentions arriving in violation of the documented
// extractor priority order. This is a caller bug, not an input problem:
// reconciling out of order corrupts deduplication, so the run fails instead
// of degrading silently.
var ErrOutOfOrder = errors.New("reconcile: mentions out of extractor priority order")

// Collision records two distinct origin files registering the same node
// identity key. The first file (in mention order) keeps the canonical
// record; the duplicate is dropped and surfaced as a warning downstream.
type Collision struct {
	Name        string
	KeptFile    string
	DroppedFile string
}

// Result is the reconciler output: the immutable canonical model plus the
// node-name collisions observed while merging.
type Result struct {
	Model      *model.CanonicalModel
	Collisions []Collision
}

// topicAcc accumulates one topic's relationships during the merge.
type topicAcc struct {
	messageType   string
	publishers    []string
	subscribers   []string
	lowConfidence bool
}

type serviceAcc struct {
	serviceType   string
	servers       []string
	clients       []string
	lowConfidence bool
}

type paramAcc struct {
	usedBy        []string
	defaultValue  string
	hasDefault    bool
	lowConfidence bool
}

// Reconcile merges the full mention sequence into a canonical model. The
// sequence must be ordered by extractor priority; reconciling the same
// sequence twice yields an identical model.
func Reconcile(mentions []extract.Mention) (*Result, error) {
	last := extract.PriorityStructured
	for i, m := range mentions {
		if m.Priority < last {
			return nil, fmt.Errorf("%w: mention %d (%s %q) has priority %d after %d",
				ErrOutOfOrder, i, m.Kind, m.EntityID, m.Priority, last)
		}
		last = m.Priority
	}

	var (
		nodes      []model.Node
		nodeIdx    = map[string]int{}
		collisions []Collision
		topics     = map[string]*topicAcc{}
		services   = map[string]*serviceAcc{}
		params     = map[string]*paramAcc{}
	)

	addNode := func(name, file string, kind model.Origin) {
		if i, ok := nodeIdx[name]; ok {
			existing := nodes[i]
			// Source precedes launch: a launch declaration of an already
			// known node never creates a second record.
			if kind == model.OriginLaunch {
				return
			}
			if existing.OriginFile != file {
				collisions = append(collisions, Collision{
					Name:        name,
					KeptFile:    existing.OriginFile,
					DroppedFile: file,
				})
			}
			return
		}
		nodeIdx[name] = len(nodes)
		nodes = append(nodes, model.Node{
			ID:          name,
			DisplayName: name,
			OriginFile:  file,
			OriginKind:  kind,
		})
	}

	for _, m := range mentions {
		switch m.Kind {
		case extract.KindNode:
			addNode(m.EntityID, m.OriginFile, m.OriginKind)

		case extract.KindTopic:
			// A publish or subscribe call implies the node exists even
			// when the file never registers one; the derived identity key
			// (file base name) becomes an implicit node.
			if m.NodeID != "" {
				addNode(m.NodeID, m.OriginFile, m.OriginKind)
			}
			t := topics[m.EntityID]
			if t == nil {
				t = &topicAcc{}
				topics[m.EntityID] = t
			}
			if t.messageType == "" {
				t.messageType = m.MessageType
			}
			if m.LowConfidence {
				t.lowConfidence = true
			}
			switch m.Role {
			case extract.RolePublisher:
				t.publishers = appendUnique(t.publishers, m.NodeID)
			case extract.RoleSubscriber:
				t.subscribers = appendUnique(t.subscribers, m.NodeID)
			}

		case extract.KindService:
			if m.NodeID != "" {
				addNode(m.NodeID, m.OriginFile, m.OriginKind)
			}
			s := services[m.EntityID]
			if s == nil {
				s = &serviceAcc{}
				services[m.EntityID] = s
			}
			if s.serviceType == "" {
				s.serviceType = m.ServiceType
			}
			if m.LowConfidence {
				s.lowConfidence = true
			}
			switch m.Role {
			case extract.RoleServer:
				s.servers = appendUnique(s.servers, m.NodeID)
			case extract.RoleClient:
				s.clients = appendUnique(s.clients, m.NodeID)
			}

		case extract.KindParameter:
			p := params[m.EntityID]
			if p == nil {
				p = &paramAcc{}
				params[m.EntityID] = p
			}
			if !p.hasDefault && m.DefaultValue != "" {
				p.defaultValue = m.DefaultValue
				p.hasDefault = true
			}
			if m.LowConfidence {
				p.lowConfidence = true
			}
			p.usedBy = appendUnique(p.usedBy, m.NodeID)
		}
	}

	out := &model.CanonicalModel{Nodes: nodes}

	for _, id := range sortedKeys(topics) {
		t := topics[id]
		out.Topics = append(out.Topics, model.Topic{
			ID:            id,
			MessageType:   t.messageType,
			Publishers:    emptyIfNil(t.publishers),
			Subscribers:   emptyIfNil(t.subscribers),
			LowConfidence: t.lowConfidence,
		})
	}
	for _, id := range sortedKeys(services) {
		s := services[id]
		out.Services = append(out.Services, model.Service{
			ID:            id,
			ServiceType:   s.serviceType,
			Servers:       emptyIfNil(s.servers),
			Clients:       emptyIfNil(s.clients),
			LowConfidence: s.lowConfidence,
		})
	}
	for _, id := range sortedKeys(params) {
		p := params[id]
		out.Parameters = append(out.Parameters, model.Parameter{
			ID:            id,
			UsedBy:        emptyIfNil(p.usedBy),
			DefaultValue:  p.defaultValue,
			LowConfidence: p.lowConfidence,
		})
	}

	return &Result{Model: out, Collisions: collisions}, nil
}

// appendUnique appends v if non-empty and not already present, preserving
// first-mention order. A topic with N distinct publishers keeps exactly N
// entries regardless of how many origins mention them.
func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
