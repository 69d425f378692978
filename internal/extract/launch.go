package extract

import (
	"encoding/xml"

	"github.com/nveloso/roscope/internal/model"
)

// launchElement is a generic XML element tree; launch descriptors are
// walked structurally rather than bound to a fixed schema so that nested
// groups, namespaces, and includes do not hide node declarations.
type launchElement struct {
	XMLName  xml.Name
	Attrs    []xml.Attr      `xml:",any,attr"`
	Children []launchElement `xml:",any"`
}

func (e *launchElement) attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// LaunchExtractor parses declarative launch descriptors into node and
// parameter mentions.
type LaunchExtractor struct{}

// NewLaunchExtractor creates a LaunchExtractor.
func NewLaunchExtractor() *LaunchExtractor {
	return &LaunchExtractor{}
}

// ExtractFile parses one launch file. Malformed XML is skipped with a
// failure note; the run continues.
func (e *LaunchExtractor) ExtractFile(relPath string, src []byte, log *RunLog) []Mention {
	var root launchElement
	if err := xml.Unmarshal(src, &root); err != nil {
		log.Addf(relPath, "launch", err.Error())
		return nil
	}

	var mentions []Mention
	walkLaunch(&root, "", func(el *launchElement, enclosingNode string) {
		switch el.XMLName.Local {
		case "node":
			name := el.attr("name")
			if name == "" {
				return
			}
			mentions = append(mentions, Mention{
				Kind:       KindNode,
				EntityID:   name,
				Role:       RoleDeclaration,
				NodeID:     name,
				OriginFile: relPath,
				OriginKind: model.OriginLaunch,
				Priority:   PriorityLaunch,
			})
		case "param":
			name := el.attr("name")
			if name == "" {
				return
			}
			mentions = append(mentions, Mention{
				Kind:         KindParameter,
				EntityID:     name,
				Role:         RoleReader,
				NodeID:       enclosingNode,
				OriginFile:   relPath,
				OriginKind:   model.OriginLaunch,
				Priority:     PriorityLaunch,
				DefaultValue: el.attr("value"),
			})
		}
	})

	return mentions
}

// walkLaunch traverses the element tree depth first, tracking the nearest
// enclosing node declaration so parameters nested inside a <node> element
// are attributed to it.
func walkLaunch(el *launchElement, enclosingNode string, fn func(*launchElement, string)) {
	fn(el, enclosingNode)
	if el.XMLName.Local == "node" {
		if name := el.attr("name"); name != "" {
			enclosingNode = name
		}
	}
	for i := range el.Children {
		walkLaunch(&el.Children[i], enclosingNode, fn)
	}
}
