package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/nveloso/roscope/internal/model"
)

// rospyAPI is the recognized-API table for the structural walk. Only call
// expressions of the form rospy.<attr>(...) are considered.
var rospyAPI = map[string]struct {
	kind Kind
	role Role
}{
	"init_node":    {KindNode, RoleDeclaration},
	"Publisher":    {KindTopic, RolePublisher},
	"Subscriber":   {KindTopic, RoleSubscriber},
	"Service":      {KindService, RoleServer},
	"ServiceProxy": {KindService, RoleClient},
	"get_param":    {KindParameter, RoleReader},
	"set_param":    {KindParameter, RoleReader},
}

// Python 2 print statements break the structural parse; rewrite the common
// single-string form to call syntax before parsing.
var (
	printDouble = regexp.MustCompile(`\bprint\s+"([^"]*)"`)
	printSingle = regexp.MustCompile(`\bprint\s+'([^']*)'`)
)

// PythonExtractor performs a full structural parse of Python source files
// and extracts node, topic, service, and parameter mentions with
// high-confidence field values.
type PythonExtractor struct {
	parser *sitter.Parser
}

// NewPythonExtractor creates a PythonExtractor. It is not safe for
// concurrent use; the engine runs one instance per extraction task.
func NewPythonExtractor() *PythonExtractor {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &PythonExtractor{parser: p}
}

// registration is one rospy.init_node call site within a file.
type registration struct {
	name   string
	offset uint32
}

// ExtractFile parses one Python file and returns its mentions. A file that
// fails to parse is skipped with a failure note on the log; extraction of
// other files continues.
func (e *PythonExtractor) ExtractFile(ctx context.Context, relPath string, src []byte, log *RunLog) []Mention {
	src = normalizePrintStatements(src)

	tree, err := e.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		log.Addf(relPath, "python", err.Error())
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		log.Addf(relPath, "python", "syntax error")
		return nil
	}

	// First pass: collect node registrations so every mention can be
	// attributed to the nearest preceding registration.
	var regs []registration
	walk(root, func(n *sitter.Node) {
		attr, args := rospyCall(n, src)
		if args == nil || attr != "init_node" {
			return
		}
		if name, ok := firstStringArg(args, src); ok {
			regs = append(regs, registration{name: name, offset: n.StartByte()})
		}
	})

	fallback := fileBaseName(relPath)
	nodeFor := func(offset uint32) string {
		name := ""
		for _, r := range regs {
			if r.offset <= offset {
				name = r.name
			}
		}
		if name != "" {
			return name
		}
		if len(regs) > 0 {
			return regs[0].name
		}
		return fallback
	}

	var mentions []Mention

	// One Node mention per distinct registered identity.
	seen := map[string]bool{}
	for _, r := range regs {
		if seen[r.name] {
			continue
		}
		seen[r.name] = true
		mentions = append(mentions, Mention{
			Kind:       KindNode,
			EntityID:   r.name,
			Role:       RoleDeclaration,
			NodeID:     r.name,
			OriginFile: relPath,
			OriginKind: model.OriginSource,
			Priority:   PriorityStructured,
		})
	}

	walk(root, func(n *sitter.Node) {
		attr, argList := rospyCall(n, src)
		if argList == nil {
			return
		}
		api, ok := rospyAPI[attr]
		if !ok || attr == "init_node" {
			return
		}

		args := positionalArgs(argList)
		if len(args) == 0 {
			return
		}

		m := Mention{
			Kind:       api.kind,
			Role:       api.role,
			NodeID:     nodeFor(n.StartByte()),
			OriginFile: relPath,
			OriginKind: model.OriginSource,
			Priority:   PriorityStructured,
		}

		// The identifying argument is recorded even when it is not a
		// literal: a placeholder keeps the call site visible downstream
		// instead of silently understating the graph.
		if id, ok := stringLiteral(args[0], src); ok {
			m.EntityID = id
		} else {
			m.EntityID = placeholderID(relPath, args[0])
			m.LowConfidence = true
		}

		switch api.kind {
		case KindTopic:
			if len(args) >= 2 {
				m.MessageType = typeName(args[1], src)
			}
			m.QueueSize = queueSizeArg(argList, src)
		case KindService:
			if len(args) >= 2 {
				m.ServiceType = typeName(args[1], src)
			}
		case KindParameter:
			if attr == "get_param" && len(args) >= 2 {
				if v, ok := literalText(args[1], src); ok {
					m.DefaultValue = v
				}
			}
		}

		mentions = append(mentions, m)
	})

	return mentions
}

// rospyCall returns the attribute name and argument list of a call node of
// the form rospy.<attr>(...), or ("", nil) for anything else.
func rospyCall(n *sitter.Node, src []byte) (string, *sitter.Node) {
	if n.Type() != "call" {
		return "", nil
	}
	fn := n.ChildByFieldName("function")
	if fn == nil || fn.Type() != "attribute" {
		return "", nil
	}
	obj := fn.ChildByFieldName("object")
	attr := fn.ChildByFieldName("attribute")
	if obj == nil || attr == nil {
		return "", nil
	}
	if obj.Type() != "identifier" || obj.Content(src) != "rospy" {
		return "", nil
	}
	return attr.Content(src), n.ChildByFieldName("arguments")
}

// positionalArgs returns the non-keyword arguments of an argument_list node.
func positionalArgs(args *sitter.Node) []*sitter.Node {
	if args == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		if child == nil || child.Type() == "keyword_argument" || child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// firstStringArg returns the first positional argument as a string literal.
func firstStringArg(args *sitter.Node, src []byte) (string, bool) {
	pos := positionalArgs(args)
	if len(pos) == 0 {
		return "", false
	}
	return stringLiteral(pos[0], src)
}

// stringLiteral resolves a node to a plain string literal value. F-strings
// with interpolation and anything that is not a string node fail the
// resolution, which callers report as low confidence.
func stringLiteral(n *sitter.Node, src []byte) (string, bool) {
	if n == nil || n.Type() != "string" {
		return "", false
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child != nil && child.Type() == "interpolation" {
			return "", false
		}
	}
	text := n.Content(src)
	text = strings.TrimLeft(text, "rRbBuUfF")
	text = strings.Trim(text, `"'`)
	return text, true
}

// literalText renders a simple literal (string, integer, float, bool) as
// text for default-value fields.
func literalText(n *sitter.Node, src []byte) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Type() {
	case "string":
		return stringLiteral(n, src)
	case "integer", "float", "true", "false", "none":
		return n.Content(src), true
	}
	return "", false
}

// typeName renders a message or service type argument: a bare identifier or
// a dotted attribute chain, verbatim from the source.
func typeName(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "identifier", "attribute":
		return n.Content(src)
	}
	return ""
}

// queueSizeArg finds a queue_size=<int> keyword argument, or the third
// positional integer argument, in a Publisher/Subscriber call.
func queueSizeArg(args *sitter.Node, src []byte) int {
	if args == nil {
		return 0
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		if child == nil || child.Type() != "keyword_argument" {
			continue
		}
		name := child.ChildByFieldName("name")
		value := child.ChildByFieldName("value")
		if name == nil || value == nil || name.Content(src) != "queue_size" {
			continue
		}
		if v, err := strconv.Atoi(value.Content(src)); err == nil {
			return v
		}
	}
	pos := positionalArgs(args)
	if len(pos) >= 3 && pos[2].Type() == "integer" {
		if v, err := strconv.Atoi(pos[2].Content(src)); err == nil {
			return v
		}
	}
	return 0
}

// placeholderID builds the deterministic low-confidence identifier for a
// call whose identifying argument is not a literal.
func placeholderID(relPath string, n *sitter.Node) string {
	return fmt.Sprintf("<unresolved:%s:%d>", filepath.Base(relPath), n.StartPoint().Row+1)
}

func fileBaseName(relPath string) string {
	base := filepath.Base(relPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func normalizePrintStatements(src []byte) []byte {
	src = printDouble.ReplaceAll(src, []byte(`print("$1")`))
	src = printSingle.ReplaceAll(src, []byte(`print('$1')`))
	return src
}

// walk performs a depth-first traversal of the syntax tree, calling fn for
// each node.
func walk(node *sitter.Node, fn func(*sitter.Node)) {
	if node == nil {
		return
	}
	fn(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child != nil {
			walk(child, fn)
		}
	}
}
