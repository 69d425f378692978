package extract

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/nveloso/roscope/internal/model"
)

// cppPattern is one call-signature pattern of the lexical C++ scan. Capture
// group indices are 1-based positions within the compiled expression; zero
// means the field is not captured by this pattern.
type cppPattern struct {
	re       *regexp.Regexp
	kind     Kind
	role     Role
	nameIdx  int
	typeIdx  int
	queueIdx int

	// lowConfidence marks patterns whose identifying argument is an
	// identifier rather than a string literal.
	lowConfidence bool
}

// cppInit recognizes node registration. The third argument carries the node
// name in the common ros::init(argc, argv, "name") form.
var cppInit = regexp.MustCompile(`ros::init\s*\(\s*[^,()]+,\s*[^,()]+,\s*"([^"]+)"`)

// cppPatterns is the ordered call-signature table for the lexical scan.
// Being lexical, it misses macro-wrapped and multi-line calls and can
// over-match text inside comments or strings; that trade-off is accepted
// and downstream consumers tolerate the noise.
var cppPatterns = []cppPattern{
	{
		re:       regexp.MustCompile(`\.advertise\s*<\s*([\w:]+)\s*>\s*\(\s*"([^"]+)"(?:\s*,\s*(\d+))?`),
		kind:     KindTopic,
		role:     RolePublisher,
		typeIdx:  1,
		nameIdx:  2,
		queueIdx: 3,
	},
	{
		re:            regexp.MustCompile(`\.advertise\s*<\s*([\w:]+)\s*>\s*\(\s*([A-Za-z_]\w*)`),
		kind:          KindTopic,
		role:          RolePublisher,
		typeIdx:       1,
		nameIdx:       2,
		lowConfidence: true,
	},
	{
		re:       regexp.MustCompile(`\.subscribe\s*(?:<\s*([\w:]+)\s*>\s*)?\(\s*"([^"]+)"(?:\s*,\s*(\d+))?`),
		kind:     KindTopic,
		role:     RoleSubscriber,
		typeIdx:  1,
		nameIdx:  2,
		queueIdx: 3,
	},
	{
		re:      regexp.MustCompile(`\.advertiseService\s*(?:<[^>]*>\s*)?\(\s*"([^"]+)"`),
		kind:    KindService,
		role:    RoleServer,
		nameIdx: 1,
	},
	{
		re:      regexp.MustCompile(`\.serviceClient\s*<\s*([\w:]+)\s*>\s*\(\s*"([^"]+)"`),
		kind:    KindService,
		role:    RoleClient,
		typeIdx: 1,
		nameIdx: 2,
	},
	{
		re:      regexp.MustCompile(`\.(?:getParam|getParamCached|param)\s*(?:<[^>]*>\s*)?\(\s*"([^"]+)"`),
		kind:    KindParameter,
		role:    RoleReader,
		nameIdx: 1,
	},
	{
		re:      regexp.MustCompile(`ros::param::get\s*\(\s*"([^"]+)"`),
		kind:    KindParameter,
		role:    RoleReader,
		nameIdx: 1,
	},
}

// CppExtractor scans raw C++ translation units against the call-signature
// table. It never parses: matches are best-effort and the same node
// identity heuristic as the structural extractor is applied to the matched
// text window.
type CppExtractor struct{}

// NewCppExtractor creates a CppExtractor.
func NewCppExtractor() *CppExtractor {
	return &CppExtractor{}
}

// ExtractFile scans one C++ file and returns its mentions.
func (e *CppExtractor) ExtractFile(relPath string, src []byte) []Mention {
	var regs []registration
	for _, loc := range cppInit.FindAllSubmatchIndex(src, -1) {
		regs = append(regs, registration{
			name:   string(src[loc[2]:loc[3]]),
			offset: uint32(loc[0]),
		})
	}

	fallback := fileBaseName(relPath)
	nodeFor := func(offset int) string {
		name := ""
		for _, r := range regs {
			if int(r.offset) <= offset {
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
			Priority:   PriorityPattern,
		})
	}

	for _, p := range cppPatterns {
		for _, loc := range p.re.FindAllSubmatchIndex(src, -1) {
			m := Mention{
				Kind:          p.kind,
				Role:          p.role,
				NodeID:        nodeFor(loc[0]),
				OriginFile:    relPath,
				OriginKind:    model.OriginSource,
				Priority:      PriorityPattern,
				LowConfidence: p.lowConfidence,
			}

			name := group(src, loc, p.nameIdx)
			if p.lowConfidence {
				line := lineAt(src, loc[0])
				m.EntityID = fmt.Sprintf("<unresolved:%s:%d>", filepath.Base(relPath), line)
			} else {
				m.EntityID = name
			}
			if m.EntityID == "" {
				continue
			}

			typ := group(src, loc, p.typeIdx)
			switch p.kind {
			case KindTopic:
				m.MessageType = typ
			case KindService:
				m.ServiceType = typ
			}
			if q := group(src, loc, p.queueIdx); q != "" {
				if v, err := strconv.Atoi(q); err == nil {
					m.QueueSize = v
				}
			}

			mentions = append(mentions, m)
		}
	}

	return mentions
}

// group returns the text of the idx-th capture group, or "" when the group
// did not participate in the match.
func group(src []byte, loc []int, idx int) string {
	if idx == 0 || 2*idx+1 >= len(loc) {
		return ""
	}
	start, end := loc[2*idx], loc[2*idx+1]
	if start < 0 || end < 0 {
		return ""
	}
	return string(src[start:end])
}

// lineAt returns the 1-based line number of a byte offset.
func lineAt(src []byte, offset int) int {
	line := 1
	for i := 0; i < offset && i < len(src); i++ {
		if src[i] == '\n' {
			line++
		}
	}
	return line
}
