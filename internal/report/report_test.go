package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nveloso/roscope/internal/model"
)

func demoModel() *model.CanonicalModel {
	return &model.CanonicalModel{
		Nodes: []model.Node{
			{ID: "talker", DisplayName: "talker", OriginFile: "src/talker.py", OriginKind: model.OriginSource},
			{ID: "listener", DisplayName: "listener", OriginFile: "src/listener.py", OriginKind: model.OriginSource},
		},
		Topics: []model.Topic{
			{ID: "/chatter", MessageType: "String", Publishers: []string{"talker"}, Subscribers: []string{"listener"}},
		},
		Services: []model.Service{
			{ID: "/add_two_ints", ServiceType: "AddTwoInts", Servers: []string{"adder"}, Clients: []string{"talker"}},
		},
		Parameters: []model.Parameter{
			{ID: "publish_rate", UsedBy: []string{"talker"}, DefaultValue: "10"},
		},
	}
}

func TestComputeMetrics(t *testing.T) {
	m := demoModel()
	m.Topics = append(m.Topics, model.Topic{
		ID: "/sensors", Publishers: []string{"cam", "lidar"}, Subscribers: []string{},
	})

	got := ComputeMetrics(m)

	assert.Equal(t, 2, got.NodesCount)
	assert.Equal(t, 2, got.TopicsCount)
	assert.Equal(t, 3, got.PublishersCount)
	assert.Equal(t, 1, got.SubscribersCount)
	assert.Equal(t, 1, got.ServicesCount)
	assert.Equal(t, 1, got.ParametersCount)
}

func TestMetricsCountCanonicalSetsNotMentions(t *testing.T) {
	// A topic with one publisher stays one publisher regardless of how many
	// files mention it; the reconciler guarantees that, metrics just count.
	m := &model.CanonicalModel{
		Topics: []model.Topic{{ID: "/chatter", Publishers: []string{"talker"}}},
	}
	assert.Equal(t, 0, ComputeMetrics(m).NodesCount)
	assert.Equal(t, 1, ComputeMetrics(m).PublishersCount)
}

func TestBuildSummaryNarrative(t *testing.T) {
	summary := BuildSummary(demoModel())

	assert.Contains(t, summary, "Detected communication:")
	assert.Contains(t, summary, "• /chatter (String): pub talker → sub listener")
	assert.Contains(t, summary, "• Service /add_two_ints (AddTwoInts): server adder ↔ client talker")
}

func TestBuildSummaryUntypedAndNoSubscribers(t *testing.T) {
	m := &model.CanonicalModel{
		Topics: []model.Topic{
			{ID: "/status", Publishers: []string{"monitor"}, Subscribers: []string{}},
		},
	}

	summary := BuildSummary(m)
	assert.Contains(t, summary, "• /status (untyped): pub monitor → sub none")
}

func TestBuildSummaryOrdersTopicsByName(t *testing.T) {
	m := &model.CanonicalModel{
		Topics: []model.Topic{
			{ID: "/zeta", Publishers: []string{"a"}},
			{ID: "/alpha", Publishers: []string{"b"}},
		},
	}

	summary := BuildSummary(m)
	assert.Less(t, strings.Index(summary, "/alpha"), strings.Index(summary, "/zeta"))
}

func TestBuildSummaryFallback(t *testing.T) {
	// Subscribe-only topics produce no clause; the fixed fallback applies.
	m := &model.CanonicalModel{
		Topics: []model.Topic{
			{ID: "/chatter", Subscribers: []string{"listener"}},
		},
	}

	assert.Equal(t, "No communication patterns detected.", BuildSummary(m))
	assert.Equal(t, "No communication patterns detected.", BuildSummary(&model.CanonicalModel{}))
}

func demoDocument() *Document {
	m := demoModel()
	return &Document{
		AnalysisID:      "ab12cd34ef56",
		Nodes:           m.Nodes,
		Topics:          m.Topics,
		Services:        m.Services,
		Parameters:      m.Parameters,
		Metrics:         ComputeMetrics(m),
		BehaviorSummary: BuildSummary(m),
		Warnings:        []string{"[talker] fragile error handling"},
	}
}

func TestJSONFormatter(t *testing.T) {
	out, err := NewJSONFormatter().Format(demoDocument())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))

	assert.Equal(t, "ab12cd34ef56", decoded["analysis_id"])
	metrics, ok := decoded["metrics"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), metrics["nodes_count"])

	topics, ok := decoded["topics"].([]any)
	require.True(t, ok)
	require.Len(t, topics, 1)
	topic := topics[0].(map[string]any)
	assert.Equal(t, "/chatter", topic["name"])
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(demoDocument())
	require.NoError(t, err)

	md := string(out)
	assert.Contains(t, md, "# Analysis")
	assert.Contains(t, md, "Analysis ID: `ab12cd34ef56`")
	assert.Contains(t, md, "- Nodes: 2")
	assert.Contains(t, md, "• /chatter (String): pub talker → sub listener")
	assert.Contains(t, md, "- **talker** (source, src/talker.py)")
	assert.Contains(t, md, "## Warnings")
	assert.Contains(t, md, "- [talker] fragile error handling")
}

func TestMarkdownFormatterOmitsEmptySections(t *testing.T) {
	doc := &Document{BehaviorSummary: "No communication patterns detected."}

	out, err := NewMarkdownFormatter().Format(doc)
	require.NoError(t, err)

	md := string(out)
	assert.NotContains(t, md, "## Nodes")
	assert.NotContains(t, md, "## Warnings")
	assert.NotContains(t, md, "Analysis ID")
}
