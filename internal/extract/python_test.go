package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nveloso/roscope/internal/model"
)

func extractPython(t *testing.T, relPath, src string) ([]Mention, *RunLog) {
	t.Helper()
	log := &RunLog{}
	mentions := NewPythonExtractor().ExtractFile(context.Background(), relPath, []byte(src), log)
	return mentions, log
}

func findMentions(mentions []Mention, kind Kind, role Role) []Mention {
	var out []Mention
	for _, m := range mentions {
		if m.Kind == kind && m.Role == role {
			out = append(out, m)
		}
	}
	return out
}

func TestPythonPublisherExtraction(t *testing.T) {
	src := `import rospy
from std_msgs.msg import String

def main():
    rospy.init_node("talker")
    pub = rospy.Publisher("/chatter", String, queue_size=10)
    rate = rospy.Rate(10)
`
	mentions, log := extractPython(t, "src/talker.py", src)
	require.Empty(t, log.Failures)

	nodes := findMentions(mentions, KindNode, RoleDeclaration)
	require.Len(t, nodes, 1)
	assert.Equal(t, "talker", nodes[0].EntityID)
	assert.Equal(t, model.OriginSource, nodes[0].OriginKind)
	assert.Equal(t, PriorityStructured, nodes[0].Priority)

	pubs := findMentions(mentions, KindTopic, RolePublisher)
	require.Len(t, pubs, 1)
	assert.Equal(t, "/chatter", pubs[0].EntityID)
	assert.Equal(t, "String", pubs[0].MessageType)
	assert.Equal(t, 10, pubs[0].QueueSize)
	assert.Equal(t, "talker", pubs[0].NodeID)
	assert.False(t, pubs[0].LowConfidence)
}

func TestPythonSubscriberAndDottedType(t *testing.T) {
	src := `import rospy
import std_msgs.msg

rospy.init_node("listener")
rospy.Subscriber("/chatter", std_msgs.msg.String, callback)
`
	mentions, log := extractPython(t, "listener.py", src)
	require.Empty(t, log.Failures)

	subs := findMentions(mentions, KindTopic, RoleSubscriber)
	require.Len(t, subs, 1)
	assert.Equal(t, "/chatter", subs[0].EntityID)
	assert.Equal(t, "std_msgs.msg.String", subs[0].MessageType)
	assert.Equal(t, "listener", subs[0].NodeID)
}

func TestPythonServicesAndParameters(t *testing.T) {
	src := `import rospy

rospy.init_node("controller")
rospy.Service("/reset", Empty, handle_reset)
rospy.ServiceProxy("/set_mode", SetMode)
rate = rospy.get_param("/publish_rate", 10)
rospy.set_param("/debug", True)
`
	mentions, log := extractPython(t, "controller.py", src)
	require.Empty(t, log.Failures)

	servers := findMentions(mentions, KindService, RoleServer)
	require.Len(t, servers, 1)
	assert.Equal(t, "/reset", servers[0].EntityID)
	assert.Equal(t, "Empty", servers[0].ServiceType)

	clients := findMentions(mentions, KindService, RoleClient)
	require.Len(t, clients, 1)
	assert.Equal(t, "/set_mode", clients[0].EntityID)

	params := findMentions(mentions, KindParameter, RoleReader)
	require.Len(t, params, 2)
	assert.Equal(t, "/publish_rate", params[0].EntityID)
	assert.Equal(t, "10", params[0].DefaultValue)
	assert.Equal(t, "/debug", params[1].EntityID)
}

func TestPythonNodeIdentityFallsBackToFileName(t *testing.T) {
	src := `import rospy

pub = rospy.Publisher("/status", String, queue_size=1)
`
	mentions, _ := extractPython(t, "src/status_monitor.py", src)

	pubs := findMentions(mentions, KindTopic, RolePublisher)
	require.Len(t, pubs, 1)
	assert.Equal(t, "status_monitor", pubs[0].NodeID)

	// No registration means no node mention; the identity is implicit.
	assert.Empty(t, findMentions(mentions, KindNode, RoleDeclaration))
}

func TestPythonNearestRegistrationWins(t *testing.T) {
	src := `import rospy

rospy.init_node("first")
rospy.Publisher("/a", String, queue_size=1)
rospy.init_node("second")
rospy.Publisher("/b", String, queue_size=1)
`
	mentions, _ := extractPython(t, "multi.py", src)

	nodes := findMentions(mentions, KindNode, RoleDeclaration)
	require.Len(t, nodes, 2)

	pubs := findMentions(mentions, KindTopic, RolePublisher)
	require.Len(t, pubs, 2)
	assert.Equal(t, "first", pubs[0].NodeID)
	assert.Equal(t, "second", pubs[1].NodeID)
}

func TestPythonNonLiteralTopicIsFlaggedNotDropped(t *testing.T) {
	src := `import rospy

rospy.init_node("dyn")
topic = compute_topic()
rospy.Publisher(topic, String, queue_size=1)
`
	mentions, log := extractPython(t, "dyn.py", src)
	require.Empty(t, log.Failures)

	pubs := findMentions(mentions, KindTopic, RolePublisher)
	require.Len(t, pubs, 1)
	assert.True(t, pubs[0].LowConfidence)
	assert.True(t, strings.HasPrefix(pubs[0].EntityID, "<unresolved:dyn.py:"), pubs[0].EntityID)
}

func TestPythonSyntaxErrorIsNonFatal(t *testing.T) {
	src := "def broken(:\n    pass\n"
	mentions, log := extractPython(t, "broken.py", src)

	assert.Empty(t, mentions)
	require.Len(t, log.Failures, 1)
	assert.Equal(t, "broken.py", log.Failures[0].File)
	assert.Equal(t, "python", log.Failures[0].Stage)
}

func TestPythonPrintStatementIsNormalized(t *testing.T) {
	src := `import rospy

rospy.init_node("legacy")
print "starting up"
rospy.Publisher("/legacy", String, queue_size=1)
`
	mentions, log := extractPython(t, "legacy.py", src)
	require.Empty(t, log.Failures)

	pubs := findMentions(mentions, KindTopic, RolePublisher)
	require.Len(t, pubs, 1)
	assert.Equal(t, "/legacy", pubs[0].EntityID)
}
