package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCppPublisherExtraction(t *testing.T) {
	src := `#include "ros/ros.h"
#include "std_msgs/String.h"

int main(int argc, char **argv) {
  ros::init(argc, argv, "talker");
  ros::NodeHandle n;
  ros::Publisher pub = n.advertise<std_msgs::String>("chatter", 1000);
  ros::Rate loop_rate(10);
}
`
	mentions := NewCppExtractor().ExtractFile("src/talker.cpp", []byte(src))

	nodes := findMentions(mentions, KindNode, RoleDeclaration)
	require.Len(t, nodes, 1)
	assert.Equal(t, "talker", nodes[0].EntityID)
	assert.Equal(t, PriorityPattern, nodes[0].Priority)

	pubs := findMentions(mentions, KindTopic, RolePublisher)
	require.Len(t, pubs, 1)
	assert.Equal(t, "chatter", pubs[0].EntityID)
	assert.Equal(t, "std_msgs::String", pubs[0].MessageType)
	assert.Equal(t, 1000, pubs[0].QueueSize)
	assert.Equal(t, "talker", pubs[0].NodeID)
}

func TestCppSubscriberExtraction(t *testing.T) {
	src := `int main(int argc, char **argv) {
  ros::init(argc, argv, "listener");
  ros::NodeHandle n;
  ros::Subscriber sub = n.subscribe("chatter", 1000, chatterCallback);
}
`
	mentions := NewCppExtractor().ExtractFile("listener.cpp", []byte(src))

	subs := findMentions(mentions, KindTopic, RoleSubscriber)
	require.Len(t, subs, 1)
	assert.Equal(t, "chatter", subs[0].EntityID)
	assert.Equal(t, 1000, subs[0].QueueSize)
	assert.Equal(t, "listener", subs[0].NodeID)
	// No template argument, so the message type is unknown.
	assert.Empty(t, subs[0].MessageType)
}

func TestCppServicesAndParameters(t *testing.T) {
	src := `int main(int argc, char **argv) {
  ros::init(argc, argv, "control");
  ros::NodeHandle n;
  ros::ServiceServer srv = n.advertiseService("reset", handleReset);
  ros::ServiceClient cli = n.serviceClient<std_srvs::SetBool>("set_mode");
  double rate;
  n.getParam("publish_rate", rate);
}
`
	mentions := NewCppExtractor().ExtractFile("control.cpp", []byte(src))

	servers := findMentions(mentions, KindService, RoleServer)
	require.Len(t, servers, 1)
	assert.Equal(t, "reset", servers[0].EntityID)

	clients := findMentions(mentions, KindService, RoleClient)
	require.Len(t, clients, 1)
	assert.Equal(t, "set_mode", clients[0].EntityID)
	assert.Equal(t, "std_srvs::SetBool", clients[0].ServiceType)

	params := findMentions(mentions, KindParameter, RoleReader)
	require.Len(t, params, 1)
	assert.Equal(t, "publish_rate", params[0].EntityID)
}

func TestCppIdentityFallsBackToFileName(t *testing.T) {
	src := `void setup(ros::NodeHandle &n) {
  pub = n.advertise<std_msgs::String>("status", 10);
}
`
	mentions := NewCppExtractor().ExtractFile("nodes/status_monitor.cpp", []byte(src))

	pubs := findMentions(mentions, KindTopic, RolePublisher)
	require.Len(t, pubs, 1)
	assert.Equal(t, "status_monitor", pubs[0].NodeID)
}

func TestCppVariableTopicIsFlagged(t *testing.T) {
	src := `int main(int argc, char **argv) {
  ros::init(argc, argv, "dyn");
  ros::NodeHandle n;
  pub = n.advertise<std_msgs::String>(topicName, 10);
}
`
	mentions := NewCppExtractor().ExtractFile("dyn.cpp", []byte(src))

	pubs := findMentions(mentions, KindTopic, RolePublisher)
	require.Len(t, pubs, 1)
	assert.True(t, pubs[0].LowConfidence)
	assert.True(t, strings.HasPrefix(pubs[0].EntityID, "<unresolved:dyn.cpp:"), pubs[0].EntityID)
}

func TestCppNearestRegistration(t *testing.T) {
	src := `void a(int argc, char **argv) {
  ros::init(argc, argv, "alpha");
  ros::NodeHandle n;
  n.advertise<std_msgs::String>("a_topic", 1);
}

void b(int argc, char **argv) {
  ros::init(argc, argv, "beta");
  ros::NodeHandle n;
  n.advertise<std_msgs::String>("b_topic", 1);
}
`
	mentions := NewCppExtractor().ExtractFile("multi.cpp", []byte(src))

	pubs := findMentions(mentions, KindTopic, RolePublisher)
	require.Len(t, pubs, 2)
	assert.Equal(t, "alpha", pubs[0].NodeID)
	assert.Equal(t, "beta", pubs[1].NodeID)
}
