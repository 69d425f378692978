package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nveloso/roscope/internal/model"
)

func TestLaunchNodeAndParamExtraction(t *testing.T) {
	src := `<launch>
  <param name="use_sim_time" value="true"/>
  <node name="talker" pkg="beginner_tutorials" type="talker.py">
    <param name="publish_rate" value="10"/>
  </node>
  <group ns="robot">
    <node name="listener" pkg="beginner_tutorials" type="listener.py"/>
  </group>
</launch>
`
	log := &RunLog{}
	mentions := NewLaunchExtractor().ExtractFile("launch/demo.launch", []byte(src), log)
	require.Empty(t, log.Failures)

	nodes := findMentions(mentions, KindNode, RoleDeclaration)
	require.Len(t, nodes, 2)
	assert.Equal(t, "talker", nodes[0].EntityID)
	assert.Equal(t, "listener", nodes[1].EntityID)
	assert.Equal(t, model.OriginLaunch, nodes[0].OriginKind)
	assert.Equal(t, PriorityLaunch, nodes[0].Priority)

	params := findMentions(mentions, KindParameter, RoleReader)
	require.Len(t, params, 2)

	assert.Equal(t, "use_sim_time", params[0].EntityID)
	assert.Equal(t, "true", params[0].DefaultValue)
	assert.Empty(t, params[0].NodeID)

	assert.Equal(t, "publish_rate", params[1].EntityID)
	assert.Equal(t, "10", params[1].DefaultValue)
	assert.Equal(t, "talker", params[1].NodeID)
}

func TestLaunchMalformedXMLIsNonFatal(t *testing.T) {
	log := &RunLog{}
	mentions := NewLaunchExtractor().ExtractFile("bad.launch", []byte("<launch><node name="), log)

	assert.Empty(t, mentions)
	require.Len(t, log.Failures, 1)
	assert.Equal(t, "bad.launch", log.Failures[0].File)
	assert.Equal(t, "launch", log.Failures[0].Stage)
}

func TestLaunchNodesWithoutNamesAreIgnored(t *testing.T) {
	log := &RunLog{}
	mentions := NewLaunchExtractor().ExtractFile("anon.launch", []byte(`<launch><node pkg="p" type="t"/></launch>`), log)

	require.Empty(t, log.Failures)
	assert.Empty(t, mentions)
}
