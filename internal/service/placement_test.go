package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlacementPolicy(t *testing.T) {
	for _, valid := range []string{"least_loaded", "priority", "random", "round_robin"} {
		policy, err := ParsePlacementPolicy(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, string(policy))
	}
	_, err := ParsePlacementPolicy("alphabetical")
	assert.Error(t, err)
	_, err = ParsePlacementPolicy("")
	assert.Error(t, err)
}

func newPlacement(e *testEnv) PlacementService {
	return NewPlacementService(e.base, e.nodeRepo, e.vmRepo, e.templateRepo, e.logger)
}

func TestSelectNodeLeastLoaded(t *testing.T) {
	e := newTestEnv(t)
	e.seedNode(t, "pve1", 10, 1)
	e.seedNode(t, "pve2", 10, 1)
	student := e.seedStudent(t, "s1", 0)
	e.seedVM(t, student.Id, 100, "pve1", "kali", "local-lvm")
	e.seedVM(t, student.Id+1000, 101, "pve1", "kali", "local-lvm")
	e.seedVM(t, student.Id+2000, 102, "pve2", "kali", "local-lvm")

	placement := newPlacement(e)
	node, err := placement.SelectNode(context.Background(), PolicyLeastLoaded, 0)
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "pve2", node.NodeName)
}

func TestSelectNodePriority(t *testing.T) {
	e := newTestEnv(t)
	e.seedNode(t, "pve1", 10, 1)
	e.seedNode(t, "pve2", 10, 5)
	e.seedNode(t, "pve3", 10, 3)

	placement := newPlacement(e)
	node, err := placement.SelectNode(context.Background(), PolicyPriority, 0)
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "pve2", node.NodeName)
}

func TestSelectNodeRoundRobinRotates(t *testing.T) {
	e := newTestEnv(t)
	e.seedNode(t, "pve1", 10, 1)
	e.seedNode(t, "pve2", 10, 1)

	placement := newPlacement(e)
	var picks []string
	for i := 0; i < 4; i++ {
		node, err := placement.SelectNode(context.Background(), PolicyRoundRobin, 0)
		require.NoError(t, err)
		require.NotNil(t, node)
		picks = append(picks, node.NodeName)
	}
	assert.Equal(t, []string{"pve1", "pve2", "pve1", "pve2"}, picks)
}

func TestSelectNodeSkipsFullAndInactive(t *testing.T) {
	e := newTestEnv(t)
	full := e.seedNode(t, "pve1", 1, 9)
	inactive := e.seedNode(t, "pve2", 10, 9)
	inactive.IsActive = 0
	require.NoError(t, e.db.Save(inactive).Error)
	e.seedNode(t, "pve3", 10, 1)

	student := e.seedStudent(t, "s1", 0)
	e.seedVM(t, student.Id, 100, full.NodeName, "kali", "local-lvm")

	placement := newPlacement(e)
	node, err := placement.SelectNode(context.Background(), PolicyPriority, 0)
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "pve3", node.NodeName)
}

func TestSelectNodeFiltersToTemplateCarriers(t *testing.T) {
	e := newTestEnv(t)
	// pve2 is emptier but does not carry the template.
	e.seedNode(t, "pve1", 10, 1)
	e.seedNode(t, "pve2", 10, 1)
	template := e.seedTemplate(t, "kali")
	e.seedMapping(t, template.Id, "pve1", 9000)
	student := e.seedStudent(t, "s1", 0)
	e.seedVM(t, student.Id, 100, "pve1", "kali", "local-lvm")

	placement := newPlacement(e)
	node, err := placement.SelectNode(context.Background(), PolicyLeastLoaded, template.Id)
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "pve1", node.NodeName)

	other := e.seedTemplate(t, "unmapped")
	node, err = placement.SelectNode(context.Background(), PolicyLeastLoaded, other.Id)
	require.NoError(t, err)
	assert.Nil(t, node)
}

func TestSelectNodeNoCapacity(t *testing.T) {
	e := newTestEnv(t)
	node := e.seedNode(t, "pve1", 1, 1)
	student := e.seedStudent(t, "s1", 0)
	e.seedVM(t, student.Id, 100, node.NodeName, "kali", "local-lvm")

	placement := newPlacement(e)
	picked, err := placement.SelectNode(context.Background(), PolicyLeastLoaded, 0)
	require.NoError(t, err)
	assert.Nil(t, picked)
}

func TestSelectNodeRandomStaysEligible(t *testing.T) {
	e := newTestEnv(t)
	e.seedNode(t, "pve1", 10, 1)
	e.seedNode(t, "pve2", 10, 1)

	placement := newPlacement(e)
	for i := 0; i < 10; i++ {
		node, err := placement.SelectNode(context.Background(), PolicyRandom, 0)
		require.NoError(t, err)
		require.NotNil(t, node)
		assert.Contains(t, []string{"pve1", "pve2"}, node.NodeName)
	}
}
