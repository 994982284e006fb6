package service

import (
	"context"
	"testing"

	v1 "cyberlab/api/v1"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTemplates(e *testEnv) TemplateService {
	return NewTemplateService(e.base, e.templateRepo, e.logger)
}

func TestCreateTemplateDefaultsAndDuplicate(t *testing.T) {
	e := newTestEnv(t)
	templates := newTemplates(e)

	id, err := templates.CreateTemplate(context.Background(), &v1.CreateTemplateRequest{Name: "kali"})
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	detail, err := templates.GetTemplate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(2048), detail.Memory)
	assert.Equal(t, int64(2), detail.Cores)
	assert.True(t, detail.IsActive)

	_, err = templates.CreateTemplate(context.Background(), &v1.CreateTemplateRequest{Name: "kali"})
	assert.ErrorIs(t, err, v1.ErrBadRequest)
}

func TestDeleteTemplateRemovesMappings(t *testing.T) {
	e := newTestEnv(t)
	template := e.seedTemplate(t, "kali")
	e.seedMapping(t, template.Id, "pve1", 9000)
	e.seedMapping(t, template.Id, "pve2", 9001)

	templates := newTemplates(e)
	require.NoError(t, templates.DeleteTemplate(context.Background(), template.Id))

	mappings, err := e.templateRepo.ListMappings(context.Background(), template.Id)
	require.NoError(t, err)
	assert.Empty(t, mappings)
}

func TestAddMappingUpserts(t *testing.T) {
	e := newTestEnv(t)
	template := e.seedTemplate(t, "kali")
	templates := newTemplates(e)

	require.NoError(t, templates.AddMapping(context.Background(), template.Id, &v1.CreateTemplateMappingRequest{
		NodeName:     "pve1",
		TemplateVMID: 9000,
	}))
	// Registering the same node again replaces the VMID instead of
	// stacking a second row.
	require.NoError(t, templates.AddMapping(context.Background(), template.Id, &v1.CreateTemplateMappingRequest{
		NodeName:     "pve1",
		TemplateVMID: 9500,
	}))

	mappings, err := e.templateRepo.ListMappings(context.Background(), template.Id)
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, uint32(9500), mappings[0].TemplateVMID)
}

func TestRemoveMappingUnknownNode(t *testing.T) {
	e := newTestEnv(t)
	template := e.seedTemplate(t, "kali")

	err := newTemplates(e).RemoveMapping(context.Background(), template.Id, "pve9")
	assert.ErrorIs(t, err, v1.ErrNotFound)
}

func TestAvailableNodesOrdered(t *testing.T) {
	e := newTestEnv(t)
	template := e.seedTemplate(t, "kali")
	e.seedMapping(t, template.Id, "pve2", 9001)
	e.seedMapping(t, template.Id, "pve1", 9000)

	nodes, err := newTemplates(e).AvailableNodes(context.Background(), template.Id)
	require.NoError(t, err)
	assert.Equal(t, []string{"pve1", "pve2"}, nodes)
}

func TestResolveTemplateID(t *testing.T) {
	e := newTestEnv(t)
	template := e.seedTemplate(t, "kali")
	e.seedMapping(t, template.Id, "pve1", 9000)
	templates := newTemplates(e)

	vmid, err := templates.ResolveTemplateID(context.Background(), template, "pve1")
	require.NoError(t, err)
	assert.Equal(t, uint32(9000), vmid)

	_, err = templates.ResolveTemplateID(context.Background(), template, "pve2")
	var mappingErr *MappingNotFoundError
	require.ErrorAs(t, err, &mappingErr)
	assert.Equal(t, "kali", mappingErr.Template)
	assert.Equal(t, "pve2", mappingErr.Node)
	assert.Equal(t, []string{"pve1"}, mappingErr.AvailableNodes)
	assert.Contains(t, mappingErr.Error(), "pve1")
}

func TestUpdateTemplateDeactivation(t *testing.T) {
	e := newTestEnv(t)
	template := e.seedTemplate(t, "kali")
	templates := newTemplates(e)

	inactive := false
	require.NoError(t, templates.UpdateTemplate(context.Background(), template.Id, &v1.UpdateTemplateRequest{
		IsActive: &inactive,
	}))

	active, err := templates.ListTemplates(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := templates.ListTemplates(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
