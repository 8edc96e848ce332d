package typereg_test

import (
	"path/filepath"
	"testing"

	"github.com/lifegraph-ai/lifegraph/pkg/typereg"
	"github.com/lifegraph-ai/lifegraph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveNodeTypeSeedAndAlias(t *testing.T) {
	r := typereg.NewRegistry("", nil)

	assert.Equal(t, types.PersonNodeType, r.ResolveNodeType("person"))
	assert.Equal(t, types.PersonNodeType, r.ResolveNodeType("Person"))
	assert.Equal(t, types.PersonNodeType, r.ResolveNodeType("contact"), "aliases resolve to the seed type")
	assert.Equal(t, types.OrganizationNodeType, r.ResolveNodeType("Company"))
}

func TestResolveNodeTypeRegistersUnknown(t *testing.T) {
	r := typereg.NewRegistry("", nil)

	before := r.Summary().NodeTypeCount
	typ := r.ResolveNodeType("Programming Language")
	assert.Equal(t, types.NodeType("programming_language"), typ)
	assert.Equal(t, before+1, r.Summary().NodeTypeCount)

	// Second resolution reuses the runtime registration.
	assert.Equal(t, typ, r.ResolveNodeType("programming language"))
	assert.Equal(t, before+1, r.Summary().NodeTypeCount)
}

func TestResolveNodeTypeEmptyFallsBackToTopic(t *testing.T) {
	r := typereg.NewRegistry("", nil)
	assert.Equal(t, types.TopicNodeType, r.ResolveNodeType("  "))
}

func TestResolveEdgeType(t *testing.T) {
	r := typereg.NewRegistry("", nil)

	assert.Equal(t, "works_on", r.ResolveEdgeType("Works On"))
	assert.Equal(t, "works_on", r.ResolveEdgeType("working_on"), "aliases resolve to the seed type")
	assert.Equal(t, "mentors", r.ResolveEdgeType("mentors"), "unknown relations are registered as-is")
	assert.Empty(t, r.ResolveEdgeType(""))
}

func TestUsageCountsAccumulate(t *testing.T) {
	r := typereg.NewRegistry("", nil)

	r.ResolveNodeType("person")
	r.ResolveNodeType("person")
	r.ResolveNodeType("skill")

	assert.Equal(t, 3, r.Summary().TotalUsage)
}

func TestAddNodeTypeRejectsDuplicates(t *testing.T) {
	r := typereg.NewRegistry("", nil)

	err := r.AddNodeType(&types.TypeDefinition{ID: "instrument", Description: "A musical instrument"})
	require.NoError(t, err)
	assert.Error(t, r.AddNodeType(&types.TypeDefinition{ID: "instrument"}))
	assert.Error(t, r.AddNodeType(&types.TypeDefinition{ID: "person"}))
}

func TestSearch(t *testing.T) {
	r := typereg.NewRegistry("", nil)

	hits := r.Search("hobby")
	require.NotEmpty(t, hits)
	assert.Equal(t, "interest", hits[0].ID, "alias text is searchable")

	assert.Empty(t, r.Search("zzz-nothing"))
}

func TestConsolidateFoldsNearDuplicates(t *testing.T) {
	r := typereg.NewRegistry("", nil)

	r.ResolveNodeType("programming_language")
	r.ResolveNodeType("programming_language")
	r.ResolveNodeType("programming_languages")

	before := r.Summary().NodeTypeCount
	removed := r.Consolidate()
	assert.Equal(t, 1, removed)
	assert.Equal(t, before-1, r.Summary().NodeTypeCount)

	// The surviving type absorbed the folded one's usage and id-as-alias.
	assert.Equal(t, types.NodeType("programming_language"), r.ResolveNodeType("programming_languages"))
}

func TestConsolidateNeverFoldsSeeds(t *testing.T) {
	r := typereg.NewRegistry("", nil)
	assert.Zero(t, r.Consolidate(), "seed types are left alone")
	assert.Equal(t, types.PersonNodeType, r.ResolveNodeType("person"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types.json")

	r := typereg.NewRegistry(path, nil)
	r.ResolveNodeType("programming_language")
	require.NoError(t, r.Save())

	reloaded := typereg.NewRegistry(path, nil)
	typ := reloaded.ResolveNodeType("programming_language")
	assert.Equal(t, types.NodeType("programming_language"), typ)

	var def *types.TypeDefinition
	for _, d := range reloaded.NodeTypes() {
		if d.ID == "programming_language" {
			def = d
		}
	}
	require.NotNil(t, def)
	assert.Equal(t, typereg.CategoryCustom, def.Category)
	assert.Equal(t, 2, def.UsageCount, "persisted usage plus the post-load resolution")
}
