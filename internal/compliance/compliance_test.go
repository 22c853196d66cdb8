package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypesListsEmbeddedTemplates(t *testing.T) {
	types := Types()
	assert.Equal(t, []string{"customer-service", "healthcare", "it-onboarding", "restaurant"}, types)
}

func TestLoadRestaurant(t *testing.T) {
	tmpl, err := Load("restaurant")
	require.NoError(t, err)

	assert.Equal(t, "restaurant", tmpl.Type)
	assert.Contains(t, tmpl.Standards, "HACCP")
	require.NotEmpty(t, tmpl.RegulatoryLinks)
	assert.NotEmpty(t, tmpl.RegulatoryLinks[0].URL)

	sections := tmpl.OrderedSections()
	require.Len(t, sections, 4)
	assert.Equal(t, "Introduction", sections[0].Name)
	assert.Equal(t, "Procedures", sections[1].Name)
	assert.True(t, sections[1].HasChecklist)
	assert.NotEmpty(t, sections[1].ChecklistItems)
	assert.Equal(t, "Compliance Requirements", sections[2].Name)
	assert.Equal(t, "Documentation", sections[3].Name)
}

func TestLoadUnknownTypeFallsBack(t *testing.T) {
	tmpl, err := Load("space-station")
	require.NoError(t, err)

	assert.Equal(t, "space-station", tmpl.Type)
	assert.False(t, Known("space-station"))
	require.Len(t, tmpl.Sections, 4)
	assert.Equal(t, "Introduction", tmpl.Sections[0].Name)
}

func TestAllTemplatesWellFormed(t *testing.T) {
	for _, typ := range Types() {
		tmpl, err := Load(typ)
		require.NoError(t, err, typ)
		assert.NotEmpty(t, tmpl.DisplayName, typ)
		assert.NotEmpty(t, tmpl.Industry, typ)
		require.NotEmpty(t, tmpl.Sections, typ)

		seen := map[int]string{}
		for _, s := range tmpl.Sections {
			assert.NotEmpty(t, s.Name, typ)
			assert.Greater(t, s.Order, 0, "%s/%s", typ, s.Name)
			if prev, dup := seen[s.Order]; dup {
				t.Errorf("%s: duplicate order %d (%s and %s)", typ, s.Order, prev, s.Name)
			}
			seen[s.Order] = s.Name
			if s.HasChecklist {
				assert.NotEmpty(t, s.ChecklistItems, "%s/%s", typ, s.Name)
			}
		}
	}
}

func TestOrderedSectionsRanksUnorderedLast(t *testing.T) {
	tmpl := &Template{
		Type: "test",
		Sections: []Section{
			{Name: "Appendix B", Order: 999},
			{Name: "Procedures", Order: 2},
			{Name: "Appendix A", Order: 999},
			{Name: "Introduction", Order: 1},
		},
	}

	ordered := tmpl.OrderedSections()
	names := make([]string, len(ordered))
	for i, s := range ordered {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"Introduction", "Procedures", "Appendix B", "Appendix A"}, names)
}
