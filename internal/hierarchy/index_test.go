package hierarchy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	records []map[string]string
	i       int
}

func (f *fakeSource) Next() (map[string]string, bool, error) {
	if f.i >= len(f.records) {
		return nil, false, nil
	}
	r := f.records[f.i]
	f.i++
	return r, true, nil
}

func TestBuild_MunicipalPriorityOverAdministrative(t *testing.T) {
	levels := &fakeSource{records: []map[string]string{
		{"OBJECTID": "1", "LEVEL": "3", "ISACTUAL": "1", "ISACTIVE": "1"},
		{"OBJECTID": "2", "LEVEL": "5", "ISACTUAL": "1", "ISACTIVE": "1"},
	}}
	mun := &fakeSource{records: []map[string]string{
		{"OBJECTID": "2", "PARENTOBJID": "1", "ISACTIVE": "1"},
	}}
	adm := &fakeSource{records: []map[string]string{
		{"OBJECTID": "2", "PARENTOBJID": "99", "ISACTIVE": "1"},
	}}

	idx, err := Build(context.Background(), levels, mun, adm)
	require.NoError(t, err)

	parent, ok := idx.Parent("2")
	require.True(t, ok)
	assert.Equal(t, "1", parent, "municipal edge must win over administrative edge for the same child")
}

func TestBuild_AdministrativeFillsWhenNoMunicipalEdge(t *testing.T) {
	levels := &fakeSource{records: []map[string]string{
		{"OBJECTID": "1", "LEVEL": "3", "ISACTUAL": "1", "ISACTIVE": "1"},
		{"OBJECTID": "2", "LEVEL": "5", "ISACTUAL": "1", "ISACTIVE": "1"},
	}}
	mun := &fakeSource{}
	adm := &fakeSource{records: []map[string]string{
		{"OBJECTID": "2", "PARENTOBJID": "1", "ISACTIVE": "1"},
	}}

	idx, err := Build(context.Background(), levels, mun, adm)
	require.NoError(t, err)

	parent, ok := idx.Parent("2")
	require.True(t, ok)
	assert.Equal(t, "1", parent)
}

func TestBuild_InactiveLevelRecordsAreSkipped(t *testing.T) {
	levels := &fakeSource{records: []map[string]string{
		{"OBJECTID": "1", "LEVEL": "3", "ISACTUAL": "0", "ISACTIVE": "1"},
	}}
	idx, err := Build(context.Background(), levels, &fakeSource{}, &fakeSource{})
	require.NoError(t, err)

	_, ok := idx.Level("1")
	assert.False(t, ok)
}

func TestFindParentByLevel_ObjectAlreadyAtTargetLevel(t *testing.T) {
	idx := New()
	idx.SetLevel("5", "5")

	parent, ok := idx.FindParentByLevel("5", []string{"5", "6"})
	require.True(t, ok)
	assert.Equal(t, "5", parent)
}

func TestFindParentByLevel_WalksUpThroughChain(t *testing.T) {
	idx := New()
	idx.SetLevel("house", "")
	idx.SetLevel("street", "7")
	idx.SetLevel("settlement", "5")
	idx.SetLevel("mo", "3")
	idx.SetParentUnconditional("house", "street")
	idx.SetParentUnconditional("street", "settlement")
	idx.SetParentUnconditional("settlement", "mo")

	street, ok := idx.FindParentByLevel("house", []string{"7", "8"})
	require.True(t, ok)
	assert.Equal(t, "street", street)

	mo, ok := idx.FindMunicipalityParent("house")
	require.True(t, ok)
	assert.Equal(t, "mo", mo)
}

func TestFindParentByLevel_CycleTerminates(t *testing.T) {
	idx := New()
	idx.SetLevel("a", "9")
	idx.SetLevel("b", "9")
	idx.SetParentUnconditional("a", "b")
	idx.SetParentUnconditional("b", "a")

	_, ok := idx.FindParentByLevel("a", []string{"3", "4"})
	assert.False(t, ok, "a cycle with no matching level must terminate, not loop forever")
}

func TestFindParentByLevel_MissLeavesNotFound(t *testing.T) {
	idx := New()
	idx.SetLevel("lonely", "9")

	_, ok := idx.FindParentByLevel("lonely", []string{"3", "4"})
	assert.False(t, ok)
}
