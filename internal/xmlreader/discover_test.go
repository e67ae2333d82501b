package xmlreader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("<ROOT/>"), 0o644))
}

func TestFindFiles_MatchesCaseInsensitiveSubstring(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "AS_ADDR_OBJ_20240101.XML")
	writeFile(t, dir, "as_adm_hierarchy_20240101.xml")
	writeFile(t, dir, "AS_HOUSES_PARAMS_20240101.XML")
	writeFile(t, dir, "notes.txt")

	matches, err := FindFiles(dir, "AS_ADDR_OBJ", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Contains(t, matches[0], "AS_ADDR_OBJ_20240101.XML")

	matches, err = FindFiles(dir, "as_adm_hierarchy", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestFindFiles_SearchesRegionSubdirectory(t *testing.T) {
	root := t.TempDir()
	regionDir := filepath.Join(root, "77")
	require.NoError(t, os.Mkdir(regionDir, 0o755))
	writeFile(t, regionDir, "AS_STEADS_20240101.XML")

	matches, err := FindFiles(root, "AS_STEADS", "77")
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestFindFiles_MissingRegionSubdirectoryIsNotAnError(t *testing.T) {
	root := t.TempDir()
	matches, err := FindFiles(root, "AS_STEADS", "does-not-exist")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestReaderNext_EmitsAttributeMapsAndReleasesSubtrees(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "objects.xml")
	xmlDoc := `<ADDRESS_OBJECTS>
		<OBJECT OBJECTID="1" LEVEL="3" ISACTUAL="1" ISACTIVE="1"/>
		<OBJECT OBJECTID="2" LEVEL="5" ISACTUAL="1" ISACTIVE="1"/>
	</ADDRESS_OBJECTS>`
	require.NoError(t, os.WriteFile(path, []byte(xmlDoc), 0o644))

	r, err := Open(path, "OBJECT")
	require.NoError(t, err)
	defer r.Close()

	var ids []string
	for {
		el, ok, err := r.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		ids = append(ids, el.Attributes["OBJECTID"])
	}

	assert.Equal(t, []string{"1", "2"}, ids)
}
