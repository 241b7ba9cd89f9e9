package formatter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomcatvhost/internal/xmltree"
)

const messyXML = `<?xml version="1.0" encoding="UTF-8"?>
<Server port="8005">


   <Service name="Catalina">
         <Engine name="Catalina"><Host name="localhost" appBase="webapps"/></Engine>
   </Service>

</Server>`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFormat(t *testing.T) {
	path := writeTemp(t, messyXML)

	changed, err := Format(path)
	require.NoError(t, err)
	assert.True(t, changed)

	out, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(out)
	assert.NotContains(t, content, "\n\n")
	assert.Contains(t, content, "  <Service name=\"Catalina\">")
	assert.True(t, strings.HasSuffix(content, "\n"))

	// already-canonical files are not rewritten
	changed, err = Format(path)
	require.NoError(t, err)
	assert.False(t, changed)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, after)
}

func TestFormat_PreservesContent(t *testing.T) {
	path := writeTemp(t, messyXML)

	_, err := Format(path)
	require.NoError(t, err)

	tree, err := xmltree.Load(path)
	require.NoError(t, err)

	host, err := tree.Find("/Server/Service/Engine/Host")
	require.NoError(t, err)
	require.NotNil(t, host)
	assert.Equal(t, "localhost", host.AttrOr("name", ""))
	assert.Equal(t, "webapps", host.AttrOr("appBase", ""))
}

func TestFormat_MissingFile(t *testing.T) {
	_, err := Format(filepath.Join(t.TempDir(), "nope.xml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, xmltree.ErrConfigLoad))
}

func TestFormat_Unparsable(t *testing.T) {
	path := writeTemp(t, "<Server><Service>")
	_, err := Format(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, xmltree.ErrConfigLoad))
}
