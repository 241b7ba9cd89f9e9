package vhost

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomcatvhost/internal/types"
	"tomcatvhost/logger"
)

const serverXML = `<?xml version="1.0" encoding="UTF-8"?>
<Server port="8005" shutdown="SHUTDOWN">
  <Service name="Catalina">
    <Connector port="8080" protocol="HTTP/1.1"/>
    <Engine name="Catalina" defaultHost="localhost">
      <Host name="localhost" appBase="webapps" unpackWARs="true" autoDeploy="true"/>
    </Engine>
  </Service>
</Server>
`

func TestMain(m *testing.M) {
	if err := logger.InitLogger(""); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func writeServerXML(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.xml")
	require.NoError(t, os.WriteFile(path, []byte(serverXML), 0644))
	return path
}

func newManager(t *testing.T) Manager {
	t.Helper()
	mgr, err := NewManager()
	require.NoError(t, err)
	return mgr
}

func TestApply_PersistsAndIsIdempotent(t *testing.T) {
	path := writeServerXML(t)
	mgr := newManager(t)

	params := ApplyParams{
		ServerXML: path,
		Specs: []types.VhostSpec{{
			Name:    "layers.example.org",
			Aliases: []string{"www.example.org"},
		}},
	}

	results, err := mgr.Apply(params)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Changed)

	afterFirst, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(afterFirst), `name="layers.example.org"`)

	// second run: nothing changes, file is byte-stable
	results, err = mgr.Apply(params)
	require.NoError(t, err)
	assert.False(t, results[0].Changed)

	afterSecond, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, afterFirst, afterSecond)
}

func TestApply_CheckModeDoesNotWrite(t *testing.T) {
	path := writeServerXML(t)
	mgr := newManager(t)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	results, err := mgr.Apply(ApplyParams{
		ServerXML: path,
		Specs:     []types.VhostSpec{{Name: "layers.example.org"}},
		Check:     true,
	})
	require.NoError(t, err)
	assert.True(t, results[0].Changed)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestApply_Backup(t *testing.T) {
	path := writeServerXML(t)
	mgr := newManager(t)

	_, err := mgr.Apply(ApplyParams{
		ServerXML: path,
		Specs:     []types.VhostSpec{{Name: "layers.example.org"}},
		Backup:    true,
	})
	require.NoError(t, err)

	backups, err := filepath.Glob(path + ".*.bak")
	require.NoError(t, err)
	require.Len(t, backups, 1)

	data, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, serverXML, string(data))
}

func TestApply_NoChangeNoBackup(t *testing.T) {
	path := writeServerXML(t)
	mgr := newManager(t)

	_, err := mgr.Apply(ApplyParams{
		ServerXML: path,
		Specs: []types.VhostSpec{{
			Name:  "layers.example.org",
			State: types.StateAbsent,
		}},
		Backup: true,
	})
	require.NoError(t, err)

	backups, err := filepath.Glob(path + ".*.bak")
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestApply_MissingFile(t *testing.T) {
	mgr := newManager(t)

	_, err := mgr.Apply(ApplyParams{
		ServerXML: filepath.Join(t.TempDir(), "server.xml"),
		Specs:     []types.VhostSpec{{Name: "layers.example.org"}},
	})
	assert.Error(t, err)
}

func TestApply_MultipleHosts(t *testing.T) {
	path := writeServerXML(t)
	mgr := newManager(t)

	results, err := mgr.Apply(ApplyParams{
		ServerXML: path,
		Specs: []types.VhostSpec{
			{Name: "a.example.org"},
			{Name: "b.example.org", RemoteIPValve: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Changed)
	assert.True(t, results[1].Changed)

	hosts, err := mgr.Inspect(path)
	require.NoError(t, err)
	require.Len(t, hosts, 3)
}

func TestInspect(t *testing.T) {
	path := writeServerXML(t)
	mgr := newManager(t)

	_, err := mgr.Apply(ApplyParams{
		ServerXML: path,
		Specs: []types.VhostSpec{{
			Name:          "layers.example.org",
			Aliases:       []string{"www.example.org"},
			RemoteIPValve: true,
		}},
	})
	require.NoError(t, err)

	hosts, err := mgr.Inspect(path)
	require.NoError(t, err)
	require.Len(t, hosts, 2)

	var layers *types.HostInfo
	for i := range hosts {
		if hosts[i].Name == "layers.example.org" {
			layers = &hosts[i]
		}
	}
	require.NotNil(t, layers)
	assert.Equal(t, "Catalina", layers.Service)
	assert.Equal(t, "Catalina", layers.Engine)
	assert.Equal(t, "webapps-layers.example.org", layers.AppBase)
	assert.Equal(t, []string{"www.example.org"}, layers.Aliases)
	assert.ElementsMatch(t, []string{types.RemoteIPValveClass, types.AccessLogValveClass}, layers.Valves)
}
