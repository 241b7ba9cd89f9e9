package types

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults(t *testing.T) {
	spec := VhostSpec{Name: "foo.example.org"}
	spec.ApplyDefaults()

	assert.Equal(t, DefaultService, spec.Service)
	assert.Equal(t, DefaultEngine, spec.Engine)
	assert.True(t, lo.FromPtr(spec.AutoDeploy))
	assert.True(t, lo.FromPtr(spec.UnpackWARs))
	assert.True(t, lo.FromPtr(spec.DeployOnStartup))
	assert.True(t, lo.FromPtr(spec.AccessLogValve))
	assert.False(t, spec.RemoteIPValve)
	assert.Equal(t, StatePresent, spec.State)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	spec := VhostSpec{
		Name:       "foo.example.org",
		Service:    "Other",
		Engine:     "OtherEngine",
		AutoDeploy: lo.ToPtr(false),
		State:      StateAbsent,
	}
	spec.ApplyDefaults()

	assert.Equal(t, "Other", spec.Service)
	assert.Equal(t, "OtherEngine", spec.Engine)
	assert.False(t, lo.FromPtr(spec.AutoDeploy))
	assert.Equal(t, StateAbsent, spec.State)
}

func TestAppBase(t *testing.T) {
	tests := []struct {
		name     string
		spec     VhostSpec
		expected string
	}{
		{
			name:     "derived from host name",
			spec:     VhostSpec{Name: "foo"},
			expected: "webapps-foo",
		},
		{
			name:     "template substitution",
			spec:     VhostSpec{Name: "foo", WebApps: "apps-%(name)s"},
			expected: "apps-foo",
		},
		{
			name:     "literal value",
			spec:     VhostSpec{Name: "foo", WebApps: "/srv/apps"},
			expected: "/srv/apps",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.spec.AppBase())
		})
	}
}
