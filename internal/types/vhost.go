package types

import (
	"strings"

	"github.com/samber/lo"
)

const (
	DefaultService = "Catalina"
	DefaultEngine  = "Catalina"

	// WebAppsNamePlaceholder is substituted with the host name when a
	// webapps directory template is supplied.
	WebAppsNamePlaceholder = "%(name)s"

	RemoteIPValveClass  = "org.apache.catalina.valves.RemoteIpValve"
	AccessLogValveClass = "org.apache.catalina.valves.AccessLogValve"
)

type (
	State string

	// VhostSpec is the desired state of a single Host entry in server.xml.
	VhostSpec struct {
		Name    string   `yaml:"name" json:"name" validate:"required,hostname_rfc1123"`
		Aliases []string `yaml:"aliases" json:"aliases" validate:"dive,hostname_rfc1123"`
		Service string   `yaml:"service" json:"service"`
		Engine  string   `yaml:"engine" json:"engine"`

		// WebApps is the appBase directory, or a template containing
		// %(name)s. Empty means "webapps-<name>".
		WebApps string `yaml:"webapps" json:"webapps"`

		AutoDeploy *bool `yaml:"auto_deploy" json:"auto_deploy"`
		UnpackWARs *bool `yaml:"unpack_wars" json:"unpack_wars"`

		// DeployOnStartup is accepted for interface compatibility but is
		// not written to server.xml. See pkg/cmd/apply.
		DeployOnStartup *bool `yaml:"deploy_on_startup" json:"deploy_on_startup"`

		RemoteIPValve         bool   `yaml:"remote_ip_valve" json:"remote_ip_valve"`
		RemoteInternalProxies string `yaml:"remote_internal_proxies" json:"remote_internal_proxies"`
		AccessLogValve        *bool  `yaml:"access_log_valve" json:"access_log_valve"`

		State State `yaml:"state" json:"state" validate:"omitempty,oneof=present absent"`
	}

	// ReconcileResult reports the outcome of reconciling one host.
	ReconcileResult struct {
		Name    string   `json:"name"`
		Changed bool     `json:"changed"`
		Errors  []string `json:"errors,omitempty"`
	}

	// HostInfo is a read-only view of a Host entry, for inspection output.
	HostInfo struct {
		Service string   `json:"service"`
		Engine  string   `json:"engine"`
		Name    string   `json:"name"`
		AppBase string   `json:"app_base"`
		Aliases []string `json:"aliases,omitempty"`
		Valves  []string `json:"valves,omitempty"`
	}
)

const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
)

// ApplyDefaults fills in the zero-value fields that have non-zero defaults.
func (s *VhostSpec) ApplyDefaults() {
	if s.Service == "" {
		s.Service = DefaultService
	}
	if s.Engine == "" {
		s.Engine = DefaultEngine
	}
	if s.AutoDeploy == nil {
		s.AutoDeploy = lo.ToPtr(true)
	}
	if s.UnpackWARs == nil {
		s.UnpackWARs = lo.ToPtr(true)
	}
	if s.DeployOnStartup == nil {
		s.DeployOnStartup = lo.ToPtr(true)
	}
	if s.AccessLogValve == nil {
		s.AccessLogValve = lo.ToPtr(true)
	}
	if s.State == "" {
		s.State = StatePresent
	}
}

// AppBase resolves the appBase attribute value for this host.
func (s *VhostSpec) AppBase() string {
	if s.WebApps == "" {
		return "webapps-" + s.Name
	}
	return strings.ReplaceAll(s.WebApps, WebAppsNamePlaceholder, s.Name)
}
