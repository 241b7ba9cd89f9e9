// Package tomcat resolves where the Tomcat configuration lives on the
// current machine.
package tomcat

import (
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v4/host"
)

const ServerXMLName = "server.xml"

// Default conf directories per OS distribution family.
const (
	confDirRHEL    = "/usr/share/tomcat/conf"
	confDirDebian  = "/etc/tomcat9"
	confDirGeneric = "/etc/tomcat"
)

// ConfDir resolves the Tomcat conf directory. Precedence: the explicit
// value, TOMCAT_CONF_DIR, CATALINA_HOME/conf, then a default keyed on the
// OS distribution family.
func ConfDir(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if dir := os.Getenv("TOMCAT_CONF_DIR"); dir != "" {
		return dir
	}
	if home := os.Getenv("CATALINA_HOME"); home != "" {
		return filepath.Join(home, "conf")
	}
	return familyDefault()
}

// ServerXMLPath returns the server.xml path inside a conf directory.
func ServerXMLPath(confDir string) string {
	return filepath.Join(confDir, ServerXMLName)
}

func familyDefault() string {
	_, family, _, err := host.PlatformInformation()
	if err != nil {
		return confDirGeneric
	}
	switch family {
	case "rhel", "fedora":
		return confDirRHEL
	case "debian":
		return confDirDebian
	default:
		return confDirGeneric
	}
}
