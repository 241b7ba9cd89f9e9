package format

import (
	"github.com/spf13/cobra"

	"tomcatvhost/internal/cmdutil"
	"tomcatvhost/internal/formatter"
	"tomcatvhost/internal/tomcat"
)

func NewFormatCmd() *cobra.Command {
	var confDir string

	cmd := &cobra.Command{
		Use:   "format",
		Short: "Reformat server.xml",
		Long:  "Rewrite server.xml in canonical form: stable indentation, blank lines stripped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := tomcat.ServerXMLPath(tomcat.ConfDir(confDir))
			changed, err := formatter.Format(path)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return err
			}
			if changed {
				cmdutil.PrintS(path + ": reformatted")
			} else {
				cmdutil.Print(path + ": already canonical")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&confDir, "conf-dir", "", "Tomcat conf directory (default: autodetected)")
	return cmd
}
