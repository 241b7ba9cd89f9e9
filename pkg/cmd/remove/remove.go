package remove

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"tomcatvhost/internal/cmdutil"
	"tomcatvhost/internal/tomcat"
	"tomcatvhost/internal/types"
	"tomcatvhost/internal/vhost"
)

func NewRemoveCmd(mgr vhost.Manager) *cobra.Command {
	var (
		name    string
		service string
		engine  string
		confDir string
		check   bool
		backup  bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:     "remove",
		Short:   "Remove a virtual host from server.xml",
		Long:    "Delete a Host entry and everything under it. A host that is already absent is a no-op.",
		Example: "tomcat-vhost remove --name layers.example.org",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				err := errors.New("--name is required")
				cmdutil.PrintE(err.Error())
				return err
			}

			spec := types.VhostSpec{
				Name:    name,
				Service: service,
				Engine:  engine,
				State:   types.StateAbsent,
			}

			results, err := mgr.Apply(vhost.ApplyParams{
				ServerXML: tomcat.ServerXMLPath(tomcat.ConfDir(confDir)),
				Specs:     []types.VhostSpec{spec},
				Check:     check,
				Backup:    backup,
			})
			if err != nil {
				cmdutil.PrintE(err.Error())
				return err
			}

			if asJSON {
				cmdutil.PrintJSON(results)
				return nil
			}
			for _, result := range results {
				if result.Changed {
					cmdutil.PrintS(fmt.Sprintf("%s: removed", result.Name))
				} else {
					cmdutil.Print(fmt.Sprintf("%s: not present", result.Name))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Virtual host name")
	cmd.Flags().StringVar(&service, "service", types.DefaultService, "Service the host belongs to")
	cmd.Flags().StringVar(&engine, "engine", types.DefaultEngine, "Engine the host belongs to")
	cmd.Flags().StringVar(&confDir, "conf-dir", "", "Tomcat conf directory (default: autodetected)")
	cmd.Flags().BoolVar(&check, "check", false, "Report what would change without writing")
	cmd.Flags().BoolVar(&backup, "backup", false, "Keep a timestamped copy of server.xml before writing")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit results as JSON")
	return cmd
}
