package list

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"tomcatvhost/internal/cmdutil"
	"tomcatvhost/internal/tomcat"
	"tomcatvhost/internal/vhost"
)

func NewListCmd(mgr vhost.Manager) *cobra.Command {
	var (
		confDir string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List virtual hosts",
		Long:  "List all the Host entries declared in server.xml, with their aliases and valves.",
		RunE: func(cmd *cobra.Command, args []string) error {
			hosts, err := mgr.Inspect(tomcat.ServerXMLPath(tomcat.ConfDir(confDir)))
			if err != nil {
				cmdutil.PrintE(err.Error())
				return err
			}

			if asJSON {
				cmdutil.PrintJSON(hosts)
				return nil
			}

			header := table.Row{"Service", "Engine", "Host", "App Base", "Aliases", "Valves"}
			tw := table.NewWriter()
			tw.AppendHeader(header)
			for _, next := range hosts {
				valves := lo.Map(next.Valves, func(class string, index int) string {
					parts := strings.Split(class, ".")
					return parts[len(parts)-1]
				})
				row := table.Row{
					next.Service,
					next.Engine,
					next.Name,
					next.AppBase,
					strings.Join(next.Aliases, ", "),
					strings.Join(valves, ", "),
				}
				tw.AppendRow(row)
			}
			cmdutil.Print(tw.Render())
			return nil
		},
	}

	cmd.Flags().StringVar(&confDir, "conf-dir", "", "Tomcat conf directory (default: autodetected)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit hosts as JSON")
	return cmd
}
