package apply

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tomcatvhost/internal/cmdutil"
	"tomcatvhost/internal/config"
	"tomcatvhost/internal/tomcat"
	"tomcatvhost/internal/types"
	"tomcatvhost/internal/vhost"
	"tomcatvhost/logger"
)

type applyParams struct {
	Name                  string
	Aliases               []string
	Service               string
	Engine                string
	WebApps               string
	AutoDeploy            bool
	DeployOnStartup       bool
	UnpackWARs            bool
	RemoteIPValve         bool
	RemoteInternalProxies string
	AccessLogValve        bool

	ConfDir string
	File    string
	Check   bool
	Backup  bool
	JSON    bool
}

func NewApplyCmd(mgr vhost.Manager) *cobra.Command {
	params := &applyParams{}
	mValidator := validator.New(validator.WithRequiredStructEnabled())

	cmd := &cobra.Command{
		Use:     "apply",
		Short:   "Reconcile virtual hosts in server.xml",
		Long:    "Reconcile one virtual host (flags) or a whole descriptor file (-f) against Tomcat's server.xml.",
		Example: "tomcat-vhost apply --name layers.example.org --alias www.example.org --remote-ip-valve",
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, confDir, err := resolveSpecs(params)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return err
			}

			for _, spec := range specs {
				if err := mValidator.Struct(spec); err != nil {
					cmdutil.PrintE(err.Error())
					return err
				}
				if !lo.FromPtr(spec.DeployOnStartup) {
					logger.Warn("deploy_on_startup is accepted but never written to server.xml",
						zap.String("host", spec.Name))
				}
			}

			cmdutil.StartLoading("Reconciling...")
			results, err := mgr.Apply(vhost.ApplyParams{
				ServerXML: tomcat.ServerXMLPath(tomcat.ConfDir(confDir)),
				Specs:     specs,
				Check:     params.Check,
				Backup:    params.Backup,
			})
			cmdutil.StopLoading()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return err
			}

			printResults(results, params.Check, params.JSON)
			return nil
		},
	}

	cmd.Flags().StringVarP(&params.Name, "name", "n", "", "Virtual host name")
	cmd.Flags().StringSliceVarP(&params.Aliases, "alias", "a", nil, "Host alias (repeatable)")
	cmd.Flags().StringVar(&params.Service, "service", types.DefaultService, "Service the host belongs to")
	cmd.Flags().StringVar(&params.Engine, "engine", types.DefaultEngine, "Engine the host belongs to")
	cmd.Flags().StringVar(&params.WebApps, "webapps", "", "appBase directory or template containing "+types.WebAppsNamePlaceholder)
	cmd.Flags().BoolVar(&params.AutoDeploy, "auto-deploy", true, "Set autoDeploy on the host")
	cmd.Flags().BoolVar(&params.DeployOnStartup, "deploy-on-startup", true, "Accepted but not applied (matches the historical interface)")
	cmd.Flags().BoolVar(&params.UnpackWARs, "unpack-wars", true, "Set unpackWARs on the host")
	cmd.Flags().BoolVar(&params.RemoteIPValve, "remote-ip-valve", false, "Manage a RemoteIpValve on the host")
	cmd.Flags().StringVar(&params.RemoteInternalProxies, "remote-internal-proxies", "", "internalProxies value for the RemoteIpValve")
	cmd.Flags().BoolVar(&params.AccessLogValve, "access-log-valve", true, "Manage an AccessLogValve on the host")
	cmd.Flags().StringVar(&params.ConfDir, "conf-dir", "", "Tomcat conf directory (default: autodetected)")
	cmd.Flags().StringVarP(&params.File, "file", "f", "", "Vhost descriptor file (YAML)")
	cmd.Flags().BoolVar(&params.Check, "check", false, "Report what would change without writing")
	cmd.Flags().BoolVar(&params.Backup, "backup", false, "Keep a timestamped copy of server.xml before writing")
	cmd.Flags().BoolVar(&params.JSON, "json", false, "Emit results as JSON")
	return cmd
}

func resolveSpecs(params *applyParams) ([]types.VhostSpec, string, error) {
	if params.File != "" {
		doc, err := config.Parse(params.File)
		if err != nil {
			return nil, "", errors.Wrapf(err, "parse %s", params.File)
		}
		confDir := params.ConfDir
		if confDir == "" {
			confDir = doc.ConfDir
		}
		return doc.Hosts, confDir, nil
	}

	if params.Name == "" {
		return nil, "", errors.New("either --name or --file is required")
	}

	spec := types.VhostSpec{
		Name:                  params.Name,
		Aliases:               params.Aliases,
		Service:               params.Service,
		Engine:                params.Engine,
		WebApps:               params.WebApps,
		AutoDeploy:            lo.ToPtr(params.AutoDeploy),
		UnpackWARs:            lo.ToPtr(params.UnpackWARs),
		DeployOnStartup:       lo.ToPtr(params.DeployOnStartup),
		RemoteIPValve:         params.RemoteIPValve,
		RemoteInternalProxies: params.RemoteInternalProxies,
		AccessLogValve:        lo.ToPtr(params.AccessLogValve),
		State:                 types.StatePresent,
	}
	return []types.VhostSpec{spec}, params.ConfDir, nil
}

func printResults(results []types.ReconcileResult, check, asJSON bool) {
	if asJSON {
		cmdutil.PrintJSON(results)
		return
	}

	for _, result := range results {
		if result.Changed {
			cmdutil.PrintS(fmt.Sprintf("%s: changed", result.Name))
		} else {
			cmdutil.Print(fmt.Sprintf("%s: unchanged", result.Name))
		}
		for _, diag := range result.Errors {
			cmdutil.PrintW("  " + diag)
		}
	}
	if check {
		cmdutil.Print("check mode: nothing written")
	}
}
