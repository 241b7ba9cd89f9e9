package cmd

import (
	"github.com/spf13/cobra"

	"tomcatvhost/internal/vhost"
	"tomcatvhost/pkg/cmd/apply"
	"tomcatvhost/pkg/cmd/format"
	"tomcatvhost/pkg/cmd/list"
	"tomcatvhost/pkg/cmd/remove"
)

func New() (*cobra.Command, error) {
	mgr, err := vhost.NewManager()
	if err != nil {
		return nil, err
	}

	cmd := &cobra.Command{
		Use:           "tomcat-vhost",
		Short:         "tomcat-vhost - declarative virtual host management for Apache Tomcat",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(apply.NewApplyCmd(mgr))
	cmd.AddCommand(remove.NewRemoveCmd(mgr))
	cmd.AddCommand(list.NewListCmd(mgr))
	cmd.AddCommand(format.NewFormatCmd())
	return cmd, nil
}
