package vhost

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"tomcatvhost/internal/formatter"
	"tomcatvhost/internal/reconciler"
	"tomcatvhost/internal/types"
	"tomcatvhost/internal/xmltree"
	"tomcatvhost/logger"
)

type (
	Manager interface {
		// Apply reconciles every spec against the server.xml at path.
		// Mutation happens fully in memory; the file is written (and
		// reformatted) only when something changed and Check is off.
		Apply(params ApplyParams) ([]types.ReconcileResult, error)

		// Inspect lists the virtual hosts declared in the server.xml at
		// path.
		Inspect(path string) ([]types.HostInfo, error)
	}

	ApplyParams struct {
		ServerXML string
		Specs     []types.VhostSpec
		Check     bool
		Backup    bool
	}

	manager struct{}
)

func NewManager() (Manager, error) {
	if err := xmltree.Available(); err != nil {
		return nil, err
	}
	return &manager{}, nil
}

func (m *manager) Apply(params ApplyParams) ([]types.ReconcileResult, error) {
	tree, err := xmltree.Load(params.ServerXML)
	if err != nil {
		return nil, err
	}

	rec := reconciler.New(tree)
	results := make([]types.ReconcileResult, 0, len(params.Specs))
	anyChanged := false
	for _, spec := range params.Specs {
		result, err := rec.Reconcile(spec)
		if err != nil {
			return nil, errors.Wrapf(err, "reconcile host %s", spec.Name)
		}
		results = append(results, result)
		anyChanged = anyChanged || result.Changed
	}

	if !anyChanged || params.Check {
		return results, nil
	}

	if params.Backup {
		backupPath := fmt.Sprintf("%s.%d.bak", params.ServerXML, time.Now().Unix())
		if err := xmltree.Copy(params.ServerXML, backupPath); err != nil {
			return nil, err
		}
		logger.Info("wrote backup", zap.String("path", backupPath))
	}

	if err := tree.Save(); err != nil {
		return nil, err
	}
	if _, err := formatter.Format(params.ServerXML); err != nil {
		return nil, err
	}
	return results, nil
}

func (m *manager) Inspect(path string) ([]types.HostInfo, error) {
	tree, err := xmltree.Load(path)
	if err != nil {
		return nil, err
	}

	infos := make([]types.HostInfo, 0)
	for _, service := range tree.Root().Children("Service") {
		for _, engine := range service.Children("Engine") {
			for _, host := range engine.Children("Host") {
				info := types.HostInfo{
					Service: service.AttrOr("name", ""),
					Engine:  engine.AttrOr("name", ""),
					Name:    host.AttrOr("name", ""),
					AppBase: host.AttrOr("appBase", ""),
				}
				for _, alias := range host.Children("Alias") {
					if alias.Text() != "" {
						info.Aliases = append(info.Aliases, alias.Text())
					}
				}
				for _, valve := range host.Children("Valve") {
					if class := valve.AttrOr("className", ""); class != "" {
						info.Valves = append(info.Valves, class)
					}
				}
				infos = append(infos, info)
			}
		}
	}
	return infos, nil
}
