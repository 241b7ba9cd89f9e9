// Package reconciler mutates a loaded server.xml tree so that its Host
// entries match a declarative desired state. It never touches disk; the
// caller decides whether the tree is persisted, which is how check mode
// works.
package reconciler

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"tomcatvhost/internal/types"
	"tomcatvhost/internal/xmltree"
)

type (
	Reconciler interface {
		// Reconcile brings the Host identified by (service, engine, name)
		// in line with the spec and reports whether anything changed.
		Reconcile(spec types.VhostSpec) (types.ReconcileResult, error)
	}

	reconciler struct {
		tree *xmltree.Tree
	}
)

func New(tree *xmltree.Tree) Reconciler {
	return &reconciler{tree: tree}
}

func (r *reconciler) Reconcile(spec types.VhostSpec) (types.ReconcileResult, error) {
	spec.ApplyDefaults()
	result := types.ReconcileResult{Name: spec.Name}

	engine, err := r.tree.Find(enginePath(spec))
	if err != nil {
		return result, err
	}

	var host *xmltree.Node
	if engine != nil {
		host, err = engine.Find(fmt.Sprintf("./Host[@name='%s']", spec.Name))
		if err != nil {
			return result, err
		}
	}

	if spec.State == types.StateAbsent {
		if host == nil {
			result.Errors = r.tree.Diagnostics()
			return result, nil
		}
		engine.RemoveChild(host)
		result.Changed = true
		result.Errors = r.tree.Diagnostics()
		return result, nil
	}

	if engine == nil {
		return result, errors.Errorf("engine %s not found under service %s", spec.Engine, spec.Service)
	}

	changed := false
	if host == nil {
		host = engine.AddChild("Host")
		host.SetAttr("name", spec.Name)
		changed = true
	}

	if host.SetAttr("autoDeploy", strconv.FormatBool(lo.FromPtr(spec.AutoDeploy))) {
		changed = true
	}
	if host.SetAttr("unpackWARs", strconv.FormatBool(lo.FromPtr(spec.UnpackWARs))) {
		changed = true
	}
	if host.SetAttr("appBase", spec.AppBase()) {
		changed = true
	}

	if r.reconcileAliases(host, spec.Aliases) {
		changed = true
	}

	if r.reconcileValve(host, types.RemoteIPValveClass, spec.RemoteIPValve, remoteIPParams(spec)) {
		changed = true
	}
	if r.reconcileValve(host, types.AccessLogValveClass, lo.FromPtr(spec.AccessLogValve), accessLogParams(spec)) {
		changed = true
	}

	result.Changed = changed
	result.Errors = r.tree.Diagnostics()
	return result, nil
}

// reconcileAliases computes the symmetric difference between the Alias
// children and the desired set, removing and appending only the elements
// that differ. Aliases are a set: matched by text value, never by position.
func (r *reconciler) reconcileAliases(host *xmltree.Node, desired []string) bool {
	changed := false
	current := make([]string, 0)
	kept := make([]*xmltree.Node, 0)
	seen := make(map[string]bool)
	for _, n := range host.Children("Alias") {
		value := n.Text()
		if value == "" {
			r.tree.Warnf("ignoring Alias element with no text under host %s", host.AttrOr("name", "?"))
			continue
		}
		if seen[value] {
			host.RemoveChild(n)
			changed = true
			continue
		}
		seen[value] = true
		current = append(current, value)
		kept = append(kept, n)
	}

	toRemove, toAdd := lo.Difference(current, lo.Uniq(desired))

	for _, value := range toRemove {
		for _, n := range kept {
			if n.Text() == value {
				host.RemoveChild(n)
				changed = true
			}
		}
	}
	for _, value := range toAdd {
		host.AddChild("Alias").SetText(value)
		changed = true
	}
	return changed
}

// reconcileValve ensures at most one Valve per className. When enabled the
// canonical parameters are written over whatever is there; attributes
// outside the canonical set are left alone. When disabled the valve is
// removed entirely.
func (r *reconciler) reconcileValve(host *xmltree.Node, className string, enabled bool, params map[string]string) bool {
	var valve *xmltree.Node
	changed := false
	for _, v := range host.Children("Valve") {
		if v.AttrOr("className", "") != className {
			continue
		}
		if valve != nil || !enabled {
			host.RemoveChild(v)
			changed = true
			continue
		}
		valve = v
	}

	if !enabled {
		return changed
	}

	if valve == nil {
		valve = host.AddChild("Valve")
		valve.SetAttr("className", className)
		changed = true
	}

	keys := lo.Keys(params)
	sort.Strings(keys)
	for _, key := range keys {
		if valve.SetAttr(key, params[key]) {
			changed = true
		}
	}
	return changed
}

func enginePath(spec types.VhostSpec) string {
	return fmt.Sprintf("/Server/Service[@name='%s']/Engine[@name='%s']", spec.Service, spec.Engine)
}

func remoteIPParams(spec types.VhostSpec) map[string]string {
	params := map[string]string{
		"protocolHeader": "X-Forwarded-Proto",
		"remoteIpHeader": "X-Forwarded-For",
		"proxiesHeader":  "X-Forwarded-By",
	}
	if spec.RemoteInternalProxies != "" {
		params["internalProxies"] = spec.RemoteInternalProxies
	}
	return params
}

func accessLogParams(spec types.VhostSpec) map[string]string {
	return map[string]string{
		"directory": "logs",
		"prefix":    spec.Name + "_access_log.",
		"suffix":    ".txt",
		"pattern":   `%h %l %u %t "%r" %s %b`,
	}
}
