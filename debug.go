package inject

import (
	"fmt"
	"io"
	"reflect"

	"github.com/jedib0t/go-pretty/v6/table"
)

// FprintBindings writes a table of every registered binding to w.
func (k *Kernel) FprintBindings(w io.Writer) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.SetTitle("Bindings")
	tw.AppendHeader(table.Row{"#", "Service", "Name", "Target", "Scope", "Conditional", "Implicit"})
	for i, b := range k.registry.All() {
		tw.AppendRow(table.Row{
			i + 1, b.serviceName(), b.Name(), b.Target(), b.ScopeName(), b.IsConditional(), b.IsImplicit(),
		})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "cached", k.cache.Count(), ""})
	tw.Render()
}

// FprintPlan writes the plan of t to w, building it if needed.
func (k *Kernel) FprintPlan(w io.Writer, t reflect.Type) error {
	plan, err := k.planner.GetPlan(t)
	if err != nil {
		return err
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.SetTitle(fmt.Sprintf("Plan for %s", t))
	tw.AppendHeader(table.Row{"Directive", "Member", "Type", "Name", "Optional"})
	for _, target := range plan.Constructor.Targets {
		tw.AppendRow(table.Row{"constructor", fmt.Sprintf("%s #%d", target.Member, target.Position), target.Type, "", false})
	}
	if len(plan.Constructor.Targets) == 0 {
		tw.AppendRow(table.Row{"constructor", plan.Constructor.Constructor.Name, "", "", false})
	}
	for _, d := range plan.Properties {
		tw.AppendRow(table.Row{"property", d.Target.Member, d.Target.Type, d.Target.Name, d.Target.Optional})
	}
	for _, d := range plan.Methods {
		for _, target := range d.Targets {
			tw.AppendRow(table.Row{"method", fmt.Sprintf("%s #%d", target.Member, target.Position), target.Type, "", false})
		}
	}
	tw.Render()
	return nil
}
