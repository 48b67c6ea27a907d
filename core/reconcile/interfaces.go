package reconcile

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"rackops/core/inventory"
	"rackops/core/netstate"
	"rackops/core/utils"

	"go.uber.org/zap"
)

// ReconcileInterfaces compares the interfaces, addresses and MACs of every
// active machine with the inventory. Free addresses on new interfaces are
// allocated, everything else is reported.
func (e *Engine) ReconcileInterfaces(ctx context.Context) (*Report, error) {
	return e.run(ctx, KindInterfaces, func(ctx context.Context, p *pass, m inventory.Machine) {
		p.reconcileInterfaces(ctx, m)
	})
}

func (p *pass) reconcileInterfaces(ctx context.Context, m inventory.Machine) {
	out, ok := p.remoteRun(ctx, m, netstate.Command)
	if !ok {
		return
	}
	p.header(m)

	observed, err := netstate.Parse(out.Stdout)
	if err != nil {
		p.fail(m, FindingParse, err)
		return
	}
	ignored := p.engine.opts.Ignored
	observed = observed.Without(ignored...)

	recordedIPs, err := p.engine.inv.RecordedIPs(ctx, m.ID)
	if err != nil {
		p.fail(m, FindingQuery, err)
		return
	}
	recordedPorts, err := p.engine.inv.RecordedInterfaces(ctx, m.ID)
	if err != nil {
		p.fail(m, FindingQuery, err)
		return
	}
	for _, name := range ignored {
		delete(recordedIPs, name)
		delete(recordedPorts, name)
	}

	p.engine.logger.Debug("Interfaces loaded",
		zap.String("machine", m.Name),
		zap.Strings("observed", observed.Names()),
		zap.Int("recorded_interfaces", len(recordedIPs)),
		zap.Int("recorded_ports", len(recordedPorts)))

	p.checkPorts(m, observed, recordedIPs, recordedPorts)

	for _, name := range observed.Names() {
		iface := observed[name]
		recorded := recordedIPs[name]
		if len(recorded) == 0 {
			if len(iface.Addrs) > 0 {
				p.registerNew(ctx, m, iface)
			}
			continue
		}
		p.registerKnown(ctx, m, iface, recorded)
	}
}

// checkPorts reports MAC mismatches and interfaces without a port record.
// It never writes.
func (p *pass) checkPorts(m inventory.Machine, observed netstate.State, recordedIPs map[string][]string, recordedPorts map[string]string) {
	withIPs := make([]string, 0, len(recordedIPs))
	for name := range recordedIPs {
		withIPs = append(withIPs, name)
	}
	slices.Sort(withIPs)

	for _, name := range withIPs {
		if _, ok := recordedPorts[name]; !ok {
			p.record(Finding{
				Severity:  SeverityWarning,
				Kind:      FindingMissingPort,
				Machine:   m.Name,
				Interface: name,
				Detail:    fmt.Sprintf("%s has recorded addresses but no port", name),
			})
		}
	}

	for _, name := range observed.Names() {
		iface := observed[name]
		mac, ok := recordedPorts[name]
		if !ok {
			if _, hasIPs := recordedIPs[name]; !hasIPs {
				p.record(Finding{
					Severity:  SeverityWarning,
					Kind:      FindingUnregisteredPort,
					Machine:   m.Name,
					Interface: name,
					Detail:    fmt.Sprintf("%s port is not registered (MAC %s)", name, iface.MAC),
				})
			}
			continue
		}
		if mac != iface.MAC {
			p.record(Finding{
				Severity:  SeverityWarning,
				Kind:      FindingMACMismatch,
				Machine:   m.Name,
				Interface: name,
				Detail:    fmt.Sprintf("%s MAC mismatch: observed %s, recorded %s", name, iface.MAC, mac),
			})
		}
	}
}

// registerNew handles an interface the inventory has no addresses for. Only
// its first registrable address is considered.
func (p *pass) registerNew(ctx context.Context, m inventory.Machine, iface *netstate.Interface) {
	addr := ""
	for _, cidr := range iface.Addrs {
		if utils.IsHostRoute(cidr) {
			continue
		}
		a, _, err := utils.SplitCIDR(cidr)
		if err != nil {
			continue
		}
		addr = a
		break
	}
	if addr == "" {
		p.record(Finding{
			Severity:  SeverityWarning,
			Kind:      FindingNoRegistrable,
			Machine:   m.Name,
			Interface: iface.Name,
			Detail:    fmt.Sprintf("%s is not registered and has no registrable address [%s]", iface.Name, strings.Join(iface.Addrs, ", ")),
		})
		return
	}

	owners, err := p.owners(ctx, addr)
	if err != nil {
		p.queryFailed(m, iface.Name, addr, err)
		return
	}
	if len(owners) > 0 {
		p.record(Finding{
			Severity:  SeverityError,
			Kind:      FindingConflict,
			Machine:   m.Name,
			Interface: iface.Name,
			Address:   addr,
			Detail:    fmt.Sprintf("%s %s is not registered and conflicts with %s", iface.Name, addr, strings.Join(owners, ", ")),
		})
		return
	}

	p.allocate(ctx, m, iface.Name, addr)
}

// registerKnown allocates the observed addresses of a known interface that
// are not recorded, not host routes and not held by any machine.
func (p *pass) registerKnown(ctx context.Context, m inventory.Machine, iface *netstate.Interface, recorded []string) {
	for _, cidr := range iface.Addrs {
		if utils.IsHostRoute(cidr) {
			continue
		}
		addr, _, err := utils.SplitCIDR(cidr)
		if err != nil || slices.Contains(recorded, addr) {
			continue
		}

		owners, err := p.owners(ctx, addr)
		if err != nil {
			p.queryFailed(m, iface.Name, addr, err)
			continue
		}
		if len(owners) > 0 {
			continue
		}

		p.allocate(ctx, m, iface.Name, addr)
	}
}

// owners lists "machine:interface" for every holder of addr. Addresses
// planned during a dry run count as held.
func (p *pass) owners(ctx context.Context, addr string) ([]string, error) {
	allocs, err := p.engine.inv.FindAllocation(ctx, addr)
	if err != nil {
		return nil, err
	}

	owners := make([]string, 0, len(allocs))
	for _, a := range allocs {
		name := a.MachineName
		if name == "" {
			name = fmt.Sprintf("object %d", a.MachineID)
		}
		owners = append(owners, name+":"+a.Interface)
	}
	if len(owners) == 0 && p.planned[addr] {
		owners = append(owners, "an earlier interface of this run")
	}
	return owners, nil
}

func (p *pass) allocate(ctx context.Context, m inventory.Machine, iface, addr string) {
	if p.engine.opts.DryRun {
		p.planned[addr] = true
		p.record(Finding{
			Severity:  SeverityWrite,
			Kind:      FindingAllocated,
			Machine:   m.Name,
			Interface: iface,
			Address:   addr,
			Detail:    fmt.Sprintf("%s %s would be allocated (dry run)", iface, addr),
		})
		return
	}

	if err := p.engine.inv.Allocate(ctx, addr, m.ID, iface, inventory.AllocationRegular); err != nil {
		p.queryFailed(m, iface, addr, err)
		return
	}

	p.engine.logger.Info("Address allocated",
		zap.String("machine", m.Name),
		zap.String("interface", iface),
		zap.String("address", addr))
	p.record(Finding{
		Severity:  SeverityWrite,
		Kind:      FindingAllocated,
		Machine:   m.Name,
		Interface: iface,
		Address:   addr,
		Detail:    fmt.Sprintf("%s %s allocated", iface, addr),
	})
}

// queryFailed reports a store failure for one address. The machine is not
// skipped: other interfaces are still processed.
func (p *pass) queryFailed(m inventory.Machine, iface, addr string, err error) {
	p.engine.logger.Warn("Inventory query failed",
		zap.String("machine", m.Name),
		zap.String("address", addr),
		zap.Error(err))
	p.record(Finding{
		Severity:  SeverityError,
		Kind:      FindingQuery,
		Machine:   m.Name,
		Interface: iface,
		Address:   addr,
		Detail:    fmt.Sprintf("%s %s: %v", iface, addr, err),
	})
}
