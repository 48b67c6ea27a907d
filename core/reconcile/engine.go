package reconcile

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"

	"rackops/core/inventory"
	"rackops/core/netstate"
	"rackops/core/remote"

	"go.uber.org/zap"
)

// Inventory is the part of the Racktables store the engine reads and writes.
type Inventory interface {
	ActiveServers(ctx context.Context) ([]inventory.Machine, error)
	RecordedIPs(ctx context.Context, machineID int) (map[string][]string, error)
	RecordedInterfaces(ctx context.Context, machineID int) (map[string]string, error)
	FindAllocation(ctx context.Context, ip string) ([]inventory.Allocation, error)
	Allocate(ctx context.Context, ip string, machineID int, iface string, kind inventory.AllocationKind) error
	OSVersion(ctx context.Context, machineID int) (inventory.OSVersion, error)
	SetOSVersion(ctx context.Context, machine inventory.Machine, symbol string) error
}

// Options tunes a run.
type Options struct {
	// DryRun reports planned writes without performing them.
	DryRun bool
	// Match restricts the run to machines whose name matches.
	Match *regexp.Regexp
	// Ignored lists interface names left out of every decision, in addition
	// to netstate.DefaultIgnored.
	Ignored []string
}

// Engine reconciles machines one at a time. It is not safe for concurrent runs.
type Engine struct {
	inv    Inventory
	exec   remote.Executor
	logger *zap.Logger
	out    io.Writer
	opts   Options
}

// NewEngine creates an engine writing progress lines to out.
func NewEngine(inv Inventory, exec remote.Executor, logger *zap.Logger, out io.Writer, opts Options) *Engine {
	opts.Ignored = ignoredInterfaces(opts.Ignored)
	if out == nil {
		out = io.Discard
	}
	return &Engine{inv: inv, exec: exec, logger: logger, out: out, opts: opts}
}

// ignoredInterfaces returns netstate.DefaultIgnored followed by the extra
// names, without duplicates.
func ignoredInterfaces(extra []string) []string {
	ignored := slices.Clone(netstate.DefaultIgnored)
	for _, name := range extra {
		name = strings.TrimSpace(name)
		if name != "" && !slices.Contains(ignored, name) {
			ignored = append(ignored, name)
		}
	}
	return ignored
}

// machines returns the active machines selected by Options.Match.
func (e *Engine) machines(ctx context.Context) ([]inventory.Machine, error) {
	all, err := e.inv.ActiveServers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active machines: %w", err)
	}
	return inventory.FilterByName(all, e.opts.Match), nil
}

// run visits every selected machine with visit, stopping between machines
// when ctx is cancelled.
func (e *Engine) run(ctx context.Context, kind Kind, visit func(context.Context, *pass, inventory.Machine)) (*Report, error) {
	report := newReport(kind, e.opts.DryRun)

	machines, err := e.machines(ctx)
	if err != nil {
		report.finish()
		return report, err
	}

	e.logger.Info("Reconciliation started",
		zap.String("run_id", report.RunID),
		zap.String("kind", string(kind)),
		zap.Int("machines", len(machines)),
		zap.Bool("dry_run", e.opts.DryRun))

	p := &pass{engine: e, report: report, planned: make(map[string]bool)}
	for _, m := range machines {
		if err := ctx.Err(); err != nil {
			report.finish()
			return report, err
		}
		report.Machines = append(report.Machines, m.Name)
		visit(ctx, p, m)
	}
	report.finish()

	e.logger.Info("Reconciliation finished",
		zap.String("run_id", report.RunID),
		zap.Int("reached", report.Summary.Reached),
		zap.Int("skipped", report.Summary.Skipped),
		zap.Int("writes", report.Summary.Writes),
		zap.Int("conflicts", report.Summary.Conflicts),
		zap.Int("errors", report.Summary.Errors),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)))

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// pass is the state of a single run.
type pass struct {
	engine *Engine
	report *Report
	// planned holds addresses allocated during a dry run, so a later
	// interface does not plan the same address twice.
	planned map[string]bool
}

func (p *pass) header(m inventory.Machine) {
	p.report.Summary.Reached++
	fmt.Fprintf(p.engine.out, "* %s\n", m.Name)
}

// record adds the finding to the report and prints it.
func (p *pass) record(f Finding) {
	p.report.add(f)

	indent := ""
	if p.report.Kind == KindInterfaces && f.Kind != FindingTransport {
		indent = "  "
	}
	fmt.Fprintf(p.engine.out, "%s%s %s\n", indent, f.Severity.Marker(), f.Detail)
}

// fail records a per-machine error and marks the machine skipped.
func (p *pass) fail(m inventory.Machine, kind FindingKind, err error) {
	p.report.Summary.Skipped++
	p.engine.logger.Warn("Machine skipped",
		zap.String("machine", m.Name),
		zap.String("reason", string(kind)),
		zap.Error(err))
	p.record(Finding{Severity: SeverityError, Kind: kind, Machine: m.Name, Detail: err.Error()})
}

// remoteRun runs command on m. A false return means the machine was skipped,
// or the run was cancelled.
func (p *pass) remoteRun(ctx context.Context, m inventory.Machine, command string) (*remote.Output, bool) {
	out, err := p.engine.exec.Run(ctx, m.Name, command)
	if err == nil {
		return out, true
	}
	if ctx.Err() != nil {
		return nil, false
	}
	if !remote.IsTransport(err) {
		err = &remote.TransportError{Host: m.Name, Err: err}
	}
	p.fail(m, FindingTransport, err)
	return nil, false
}
