package reconcile

import (
	"context"
	"fmt"
	"strings"

	"rackops/core/inventory"

	"go.uber.org/zap"
)

// OSReleaseCommand prints the Debian release of a machine.
const OSReleaseCommand = "cat /etc/debian_version"

// SyncOSVersions records the OS release of every active machine when the
// inventory has none or a different one.
func (e *Engine) SyncOSVersions(ctx context.Context) (*Report, error) {
	return e.run(ctx, KindOSVersion, func(ctx context.Context, p *pass, m inventory.Machine) {
		p.syncOSVersion(ctx, m)
	})
}

func (p *pass) syncOSVersion(ctx context.Context, m inventory.Machine) {
	out, ok := p.remoteRun(ctx, m, OSReleaseCommand)
	if !ok {
		return
	}
	p.report.Summary.Reached++

	symbol := releaseSymbol(out.Stdout)
	if symbol == "" {
		p.report.Summary.Skipped++
		p.record(Finding{
			Severity: SeverityError,
			Kind:     FindingOSUnreadable,
			Machine:  m.Name,
			Detail:   fmt.Sprintf("Error getting OS version from %s", m.Name),
		})
		return
	}
	if _, known := inventory.OSReleases[symbol]; !known {
		p.record(Finding{
			Severity: SeverityWarning,
			Kind:     FindingOSUnknown,
			Machine:  m.Name,
			Detail:   fmt.Sprintf("Unknown OS version '%s' on %s", symbol, m.Name),
		})
		return
	}

	recorded, err := p.engine.inv.OSVersion(ctx, m.ID)
	if err != nil {
		p.fail(m, FindingQuery, err)
		return
	}

	var f Finding
	switch {
	case !recorded.Present:
		f = Finding{Kind: FindingOSAdded, Detail: fmt.Sprintf("Adding OS version (%s) for %s", symbol, m.Name)}
	case recorded.Symbol != symbol:
		f = Finding{Kind: FindingOSChanged, Detail: fmt.Sprintf("Changing OS version for %s from '%s' to '%s'", m.Name, recorded.Symbol, symbol)}
	default:
		return
	}
	f.Severity = SeverityWrite
	f.Machine = m.Name

	if p.engine.opts.DryRun {
		f.Detail += " (dry run)"
		p.record(f)
		return
	}

	if err := p.engine.inv.SetOSVersion(ctx, m, symbol); err != nil {
		p.engine.logger.Warn("OS version update failed", zap.String("machine", m.Name), zap.Error(err))
		p.record(Finding{Severity: SeverityError, Kind: FindingQuery, Machine: m.Name, Detail: err.Error()})
		return
	}
	p.record(f)
}

// releaseSymbol returns the first character of the version file, or "" when
// the command printed nothing.
func releaseSymbol(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	first := strings.TrimSpace(lines[0])
	if first == "" {
		return ""
	}
	return first[:1]
}
