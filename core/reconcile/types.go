package reconcile

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Kind identifies which reconciliation produced a report.
type Kind string

const (
	// KindInterfaces is the interface, address and MAC reconciliation.
	KindInterfaces Kind = "interfaces"
	// KindOSVersion is the OS release synchronisation.
	KindOSVersion Kind = "os-version"
)

// Severity ranks a finding. It decides the marker printed in front of it.
type Severity string

const (
	SeverityWrite   Severity = "write"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Marker returns the console prefix for the severity.
func (s Severity) Marker() string {
	switch s {
	case SeverityWrite:
		return "+"
	case SeverityWarning:
		return "!"
	default:
		return "!!"
	}
}

// FindingKind classifies what was found.
type FindingKind string

const (
	FindingTransport        FindingKind = "transport_error"
	FindingParse            FindingKind = "parse_error"
	FindingQuery            FindingKind = "query_error"
	FindingAllocated        FindingKind = "allocated"
	FindingConflict         FindingKind = "conflict"
	FindingNoRegistrable    FindingKind = "no_registrable_address"
	FindingMACMismatch      FindingKind = "mac_mismatch"
	FindingUnregisteredPort FindingKind = "unregistered_port"
	FindingMissingPort      FindingKind = "missing_port"
	FindingOSAdded          FindingKind = "os_added"
	FindingOSChanged        FindingKind = "os_changed"
	FindingOSUnknown        FindingKind = "os_unknown"
	FindingOSUnreadable     FindingKind = "os_unreadable"
)

// Finding is one reportable outcome for a machine.
type Finding struct {
	Severity  Severity    `json:"severity"`
	Kind      FindingKind `json:"kind"`
	Machine   string      `json:"machine"`
	Interface string      `json:"interface,omitempty"`
	Address   string      `json:"address,omitempty"`
	Detail    string      `json:"detail"`
}

// Summary aggregates a report.
type Summary struct {
	// Machines is the number of machines selected for the run.
	Machines int `json:"machines"`
	// Reached counts machines whose command output was processed.
	Reached int `json:"reached"`
	// Skipped counts machines dropped after a transport, parse or query error.
	Skipped int `json:"skipped"`
	// Writes counts allocations and OS updates, planned ones included on a dry run.
	Writes    int `json:"writes"`
	Conflicts int `json:"conflicts"`
	Warnings  int `json:"warnings"`
	Errors    int `json:"errors"`
}

// Report is the result of one reconciliation run.
type Report struct {
	RunID      string    `json:"run_id"`
	Kind       Kind      `json:"kind"`
	DryRun     bool      `json:"dry_run"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Machines   []string  `json:"machines"`
	Findings   []Finding `json:"findings"`
	Summary    Summary   `json:"summary"`
}

func newReport(kind Kind, dryRun bool) *Report {
	return &Report{
		RunID:     uuid.New().String(),
		Kind:      kind,
		DryRun:    dryRun,
		StartedAt: time.Now().UTC(),
		Machines:  []string{},
		Findings:  []Finding{},
	}
}

func (r *Report) add(f Finding) {
	r.Findings = append(r.Findings, f)
	switch {
	case f.Severity == SeverityWrite:
		r.Summary.Writes++
	case f.Kind == FindingConflict:
		r.Summary.Conflicts++
	case f.Severity == SeverityWarning:
		r.Summary.Warnings++
	default:
		r.Summary.Errors++
	}
}

func (r *Report) finish() {
	r.FinishedAt = time.Now().UTC()
	r.Summary.Machines = len(r.Machines)
}

// FindingsOf returns the findings of the given kind, in run order.
func (r *Report) FindingsOf(kind FindingKind) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// ObjectName is the key under which the report is archived.
func (r *Report) ObjectName() string {
	return fmt.Sprintf("reports/%s/%s-%s.json", r.Kind, r.StartedAt.Format("20060102T150405Z"), r.RunID)
}

// WriteJSON writes the indented JSON form of the report.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
