package netstate

import (
	"fmt"
	"regexp"
	"sort"

	"rackops/core/utils"
)

// Command is the interface listing command whose output Parse understands.
const Command = "ip a l"

// DefaultIgnored lists the interfaces never considered for reconciliation.
var DefaultIgnored = []string{"lo", "kvm"}

var (
	headerRe = regexp.MustCompile(`^[0-9]+: (?P<iface>[^:@\s]+)`)
	inetRe   = regexp.MustCompile(`inet (?P<cidr>[0-9./]+)`)
	etherRe  = regexp.MustCompile(`link/ether (?P<mac>[0-9a-fA-F:]+)`)
)

// Interface is the observed state of one network interface.
type Interface struct {
	Name  string   `json:"name"`
	Addrs []string `json:"addrs"`
	MAC   string   `json:"mac"`
}

// State maps interface names to their observed state.
type State map[string]*Interface

// ParseError reports output that does not follow the expected listing format.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d (%q): %s", e.Line, e.Text, e.Reason)
}

// Parse builds the interface state from the lines of an `ip a l` listing.
func Parse(lines []string) (State, error) {
	state := make(State)
	var current *Interface

	for i, line := range lines {
		if m := headerRe.FindStringSubmatch(line); m != nil {
			name := m[1]
			current = &Interface{Name: name, Addrs: []string{}, MAC: utils.SentinelMAC}
			state[name] = current
			continue
		}

		if m := etherRe.FindStringSubmatch(line); m != nil {
			if current == nil {
				return nil, &ParseError{Line: i + 1, Text: line, Reason: "link/ether before any interface header"}
			}
			current.MAC = utils.CanonicalMAC(m[1])
		}

		if m := inetRe.FindStringSubmatch(line); m != nil {
			if current == nil {
				return nil, &ParseError{Line: i + 1, Text: line, Reason: "inet before any interface header"}
			}
			current.Addrs = append(current.Addrs, m[1])
		}
	}

	return state, nil
}

// Without returns a copy of the state minus the named interfaces.
func (s State) Without(names ...string) State {
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}

	out := make(State, len(s))
	for name, iface := range s {
		if _, ignored := skip[name]; ignored {
			continue
		}
		out[name] = iface
	}
	return out
}

// Names returns the interface names in sorted order.
func (s State) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
