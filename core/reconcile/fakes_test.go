package reconcile

import (
	"context"
	"errors"

	"rackops/core/inventory"
	"rackops/core/remote"

	"github.com/stretchr/testify/mock"
)

type allocateCall struct {
	IP        string
	MachineID int
	Interface string
	Kind      inventory.AllocationKind
}

// fakeInventory is an in-memory Racktables.
type fakeInventory struct {
	machines    []inventory.Machine
	ips         map[int]map[string][]string
	ports       map[int]map[string]string
	allocations map[string][]inventory.Allocation
	os          map[int]inventory.OSVersion

	allocated []allocateCall
	osWrites  map[int]string

	listErr  error
	queryErr map[int]error
	writeErr error
}

func newFakeInventory(machines ...inventory.Machine) *fakeInventory {
	return &fakeInventory{
		machines:    machines,
		ips:         make(map[int]map[string][]string),
		ports:       make(map[int]map[string]string),
		allocations: make(map[string][]inventory.Allocation),
		os:          make(map[int]inventory.OSVersion),
		osWrites:    make(map[int]string),
		queryErr:    make(map[int]error),
	}
}

func (f *fakeInventory) ActiveServers(context.Context) ([]inventory.Machine, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.machines, nil
}

func (f *fakeInventory) RecordedIPs(_ context.Context, id int) (map[string][]string, error) {
	if err := f.queryErr[id]; err != nil {
		return nil, err
	}
	out := make(map[string][]string)
	for k, v := range f.ips[id] {
		out[k] = append([]string(nil), v...)
	}
	return out, nil
}

func (f *fakeInventory) RecordedInterfaces(_ context.Context, id int) (map[string]string, error) {
	if err := f.queryErr[id]; err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for k, v := range f.ports[id] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeInventory) FindAllocation(_ context.Context, ip string) ([]inventory.Allocation, error) {
	return f.allocations[ip], nil
}

func (f *fakeInventory) Allocate(_ context.Context, ip string, id int, iface string, kind inventory.AllocationKind) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.allocated = append(f.allocated, allocateCall{IP: ip, MachineID: id, Interface: iface, Kind: kind})
	f.allocations[ip] = append(f.allocations[ip], inventory.Allocation{IP: ip, MachineID: id, Interface: iface, Kind: kind})
	return nil
}

func (f *fakeInventory) OSVersion(_ context.Context, id int) (inventory.OSVersion, error) {
	if err := f.queryErr[id]; err != nil {
		return inventory.OSVersion{}, err
	}
	return f.os[id], nil
}

func (f *fakeInventory) SetOSVersion(_ context.Context, m inventory.Machine, symbol string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if _, ok := inventory.OSReleases[symbol]; !ok {
		return inventory.ErrUnknownOSVersion
	}
	f.osWrites[m.ID] = symbol
	return nil
}

// mockExecutor is a testify mock of remote.Executor.
type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Run(ctx context.Context, host, command string) (*remote.Output, error) {
	args := m.Called(ctx, host, command)
	out, _ := args.Get(0).(*remote.Output)
	return out, args.Error(1)
}

func (m *mockExecutor) onRun(host, command string, stdout ...string) {
	m.On("Run", mock.Anything, host, command).Return(&remote.Output{Stdout: stdout, Stderr: []string{}}, nil)
}

func (m *mockExecutor) onFail(host, command string, err error) {
	m.On("Run", mock.Anything, host, command).Return(nil, err)
}

var errDown = errors.New("dial tcp: connection refused")
