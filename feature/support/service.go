package support

import (
	"context"
	"time"

	"rackops/core/inventory"

	"go.uber.org/zap"
)

// Inventory is the part of the Racktables store the report reads.
type Inventory interface {
	PhysicalServers(ctx context.Context) ([]inventory.Machine, error)
	HasTag(ctx context.Context, machineID int, tags ...string) (bool, error)
	AttributeString(ctx context.Context, machineID int, attr inventory.Attribute) (string, error)
	AttributeUint(ctx context.Context, machineID int, attr inventory.Attribute) (uint32, bool, error)
	DictionaryValue(ctx context.Context, machineID int, attr inventory.Attribute) (string, error)
}

// Row is the maintenance status of one physical server.
type Row struct {
	ServiceTag string `json:"service_tag"`
	Server     string `json:"server"`
	Model      string `json:"model"`
	// Support and Hardware are YYYY-MM-DD dates, empty when unknown.
	Support  string `json:"support"`
	Hardware string `json:"hardware"`
}

// Service builds the maintenance and support report.
type Service struct {
	inv    Inventory
	logger *zap.Logger
	loc    *time.Location
}

// NewService creates a report service. Dates are shown in loc; nil means local time.
func NewService(inv Inventory, logger *zap.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{inv: inv, logger: logger, loc: loc}
}

// Rows returns one row per physical server that is not retired, in name order.
func (s *Service) Rows(ctx context.Context) ([]Row, error) {
	servers, err := s.inv.PhysicalServers(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(servers))
	for _, m := range servers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		retired, err := s.inv.HasTag(ctx, m.ID, inventory.TagRetired)
		if err != nil {
			return nil, err
		}
		if retired {
			continue
		}

		row, err := s.row(ctx, m)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	s.logger.Debug("Support report built", zap.Int("servers", len(servers)), zap.Int("rows", len(rows)))
	return rows, nil
}

func (s *Service) row(ctx context.Context, m inventory.Machine) (Row, error) {
	tag, err := s.inv.AttributeString(ctx, m.ID, inventory.AttrOEMSerial)
	if err != nil {
		return Row{}, err
	}
	model, err := s.inv.DictionaryValue(ctx, m.ID, inventory.AttrHWType)
	if err != nil {
		return Row{}, err
	}
	supportEnd, err := s.date(ctx, m.ID, inventory.AttrSupportEnd)
	if err != nil {
		return Row{}, err
	}
	hwEnd, err := s.date(ctx, m.ID, inventory.AttrHWWarrantyEnd)
	if err != nil {
		return Row{}, err
	}

	return Row{ServiceTag: tag, Server: m.Name, Model: model, Support: supportEnd, Hardware: hwEnd}, nil
}

// date formats a timestamp attribute; unset and zero both give "".
func (s *Service) date(ctx context.Context, machineID int, attr inventory.Attribute) (string, error) {
	ts, ok, err := s.inv.AttributeUint(ctx, machineID, attr)
	if err != nil || !ok || ts == 0 {
		return "", err
	}
	return time.Unix(int64(ts), 0).In(s.loc).Format("2006-01-02"), nil
}
