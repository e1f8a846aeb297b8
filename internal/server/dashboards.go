package server

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/flock/internal/dashboard"
	"github.com/alfredjeanlab/flock/internal/model"
)

// getDashboard builds the dashboard for role. A stored "dashboard:<role>"
// config replaces the role's default capabilities.
func (s *Server) getDashboard(ctx context.Context, role string) (*dashboard.Dashboard, error) {
	r := model.Role(role)
	if !r.IsValid() {
		return nil, notFoundError(fmt.Sprintf("unknown role %q", role))
	}

	override, err := s.store.GetConfig(ctx, dashboard.ConfigKey(r))
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("failed to get dashboard config: %w", err)
	}
	caps, err := dashboard.Resolve(r, override)
	if err != nil {
		return nil, fmt.Errorf("role %s: %w", r, err)
	}

	counts, err := s.store.CountByCollection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	return dashboard.Build(r, caps, counts), nil
}

// roleInfo is one entry of GET /v1/roles.
type roleInfo struct {
	Role         model.Role             `json:"role"`
	Capabilities []dashboard.Capability `json:"capabilities"`
	Overridden   bool                   `json:"overridden"`
}

// listRoles returns every role with its effective capabilities.
func (s *Server) listRoles(ctx context.Context) ([]roleInfo, error) {
	overrides, err := s.store.ListConfigs(ctx, dashboard.ConfigNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list dashboard configs: %w", err)
	}
	byKey := make(map[string]*model.Config, len(overrides))
	for _, c := range overrides {
		byKey[c.Key] = c
	}

	out := make([]roleInfo, 0, len(model.Roles))
	for _, r := range model.Roles {
		cfg := byKey[dashboard.ConfigKey(r)]
		caps, err := dashboard.Resolve(r, cfg)
		if err != nil {
			return nil, fmt.Errorf("role %s: %w", r, err)
		}
		out = append(out, roleInfo{Role: r, Capabilities: caps, Overridden: cfg != nil})
	}
	return out, nil
}
