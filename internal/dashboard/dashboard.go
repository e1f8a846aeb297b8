// Package dashboard builds the per-role landing view. There is one
// dashboard; what a role sees on it is decided by its capability set,
// either the built-in default or an override stored in config under
// "dashboard:<role>".
package dashboard

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/alfredjeanlab/flock/internal/model"
)

// Action is something a role may do with a collection.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Actions lists every action in display order.
var Actions = []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}

// Wildcard matches any collection or any action inside a capability.
const Wildcard = "*"

// ConfigNamespace is the config namespace holding capability overrides.
const ConfigNamespace = "dashboard"

// Capability grants one action on one collection, written
// "<collection>:<action>". Either side may be "*".
type Capability string

// NewCapability returns the capability for action a on collection c.
func NewCapability(c model.Collection, a Action) Capability {
	return Capability(string(c) + ":" + string(a))
}

// Parse splits a capability into its collection and action, validating both.
func (cp Capability) Parse() (string, Action, error) {
	coll, act, ok := strings.Cut(string(cp), ":")
	if !ok {
		return "", "", fmt.Errorf("capability %q: want <collection>:<action>", cp)
	}
	if coll != Wildcard && !model.Collection(coll).IsValid() {
		return "", "", fmt.Errorf("capability %q: unknown collection %q", cp, coll)
	}
	if act != Wildcard && !slices.Contains(Actions, Action(act)) {
		return "", "", fmt.Errorf("capability %q: unknown action %q", cp, act)
	}
	return coll, Action(act), nil
}

// Allows reports whether caps grant action a on collection c.
func Allows(caps []Capability, c model.Collection, a Action) bool {
	for _, cp := range caps {
		coll, act, err := cp.Parse()
		if err != nil {
			continue
		}
		if (coll == Wildcard || coll == string(c)) && (act == Wildcard || act == a) {
			return true
		}
	}
	return false
}

// ConfigKey returns the config key holding role's override.
func ConfigKey(role model.Role) string {
	return ConfigNamespace + ":" + string(role)
}

// Override is the JSON document stored under ConfigKey.
type Override struct {
	Capabilities []Capability `json:"capabilities"`
}

// ParseOverride decodes and validates a stored override. The result
// replaces the role's default set entirely.
func ParseOverride(raw json.RawMessage) ([]Capability, error) {
	var o Override
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("parse dashboard override: %w", err)
	}
	for _, cp := range o.Capabilities {
		if _, _, err := cp.Parse(); err != nil {
			return nil, err
		}
	}
	if o.Capabilities == nil {
		o.Capabilities = []Capability{}
	}
	return o.Capabilities, nil
}

// Resolve returns role's capabilities: the override when one is stored,
// the default set otherwise.
func Resolve(role model.Role, override *model.Config) ([]Capability, error) {
	if override == nil || len(override.Value) == 0 {
		return DefaultCapabilities(role), nil
	}
	return ParseOverride(override.Value)
}

// Section is one collection tile on a dashboard.
type Section struct {
	Collection    model.Collection `json:"collection"`
	Label         string           `json:"label"`
	CategoryLabel string           `json:"category_label"`
	Actions       []Action         `json:"actions"`
	TotalItems    int              `json:"total_items"`
}

// Dashboard is the view model served for a role.
type Dashboard struct {
	Role         model.Role   `json:"role"`
	Capabilities []Capability `json:"capabilities"`
	Sections     []Section    `json:"sections"`
}

// Build lays out one section per collection caps can view, in collection
// order, with the allowed actions and item totals from counts.
func Build(role model.Role, caps []Capability, counts map[model.Collection]int) *Dashboard {
	d := &Dashboard{Role: role, Capabilities: caps, Sections: []Section{}}
	for _, c := range model.Collections {
		if !Allows(caps, c, ActionView) {
			continue
		}
		spec, _ := model.SpecFor(c)
		sec := Section{
			Collection:    c,
			Label:         spec.Label,
			CategoryLabel: spec.CategoryLabel,
			TotalItems:    counts[c],
		}
		for _, a := range Actions {
			if Allows(caps, c, a) {
				sec.Actions = append(sec.Actions, a)
			}
		}
		d.Sections = append(d.Sections, sec)
	}
	return d
}
