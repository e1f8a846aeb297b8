package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/flock/internal/dashboard"
	"github.com/alfredjeanlab/flock/internal/events"
	"github.com/alfredjeanlab/flock/internal/model"
)

// builtinConfigs provides saved views that are returned when no
// user-defined config exists for a key. The namespace index groups them by
// prefix so listConfigs can merge them in.
var builtinConfigs = map[string]*model.Config{
	"view:announcements": {
		Key:   "view:announcements",
		Value: json.RawMessage(`{"collection":"blog_post","category":"Announcements","per_page":5}`),
	},
	"view:youth-choir": {
		Key:   "view:youth-choir",
		Value: json.RawMessage(`{"collection":"song","category":"Youth Choir"}`),
	},
	"view:members": {
		Key:   "view:members",
		Value: json.RawMessage(`{"collection":"member","per_page":20,"sort":"title"}`),
	},
	"view:sabbath-reports": {
		Key:   "view:sabbath-reports",
		Value: json.RawMessage(`{"collection":"sabbath_report","sort":"-date"}`),
	},
}

var builtinConfigsByNamespace = func() map[string][]*model.Config {
	m := map[string][]*model.Config{}
	for key, cfg := range builtinConfigs {
		if i := strings.Index(key, ":"); i > 0 {
			ns := key[:i]
			m[ns] = append(m[ns], cfg)
		}
	}
	return m
}()

// validateConfig checks a config key and, for namespaces flock interprets,
// the shape of its value.
func validateConfig(key string, value json.RawMessage) error {
	ns, name, ok := strings.Cut(key, ":")
	if !ok || ns == "" || name == "" {
		return inputError(fmt.Sprintf("config key %q must look like namespace:name", key))
	}
	if len(value) == 0 || !json.Valid(value) {
		return inputError("value must be valid JSON")
	}
	switch ns {
	case dashboard.ConfigNamespace:
		if !model.Role(name).IsValid() {
			return inputError(fmt.Sprintf("unknown role %q", name))
		}
		if _, err := dashboard.ParseOverride(value); err != nil {
			return inputError(err.Error())
		}
	case model.ViewNamespace:
		if _, err := model.ParseSavedView(value); err != nil {
			return inputError(err.Error())
		}
	}
	return nil
}

// setConfig creates or updates a config entry and publishes ConfigSet.
func (s *Server) setConfig(ctx context.Context, key string, value json.RawMessage) (*model.Config, error) {
	if key == "" {
		return nil, inputError("key is required")
	}
	if err := validateConfig(key, value); err != nil {
		return nil, err
	}
	cfg := &model.Config{Key: key, Value: value}
	if err := s.store.SetConfig(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to set config: %w", err)
	}
	s.recordAndPublish(ctx, events.TopicConfigSet, "", "", events.ConfigSet{Config: cfg})
	return cfg, nil
}

// getConfig returns a stored config, falling back to builtin defaults.
func (s *Server) getConfig(ctx context.Context, key string) (*model.Config, error) {
	if key == "" {
		return nil, inputError("key is required")
	}
	cfg, err := s.store.GetConfig(ctx, key)
	if err != nil {
		if isNotFound(err) {
			if builtin, ok := builtinConfigs[key]; ok {
				return builtin, nil
			}
		}
		return nil, err
	}
	return cfg, nil
}

// listConfigs fetches configs from the store and merges in builtin
// defaults that haven't been overridden.
func (s *Server) listConfigs(ctx context.Context, namespace string) ([]*model.Config, error) {
	if namespace == "" {
		return nil, inputError("namespace is required")
	}
	configs, err := s.store.ListConfigs(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}

	stored := make(map[string]struct{}, len(configs))
	for _, c := range configs {
		stored[c.Key] = struct{}{}
	}
	for _, b := range builtinConfigsByNamespace[namespace] {
		if _, ok := stored[b.Key]; !ok {
			configs = append(configs, b)
		}
	}
	if configs == nil {
		configs = []*model.Config{}
	}
	return configs, nil
}

// deleteConfig removes a stored config and publishes ConfigDeleted.
// Builtin defaults cannot be deleted, only shadowed.
func (s *Server) deleteConfig(ctx context.Context, key string) error {
	if key == "" {
		return inputError("key is required")
	}
	if err := s.store.DeleteConfig(ctx, key); err != nil {
		return err
	}
	s.recordAndPublish(ctx, events.TopicConfigDeleted, "", "", events.ConfigDeleted{Key: key})
	return nil
}
