package skills

import (
	"context"

	"github.com/spf13/viper"

	"github.com/skillet-ai/skillet/pkg/logger"
)

// Initialize discovers skills honoring configuration and CLI flags. It
// reads skills.enabled and skills.allowed from config and respects the
// --no-skills flag (bound to no_skills in viper). Returns the discovered
// skills and whether skills are enabled.
func Initialize(ctx context.Context) (map[string]*Skill, bool) {
	if viper.GetBool("no_skills") {
		return nil, false
	}

	enabled := true
	if viper.IsSet("skills.enabled") {
		enabled = viper.GetBool("skills.enabled")
	}
	if !enabled {
		return nil, false
	}

	discovery, err := NewDiscovery()
	if err != nil {
		logger.G(ctx).WithError(err).Debug("Failed to create skill discovery")
		return nil, false
	}

	all, err := discovery.DiscoverSkills()
	if err != nil {
		logger.G(ctx).WithError(err).Debug("Failed to discover skills")
		return nil, false
	}

	if allowed := viper.GetStringSlice("skills.allowed"); len(allowed) > 0 {
		all = FilterByAllowlist(all, allowed)
	}

	return all, true
}
