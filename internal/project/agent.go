package project

import (
	"strings"

	"github.com/timowlmtn/living-harmonix/pkg/errors"
)

// Recognized agent types. Each agent curates one kind of project and owns a
// template document at <namespace>/agent/<agentType>/project_template.json.
const (
	AgentZenGuide      = "zen_guide"
	AgentPinboardZine  = "pinboard_zine"
	AgentLittleLibrary = "little_library"
	AgentLivingHarmony = "living_harmony"
)

var agentIcons = map[string]string{
	AgentZenGuide:      "☯️",
	AgentPinboardZine:  "📌",
	AgentLittleLibrary: "📚",
	AgentLivingHarmony: "🏡",
}

// ValidateAgentType fails fast with INVALID_AGENT_TYPE for anything outside
// the recognized set. There is no default or fallback agent.
func ValidateAgentType(agentType string) error {
	if _, ok := agentIcons[agentType]; !ok {
		return errors.Newf(errors.ErrCodeInvalidAgentType, "unrecognized agent type %q", agentType)
	}
	return nil
}

// AgentIcon returns the icon for a recognized agent type, or "" otherwise.
func AgentIcon(agentType string) string {
	return agentIcons[agentType]
}

// StripIcon removes a leading "<icon>: " prefix from a display name so the
// icon is never sanitized into the project id or applied twice.
func StripIcon(name string) string {
	for _, icon := range agentIcons {
		name = strings.TrimPrefix(name, icon+": ")
		name = strings.TrimPrefix(name, icon)
	}
	return strings.TrimSpace(name)
}

// DisplayName renders the canonical "<icon>: <name>" form for a recognized
// agent type, stripping any icon already present first.
func DisplayName(agentType, name string) string {
	clean := StripIcon(name)
	icon := agentIcons[agentType]
	if icon == "" {
		return clean
	}
	return icon + ": " + clean
}
