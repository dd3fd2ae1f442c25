// Package schema generates JSON Schemas for catalog document front matter.
package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// SkillFrontMatter describes the YAML header of a skill document.
type SkillFrontMatter struct {
	Name        string `json:"name,omitempty" jsonschema:"description=Declared skill name; defaults to the file stem"`
	Description string `json:"description,omitempty" jsonschema:"description=One-line summary of what the skill covers"`
	AppliesTo   string `json:"applies_to,omitempty" jsonschema:"description=Framework the skill is scoped to"`
	Category    string `json:"category,omitempty" jsonschema:"description=Grouping label within the catalog"`
}

// AgentFrontMatter describes the YAML header of an agent document.
type AgentFrontMatter struct {
	ID           string   `json:"id,omitempty" jsonschema:"description=Stable agent identifier; defaults to the name"`
	Name         string   `json:"name,omitempty" jsonschema:"description=Declared agent name; defaults to the file stem"`
	Description  string   `json:"description,omitempty" jsonschema:"description=One-line summary of the agent's purpose"`
	Tier         string   `json:"tier,omitempty" jsonschema:"enum=core,enum=specialist,enum=domain,description=Matching priority tier"`
	Domain       string   `json:"domain,omitempty" jsonschema:"description=Business domain the agent serves"`
	Triggers     []string `json:"triggers,omitempty" jsonschema:"description=Phrases or glob patterns that activate the agent"`
	Capabilities []string `json:"capabilities,omitempty" jsonschema:"description=Capability labels for discovery"`
}

func generate[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// SkillSchema returns the JSON Schema for skill front matter.
func SkillSchema() *jsonschema.Schema {
	return generate[SkillFrontMatter]()
}

// AgentSchema returns the JSON Schema for agent front matter.
func AgentSchema() *jsonschema.Schema {
	return generate[AgentFrontMatter]()
}

// ForKind returns the schema for "skills" or "agents".
func ForKind(kind string) (*jsonschema.Schema, error) {
	switch kind {
	case "skills", "skill":
		return SkillSchema(), nil
	case "agents", "agent":
		return AgentSchema(), nil
	default:
		return nil, errors.Errorf("unknown document kind %q (expected skill or agent)", kind)
	}
}

// MarshalIndent renders a schema as indented JSON.
func MarshalIndent(s *jsonschema.Schema) (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal schema")
	}
	return string(data), nil
}
