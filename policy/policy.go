package policy

// Tier classifies a tool by the approval its invocation requires.
type Tier string

const (
	// TierAutoApprove executes immediately without human involvement.
	TierAutoApprove Tier = "auto_approve"

	// TierRequiresApproval always queues the call for a human decision.
	TierRequiresApproval Tier = "requires_approval"

	// TierUserConfigurable lets each user choose between the two concrete
	// tiers; with no stored choice the tool's configured default applies.
	TierUserConfigurable Tier = "user_configurable"
)

// Preference is a user's stored choice for a UserConfigurable tool.
type Preference string

const (
	PreferenceAuto             Preference = "auto"
	PreferenceRequiresApproval Preference = "requires_approval"
)

// Valid reports whether the preference is one of the two supported values.
func (p Preference) Valid() bool {
	return p == PreferenceAuto || p == PreferenceRequiresApproval
}

// Tier maps the preference to the concrete tier it selects.
func (p Preference) Tier() Tier {
	if p == PreferenceAuto {
		return TierAutoApprove
	}
	return TierRequiresApproval
}

// ToolPolicy is the static classification of one tool. The table of policies
// is compiled in and never modified at runtime.
type ToolPolicy struct {
	Name string `json:"name" yaml:"name"`
	Tier Tier   `json:"tier" yaml:"tier"`

	// ConfigurableDefault is the concrete tier applied when Tier is
	// UserConfigurable and the user stored no preference (or the preference
	// could not be read). Ignored for the other tiers.
	ConfigurableDefault Tier `json:"configurableDefault,omitempty" yaml:"configurableDefault,omitempty"`
}

// Fallback is the policy applied to any tool name absent from the table.
// Unknown tools are fail-safe by construction: they always require approval.
var Fallback = ToolPolicy{Tier: TierRequiresApproval, ConfigurableDefault: TierRequiresApproval}

// Table maps tool names to their static policies.
type Table map[string]ToolPolicy

// Lookup returns the policy for a tool name, or Fallback when unknown.
func (t Table) Lookup(name string) ToolPolicy {
	if p, ok := t[name]; ok {
		if p.Name == "" {
			p.Name = name
		}
		if p.Tier == TierUserConfigurable && p.ConfigurableDefault == "" {
			p.ConfigurableDefault = TierRequiresApproval
		}
		return p
	}
	p := Fallback
	p.Name = name
	return p
}

// DefaultTable returns the compiled-in policy table covering the built-in
// tools plus the external tool names the surrounding runtime is known to
// propose.
func DefaultTable() Table {
	return Table{
		"get_tasks":          {Tier: TierAutoApprove},
		"add_task":           {Tier: TierUserConfigurable, ConfigurableDefault: TierAutoApprove},
		"file_read":          {Tier: TierUserConfigurable, ConfigurableDefault: TierAutoApprove},
		"file_write":         {Tier: TierRequiresApproval},
		"file_delete":        {Tier: TierRequiresApproval},
		"system_exec":        {Tier: TierRequiresApproval},
		"gmail_send_message": {Tier: TierRequiresApproval},
		"conversation_reply": {Tier: TierRequiresApproval},
	}
}
