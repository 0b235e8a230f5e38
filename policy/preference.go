package policy

import (
	"fmt"
	"time"
)

// UserPreference is a stored per-user choice for a UserConfigurable tool.
// Preferences for tools with any other static tier may exist in storage (for
// example after a policy table change) but are never consulted.
type UserPreference struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Tool       string     `json:"tool"`
	Preference Preference `json:"preference"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// PreferenceID builds the storage key for a user/tool pair.
func PreferenceID(userID, tool string) string {
	return fmt.Sprintf("%s/%s", userID, tool)
}
