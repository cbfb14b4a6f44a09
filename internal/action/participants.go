package action

// Role is an action-scoped role a participant can hold.
type Role string

const (
	RoleGM        Role = "gm"
	RoleInitiator Role = "initiator"
	RolePlayer    Role = "player"
	RoleAssistant Role = "assistant"
	RoleObserver  Role = "observer"
)

// Participant is one user's entry in the participants directory.
type Participant struct {
	UserID string            `json:"user_id"`
	Roles  []Role            `json:"roles,omitempty"`
	Meta   map[string]string `json:"meta,omitempty"`
}

// Participants is the read-only per-call identity data for an action:
// who runs the table, who initiates the roll, and everyone else present.
type Participants struct {
	GMUserID        string            `json:"gm_user_id,omitempty"`
	InitiatorUserID string            `json:"initiator_user_id,omitempty"`
	List            []Participant     `json:"participants,omitempty"`
	Placeholders    map[string]string `json:"placeholders,omitempty"`
}

// RolesFor resolves the role set a user holds for this action. The set is
// never empty: any unmatched user defaults to player.
func (p Participants) RolesFor(userID string) map[Role]bool {
	roles := make(map[Role]bool)

	if p.GMUserID != "" && userID == p.GMUserID {
		roles[RoleGM] = true
	}
	if p.InitiatorUserID != "" && userID == p.InitiatorUserID {
		roles[RoleInitiator] = true
	}
	for _, entry := range p.List {
		if entry.UserID != userID {
			continue
		}
		for _, role := range entry.Roles {
			roles[role] = true
		}
	}

	if len(roles) == 0 {
		roles[RolePlayer] = true
	}
	return roles
}

// Has reports whether the user holds the given role for this action.
func (p Participants) Has(userID string, role Role) bool {
	return p.RolesFor(userID)[role]
}
