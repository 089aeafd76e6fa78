package domain

// Role identifies the author of a message turn. The set is closed:
// persisted messages carry RoleUser or RoleAssistant, and RoleSystem exists
// only at the model-capability boundary where topic instructions are
// injected as the leading turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Persistable reports whether r may be stored on a message row. System
// turns are synthesized per call and never persisted.
func (r Role) Persistable() bool {
	return r == RoleUser || r == RoleAssistant
}

func (r Role) String() string { return string(r) }
