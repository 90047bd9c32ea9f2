package domain

// ScreenID scopes one independent session. Any non-empty string is valid.
type ScreenID string

func (s ScreenID) String() string { return string(s) }

// Role is declared once at handshake time and never changes for the connection.
type Role string

const (
	RoleProducer Role = "dashboard"
	RoleConsumer Role = "electron"
)

func (r Role) String() string { return string(r) }

// ParseRole maps the wire value of the role query parameter.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleProducer:
		return RoleProducer, nil
	case RoleConsumer:
		return RoleConsumer, nil
	default:
		return "", ErrInvalidRole
	}
}

// Handshake holds the validated parameters a connection declared.
type Handshake struct {
	ScreenID ScreenID
	Role     Role
}
