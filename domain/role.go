package domain

import "fmt"

// Role is the closed set of access levels. Keeping it a dedicated type
// forces policy code through exhaustive switches instead of comparing
// raw strings; an unknown role always denies.
type Role uint8

const (
	RoleUser Role = iota
	RoleLeader
	RoleAdmin
)

// ParseRole maps the stored representation to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "USER":
		return RoleUser, nil
	case "LEADER":
		return RoleLeader, nil
	case "ADMIN":
		return RoleAdmin, nil
	default:
		return RoleUser, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "USER"
	case RoleLeader:
		return "LEADER"
	case RoleAdmin:
		return "ADMIN"
	default:
		return "UNKNOWN"
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

func (r *Role) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
