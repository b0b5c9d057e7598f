package resources

import (
	"fmt"
	"strings"
)

type Role uint8

const (
	RoleUnknown Role = iota
	RoleFarmer
	RoleBuyer
	RoleTransporter
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleFarmer:      "FARMER",
	RoleBuyer:       "BUYER",
	RoleTransporter: "TRANSPORTER",
	RoleAdmin:       "ADMIN",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

func ParseRole(s string) (Role, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for role, name := range roleNames {
		if name == s {
			return role, nil
		}
	}
	return RoleUnknown, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(data []byte) error {
	role, err := ParseRole(string(data))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// Actor is whoever invokes an operation on a contract
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) String() string {
	return fmt.Sprintf("%s(%s)", a.Role, a.ID)
}

// DisplayName is the label recorded in audit trails, e.g. "Farmer"
func (r Role) DisplayName() string {
	name := r.String()
	return name[:1] + strings.ToLower(name[1:])
}
