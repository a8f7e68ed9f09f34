package enums

import (
	"fmt"
	"strings"
)

// EmployeeRole is the employee's position (puesto).
type EmployeeRole string

const (
	EmployeeRoleManager EmployeeRole = "gerente"
	EmployeeRoleCashier EmployeeRole = "cajero"
)

var validEmployeeRoles = []EmployeeRole{
	EmployeeRoleManager,
	EmployeeRoleCashier,
}

func (r EmployeeRole) String() string {
	return string(r)
}

func (r EmployeeRole) IsValid() bool {
	for _, candidate := range validEmployeeRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsManager reports whether the role may access back-office screens.
func (r EmployeeRole) IsManager() bool {
	return r == EmployeeRoleManager
}

// ParseEmployeeRole converts raw input into an EmployeeRole.
func ParseEmployeeRole(value string) (EmployeeRole, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validEmployeeRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid employee role %q", value)
}
