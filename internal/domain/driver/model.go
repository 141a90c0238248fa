package driver

import (
	"fmt"
	"strings"
)

// Driver is immutable roster reference data.
type Driver struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Team string `json:"team"`
}

func (d Driver) Validate() error {
	if d.ID <= 0 {
		return fmt.Errorf("driver id must be > 0")
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("driver name is required")
	}
	if strings.TrimSpace(d.Team) == "" {
		return fmt.Errorf("driver team is required")
	}
	return nil
}

func (d Driver) FirstName() string {
	parts := strings.Fields(d.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func (d Driver) LastName() string {
	parts := strings.Fields(d.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
