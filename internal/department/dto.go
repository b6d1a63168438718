package department

import (
	"fmt"
	"strings"
)

type CreateDepartmentDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (d *CreateDepartmentDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(d.Name) > 100 {
		return fmt.Errorf("name must be at most 100 characters")
	}
	return nil
}

type UpdateDepartmentDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (d *UpdateDepartmentDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(d.Name) > 100 {
		return fmt.Errorf("name must be at most 100 characters")
	}
	return nil
}

type DepartmentsResponse struct {
	Departments []*Department `json:"departments"`
}
