package models

import "strings"

// Member is a user that belongs to a project and can be assigned tasks
type Member struct {
	UserID    int64  `json:"userId" yaml:"userId"`
	FirstName string `json:"firstName" yaml:"firstName"`
	LastName  string `json:"lastName" yaml:"lastName"`
	Email     string `json:"email,omitempty" yaml:"email,omitempty"`
}

// FullName returns "First Last", falling back to the email
func (m Member) FullName() string {
	name := strings.TrimSpace(m.FirstName + " " + m.LastName)
	if name == "" {
		return m.Email
	}
	return name
}
