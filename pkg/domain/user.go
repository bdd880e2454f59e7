package domain

import "context"

type User struct {
	ID                string `json:"id" yaml:"id"`
	DisplayName       string `json:"display_name" yaml:"display_name"`
	Mail              string `json:"mail,omitempty" yaml:"mail,omitempty"`
	UserPrincipalName string `json:"user_principal_name,omitempty" yaml:"user_principal_name,omitempty"`
	JobTitle          string `json:"job_title,omitempty" yaml:"job_title,omitempty"`
}

// Mention converts the user into a comment mention
func (u User) Mention() MentionedUser {
	return MentionedUser{ID: u.ID, DisplayName: u.DisplayName}
}

type UserDirectory interface {
	Me(ctx context.Context) (User, error)
	SearchUsers(ctx context.Context, query string, top int32) ([]User, error)
}
