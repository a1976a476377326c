package dto

import "time"

// CreatedRes is the response for a successful user creation.
type CreatedRes struct {
	Guid string `json:"guid"`
}

// UserRes is the short projection returned when reading a user by login.
type UserRes struct {
	Name     string     `json:"name"`
	Gender   int        `json:"gender"`
	Birthday *time.Time `json:"birthday,omitempty"`
	IsActive bool       `json:"is_active"`
}

// UserDetailedRes is the projection for the current user and active user lists.
type UserDetailedRes struct {
	Guid      string     `json:"guid"`
	Login     string     `json:"login"`
	Name      string     `json:"name"`
	Gender    int        `json:"gender"`
	Birthday  *time.Time `json:"birthday,omitempty"`
	Admin     bool       `json:"admin"`
	CreatedOn time.Time  `json:"created_on"`
	IsActive  bool       `json:"is_active"`
}

// UserFullRes is the full projection. It never carries the password hash.
type UserFullRes struct {
	Guid       string     `json:"guid"`
	Login      string     `json:"login"`
	Name       string     `json:"name"`
	Gender     int        `json:"gender"`
	Birthday   *time.Time `json:"birthday,omitempty"`
	Admin      bool       `json:"admin"`
	CreatedOn  time.Time  `json:"created_on"`
	CreatedBy  string     `json:"created_by"`
	ModifiedOn *time.Time `json:"modified_on,omitempty"`
	ModifiedBy *string    `json:"modified_by,omitempty"`
	RevokedOn  *time.Time `json:"revoked_on,omitempty"`
	RevokedBy  *string    `json:"revoked_by,omitempty"`
}
