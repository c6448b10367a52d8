package models

import "time"

// User represents an account in the system
type User struct {
	ID                      string    `json:"id" db:"id"`
	FirstName               string    `json:"firstName" db:"first_name"`
	LastName                string    `json:"lastName" db:"last_name"`
	EmailID                 string    `json:"emailId" db:"email_id"`
	Password                string    `json:"-" db:"password_hash"` // Never expose in JSON
	PhotoURL                *string   `json:"photoUrl,omitempty" db:"photo_url"`
	About                   *string   `json:"about,omitempty" db:"about"`
	Skills                  []string  `json:"skills" db:"skills"`
	Gender                  *string   `json:"gender,omitempty" db:"gender"`
	College                 *string   `json:"college,omitempty" db:"college"`
	Course                  *string   `json:"course,omitempty" db:"course"`
	Branch                  *string   `json:"branch,omitempty" db:"branch"`
	InterestedToConnectWith *string   `json:"interestedToConnectWith,omitempty" db:"interested_to_connect_with"`
	CreatedAt               time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt               time.Time `json:"updatedAt" db:"updated_at"`
}

// UserResponse is what we send to clients (without sensitive data)
type UserResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	EmailID   string    `json:"emailId"`
	PhotoURL  *string   `json:"photoUrl,omitempty"`
	About     *string   `json:"about,omitempty"`
	Skills    []string  `json:"skills"`
	Gender    *string   `json:"gender,omitempty"`
	College   *string   `json:"college,omitempty"`
	Course    *string   `json:"course,omitempty"`
	Branch    *string   `json:"branch,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserCard is the compact profile projection attached to requests,
// connections and message payloads.
type UserCard struct {
	ID        string  `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	PhotoURL  *string `json:"photoUrl,omitempty"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		EmailID:   u.EmailID,
		PhotoURL:  u.PhotoURL,
		About:     u.About,
		Skills:    u.Skills,
		Gender:    u.Gender,
		College:   u.College,
		Course:    u.Course,
		Branch:    u.Branch,
		CreatedAt: u.CreatedAt,
	}
}

// ToCard converts User to UserCard
func (u *User) ToCard() UserCard {
	return UserCard{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		PhotoURL:  u.PhotoURL,
	}
}
