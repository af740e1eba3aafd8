package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleDriver   Role = "driver"
	RoleCustomer Role = "customer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleDriver || r == RoleCustomer
}

// Profile holds the mutable part of a user.
type Profile struct {
	FirstName  string  `json:"firstName,omitempty"`
	LastName   string  `json:"lastName,omitempty"`
	Email      string  `json:"email,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	Avatar     string  `json:"avatar,omitempty"`
	Rating     float64 `json:"rating"`
	TotalTrips int     `json:"totalTrips"`
	Bio        string  `json:"bio,omitempty"`
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Profile      Profile   `json:"profile"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DisplayName is "First Last" when the profile carries a name, otherwise the username.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.Profile.FirstName + " " + u.Profile.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// ProfilePatch carries optional profile field updates. Nil fields are left untouched.
type ProfilePatch struct {
	FirstName  *string  `json:"firstName"`
	LastName   *string  `json:"lastName"`
	Email      *string  `json:"email"`
	Phone      *string  `json:"phone"`
	Avatar     *string  `json:"avatar"`
	Rating     *float64 `json:"rating"`
	TotalTrips *int     `json:"totalTrips"`
	Bio        *string  `json:"bio"`
}

func (p ProfilePatch) Apply(profile *Profile) {
	if p.FirstName != nil {
		profile.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		profile.LastName = *p.LastName
	}
	if p.Email != nil {
		profile.Email = *p.Email
	}
	if p.Phone != nil {
		profile.Phone = *p.Phone
	}
	if p.Avatar != nil {
		profile.Avatar = *p.Avatar
	}
	if p.Rating != nil {
		profile.Rating = *p.Rating
	}
	if p.TotalTrips != nil {
		profile.TotalTrips = *p.TotalTrips
	}
	if p.Bio != nil {
		profile.Bio = *p.Bio
	}
}
