package models

import (
	"fmt"
	"slices"
	"time"
)

// Allowed values for the enumerated profile fields.
var (
	AgeGroups          = []string{"15-20", "21-26", "27-35", "36-50", "51+"}
	Genders            = []string{"Male", "Female", "Other"}
	PreferredLanguages = []string{"English", "Hindi"}
)

// User represents a registered account together with its profile fields.
type User struct {
	ID                int64     `json:"id" db:"id"`
	Username          string    `json:"username" db:"username"`
	PasswordHash      string    `json:"-" db:"hashed_password"` // Never expose this to the client
	Name              *string   `json:"name" db:"name"`
	AgeGroup          *string   `json:"age_group" db:"age_group"`
	Gender            *string   `json:"gender" db:"gender"`
	PreferredLanguage *string   `json:"preferred_language" db:"preferred_language"`
	CreatedAt         time.Time `json:"-" db:"created_at"`
}

// Profile is the non-credential view of a user.
type Profile struct {
	Name              *string `json:"name"`
	AgeGroup          *string `json:"age_group"`
	Gender            *string `json:"gender"`
	PreferredLanguage *string `json:"preferred_language"`
}

// Profile returns the profile fields of the user.
func (u User) Profile() Profile {
	return Profile{
		Name:              u.Name,
		AgeGroup:          u.AgeGroup,
		Gender:            u.Gender,
		PreferredLanguage: u.PreferredLanguage,
	}
}

// ProfileUpdate carries a partial profile change. A nil field means "leave alone".
type ProfileUpdate struct {
	Name              *string `json:"name"`
	AgeGroup          *string `json:"age_group"`
	Gender            *string `json:"gender"`
	PreferredLanguage *string `json:"preferred_language"`
}

// Validate checks the enumerated fields that are set.
func (p ProfileUpdate) Validate() error {
	if err := checkEnum("age_group", p.AgeGroup, AgeGroups); err != nil {
		return err
	}
	if err := checkEnum("gender", p.Gender, Genders); err != nil {
		return err
	}
	return checkEnum("preferred_language", p.PreferredLanguage, PreferredLanguages)
}

// Apply copies every set field of the update onto the user.
func (p ProfileUpdate) Apply(u *User) {
	if p.Name != nil {
		u.Name = p.Name
	}
	if p.AgeGroup != nil {
		u.AgeGroup = p.AgeGroup
	}
	if p.Gender != nil {
		u.Gender = p.Gender
	}
	if p.PreferredLanguage != nil {
		u.PreferredLanguage = p.PreferredLanguage
	}
}

func checkEnum(field string, value *string, allowed []string) error {
	if value == nil || slices.Contains(allowed, *value) {
		return nil
	}
	return fmt.Errorf("%s must be one of %v, got %q", field, allowed, *value)
}
