package models

// Profile is the user profile shown on the profile page.
type Profile struct {
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Age    float64 `json:"age"`
	Weight float64 `json:"weight"`
	Goal   string  `json:"goal"`
}

// FallbackProfile is shown when the backend omits a field or is unreachable.
var FallbackProfile = Profile{
	Name:   "Salar Momeni",
	Email:  "momeni.salar@gmail.com",
	Age:    25,
	Weight: 72,
	Goal:   "Maintain healthy weight",
}

// WithFallbacks fills every empty field from FallbackProfile.
func (p Profile) WithFallbacks() Profile {
	if p.Name == "" {
		p.Name = FallbackProfile.Name
	}
	if p.Email == "" {
		p.Email = FallbackProfile.Email
	}
	if p.Age == 0 {
		p.Age = FallbackProfile.Age
	}
	if p.Weight == 0 {
		p.Weight = FallbackProfile.Weight
	}
	if p.Goal == "" {
		p.Goal = FallbackProfile.Goal
	}
	return p
}
