package nutrition

import (
	"errors"
	"fmt"
	"strings"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

func (a ActivityLevel) Valid() bool {
	_, ok := activityMultipliers[a]
	return ok
}

type Goal string

const (
	GoalLoseWeight Goal = "lose_weight"
	GoalMaintain   Goal = "maintain"
	GoalGainMuscle Goal = "gain_muscle"
)

func (g Goal) Valid() bool {
	switch g {
	case GoalLoseWeight, GoalMaintain, GoalGainMuscle:
		return true
	}
	return false
}

// Domain bounds of a biometric profile, inclusive.
const (
	MinWeight = 20.0
	MaxWeight = 300.0
	MinHeight = 100.0
	MaxHeight = 250.0
	MinAge    = 10
	MaxAge    = 120
)

var (
	ErrIncompleteProfile = errors.New("incomplete profile")
	ErrInvalidDomain     = errors.New("profile field out of domain")
)

// IncompleteProfileError lists the biometric fields that are not set.
type IncompleteProfileError struct {
	Missing []string
}

func (e *IncompleteProfileError) Error() string {
	return fmt.Sprintf("incomplete profile: missing %s", strings.Join(e.Missing, ", "))
}

func (e *IncompleteProfileError) Is(target error) bool {
	return target == ErrIncompleteProfile
}

// InvalidDomainError lists fields that are present but out of range.
type InvalidDomainError struct {
	Fields map[string]string
}

func (e *InvalidDomainError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range profileFields {
		if msg, ok := e.Fields[name]; ok {
			parts = append(parts, name+" "+msg)
		}
	}
	return "invalid profile: " + strings.Join(parts, "; ")
}

func (e *InvalidDomainError) Is(target error) bool {
	return target == ErrInvalidDomain
}

var profileFields = []string{"weight", "height", "age", "gender", "activityLevel", "goal"}

// BiometricProfile is a complete profile, ready for calculation.
type BiometricProfile struct {
	Weight        float64       `json:"weight"`
	Height        float64       `json:"height"`
	Age           int           `json:"age"`
	Gender        Gender        `json:"gender"`
	ActivityLevel ActivityLevel `json:"activityLevel"`
	Goal          Goal          `json:"goal"`
}

// Validate reports every out-of-domain field at once.
func (p BiometricProfile) Validate() error {
	fields := map[string]string{}
	// written as negated ranges so NaN is rejected too
	if !(p.Weight >= MinWeight && p.Weight <= MaxWeight) {
		fields["weight"] = fmt.Sprintf("must be between %.0f and %.0f kg", MinWeight, MaxWeight)
	}
	if !(p.Height >= MinHeight && p.Height <= MaxHeight) {
		fields["height"] = fmt.Sprintf("must be between %.0f and %.0f cm", MinHeight, MaxHeight)
	}
	if p.Age < MinAge || p.Age > MaxAge {
		fields["age"] = fmt.Sprintf("must be between %d and %d", MinAge, MaxAge)
	}
	if !p.Gender.Valid() {
		fields["gender"] = "must be one of male, female, other"
	}
	if !p.ActivityLevel.Valid() {
		fields["activityLevel"] = "must be one of sedentary, light, moderate, active, very_active"
	}
	if !p.Goal.Valid() {
		fields["goal"] = "must be one of lose_weight, maintain, gain_muscle"
	}
	if len(fields) > 0 {
		return &InvalidDomainError{Fields: fields}
	}
	return nil
}

// Profile mirrors the nullable biometric columns of a user.
type Profile struct {
	Weight        *float64       `json:"weight"`
	Height        *float64       `json:"height"`
	Age           *int           `json:"age"`
	Gender        *Gender        `json:"gender"`
	ActivityLevel *ActivityLevel `json:"activityLevel"`
	Goal          *Goal          `json:"goal"`
}

// Biometrics converts a stored profile into a BiometricProfile, failing with
// *IncompleteProfileError when any field is missing. Empty enum strings count
// as missing.
func (p Profile) Biometrics() (BiometricProfile, error) {
	var missing []string
	if p.Weight == nil {
		missing = append(missing, "weight")
	}
	if p.Height == nil {
		missing = append(missing, "height")
	}
	if p.Age == nil {
		missing = append(missing, "age")
	}
	if p.Gender == nil || *p.Gender == "" {
		missing = append(missing, "gender")
	}
	if p.ActivityLevel == nil || *p.ActivityLevel == "" {
		missing = append(missing, "activityLevel")
	}
	if p.Goal == nil || *p.Goal == "" {
		missing = append(missing, "goal")
	}
	if len(missing) > 0 {
		return BiometricProfile{}, &IncompleteProfileError{Missing: missing}
	}

	return BiometricProfile{
		Weight:        *p.Weight,
		Height:        *p.Height,
		Age:           *p.Age,
		Gender:        *p.Gender,
		ActivityLevel: *p.ActivityLevel,
		Goal:          *p.Goal,
	}, nil
}

// FromBiometrics builds a fully populated Profile.
func FromBiometrics(b BiometricProfile) Profile {
	return Profile{
		Weight:        &b.Weight,
		Height:        &b.Height,
		Age:           &b.Age,
		Gender:        &b.Gender,
		ActivityLevel: &b.ActivityLevel,
		Goal:          &b.Goal,
	}
}
