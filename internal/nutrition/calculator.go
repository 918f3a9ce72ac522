package nutrition

import "math"

type BMICategory string

const (
	BMIUnderweight BMICategory = "underweight"
	BMINormal      BMICategory = "normal"
	BMIOverweight  BMICategory = "overweight"
	BMIObese       BMICategory = "obese"
)

var bmiLabels = map[BMICategory]string{
	BMIUnderweight: "Insuffisance pondérale",
	BMINormal:      "Poids normal",
	BMIOverweight:  "Surpoids",
	BMIObese:       "Obésité",
}

// Label is the French display string for the category.
func (c BMICategory) Label() string {
	return bmiLabels[c]
}

type Macros struct {
	Proteins int `json:"proteins"`
	Carbs    int `json:"carbs"`
	Fats     int `json:"fats"`
}

// Targets is the daily plan derived from a profile.
type Targets struct {
	DailyCalorieTarget int         `json:"dailyCalorieTarget"`
	DailyProteinTarget int         `json:"dailyProteinTarget"`
	DailyCarbsTarget   int         `json:"dailyCarbsTarget"`
	DailyFatsTarget    int         `json:"dailyFatsTarget"`
	BMI                float64     `json:"bmi"`
	BMICategory        BMICategory `json:"bmiCategory"`
	BMICategoryLabel   string      `json:"bmiCategoryLabel"`
	Recommendations    []string    `json:"recommendations"`
}

type macroRatio struct {
	protein, carbs, fats float64
}

var macroRatios = map[Goal]macroRatio{
	GoalLoseWeight: {0.35, 0.35, 0.30},
	GoalGainMuscle: {0.30, 0.45, 0.25},
	GoalMaintain:   {0.25, 0.50, 0.25},
}

// Calculate validates p and derives its targets and recommendations.
func Calculate(p BiometricProfile) (Targets, error) {
	if err := p.Validate(); err != nil {
		return Targets{}, err
	}

	calories := CalorieTarget(p)
	macros := ComputeMacros(calories, p.Goal)
	bmi, category := BMI(p.Weight, p.Height)

	return Targets{
		DailyCalorieTarget: calories,
		DailyProteinTarget: macros.Proteins,
		DailyCarbsTarget:   macros.Carbs,
		DailyFatsTarget:    macros.Fats,
		BMI:                bmi,
		BMICategory:        category,
		BMICategoryLabel:   category.Label(),
		Recommendations:    Recommendations(p, bmi),
	}, nil
}

// BMR is the Mifflin-St Jeor basal metabolic rate in kcal/day. The "other"
// gender uses the female constant.
func BMR(p BiometricProfile) float64 {
	base := 10*p.Weight + 6.25*p.Height - 5*float64(p.Age)
	if p.Gender == GenderMale {
		return base + 5
	}
	return base - 161
}

// TDEE scales BMR by the activity multiplier.
func TDEE(p BiometricProfile) int {
	return roundHalfUp(BMR(p) * activityMultipliers[p.ActivityLevel])
}

// CalorieTarget applies the goal adjustment to TDEE.
func CalorieTarget(p BiometricProfile) int {
	tdee := TDEE(p)
	switch p.Goal {
	case GoalLoseWeight:
		return roundHalfUp(float64(tdee) * 0.8)
	case GoalGainMuscle:
		return roundHalfUp(float64(tdee) * 1.1)
	default:
		return tdee
	}
}

// ComputeMacros splits calories into gram targets. Each macro is rounded on
// its own so the three need not add back up to calories.
func ComputeMacros(calories int, goal Goal) Macros {
	ratio, ok := macroRatios[goal]
	if !ok {
		ratio = macroRatios[GoalMaintain]
	}
	c := float64(calories)
	return Macros{
		Proteins: roundHalfUp(c * ratio.protein / 4),
		Carbs:    roundHalfUp(c * ratio.carbs / 4),
		Fats:     roundHalfUp(c * ratio.fats / 9),
	}
}

// BMI returns the index rounded to one decimal and its category. The
// category is derived from the unrounded value.
func BMI(weight, height float64) (float64, BMICategory) {
	m := height / 100
	bmi := weight / (m * m)

	var category BMICategory
	switch {
	case bmi < 18.5:
		category = BMIUnderweight
	case bmi < 25:
		category = BMINormal
	case bmi < 30:
		category = BMIOverweight
	default:
		category = BMIObese
	}
	return math.Floor(bmi*10+0.5) / 10, category
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
