package dataset

import (
	"fmt"
	"strings"
)

// Patient is a row of the heart attack prediction dataset.
// ID is assigned by the loader (1..n in the file order), Code is the
// "Patient ID" column of the source file.
type Patient struct {
	ID                      int64
	Code                    string
	Age                     int
	Sex                     string
	Cholesterol             int
	SystolicPressure        int
	DiastolicPressure       int
	HeartRate               int
	Diabetes                int
	FamilyHistory           int
	Smoking                 int
	Obesity                 int
	Alcohol                 int
	ExerciseHoursPerWeek    float32
	Diet                    string
	PreviousHeartProblems   int
	MedicationUse           int
	StressLevel             int
	SedentaryHoursPerDay    float32
	Income                  float32
	BMI                     float32
	Triglycerides           float32
	PhysicalActivityPerWeek int
	SleepHoursPerDay        float32
	Country                 string
	Continent               string
	Hemisphere              string
	HeartAttackRisk         int
}

func (p *Patient) String() string {
	builder := &strings.Builder{}
	_, _ = fmt.Fprintf(builder, "ID: %d, Age: %d, Sex: %s, Cholesterol: %d, Pressure: %d/%d, Heart Rate: %d",
		p.ID, p.Age, p.Sex, p.Cholesterol, p.SystolicPressure, p.DiastolicPressure, p.HeartRate)
	_, _ = fmt.Fprintf(builder, ", Diabetes: %d, Family History: %d, Smoking: %d, Obesity: %d, Alcohol: %d",
		p.Diabetes, p.FamilyHistory, p.Smoking, p.Obesity, p.Alcohol)
	_, _ = fmt.Fprintf(builder, ", Exercise (h/week): %g, Diet: %s, Previous Heart Problems: %d, Medication: %d, Stress: %d",
		p.ExerciseHoursPerWeek, p.Diet, p.PreviousHeartProblems, p.MedicationUse, p.StressLevel)
	_, _ = fmt.Fprintf(builder, ", Sedentary (h/day): %g, Income: %g, BMI: %g, Triglycerides: %g",
		p.SedentaryHoursPerDay, p.Income, p.BMI, p.Triglycerides)
	_, _ = fmt.Fprintf(builder, ", Physical Activity (days/week): %d, Sleep (h/day): %g",
		p.PhysicalActivityPerWeek, p.SleepHoursPerDay)
	_, _ = fmt.Fprintf(builder, ", Country: %s, Continent: %s, Hemisphere: %s, Heart Attack Risk: %d",
		p.Country, p.Continent, p.Hemisphere, p.HeartAttackRisk)
	return builder.String()
}
