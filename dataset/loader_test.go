package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

const csvHeader = "Patient ID,Age,Sex,Cholesterol,Blood Pressure,Heart Rate,Diabetes,Family History,Smoking,Obesity," +
	"Alcohol Consumption,Exercise Hours Per Week,Diet,Previous Heart Problems,Medication Use,Stress Level," +
	"Sedentary Hours Per Day,Income,BMI,Triglycerides,Physical Activity Days Per Week,Sleep Hours Per Day," +
	"Country,Continent,Hemisphere,Heart Attack Risk\n"

const (
	row1 = "BMW7812,67,Male,208,158/88,72,0,0,1,0,0,4.168188835,Average,0,0,9,6.615001,261404,31.25123273,286,0,6,Argentina,South America,Southern Hemisphere,0\n"
	row2 = "CZE1114,21,Male,389,165/93,98,1,1,1,1,1,1.813242,Unhealthy,1,0,1,4.963459,285768,27.19497335,235,1,7,Canada,North America,Northern Hemisphere,0\n"
	row3 = "BNI9906,21,Female,324,174/99,72,1,0,0,0,0,2.078353,Healthy,1,1,9,9.463426,235282,28.1762,587,4,4,France,Europe,Northern Hemisphere,0\n"
)

func TestParseCSV(t *testing.T) {
	patients, err := ParseCSV(strings.NewReader(csvHeader + row1 + row2 + row3))
	require.NoError(t, err)
	require.Len(t, patients, 3)

	p := patients[0]
	require.Equal(t, int64(1), p.ID)
	require.Equal(t, "BMW7812", p.Code)
	require.Equal(t, 67, p.Age)
	require.Equal(t, "Male", p.Sex)
	require.Equal(t, 208, p.Cholesterol)
	require.Equal(t, 158, p.SystolicPressure)
	require.Equal(t, 88, p.DiastolicPressure)
	require.Equal(t, 72, p.HeartRate)
	require.Equal(t, 1, p.Smoking)
	require.InDelta(t, 4.168188835, p.ExerciseHoursPerWeek, 1e-5)
	require.Equal(t, "Average", p.Diet)
	require.Equal(t, 9, p.StressLevel)
	require.InDelta(t, 261404, p.Income, 1)
	require.Equal(t, 286, int(p.Triglycerides))
	require.InDelta(t, 6, p.SleepHoursPerDay, 1e-6)
	require.Equal(t, "Argentina", p.Country)
	require.Equal(t, "South America", p.Continent)
	require.Equal(t, "Southern Hemisphere", p.Hemisphere)
	require.Equal(t, 0, p.HeartAttackRisk)

	require.Equal(t, int64(2), patients[1].ID)
	require.Equal(t, int64(3), patients[2].ID)
	require.Equal(t, "Female", patients[2].Sex)
	require.Contains(t, p.String(), "Pressure: 158/88")
}

func TestParseCSV_SkipMalformedRows(t *testing.T) {
	bad1 := strings.Replace(row2, "165/93", "165-93", 1)
	bad2 := strings.Replace(row3, ",21,", ",twenty,", 1)
	bad3 := "short,row\n"
	patients, err := ParseCSV(strings.NewReader(csvHeader + row1 + bad1 + bad2 + bad3 + row3))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformedRow))
	require.Len(t, multierr.Errors(errors.Unwrap(err)), 3)

	require.Len(t, patients, 2)
	require.Equal(t, "BMW7812", patients[0].Code)
	require.Equal(t, int64(1), patients[0].ID)
	require.Equal(t, "BNI9906", patients[1].Code)
	require.Equal(t, int64(2), patients[1].ID)
}

func TestParseCSV_Empty(t *testing.T) {
	patients, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, patients)

	patients, err = ParseCSV(strings.NewReader(csvHeader))
	require.NoError(t, err)
	require.Empty(t, patients)
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte(csvHeader+row1+row2), 0o644))

	patients, err := LoadCSV(dir, DefaultFile)
	require.NoError(t, err)
	require.Len(t, patients, 2)

	_, err = LoadCSV(dir, "absent.csv")
	require.Error(t, err)

	// Escaping the dataset dir is rejected.
	_, err = LoadCSV(dir, "../"+DefaultFile)
	require.Error(t, err)
}
