package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/safeopen"
	"go.uber.org/multierr"

	"github.com/benz9527/xkv/lib/infra"
)

const (
	DefaultDir  = "dataset"
	DefaultFile = "heart_attack_prediction_dataset.csv"

	patientColumns = 26
)

var ErrMalformedRow = errors.New("[dataset] malformed row")

// rowParser reads the columns in order. The first failure sticks,
// the following reads return zero values.
type rowParser struct {
	cols []string
	pos  int
	err  error
}

func (rp *rowParser) next(name string) string {
	if rp.err != nil {
		return ""
	}
	if rp.pos >= len(rp.cols) {
		rp.err = fmt.Errorf("%w: missing column %q", ErrMalformedRow, name)
		return ""
	}
	col := strings.TrimSpace(rp.cols[rp.pos])
	rp.pos++
	return col
}

func (rp *rowParser) str(name string) string {
	return rp.next(name)
}

func (rp *rowParser) atoi(name string) int {
	col := rp.next(name)
	if rp.err != nil {
		return 0
	}
	v, err := strconv.Atoi(col)
	if err != nil {
		rp.err = fmt.Errorf("%w: column %q: %w", ErrMalformedRow, name, err)
	}
	return v
}

func (rp *rowParser) atof(name string) float32 {
	col := rp.next(name)
	if rp.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(col, 32)
	if err != nil {
		rp.err = fmt.Errorf("%w: column %q: %w", ErrMalformedRow, name, err)
	}
	return float32(v)
}

// bloodPressure splits the "systolic/diastolic" column, e.g. 158/88.
func (rp *rowParser) bloodPressure() (int, int) {
	col := rp.next("Blood Pressure")
	if rp.err != nil {
		return 0, 0
	}
	sys, dia, ok := strings.Cut(col, "/")
	if !ok {
		rp.err = fmt.Errorf("%w: column %q: %q", ErrMalformedRow, "Blood Pressure", col)
		return 0, 0
	}
	systolic, err1 := strconv.Atoi(sys)
	diastolic, err2 := strconv.Atoi(dia)
	if err := multierr.Combine(err1, err2); err != nil {
		rp.err = fmt.Errorf("%w: column %q: %w", ErrMalformedRow, "Blood Pressure", err)
	}
	return systolic, diastolic
}

func parsePatient(cols []string) (Patient, error) {
	rp := &rowParser{cols: cols}
	p := Patient{}
	p.Code = rp.str("Patient ID")
	p.Age = rp.atoi("Age")
	p.Sex = rp.str("Sex")
	p.Cholesterol = rp.atoi("Cholesterol")
	p.SystolicPressure, p.DiastolicPressure = rp.bloodPressure()
	p.HeartRate = rp.atoi("Heart Rate")
	p.Diabetes = rp.atoi("Diabetes")
	p.FamilyHistory = rp.atoi("Family History")
	p.Smoking = rp.atoi("Smoking")
	p.Obesity = rp.atoi("Obesity")
	p.Alcohol = rp.atoi("Alcohol Consumption")
	p.ExerciseHoursPerWeek = rp.atof("Exercise Hours Per Week")
	p.Diet = rp.str("Diet")
	p.PreviousHeartProblems = rp.atoi("Previous Heart Problems")
	p.MedicationUse = rp.atoi("Medication Use")
	p.StressLevel = rp.atoi("Stress Level")
	p.SedentaryHoursPerDay = rp.atof("Sedentary Hours Per Day")
	p.Income = rp.atof("Income")
	p.BMI = rp.atof("BMI")
	p.Triglycerides = rp.atof("Triglycerides")
	p.PhysicalActivityPerWeek = rp.atoi("Physical Activity Days Per Week")
	p.SleepHoursPerDay = rp.atof("Sleep Hours Per Day")
	p.Country = rp.str("Country")
	p.Continent = rp.str("Continent")
	p.Hemisphere = rp.str("Hemisphere")
	p.HeartAttackRisk = rp.atoi("Heart Attack Risk")
	return p, rp.err
}

// ParseCSV skips the header line, then parses every row. The IDs are
// assigned 1..n to the accepted rows in the file order.
// The malformed rows are skipped and combined into the returned error,
// the accepted rows are returned anyway.
func ParseCSV(r io.Reader) ([]Patient, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []Patient{}, nil
		}
		return nil, infra.WrapErrorStackWithMessage(err, "[dataset] read header")
	}

	var (
		patients = make([]Patient, 0, 1024)
		skipped  error
		id       = int64(1)
	)
	for row := 1; ; row++ {
		cols, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped = multierr.Append(skipped, fmt.Errorf("row %d: %w", row, err))
				continue
			}
			return patients, infra.WrapErrorStackWithMessage(err, "[dataset] read rows")
		}
		if len(cols) != patientColumns {
			skipped = multierr.Append(skipped, fmt.Errorf("row %d: %w: %d columns", row, ErrMalformedRow, len(cols)))
			continue
		}
		p, err := parsePatient(cols)
		if err != nil {
			skipped = multierr.Append(skipped, fmt.Errorf("row %d: %w", row, err))
			continue
		}
		p.ID = id
		id++
		patients = append(patients, p)
	}
	if skipped != nil {
		return patients, infra.WrapErrorStackWithMessage(skipped, "[dataset] skipped malformed rows")
	}
	return patients, nil
}

// LoadCSV opens the file beneath the dir, a name escaping the dir
// (absolute or with "..") is rejected.
func LoadCSV(dir, name string) ([]Patient, error) {
	f, err := safeopen.OpenBeneath(dir, name)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[dataset] open "+name)
	}
	defer func() {
		_ = f.Close()
	}()
	return ParseCSV(f)
}
