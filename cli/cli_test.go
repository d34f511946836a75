package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const csvHeader = "Patient ID,Age,Sex,Cholesterol,Blood Pressure,Heart Rate,Diabetes,Family History,Smoking,Obesity," +
	"Alcohol Consumption,Exercise Hours Per Week,Diet,Previous Heart Problems,Medication Use,Stress Level," +
	"Sedentary Hours Per Day,Income,BMI,Triglycerides,Physical Activity Days Per Week,Sleep Hours Per Day," +
	"Country,Continent,Hemisphere,Heart Attack Risk\n"

var csvRows = []string{
	"BMW7812,67,Male,208,158/88,72,0,0,1,0,0,4.168188835,Average,0,0,9,6.615001,261404,31.25123273,286,0,6,Argentina,South America,Southern Hemisphere,0\n",
	"CZE1114,21,Male,389,165/93,98,1,1,1,1,1,1.813242,Unhealthy,1,0,1,4.963459,285768,27.19497335,235,1,7,Canada,North America,Northern Hemisphere,0\n",
	"BNI9906,21,Female,324,174/99,72,1,0,0,0,0,2.078353,Healthy,1,1,9,9.463426,235282,28.1762,587,4,4,France,Europe,Northern Hemisphere,0\n",
}

// writeDataset writes n rows cycling the samples, returns the dir.
func writeDataset(t *testing.T, n int, extra string) string {
	t.Helper()
	dir := t.TempDir()
	builder := &strings.Builder{}
	builder.WriteString(csvHeader)
	for i := 0; i < n; i++ {
		builder.WriteString(csvRows[i%len(csvRows)])
	}
	builder.WriteString(extra)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "patients.csv"), []byte(builder.String()), 0o600))
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	root := NewRootCmd()
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestLoad(t *testing.T) {
	dir := writeDataset(t, 3, "")
	stdout, _, err := execute(t,
		"--config", filepath.Join(dir, "missing.yaml"),
		"--dataset-dir", dir,
		"--dataset-file", "patients.csv",
		"load", "--head", "2", "--id", "3",
	)
	require.NoError(t, err)
	require.Contains(t, stdout, "loaded 3 patients into avl")
	require.Contains(t, stdout, "ID: 1, Age: 67")
	require.Contains(t, stdout, "ID: 2, Age: 21")
	require.Contains(t, stdout, "found ID: 3")
	require.Contains(t, stdout, "(BNI9906)")
}

func TestLoad_EveryEngine(t *testing.T) {
	dir := writeDataset(t, 30, "")
	for _, kind := range kindNames() {
		stdout, _, err := execute(t,
			"--config", "",
			"--dataset-dir", dir,
			"--dataset-file", "patients.csv",
			"--engine", kind,
			"--seed", "7",
			"load", "--head", "0", "--id", "30",
		)
		require.NoError(t, err, kind)
		require.Contains(t, stdout, "loaded 30 patients into "+kind)
		require.Contains(t, stdout, "found ID: 30")
	}
}

func TestLoad_MalformedRowsAndMissingID(t *testing.T) {
	dir := writeDataset(t, 2, "XYZ0001,abc\n")
	stdout, stderr, err := execute(t,
		"--config", "",
		"--dataset-dir", dir,
		"--dataset-file", "patients.csv",
		"--log-encoder", "json",
		"load", "--id", "99",
	)
	require.Error(t, err)
	require.Contains(t, err.Error(), "patient 99 not found")
	require.Contains(t, stdout, "loaded 2 patients")
	require.Contains(t, stderr, "dataset partially loaded")
}

func TestLoad_MissingDataset(t *testing.T) {
	_, _, err := execute(t,
		"--config", "",
		"--dataset-dir", t.TempDir(),
		"load",
	)
	require.Error(t, err)
}

func TestConfigFileAndEnv(t *testing.T) {
	dir := writeDataset(t, 5, "")
	cfgFile := filepath.Join(dir, "xkv.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(
		"log:\n  level: error\n"+
			"engine:\n  kind: hash\n  hash_capacity: 2\n"+
			"dataset:\n  dir: "+dir+"\n  file: patients.csv\n",
	), 0o600))

	stdout, stderr, err := execute(t, "--config", cfgFile, "load", "--head", "1")
	require.NoError(t, err)
	require.Contains(t, stdout, "loaded 5 patients into hash")
	require.Empty(t, stderr)

	t.Setenv("XKV_ENGINE_KIND", "skiplist")
	stdout, _, err = execute(t, "--config", cfgFile, "load", "--head", "1")
	require.NoError(t, err)
	require.Contains(t, stdout, "into skiplist")

	// Flags win over the env.
	stdout, _, err = execute(t, "--config", cfgFile, "--engine", "bst", "load", "--head", "1")
	require.NoError(t, err)
	require.Contains(t, stdout, "into bst")
}

func TestInvalidConfig(t *testing.T) {
	dir := writeDataset(t, 1, "")
	cfgFile := filepath.Join(dir, "xkv.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("engine: [\n"), 0o600))
	_, _, err := execute(t, "--config", cfgFile, "version")
	require.Error(t, err)

	_, _, err = execute(t, "--config", "", "--log-level", "verbose", "version")
	require.Error(t, err)

	_, _, err = execute(t, "--config", "", "--dataset-dir", dir, "--dataset-file", "patients.csv", "--engine", "trie", "load")
	require.Error(t, err)

	_, _, err = execute(t, "--config", "", "--dataset-dir", dir, "--dataset-file", "patients.csv", "--list-policy", "middle", "load")
	require.Error(t, err)
}

func TestBench(t *testing.T) {
	dir := writeDataset(t, 60, "")
	stdout, _, err := execute(t,
		"--config", "",
		"--dataset-dir", dir,
		"--dataset-file", "patients.csv",
		"--seed", "1",
		"bench", "--items", "50", "--runs", "2", "--workers", "2",
	)
	require.NoError(t, err)
	for _, kind := range kindNames() {
		require.Contains(t, stdout, kind)
	}
	require.Contains(t, stdout, "INSERT(MS)")
}

func TestBench_PrometheusMetrics(t *testing.T) {
	dir := writeDataset(t, 20, "")
	stdout, _, err := execute(t,
		"--config", "",
		"--dataset-dir", dir,
		"--dataset-file", "patients.csv",
		"bench", "--kinds", "hash,avl", "--runs", "1", "--metrics", "prometheus",
	)
	require.NoError(t, err)
	require.Contains(t, stdout, "xkv_container_ops")
	require.Contains(t, stdout, `engine="avl"`)
	require.NotContains(t, stdout, `engine="bst"`)

	_, _, err = execute(t,
		"--config", "",
		"--dataset-dir", dir,
		"--dataset-file", "patients.csv",
		"bench", "--metrics", "otlp",
	)
	require.Error(t, err)
}

func TestListCmp(t *testing.T) {
	stdout, _, err := execute(t, "--config", "", "listcmp", "--items", "200", "--runs", "1")
	require.NoError(t, err)
	require.Contains(t, stdout, "tail-walk")
	require.Contains(t, stdout, "SPEEDUP")
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "--config", "", "version")
	require.NoError(t, err)
	require.Contains(t, stdout, "xkv dev")
	require.Contains(t, stdout, "avl")
}
