package bench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xkv/dataset"
	"github.com/benz9527/xkv/lib/container"
	"github.com/benz9527/xkv/lib/tree"
	"github.com/benz9527/xkv/lib/xlog"
)

func fakePatients(n int) []dataset.Patient {
	patients := make([]dataset.Patient, 0, n)
	for i := 1; i <= n; i++ {
		patients = append(patients, dataset.Patient{
			ID:   int64(i),
			Code: fmt.Sprintf("P%04d", i),
			Age:  20 + i%60,
		})
	}
	return patients
}

func quietLogger() xlog.XLogger {
	return xlog.NewXLogger(
		xlog.WithXLoggerWriter(&bytes.Buffer{}),
		xlog.WithXLoggerLevel(xlog.LogLevelDebug),
	)
}

func TestRun_AllKinds(t *testing.T) {
	results, err := Run(context.Background(), fakePatients(300), Config{
		Items:   200,
		Runs:    2,
		Workers: 2,
		Options: []container.Option{container.WithHashCapacity(64), container.WithSeed(1)},
		Metered: true,
		Logger:  quietLogger(),
	})
	require.NoError(t, err)
	require.Len(t, results, len(container.Kinds()))
	for i, r := range results {
		require.Equal(t, container.Kinds()[i], r.Kind)
		require.NoError(t, r.Err)
		require.Equal(t, 200, r.Items)
		require.Len(t, r.InsertMs, 2)
		require.Len(t, r.FindMs, 2)
		require.Len(t, r.RemoveMs, 2)
		require.GreaterOrEqual(t, r.AvgInsertMs(), 0.0)
	}

	buf := &bytes.Buffer{}
	RenderResults(buf, results)
	for _, kind := range container.Kinds() {
		require.Contains(t, buf.String(), kind.String())
	}
}

func TestRun_EngineFailure(t *testing.T) {
	results, err := Run(context.Background(), fakePatients(50), Config{
		Kinds:   []container.Kind{container.AVLTreeKind, container.HashTableKind},
		Options: []container.Option{container.WithMaxTreeNodes(10)},
		Workers: 2,
		Logger:  quietLogger(),
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, tree.ErrTreeNodesExhausted))
	require.Len(t, results, 2)
	require.Error(t, results[0].Err)
	require.NoError(t, results[1].Err)
	require.Len(t, results[1].InsertMs, 1)

	buf := &bytes.Buffer{}
	RenderResults(buf, results)
	require.Contains(t, buf.String(), "node arena exhausted")
}

func TestRun_InvalidOptionsAndCancel(t *testing.T) {
	_, err := Run(context.Background(), nil, Config{Logger: quietLogger()})
	require.Error(t, err)

	results, err := Run(context.Background(), fakePatients(10), Config{
		Kinds:   []container.Kind{container.SkipListKind},
		Options: []container.Option{container.WithSkipListProbability(2)},
		Logger:  quietLogger(),
	})
	require.Error(t, err)
	require.Error(t, results[0].Err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err = Run(ctx, fakePatients(10), Config{
		Kinds:  []container.Kind{container.SeqListKind},
		Logger: quietLogger(),
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, results[0].InsertMs)
}

func TestCompareListPolicies(t *testing.T) {
	results := CompareListPolicies(500, 2)
	require.Len(t, results, len(defaultPolicyCases))
	for i, r := range results {
		require.Equal(t, defaultPolicyCases[i].policy, r.Policy)
		require.Equal(t, defaultPolicyCases[i].checked, r.Checked)
		require.Equal(t, 500, r.Items)
		require.Len(t, r.InsertMs, 2)
	}

	buf := &bytes.Buffer{}
	RenderPolicyResults(buf, results)
	require.Contains(t, buf.String(), "tail-walk")
	require.Contains(t, buf.String(), "head")
}
