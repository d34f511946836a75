package bench

import (
	"github.com/benz9527/xkv/lib/hrtime"
	"github.com/benz9527/xkv/lib/list"
)

// PolicyResult is the insertion cost of n sequential keys by a policy.
// Checked means the duplicate key lookup is enabled (upsert), each
// insertion walks the whole list then.
type PolicyResult struct {
	Policy   list.InsertPolicy
	Checked  bool
	Items    int
	InsertMs []float64
}

func (r *PolicyResult) AvgMs() float64 { return avg(r.InsertMs) }

type policyCase struct {
	policy  list.InsertPolicy
	checked bool
}

var defaultPolicyCases = []policyCase{
	{list.InsertAtTailByWalk, false},
	{list.InsertAtTail, true},
	{list.InsertAtTail, false},
	{list.InsertAtHead, false},
}

// CompareListPolicies inserts 0..items-1 into a fresh list per run.
// The walking tail insertion is O(n^2) in total, the tracked tail and
// the head insertions are O(n).
func CompareListPolicies(items, runs int) []PolicyResult {
	if runs <= 0 {
		runs = 1
	}
	results := make([]PolicyResult, 0, len(defaultPolicyCases))
	for _, pc := range defaultPolicyCases {
		res := PolicyResult{
			Policy:   pc.policy,
			Checked:  pc.checked,
			Items:    items,
			InsertMs: make([]float64, 0, runs),
		}
		for run := 0; run < runs; run++ {
			opts := []list.SeqListOption[int, int]{list.WithSeqListPolicy[int, int](pc.policy)}
			if !pc.checked {
				opts = append(opts, list.WithSeqListTrustedKeys[int, int]())
			}
			l := list.NewSeqList[int, int](opts...)
			sw := hrtime.StartStopwatch()
			for i := 0; i < items; i++ {
				_ = l.Insert(i, i)
			}
			res.InsertMs = append(res.InsertMs, sw.ElapsedMs())
			l.Clear()
		}
		results = append(results, res)
	}
	return results
}
