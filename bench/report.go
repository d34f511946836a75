package bench

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	return table
}

// RenderResults prints the average milliseconds per phase.
func RenderResults(w io.Writer, results []Result) {
	rows := make([][]string, 0, len(results))
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			rows = append(rows, []string{r.Kind.String(), fmt.Sprintf("%d", r.Items), "0", "-", "-", "-", r.Err.Error()})
			continue
		}
		rows = append(rows, []string{
			r.Kind.String(),
			fmt.Sprintf("%d", r.Items),
			fmt.Sprintf("%d", len(r.InsertMs)),
			fmt.Sprintf("%.3f", r.AvgInsertMs()),
			fmt.Sprintf("%.3f", r.AvgFindMs()),
			fmt.Sprintf("%.3f", r.AvgRemoveMs()),
			"ok",
		})
	}
	table := newTable(w, []string{"Engine", "Items", "Runs", "Insert(ms)", "Find(ms)", "Remove(ms)", "Status"})
	table.AppendBulk(rows)
	table.Render()
}

// RenderPolicyResults prints the insertion cost of every list policy
// and the speedup against the slowest one.
func RenderPolicyResults(w io.Writer, results []PolicyResult) {
	slowest := 0.0
	for i := range results {
		slowest = max(slowest, results[i].AvgMs())
	}
	rows := make([][]string, 0, len(results))
	for i := range results {
		r := &results[i]
		speedup := "-"
		if avgMs := r.AvgMs(); avgMs > 0 {
			speedup = fmt.Sprintf("%.2fx", slowest/avgMs)
		}
		rows = append(rows, []string{
			r.Policy.String(),
			fmt.Sprintf("%t", r.Checked),
			fmt.Sprintf("%d", r.Items),
			fmt.Sprintf("%d", len(r.InsertMs)),
			fmt.Sprintf("%.3f", r.AvgMs()),
			speedup,
		})
	}
	table := newTable(w, []string{"Policy", "Checked", "Items", "Runs", "Insert(ms)", "Speedup"})
	table.AppendBulk(rows)
	table.Render()
}
