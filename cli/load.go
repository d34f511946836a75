package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benz9527/xkv/dataset"
	"github.com/benz9527/xkv/lib/container"
	"github.com/benz9527/xkv/lib/hrtime"
	"github.com/benz9527/xkv/lib/infra"
)

func newLoadCmd(a *app) *cobra.Command {
	var (
		head int
		id   int64
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the dataset into the configured engine keyed by patient ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd.OutOrStdout(), head, id)
		},
	}
	cmd.Flags().IntVar(&head, "head", 5, "print the first N patients")
	cmd.Flags().Int64Var(&id, "id", 0, "look up a patient by ID, 0 skips the lookup")
	return cmd
}

func (a *app) load(w io.Writer, head int, id int64) error {
	kind, err := container.ParseKind(a.cfg.Engine.Kind)
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, a.cfg.Engine.Kind)
	}
	opts, err := a.cfg.Engine.options()
	if err != nil {
		return err
	}
	c, err := container.New[int64, dataset.Patient](kind, opts...)
	if err != nil {
		return err
	}
	patients, err := a.loadPatients()
	if err != nil {
		return err
	}

	sw := hrtime.StartStopwatch()
	for i := range patients {
		if err = c.Insert(patients[i].ID, patients[i]); err != nil {
			return infra.WrapErrorStackWithMessage(err, fmt.Sprintf("[cli] insert patient %d", patients[i].ID))
		}
	}
	a.logger.Debug("patients inserted",
		zap.String("engine", kind.String()),
		zap.Duration("cost", sw.Elapsed()),
	)
	_, _ = fmt.Fprintf(w, "loaded %d patients into %s\n", c.Len(), kind)

	c.Foreach(func(idx int64, key int64, p dataset.Patient) bool {
		if idx >= int64(head) {
			return false
		}
		_, _ = fmt.Fprintln(w, p.String())
		return true
	})

	if id == 0 {
		return nil
	}
	p, ok := c.Find(id)
	if !ok {
		return infra.NewErrorStack(fmt.Sprintf("[cli] patient %d not found", id))
	}
	_, _ = fmt.Fprintf(w, "found %s (%s)\n", p.String(), p.Code)
	return nil
}
