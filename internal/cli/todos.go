package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Makepad-fr/tally/internal/breakdown"
	"github.com/Makepad-fr/tally/internal/model"
	"github.com/Makepad-fr/tally/internal/store"
	"github.com/Makepad-fr/tally/internal/tui"
	"github.com/Makepad-fr/tally/internal/ui"
)

const statsBarWidth = 28

var (
	_ pflag.Value = (*model.Category)(nil)
	_ pflag.Value = (*breakdown.Filter)(nil)
)

func (a *app) addCmd() *cobra.Command {
	category := model.Work
	cmd := &cobra.Command{
		Use:   "add <content...>",
		Short: "Add a todo (content can be multiple words)",
		Example: `  tally add "Buy milk"
  tally add -c private call mum`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			recs, err := s.Append(ctx, strings.Join(args, " "), category)
			if errors.Is(err, model.ErrEmptyContent) {
				return usageError(errors.New("add: empty content"))
			}
			if err != nil {
				return classify(fmt.Errorf("add: %w", err))
			}
			if err := a.settle(ctx, cmd.ErrOrStderr()); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("added #%d %s", len(recs), ui.C(ui.Hex(category.Color()), "#"+category.String())))
			return nil
		},
	}
	cmd.Flags().VarP(&category, "category", "c", "category: work, private or other")
	return cmd
}

func (a *app) lsCmd() *cobra.Command {
	var group bool
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List todos",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			recs, err := s.Load(ctx)
			if err != nil {
				return classify(err)
			}

			t := ui.Current()
			d, _ := recs.Stats()
			lines := []string{
				ui.Header(recs),
				ui.C(t.Muted, ui.ProgressBar(d, len(recs), statsBarWidth)),
				"",
			}
			lines = append(lines, ui.ListLines(recs, group)...)
			lines = append(lines, "", ui.C(t.Muted, "Tip: add with `tally add \"Buy milk\"`"))
			ui.Panel(cmd.OutOrStdout(), lines)
			return nil
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "group output by pending/done")
	return cmd
}

func (a *app) doneCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "done <index> | --id <id>",
		Short: "Toggle done for the todo at a 1-based index",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if (id == "") == (len(args) == 0) {
				return usageError(errors.New("usage: tally done <index> | --id <id>"))
			}
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			var (
				recs model.Collection
				idx  int
			)
			if id != "" {
				recs, err = s.ToggleID(ctx, id)
				if err != nil {
					return classify(fmt.Errorf("done: %w", err))
				}
				idx = recs.IndexOf(id)
			} else {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return usageError(fmt.Errorf("done: not a number: %s", args[0]))
				}
				recs, err = s.Toggle(ctx, n-1)
				if errors.Is(err, store.ErrOutOfRange) {
					have, _ := s.Snapshot()
					ui.Fail(cmd.ErrOrStderr(), fmt.Sprintf("index out of range: have %d, got %d", len(have), n))
					ui.Hint(cmd.ErrOrStderr(), "run `tally ls` to see valid indexes")
					return exitError{code: exitUsage}
				}
				if err != nil {
					return classify(fmt.Errorf("done: %w", err))
				}
				idx = n - 1
			}

			if err := a.settle(ctx, cmd.ErrOrStderr()); err != nil {
				return err
			}
			msg := "marked pending"
			if recs[idx].Completed {
				msg = "marked done"
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("%s: %s", msg, ui.Truncate(recs[idx].Content, 60)))
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "toggle by stable todo id instead of index")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	filter := breakdown.Done
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show how done or pending todos split across categories",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			recs, err := s.Load(ctx)
			if err != nil {
				return classify(err)
			}
			b, err := breakdown.Compute(recs, filter)
			if err != nil {
				return classify(fmt.Errorf("stats: %w", err))
			}
			ui.Panel(cmd.OutOrStdout(), ui.BreakdownLines(b, statsBarWidth))
			return nil
		},
	}
	cmd.Flags().VarP(&filter, "filter", "f", "done or pending")
	return cmd
}

func (a *app) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive list",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			restore := a.quietLogs()
			err = tui.Run(ctx, s)
			restore()
			if err != nil {
				return classify(err)
			}
			return a.settle(ctx, cmd.ErrOrStderr())
		},
	}
}
