package cli

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/app"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/cli/formatter"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

func newPlanCmd(opts *rootOptions) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "plan <learner-id>",
		Short: "Show the current schedule, generating it when needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sched, err := opts.app.Plan.Generate(cmd.Context(), app.GenerateRequest{
				LearnerID:       args[0],
				ForceRegenerate: refresh,
			})
			if err != nil {
				return err
			}
			return render(cmd, opts, sched, func() string { return formatter.FormatSchedule(sched) })
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Regenerate even if the cached schedule is current")
	return cmd
}

func newSliceCmd(opts *rootOptions) *cobra.Command {
	var start, span int
	var token string
	var interactive bool

	cmd := &cobra.Command{
		Use:   "slice <learner-id>",
		Short: "Show a day range of the schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.NewSliceRequest(args[0])
			req.StartDay = start
			req.PageToken = token
			if cmd.Flags().Changed("span") {
				req.DaySpan = span
			}
			if interactive {
				if opts.jsonOut {
					return errInteractiveJSON
				}
				return runSlicePager(cmd, opts.app.Plan, req)
			}

			slice, err := opts.app.Plan.Slice(cmd.Context(), req)
			if err != nil {
				return err
			}
			return render(cmd, opts, slice, func() string { return formatter.FormatSlice(slice) })
		},
	}

	cmd.Flags().IntVar(&start, "start", 0, "First day offset of the range")
	cmd.Flags().IntVar(&span, "span", app.DefaultSliceSpan, "Number of days in the range")
	cmd.Flags().StringVar(&token, "page-token", "", "Continue from a previous slice")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Page through the schedule in the terminal")
	return cmd
}

func newAdjustCmd(opts *rootOptions) *cobra.Command {
	var days int
	var reason string
	var interactive bool

	cmd := &cobra.Command{
		Use:   "adjust <learner-id> [item]",
		Short: "Move a scheduled item later (positive days) or earlier",
		Long: "Move a scheduled item by a number of days. The item is named by its\n" +
			"stable key (category/module/kind) or by its id in the current schedule.\n" +
			"With --interactive, missing values are asked for in a form.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := adjustFields{reason: reason}
			if len(args) == 2 {
				fields.itemKey = args[1]
			}
			if cmd.Flags().Changed("days") {
				fields.days = strconv.Itoa(days)
			}

			if interactive {
				if opts.jsonOut {
					return errInteractiveJSON
				}
				current, err := opts.app.Plan.Generate(cmd.Context(), app.GenerateRequest{LearnerID: args[0]})
				if err != nil {
					return err
				}
				form := newAdjustForm(current, &fields).
					WithInput(cmd.InOrStdin()).
					WithOutput(cmd.OutOrStdout())
				if err := form.RunWithContext(cmd.Context()); err != nil {
					return err
				}
			} else {
				if fields.itemKey == "" {
					return errors.New("adjust needs an item argument unless --interactive is set")
				}
				if fields.days == "" {
					return errors.New(`required flag "days" not set`)
				}
			}
			req, err := fields.request(args[0])
			if err != nil {
				return err
			}

			sched, err := opts.app.Plan.Adjust(cmd.Context(), req)
			if err != nil {
				return err
			}
			return render(cmd, opts, sched, func() string { return formatter.FormatSchedule(sched) })
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Days to shift the item by")
	cmd.Flags().StringVar(&reason, "reason", "", "Why the item moved")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Ask for the item and shift in a form")
	return cmd
}

func newCompleteCmd(opts *rootOptions) *cobra.Command {
	var score, delta float64
	var notes string

	cmd := &cobra.Command{
		Use:   "complete <learner-id> <item>",
		Short: "Record a finished item and replan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome := domain.CompletionOutcome{RatingDelta: delta, Notes: notes}
			if cmd.Flags().Changed("score") {
				outcome.Score = &score
			}

			sched, err := opts.app.Plan.CompleteItem(cmd.Context(), app.CompleteRequest{
				LearnerID: args[0],
				ItemID:    args[1],
				Outcome:   outcome,
			})
			if err != nil {
				return err
			}
			return render(cmd, opts, sched, func() string { return formatter.FormatSchedule(sched) })
		},
	}

	cmd.Flags().Float64Var(&score, "score", 0, "Assessment score between 0 and 1")
	cmd.Flags().Float64Var(&delta, "delta", 0, "Rating change reported by the grader")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	return cmd
}
