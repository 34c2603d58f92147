package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/accredit/internal/analytics"
	"github.com/JaimeStill/accredit/internal/compliance"
	"github.com/JaimeStill/accredit/internal/config"
	"github.com/JaimeStill/accredit/internal/explain"
	"github.com/JaimeStill/accredit/internal/guard"
	"github.com/JaimeStill/accredit/internal/kpi"
	"github.com/JaimeStill/accredit/internal/scoring"
)

type app struct {
	out     io.Writer
	errOut  io.Writer
	format  string
	workers int
	verbose bool
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "accredit",
		Short:         "Score accreditation evidence and analyze KPI history offline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validFormat(a.format)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVarP(&a.format, "output", "o", formatText, "output format: text, json or yaml")
	root.PersistentFlags().IntVar(&a.workers, "workers", 0, "scoring worker limit (0 uses one per CPU)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log scoring progress to stderr")

	root.AddCommand(
		a.scoreCmd(),
		a.explainCmd(),
		a.trendCmd(),
		a.forecastCmd(),
		a.kpisCmd(),
	)

	return root
}

func (a *app) logger() *slog.Logger {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
}

func (a *app) engine() (*scoring.Engine, error) {
	cfg := &config.ScoringConfig{
		KPIWorkers:        a.workers,
		SubmissionWorkers: a.workers,
	}
	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("scoring config: %w", err)
	}
	return scoring.New(cfg, nil, a.logger()), nil
}

// scored is one fixture submission after scoring.
type scored struct {
	Label   string            `json:"submission"`
	Set     *kpi.ScoreSet     `json:"score_set,omitempty"`
	Flags   []compliance.Flag `json:"compliance_flags,omitempty"`
	Error   string            `json:"error,omitempty"`
	outcome *scoring.Outcome
}

func (a *app) scoreFile(ctx context.Context, path string) ([]scored, error) {
	fx, err := loadFixture(path)
	if err != nil {
		return nil, err
	}

	inputs, err := fx.inputs()
	if err != nil {
		return nil, err
	}

	engine, err := a.engine()
	if err != nil {
		return nil, err
	}

	results := engine.ScoreAll(ctx, inputs)

	out := make([]scored, len(results))
	for i, r := range results {
		out[i].Label = fx.Submissions[i].label(i)
		if r.Err != nil {
			out[i].Error = r.Err.Error()
			continue
		}
		out[i].Set = &r.Outcome.Set
		out[i].Flags = r.Outcome.Flags
		out[i].outcome = r.Outcome
	}
	return out, nil
}

func (a *app) scoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score FIXTURE",
		Short: "Score every submission in a fixture file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.scoreFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(a.out, a.format, results, func(w io.Writer) error {
				return writeScores(w, results)
			})
		},
	}
}

func writeScores(w io.Writer, results []scored) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\trejected\t%s\n", r.Label, r.Error)
			continue
		}

		s := r.Set
		fmt.Fprintf(tw, "%s\t%s/%s\t%s\t%s\t%s\toverall %s\n",
			r.Label, s.InstitutionID, s.DepartmentID, s.AcademicYear,
			s.Framework.Title(), s.Status, s.Overall)
		if s.InvalidReason != "" {
			fmt.Fprintf(tw, "\treason\t%s\n", s.InvalidReason)
		}

		ids := make([]string, 0, len(s.Results))
		for id := range s.Results {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			fmt.Fprintf(tw, "\t%s\t%s\n", id, s.Results[id].Value)
		}

		for _, f := range r.Flags {
			fmt.Fprintf(tw, "\tflag %s\t%s\t%s\n", f.RuleID, f.Severity, f.Message)
		}
	}

	return tw.Flush()
}

func (a *app) explainCmd() *cobra.Command {
	var submission, kpiID string

	cmd := &cobra.Command{
		Use:   "explain FIXTURE",
		Short: "Explain one KPI of one submission with its cited evidence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.scoreFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			r, err := pick(results, submission)
			if err != nil {
				return err
			}

			result, ok := r.Set.Result(kpiID)
			if !ok {
				return fmt.Errorf("kpi %q is not defined for %s", kpiID, r.Set.Framework.Title())
			}

			e, err := explain.Explain(result, r.outcome.Evidence)
			if err != nil {
				return err
			}

			return render(a.out, a.format, e, func(w io.Writer) error {
				_, err := io.WriteString(w, explain.Render(e))
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&submission, "submission", "s", "0", "submission name or index in the fixture")
	cmd.Flags().StringVarP(&kpiID, "kpi", "k", "", "KPI ID to explain")
	cmd.MarkFlagRequired("kpi")

	return cmd
}

func pick(results []scored, ref string) (scored, error) {
	for _, r := range results {
		if r.Label == ref {
			return checkScored(r)
		}
	}
	if i, err := strconv.Atoi(ref); err == nil && i >= 0 && i < len(results) {
		return checkScored(results[i])
	}
	return scored{}, fmt.Errorf("no submission %q in fixture", ref)
}

func checkScored(r scored) (scored, error) {
	if r.Set == nil {
		return scored{}, fmt.Errorf("submission %s was rejected: %s", r.Label, r.Error)
	}
	return r, nil
}

type scopeFlags struct {
	institution string
	department  string
	framework   string
	kpiID       string
}

func (f *scopeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.institution, "institution", "", "institution to scope to (default: first valid submission)")
	cmd.Flags().StringVar(&f.department, "department", "", "department to scope to (default: first valid submission)")
	cmd.Flags().StringVar(&f.framework, "framework", "", "framework to scope to (default: first valid submission)")
	cmd.Flags().StringVarP(&f.kpiID, "kpi", "k", "", "KPI ID")
	cmd.MarkFlagRequired("kpi")
}

// history scores the fixture and returns an analytics system over the
// resulting sets with a scope covering all of them.
func (a *app) history(ctx context.Context, path string, f scopeFlags) (analytics.System, analytics.Scope, error) {
	results, err := a.scoreFile(ctx, path)
	if err != nil {
		return nil, analytics.Scope{}, err
	}

	src := newMemorySource()
	scope := analytics.Scope{
		InstitutionID: f.institution,
		DepartmentID:  f.department,
		Framework:     f.framework,
	}
	for _, r := range results {
		if r.Set == nil {
			continue
		}
		src.add(*r.Set)
		scope.SubmissionIDs = append(scope.SubmissionIDs, r.Set.SubmissionID)
	}

	return analytics.New(src, a.logger()), scope, nil
}

func (a *app) trendCmd() *cobra.Command {
	var flags scopeFlags

	cmd := &cobra.Command{
		Use:   "trend FIXTURE",
		Short: "Build the year-over-year trend of one KPI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, scope, err := a.history(cmd.Context(), args[0], flags)
			if err != nil {
				return err
			}

			res, err := sys.Trend(cmd.Context(), analytics.TrendRequest{Scope: scope, KPIID: flags.kpiID})
			if err != nil {
				return err
			}

			return render(a.out, a.format, res, func(w io.Writer) error {
				return writeTrend(w, res)
			})
		},
	}
	flags.bind(cmd)

	return cmd
}

func writeTrend(w io.Writer, res *analytics.TrendResult) error {
	t := res.Trend
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "%s for %s/%s (%s)\n", t.Series.KPIID, t.Series.InstitutionID, t.Series.DepartmentID, t.Series.Framework.Title())
	for _, p := range t.Series.Points {
		fmt.Fprintf(tw, "  %d\t%.2f\n", p.Year, p.Value)
	}
	fmt.Fprintf(tw, "direction\t%s (slope %.2f per year)\n", t.Direction, t.Slope)
	fmt.Fprintf(tw, "best year\t%d\n", t.BestYear)
	fmt.Fprintf(tw, "worst year\t%d\n", t.WorstYear)
	fmt.Fprintf(tw, "volatility\t%.2f\n", t.Volatility)
	writeRejected(tw, res.Rejected)

	return tw.Flush()
}

func (a *app) forecastCmd() *cobra.Command {
	var (
		flags   scopeFlags
		horizon int
	)

	cmd := &cobra.Command{
		Use:   "forecast FIXTURE",
		Short: "Forecast one KPI past the last year in the fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, scope, err := a.history(cmd.Context(), args[0], flags)
			if err != nil {
				return err
			}

			res, err := sys.Forecast(cmd.Context(), analytics.ForecastRequest{
				Scope:   scope,
				KPIID:   flags.kpiID,
				Horizon: horizon,
			})
			if err != nil {
				return err
			}

			return render(a.out, a.format, res, func(w io.Writer) error {
				return writeForecast(w, res)
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().IntVar(&horizon, "horizon", 1, "years past the last point to project")

	return cmd
}

func writeForecast(w io.Writer, res *analytics.ForecastResult) error {
	f := res.Forecast
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if !f.Available() {
		fmt.Fprintf(tw, "%s: insufficient data: %s\n", f.KPIID, f.InsufficientDataReason)
		writeRejected(tw, res.Rejected)
		return tw.Flush()
	}

	fmt.Fprintf(tw, "%s forecast\n", f.KPIID)
	for _, p := range f.Path {
		fmt.Fprintf(tw, "  %d\t%.2f\t[%.2f, %.2f]\n", p.Year, p.PredictedValue, p.LowerBound, p.UpperBound)
	}
	fmt.Fprintf(tw, "confidence\t%s\n", f.Confidence)
	fmt.Fprintln(tw, f.Explanation)
	writeRejected(tw, res.Rejected)

	return tw.Flush()
}

func writeRejected(w io.Writer, rejected []guard.Rejection) {
	for _, r := range rejected {
		fmt.Fprintf(w, "excluded\t%s\t%s\n", r.Set.SubmissionID, r.Fault.Message)
	}
}

func (a *app) kpisCmd() *cobra.Command {
	var framework string

	cmd := &cobra.Command{
		Use:   "kpis",
		Short: "List the KPIs a framework scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := kpi.ParseFramework(framework)
			if err != nil {
				return err
			}
			defs, err := kpi.Definitions(f)
			if err != nil {
				return err
			}

			type row struct {
				ID      string   `json:"kpi_id"`
				Name    string   `json:"name"`
				Weight  float64  `json:"weight"`
				Formula string   `json:"formula_description"`
				Fields  []string `json:"fields"`
			}
			rows := make([]row, 0, len(defs))
			for _, d := range defs {
				fields := make([]string, len(d.Fields))
				for i, fid := range d.Fields {
					fields[i] = string(fid)
				}
				rows = append(rows, row{d.ID, d.Name, d.Weight, d.Formula, fields})
			}

			return render(a.out, a.format, rows, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				for _, r := range rows {
					fmt.Fprintf(tw, "%s\t%s\t%.2f\n", r.ID, r.Name, r.Weight)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&framework, "framework", "f", "", "framework: aicte, nba, naac or nirf")
	cmd.MarkFlagRequired("framework")

	return cmd
}
