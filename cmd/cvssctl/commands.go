package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quay/cvsscalc/cvss"
	"github.com/quay/cvsscalc/libcvss"
)

type globalFlags struct {
	Version string
	Output  string
	Server  string
}

// Scorer returns the remote API client if a server was named, or a local
// Libcvss otherwise.
func (g *globalFlags) scorer(ctx context.Context) (libcvss.Scorer, error) {
	if g.Server != "" {
		return libcvss.NewClient(nil, g.Server)
	}
	return libcvss.New(ctx, nil)
}

func newRootCmd() *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:           "cvssctl",
		Short:         "Score and inspect CVSS v2.0, v3.0, and v3.1 base vectors",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch g.Output {
			case "text", "json":
			default:
				return fmt.Errorf("unknown output format %q", g.Output)
			}
			if g.Version != "" {
				if _, err := cvss.ParseVersion(g.Version); err != nil {
					return err
				}
			}
			return nil
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.Version, "version", "", `CVSS version ("2.0", "3.0", or "3.1"); detected from the vector if unset`)
	pf.StringVarP(&g.Output, "output", "o", "text", `output format, "text" or "json"`)
	pf.StringVar(&g.Server, "server", "", "URL of a cvsscalc API to use instead of scoring locally")

	root.AddCommand(
		newScoreCmd(&g),
		newParseCmd(&g),
		newCatalogCmd(&g),
	)
	return root
}

// VersionFor reports the version to use for "vec".
func (g *globalFlags) versionFor(vec string) string {
	if g.Version != "" {
		return g.Version
	}
	return cvss.Detect(vec).String()
}

func newScoreCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "score VECTOR...",
		Short: "Calculate the base score and severity of vectors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, err := g.scorer(ctx)
			if err != nil {
				return err
			}
			var (
				errs []error
				res  []*cvss.ScoreResult
			)
			for _, vec := range args {
				r, err := l.Calculate(ctx, &libcvss.CalculateRequest{
					Version:      g.versionFor(vec),
					VectorString: vec,
				})
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", vec, unwrapEngine(err)))
					continue
				}
				res = append(res, r)
			}
			out := cmd.OutOrStdout()
			if g.Output == "json" {
				if err := writeJSON(out, res); err != nil {
					return err
				}
			} else {
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				for _, r := range res {
					fmt.Fprintf(tw, "%.1f\t%s\t%s\n", r.BaseScore, r.Severity, r.Vector)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
			return errors.Join(errs...)
		},
	}
}

func newParseCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "parse VECTOR",
		Short: "Decode a vector into its metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, err := g.scorer(ctx)
			if err != nil {
				return err
			}
			vec := args[0]
			ver := g.versionFor(vec)
			r, err := l.ParseVector(ctx, &libcvss.ParseRequest{
				Version:      ver,
				VectorString: vec,
			})
			if err != nil {
				return unwrapEngine(err)
			}
			out := cmd.OutOrStdout()
			if g.Output == "json" {
				return writeJSON(out, r)
			}
			defs, err := l.Catalog(ctx, ver)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Version\t%v\n", r.Version)
			fmt.Fprintf(tw, "Vector\t%s\n", r.VectorString)
			for _, d := range defs {
				v, ok := r.Components[d.ID]
				if !ok {
					fmt.Fprintf(tw, "%s\t%s\t-\n", d.ID, d.Name)
					continue
				}
				name := v
				if vd, ok := d.Value(cvss.Value(v[0])); ok {
					name = vd.Name
				}
				fmt.Fprintf(tw, "%s\t%s\t%s (%s)\n", d.ID, d.Name, v, name)
			}
			if !r.Complete {
				fmt.Fprintf(tw, "Missing\t%s\n", strings.Join(r.Missing, ", "))
			}
			return tw.Flush()
		},
	}
}

func newCatalogCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the base metrics and values of a version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			l, err := g.scorer(ctx)
			if err != nil {
				return err
			}
			defs, err := l.Catalog(ctx, g.Version)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if g.Output == "json" {
				return writeJSON(out, defs)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, d := range defs {
				fmt.Fprintf(tw, "%s\t%s\n", d.ID, d.Name)
				for _, v := range d.Values {
					if d.ScopeDependent {
						fmt.Fprintf(tw, "\t%v\t%s\t%g / %g\n", v.Code, v.Name, v.Weight, v.ChangedWeight)
						continue
					}
					fmt.Fprintf(tw, "\t%v\t%s\t%g\n", v.Code, v.Name, v.Weight)
				}
			}
			return tw.Flush()
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// UnwrapEngine returns the scoring engine's error from "err", if there is
// one, as its message is what a user needs to see.
func unwrapEngine(err error) error {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if errors.Is(e, cvss.ErrInvalidInput) {
			if u := errors.Unwrap(e); u == nil || !errors.Is(u, cvss.ErrInvalidInput) {
				return e
			}
		}
	}
	return err
}
