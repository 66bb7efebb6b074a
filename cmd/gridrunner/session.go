package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/gridrunner/pkg/grid"
	"github.com/entrhq/gridrunner/pkg/harness"
	"github.com/spf13/cobra"
)

func newModeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mode",
		Short: "Print whether sessions run locally or on a remote grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			lookup := a.harness.Lookup()
			mode := grid.FromSettings(lookup, a.logger)
			out := cmd.OutOrStdout()

			if url, remote := mode.EffectiveURL(); remote {
				fmt.Fprintf(out, "mode: %s\nurl: %s\n", remoteStyle.Render("remote"), url)
			} else {
				fmt.Fprintf(out, "mode: %s\n", localStyle.Render("local"))
			}
			fmt.Fprintf(out, "headless: %t\nchrome args: %s\n", grid.Headless(lookup), strings.Join(grid.ChromeArgs(mode), " "))
			return nil
		},
	}
}

func newBuildIDCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "build-id",
		Short: "Print the CI build identifier, if any",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := a.harness.BuildID()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "none")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newReportCmd(a *app) *cobra.Command {
	var (
		sessionID string
		passed    bool
		timeout   time.Duration
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Record a session verdict on the Sauce Labs job",
		Example: `  gridrunner report --session 4f1d2c --passed
  gridrunner report --session 4f1d2c --passed=false --set SAUCE_DATACENTER=EU_CENTRAL`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			// The artifact records the configuration resolved before teardown
			start := time.Now()
			var cfg harness.SessionConfig
			if outputDir != "" {
				cfg = a.harness.Setup()
			}
			verdict := a.harness.Teardown(ctx, sessionID, passed)
			if outputDir != "" {
				report := harness.NewSessionReport(sessionID, cfg, verdict, start, time.Now())
				if err := harness.NewArtifactWriter(outputDir).WriteAll(report); err != nil {
					return err
				}
			}
			if verdict.ReportErr != nil {
				return verdict.ReportErr
			}

			build := verdict.BuildID
			if build == "" {
				build = "none"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %s: passed=%t build=%s\n", sessionID, verdict.Passed, build)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Sauce Labs job / WebDriver session id")
	cmd.Flags().BoolVar(&passed, "passed", false, "Whether the test passed")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Deadline for the update call")
	cmd.Flags().StringVar(&outputDir, "output", "", "Directory for session.json and summary.md")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}
