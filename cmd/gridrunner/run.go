package main

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/gridrunner/pkg/browser"
	"github.com/entrhq/gridrunner/pkg/harness"
	"github.com/playwright-community/playwright-go"
	"github.com/spf13/cobra"
)

// newRunCmd opens one browser session with the resolved capabilities, loads
// a page as a smoke check, and reports the verdict.
func newRunCmd(a *app) *cobra.Command {
	var (
		target    string
		name      string
		videoDir  string
		outputDir string
		report    bool
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open a browser session with the resolved capabilities and load a page",
		Example: `  gridrunner run --url https://example.com
  gridrunner run --url https://example.com --set browserName=firefox --set SELENIUM_REMOTE_URL=ws://grid:3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			cfg := a.harness.Setup()

			plan, err := browser.NewPlan(cfg.Mode, cfg.Capabilities, cfg.Headless, videoDir)
			if err != nil {
				return err
			}

			manager := browser.NewSessionManager(a.logger.With("browser"))
			if err := manager.Initialize(); err != nil {
				return err
			}
			defer func() {
				if err := manager.Shutdown(); err != nil {
					a.logger.Warnf("Browser shutdown failed: %v", err)
				}
			}()

			session, err := manager.StartSession(name, plan, cfg.Capabilities)
			if err != nil {
				return err
			}

			passed := true
			title := ""
			if _, err := session.Page.Goto(target, playwright.PageGotoOptions{
				WaitUntil: playwright.WaitUntilStateLoad,
			}); err != nil {
				a.logger.Errorf("Navigation to %s failed: %v", target, err)
				passed = false
			} else if title, err = session.Page.Title(); err != nil {
				passed = false
			}
			_ = manager.CloseSession(session.Name)

			verdict := harness.Verdict{Passed: passed}
			if report {
				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				defer cancel()
				verdict = a.harness.Teardown(ctx, session.Name, passed)
			} else if id, ok := a.harness.BuildID(); ok {
				verdict.BuildID = id
			}

			if outputDir != "" {
				sr := harness.NewSessionReport(session.Name, cfg, verdict, start, time.Now())
				if err := harness.NewArtifactWriter(outputDir).WriteAll(sr); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "session %s (%s, %s): passed=%t title=%q\n",
				session.Name, plan.Engine, cfg.Mode, verdict.Passed, title)
			if !verdict.Passed {
				return fmt.Errorf("session %s failed", session.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "url", "about:blank", "Page to load")
	cmd.Flags().StringVar(&name, "name", "", "Session name (generated when empty)")
	cmd.Flags().StringVar(&videoDir, "video-dir", "videos", "Directory for recordings when recordVideo is true")
	cmd.Flags().StringVar(&outputDir, "output", "", "Directory for session.json and summary.md")
	cmd.Flags().BoolVar(&report, "report", false, "Record the verdict on the Sauce Labs job")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Deadline for the update call")
	return cmd
}
