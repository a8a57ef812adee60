package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"superfork/pkg/config"
	"superfork/pkg/github"
)

var (
	syncFlag         bool
	includePrivate   bool
	includeForks     bool
	includeDotGithub bool
	dryRun           bool
	withoutSleeping  bool
	includeIssues    bool
)

var (
	warnText = color.New(color.FgYellow).SprintFunc()
	failText = color.New(color.FgRed).SprintFunc()
	okText   = color.New(color.FgGreen).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:   "superfork TO SOURCE...",
	Short: "Fork or sync GitHub repositories in bulk",
	Long: `Superfork forks repositories to a destination user or organization, or
syncs them with their upstream when the fork already exists.

TO is the destination user or organization. Each SOURCE is either a
repository (owner/name) or a bare user/organization login, meaning all
repositories owned by that account.

A valid GITHUB_TOKEN must be set in the environment, in a .env file in the
current directory, or in a .env file in your home directory.

Mutating API calls are paced 30 seconds apart to stay clear of GitHub's
undocumented abuse limits; --without-sleeping disables the pause.

Examples:
  superfork myorg willf/superfork
  superfork myorg willf otherorg --dry-run
  superfork myorg willf --sync=false --include-private`,
	Args:         cobra.MinimumNArgs(2),
	SilenceUsage: true,
	RunE:         runSuperfork,
}

// Execute runs the root command and exits non-zero on any failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&syncFlag, "sync", true, "Sync when the repository already exists at the destination")
	rootCmd.Flags().BoolVar(&includePrivate, "include-private", false, "Include private repositories")
	rootCmd.Flags().BoolVar(&includeForks, "include-forks", false, "Include repositories which are themselves forks")
	rootCmd.Flags().BoolVar(&includeDotGithub, "include-dot-github", false, "Include the .github repository if found")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Don't change anything, just report what would be done")
	rootCmd.Flags().BoolVar(&withoutSleeping, "without-sleeping", false, "Don't sleep between mutating requests")
	rootCmd.Flags().BoolVar(&includeIssues, "include-issues", false, "Migrate issues along with the fork (not implemented yet)")
}

func runSuperfork(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	token, err := config.ResolveToken(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n%s\n", err, github.GetAuthInstructions())
		return err
	}

	authManager := github.NewAuthManager()
	if err := authManager.Authenticate(token); err != nil {
		return err
	}
	tokenInfo, err := authManager.ValidateToken(ctx)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	fmt.Printf("%s Authenticated as %s\n", okText("✓"), tokenInfo.User)

	destination := parseDestination(args[0])
	specs, err := parseSources(args[1:])
	if err != nil {
		return err
	}

	if includeIssues {
		fmt.Println(warnText("Warning: issue migration is not implemented yet; ignoring --include-issues"))
	}

	runCfg := github.RunConfig{
		Destination:      destination,
		Sync:             syncFlag,
		IncludePrivate:   includePrivate,
		IncludeForks:     includeForks,
		IncludeDotGithub: includeDotGithub,
		DryRun:           dryRun,
		WithoutSleeping:  withoutSleeping,
		PaceReads:        cfg.Pacing.PaceReads,
		MinInterval:      cfg.MinInterval(),
		MaxAttempts:      cfg.MaxAttempts(),
	}

	client := github.NewClient(token, tokenInfo.User)
	reporter := github.NewReporter()

	runErr := runEngine(ctx, client, runCfg, specs, reporter)

	reporter.Render(os.Stdout)

	if runErr != nil {
		return runErr
	}
	if reporter.Failed() {
		return fmt.Errorf("%d of %d repositories failed", reporter.FailureCount(), len(reporter.Outcomes()))
	}
	return nil
}

// runEngine wires resolver, pacer, driver, and reporter together.
func runEngine(ctx context.Context, client github.APIClient, runCfg github.RunConfig, specs []github.SourceSpec, reporter *github.Reporter) error {
	interval := runCfg.MinInterval
	if runCfg.WithoutSleeping {
		interval = 0
	}
	pacer := github.NewPacer(interval)

	filter := github.Filter{
		IncludePrivate:   runCfg.IncludePrivate,
		IncludeForks:     runCfg.IncludeForks,
		IncludeDotGithub: runCfg.IncludeDotGithub,
	}
	resolver := github.NewResolver(client, filter)
	if runCfg.PaceReads {
		resolver.PaceReads(pacer)
	}

	resolution, err := resolver.Resolve(ctx, specs)
	if err != nil {
		return err
	}
	for _, warning := range resolution.Warnings {
		fmt.Println(warnText("Warning: " + warning))
	}
	for _, skip := range resolution.Skipped {
		fmt.Printf("Skipping %s: %s\n", skip.Repo, skip.Reason)
	}
	fmt.Printf("Processing %d repositories\n", len(resolution.Candidates))

	driver := github.NewDriver(client, pacer, runCfg)
	driver.Progress = func(index, total int, outcome github.Outcome) {
		status := string(outcome.Status)
		if outcome.Status == github.StatusFailed {
			status = failText(status)
		}
		fmt.Printf("%d of %d. %s: %s (%s)\n", index, total, status, outcome.Repo, outcome.Reason)
	}

	outcomes, runErr := driver.Run(ctx, resolution.Candidates)
	for _, outcome := range outcomes {
		reporter.Record(outcome)
	}
	return runErr
}

// parseDestination keeps only the owner part of TO. A repository name after
// the slash is ignored: forks always keep their source name.
func parseDestination(to string) string {
	parts := strings.SplitN(to, "/", 2)
	if len(parts) == 2 && parts[1] != "" {
		fmt.Println(warnText("Warning: ignoring destination repository name"))
	}
	return parts[0]
}

// parseSources parses every SOURCE argument, failing fast on a bad one.
func parseSources(args []string) ([]github.SourceSpec, error) {
	specs := make([]github.SourceSpec, 0, len(args))
	for _, arg := range args {
		spec, err := github.ParseSourceSpec(arg)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
