package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"rblxlocate/pkg/auth"
	"rblxlocate/pkg/config"
	"rblxlocate/pkg/locator"
	"rblxlocate/pkg/logger"
	"rblxlocate/pkg/roblox"
	"rblxlocate/pkg/ui"
	"rblxlocate/pkg/ui/tui"
)

var (
	// Find command flags
	placeID            string
	userID             string
	accountName        string
	security           string
	headshotSize       string
	headshotFormat     string
	maxConcurrentPages int
	requestsPerMinute  int
	requestTimeout     time.Duration
	retryRequests      bool
	useTUI             bool
	showProgress       bool
	verbose            bool
	notify             bool
)

// findCmd represents the find command
var findCmd = &cobra.Command{
	Use:   "find [place-id] [user-id]",
	Short: "Find the server a player is in",
	Long: `Scan every public server of a place and print the join script of each
server whose player list contains the target user's avatar headshot.

The security cookie is taken, in order, from --security, RBLXLOCATE_SECURITY,
the configuration file, the account named by --account, the most recently
saved account, and finally an interactive prompt.`,
	Example: `  # Prompt for everything
  rblxlocate

  # Place and user as arguments, cookie from a saved account
  rblxlocate find 920587237 1234567 --account main

  # Live view of the scan
  rblxlocate find --place 920587237 --user 1234567 --tui

  # Be gentle with a very large place
  rblxlocate find 920587237 1234567 --max-concurrent-pages 20 --retry`,
	Args: cobra.MaximumNArgs(2),
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	addFindFlags(findCmd)
}

// addFindFlags registers the find flags on cmd. Root and find share the
// same variables.
func addFindFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&placeID, "place", "", "place id to scan")
	flags.StringVar(&userID, "user", "", "user id of the player to look for")
	flags.StringVarP(&accountName, "account", "a", "", "use a specific saved account")
	flags.StringVar(&security, "security", "", ".ROBLOSECURITY cookie value (prefer RBLXLOCATE_SECURITY or 'auth login')")
	flags.StringVar(&headshotSize, "size", "", "headshot size: "+strings.Join(roblox.SizeNames(), ", ")+" or WxH (default extra_tiny)")
	flags.StringVar(&headshotFormat, "format", "", "headshot image format (default png)")
	flags.IntVar(&maxConcurrentPages, "max-concurrent-pages", 0, "maximum page requests in flight, 0 for no limit")
	flags.IntVar(&requestsPerMinute, "requests-per-minute", 0, "client-side request rate limit, 0 for none")
	flags.DurationVar(&requestTimeout, "timeout", 0, "per-request timeout, 0 for none")
	flags.BoolVar(&retryRequests, "retry", false, "retry failed requests with exponential backoff")
	flags.BoolVar(&useTUI, "tui", false, "show a live terminal view of the scan")
	flags.BoolVarP(&showProgress, "progress", "p", false, "show a progress line on stderr")
	flags.BoolVarP(&verbose, "verbose", "v", false, "report every page on stderr")
	flags.BoolVar(&notify, "notify", false, "raise a desktop notification for every match")
}

// findFlagMap collects the flags the user actually set, keyed the way
// config.MergeCommandLineFlags expects.
func findFlagMap(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := cmd.Flags().Changed

	if changed("security") {
		flags["security"] = security
	}
	if changed("account") {
		flags["account"] = accountName
	}
	if changed("size") {
		flags["size"] = headshotSize
	}
	if changed("format") {
		flags["format"] = headshotFormat
	}
	if changed("max-concurrent-pages") {
		flags["max-concurrent-pages"] = maxConcurrentPages
	}
	if changed("requests-per-minute") {
		flags["requests-per-minute"] = requestsPerMinute
	}
	if changed("timeout") {
		flags["timeout"] = requestTimeout
	}
	if changed("retry") {
		flags["retry"] = retryRequests
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	return flags
}

// findInputs are the three values a scan cannot start without
type findInputs struct {
	placeID  string
	userID   string
	security string
}

func runFind(cmd *cobra.Command, args []string) error {
	in := findInputs{placeID: placeID, userID: userID}
	if len(args) > 0 {
		in.placeID = args[0]
	}
	if len(args) > 1 {
		in.userID = args[1]
	}

	cfg, err := config.Load(configFile, findFlagMap(cmd))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	in.security = cfg.Roblox.Security
	if in.security == "" {
		account, err := savedAccount(cfg.Roblox.Account, log)
		if err != nil {
			return err
		}
		if account != nil {
			in.security = account.SecurityToken
			if account.UserAgent != "" {
				cfg.Roblox.UserAgent = account.UserAgent
			}
		}
	}

	prompter := ui.NewPrompter(os.Stdin, os.Stdout)
	if err := promptMissing(prompter, &in); err != nil {
		return err
	}
	in.security = auth.NormalizeToken(in.security)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var notifier *ui.Notifier
	if notify {
		notifier = ui.NewNotifier()
	}

	if useTUI {
		return findWithTUI(ctx, cfg, in, notifier, log)
	}

	var progress *ui.ProgressDisplay
	var observer locator.Observer = locator.NopObserver{}
	if showProgress || verbose {
		progress = ui.NewProgressDisplay(ui.Stderr, in.placeID, verbose)
		observer = progress
	}

	summary, err := locate(ctx, cfg, in, printMatches(os.Stdout, notifier), observer, log)
	if progress != nil {
		progress.Complete(summary, err)
	}
	return err
}

// findWithTUI runs the scan behind the live view. Match lines are written to
// stdout once the view has closed so they do not tear the screen.
func findWithTUI(ctx context.Context, cfg *config.Config, in findInputs, notifier *ui.Notifier, log logger.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	view := tui.NewTUI(in.placeID, in.userID)
	viewDone := make(chan error, 1)
	go func() {
		viewDone <- view.Start()
		// Quitting the view abandons the scan
		cancel()
	}()

	view.LogInfo(fmt.Sprintf("Looking for user %s in place %s", in.userID, in.placeID))
	if cfg.Search.MaxConcurrentPages > 0 {
		view.LogInfo(fmt.Sprintf("At most %d page requests in flight", cfg.Search.MaxConcurrentPages))
	}

	var matches []locator.Match
	onMatch := func(m locator.Match) {
		matches = append(matches, m)
		if notifier != nil {
			notifier.NotifyMatch(m.PlaceID, m.InstanceGUID)
		}
	}

	_, err := locate(ctx, cfg, in, onMatch, view, log)
	view.Done(err)
	if viewErr := <-viewDone; viewErr != nil {
		log.WithError(viewErr).Warn("Terminal view failed")
	}

	for _, m := range matches {
		if printErr := ui.PrintMatch(os.Stdout, m.JoinScript); printErr != nil {
			return printErr
		}
	}
	return err
}

// locate logs in with the resolved cookie and runs one scan. The client is
// closed before returning.
func locate(ctx context.Context, cfg *config.Config, in findInputs, onMatch locator.MatchHandler, observer locator.Observer, log logger.Logger) (*locator.Summary, error) {
	size, err := roblox.ParseSize(cfg.Search.HeadshotSize)
	if err != nil {
		return nil, err
	}

	client, err := roblox.Login(in.security, roblox.FromConfig(cfg, log)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create roblox session: %w", err)
	}
	defer client.Close()

	l := locator.New(client,
		locator.WithMatchHandler(onMatch),
		locator.WithObserver(observer),
		locator.WithLogger(log),
		locator.WithMaxConcurrentPages(cfg.Search.MaxConcurrentPages),
		locator.WithHeadshotOptions(roblox.WithSize(size), roblox.WithFormat(cfg.Search.HeadshotFormat)),
	)
	return l.Locate(ctx, in.placeID, in.userID)
}

// printMatches returns a handler writing one join script line per match to w
func printMatches(w io.Writer, notifier *ui.Notifier) locator.MatchHandler {
	return func(m locator.Match) {
		if err := ui.PrintMatch(w, m.JoinScript); err != nil {
			logger.WithError(err).Error("Failed to print match")
		}
		if notifier != nil {
			notifier.NotifyMatch(m.PlaceID, m.InstanceGUID)
		}
	}
}

// promptMissing asks for place id, user id and security cookie, in that
// order, skipping any that are already known.
func promptMissing(p *ui.Prompter, in *findInputs) error {
	in.placeID = strings.TrimSpace(in.placeID)
	in.userID = strings.TrimSpace(in.userID)

	if err := p.Fill(&in.placeID, ui.PlacePrompt, false); err != nil {
		return err
	}
	if err := p.Fill(&in.userID, ui.UserPrompt, false); err != nil {
		return err
	}
	return p.Fill(&in.security, ui.SecurityPrompt, true)
}

// savedAccount looks up the named account, or the default one when name is
// empty. A missing named account is an error; a missing default is not.
func savedAccount(name string, log logger.Logger) (*auth.Account, error) {
	manager, err := auth.NewManager()
	if err != nil {
		if name != "" {
			return nil, fmt.Errorf("failed to initialize credential manager: %w", err)
		}
		log.WithError(err).Debug("Credential manager unavailable")
		return nil, nil
	}

	account, err := manager.Resolve(name)
	switch {
	case err == nil:
		log.WithField("account", account.Name).Info("Using saved account")
		return account, nil
	case name == "" && errors.Is(err, auth.ErrCredentialsNotFound):
		return nil, nil
	case name != "":
		return nil, fmt.Errorf("%w (run 'rblxlocate auth list' to see saved accounts)", err)
	default:
		return nil, err
	}
}
