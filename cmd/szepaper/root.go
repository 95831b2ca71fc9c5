package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"szepaper/internal/downloader"
	"szepaper/pkg/auth"
	"szepaper/pkg/config"
	"szepaper/pkg/epaper"
	errs "szepaper/pkg/errors"
	"szepaper/pkg/logger"
	"szepaper/pkg/storage"
	"szepaper/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// options holds the values bound to the root command's flags
type options struct {
	configFile   string
	username     string
	password     string
	directory    string
	edition      string
	issue        string
	listEditions bool
	verbose      bool
	logLevel     string
	logFile      string
	useKeyring   bool
	chunkSize    int
	timeout      time.Duration
	noProgress   bool
}

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "szepaper",
		Short: "Download the Süddeutsche Zeitung e-paper as PDF",
		Long: `szepaper logs into the Süddeutsche Zeitung e-paper portal with your
subscriber account and saves one issue of the chosen edition as a PDF.

When the issue is today's (or later), the link current.pdf in the output
directory is pointed at it. There is no issue on Sundays.

The password can come from --password, SZEPAPER_PASSWORD, a .env file or,
with --keyring, from the system keychain.`,
		Example: `  # Today's full national edition into ~/papers
  szepaper -u reader -p secret -d ~/papers

  # A past issue of the Bavarian edition, password from the keychain
  szepaper -u reader --keyring -e bayern_full -i 2012-04-14

  # Show the edition keys
  szepaper --list-editions`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.username, "username", "u", "", "subscriber username")
	flags.StringVarP(&opts.password, "password", "p", "", "subscriber password")
	flags.StringVarP(&opts.directory, "directory", "d", ".", "output directory")
	flags.StringVarP(&opts.edition, "edition", "e", config.DefaultEdition, "edition to fetch (see --list-editions)")
	flags.StringVarP(&opts.issue, "issue", "i", config.DefaultIssue, "issue date as YYYY-MM-DD, or today")
	flags.BoolVar(&opts.listEditions, "list-editions", false, "list the available editions and exit")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	flags.BoolVar(&opts.useKeyring, "keyring", false, "read the password from the system keychain")
	flags.IntVar(&opts.chunkSize, "chunk-size", config.DefaultChunkSize, "bytes copied per write")
	flags.DurationVar(&opts.timeout, "timeout", 60*time.Second, "login timeout and wait for download headers")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "do not draw a progress bar")

	persistent := cmd.PersistentFlags()
	persistent.StringVarP(&opts.configFile, "config", "c", "", "config file (default is ./.szepaper.yaml or ~/.config/szepaper/config.yaml)")
	persistent.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	persistent.StringVar(&opts.logFile, "log-file", "", "also write logs to this file")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return errs.Wrap(errs.ErrorTypeUsage, err, "invalid arguments")
	})

	cmd.SetVersionTemplate(`szepaper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(newConfigCmd(opts))

	return cmd
}

// Execute runs the root command and exits with a code that reflects the failure kind
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(errs.ExitCode(err))
	}
}

// flagOverrides collects the flags the user actually set, keyed for config.MergeCommandLineFlags
func flagOverrides(cmd *cobra.Command, opts *options) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("username") {
		flags["username"] = opts.username
	}
	if changed("password") {
		flags["password"] = opts.password
	}
	if changed("keyring") {
		flags["keyring"] = opts.useKeyring
	}
	if changed("directory") {
		flags["directory"] = opts.directory
	}
	if changed("edition") {
		flags["edition"] = opts.edition
	}
	if changed("issue") {
		flags["issue"] = opts.issue
	}
	if changed("chunk-size") {
		flags["chunk-size"] = opts.chunkSize
	}
	if changed("timeout") {
		flags["timeout"] = opts.timeout
	}
	if opts.logLevel != "" {
		flags["log-level"] = opts.logLevel
	} else if opts.verbose {
		flags["log-level"] = "info"
	}
	if opts.logFile != "" {
		flags["log-file"] = opts.logFile
	}
	return flags
}

func printEditions(w io.Writer) {
	fmt.Fprintln(w, "Available editions:")
	for _, e := range epaper.Editions() {
		fmt.Fprintln(w, e)
	}
}

func runDownload(cmd *cobra.Command, opts *options) error {
	if opts.listEditions {
		printEditions(cmd.OutOrStdout())
		return nil
	}

	cfg, err := config.Load(opts.configFile, flagOverrides(cmd, opts))
	if err != nil {
		return errs.Wrap(errs.ErrorTypeUsage, err, "failed to load configuration")
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return errs.Wrap(errs.ErrorTypeUsage, err, "failed to initialize logger")
	}
	log := logger.GetLogger()
	log.WithField("version", version).Debug("szepaper starting")

	credentials := auth.NewManager(log, auth.NewKeyringSource())
	if err := credentials.Resolve(cfg); err != nil {
		if errors.Is(err, auth.ErrCredentialsNotFound) {
			fmt.Fprintln(cmd.ErrOrStderr(), auth.KeyringHint(cfg.Portal.Username))
		}
		return err
	}

	if !cfg.HasCredentials() {
		// Without an account there is nothing to do; this is not treated as a failure
		ui.PrintError("Missing credentials", "a username and a password are required")
		_ = cmd.Usage()
		return nil
	}

	now := time.Now()
	date, err := epaper.ParseIssueDate(cfg.Download.Issue, now)
	if err != nil {
		return err
	}

	req := downloader.Request{
		Credentials: epaper.Credentials{Username: cfg.Portal.Username, Password: cfg.Portal.Password},
		Edition:     cfg.Download.Edition,
		Date:        date,
	}

	// Reject Sundays and unknown editions before touching the output directory
	if _, _, err := (epaper.IssueRequest{Edition: req.Edition, Date: req.Date}).Resolve(); err != nil {
		return err
	}

	store, err := storage.NewManager(cfg.Output.Directory,
		storage.WithChunkSize(cfg.Download.ChunkSize),
		storage.WithAliasName(cfg.Output.AliasName),
		storage.WithLogger(log),
	)
	if err != nil {
		return err
	}

	authenticator := epaper.NewAuthenticator(
		epaper.WithTimeout(cfg.Download.Timeout),
		epaper.WithLogger(log),
	)

	dlOpts := []downloader.Option{}
	if !opts.noProgress && ui.IsTerminal(ui.Stderr) {
		dlOpts = append(dlOpts, downloader.WithProgress(func(r io.Reader, size int64) io.Reader {
			return ui.NewProgressReader(r, ui.Stderr, size)
		}))
	}

	d := downloader.New(authenticator, downloader.EpaperFetchers(epaper.WithFetcherLogger(log)), store, log, dlOpts...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result, err := d.Run(ctx, req)
	if err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Saved %s (%s in %s)", result.Path, ui.FormatBytes(result.Bytes), result.Duration.Round(time.Millisecond)))
	if result.AliasUpdated {
		ui.PrintInfo("Current issue", store.AliasPath())
	}
	return nil
}

