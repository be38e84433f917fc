package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"unsplashfetch/pkg/auth"
	"unsplashfetch/pkg/config"
	errs "unsplashfetch/pkg/errors"
	"unsplashfetch/pkg/fetcher"
	"unsplashfetch/pkg/logger"
	"unsplashfetch/pkg/storage"
	"unsplashfetch/pkg/ui"
)

// options holds the values of the command line flags
type options struct {
	configFile string
	logLevel   string
	outputDir  string
	verbose    bool
	rateLimit  int
	embedEXIF  bool
}

// app carries the state shared by the commands of one invocation
type app struct {
	opts   options
	stdout io.Writer
	stderr io.Writer

	// keyManager builds the credential chain consulted when no key is configured
	keyManager func() (*auth.Manager, error)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, keyManager: auth.NewManager}
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unsplashfetch [flags] <num>",
		Short: "Download random photos from Unsplash",
		Long: `unsplashfetch downloads <num> random photos from the Unsplash API into a
freshly emptied output directory, saving them as image_1.jpg, image_2.jpg, ...

The output directory is deleted and recreated on every run.

The access key is read from UNSPLASH_ACCESS_KEY (a .env file in the working
directory is loaded first). When it is not set, a key stored with
'unsplashfetch auth set' is used.`,
		Example: `  # Fetch five photos into ./images
  unsplashfetch 5

  # Fetch into another directory and show progress
  unsplashfetch --output ./wallpapers --verbose 10

  # Stay under the demo quota of 50 requests per hour
  unsplashfetch --rate-limit 50 100`,
		Version:       versionString(),
		Args:          exactlyOneCount,
		SilenceErrors: true,
		RunE:          a.runFetch,
	}

	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	cmd.PersistentFlags().StringVarP(&a.opts.configFile, "config", "c", "", "config file (default is ./.unsplashfetch.yaml)")
	cmd.PersistentFlags().StringVar(&a.opts.logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	cmd.PersistentFlags().StringVarP(&a.opts.outputDir, "output", "o", "", "output directory (default \"images\")")
	cmd.PersistentFlags().BoolVarP(&a.opts.verbose, "verbose", "v", false, "print every saved image and a summary")

	cmd.Flags().IntVar(&a.opts.rateLimit, "rate-limit", 0, "maximum API requests per hour (0 disables pacing)")
	cmd.Flags().BoolVar(&a.opts.embedEXIF, "exif", false, "embed photographer attribution into saved files")

	cmd.SetVersionTemplate(versionTemplate)
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(a.authCmd())
	cmd.AddCommand(a.configCmd())
	cmd.AddCommand(a.versionCmd())

	return cmd
}

// exactlyOneCount rejects anything but a single positional argument before
// the configuration, the output directory or the network are touched
func exactlyOneCount(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errs.New(errs.ErrorTypeUsage, 0, fmt.Sprintf("expected exactly one argument <num>, got %d", len(args)))
	}
	return nil
}

func (a *app) runFetch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	count, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return errs.Wrap(errs.ErrorTypeUsage, err, fmt.Sprintf("invalid image count %q", args[0]))
	}

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.Initialize(&cfg.Logging, a.stderr)
	if err != nil {
		return err
	}

	if cfg.Unsplash.AccessKey == "" {
		a.resolveKey(cfg, log)
	}

	printer := ui.NewPrinter(a.stdout, a.opts.verbose)
	printer.Banner()
	if a.opts.verbose {
		printer.Info("Output", cfg.Output.Directory)
		printer.Info("Images", strconv.Itoa(count))
	}

	log.WithFields(map[string]interface{}{
		"count":  count,
		"output": cfg.Output.Directory,
	}).Debug("configuration loaded")

	report, err := fetcher.NewFromConfig(cfg, printer, log).Run(cmd.Context(), count)
	if a.opts.verbose && report != nil {
		a.printSummary(printer, report, cfg.Output.Directory)
	}
	if err != nil {
		log.WithError(err).Error("fetch aborted")
		return err
	}

	return nil
}

// printSummary reports totals, the skipped indices and what is on disk
func (a *app) printSummary(printer *ui.Printer, report *fetcher.Report, dir string) {
	printer.Summary(report.Requested, report.Saved(), report.Failed(), report.TotalBytes(), report.Complete())

	if failures := report.Failures(); len(failures) > 0 {
		indices := lo.Map(failures, func(o fetcher.Outcome, _ int) string { return strconv.Itoa(o.Index) })
		printer.Info("Failed", strings.Join(indices, ", "))
	}

	if files, err := storage.NewManager(dir).List(); err == nil {
		printer.Info("On disk", fmt.Sprintf("%d files in %s", len(files), dir))
	}
}

// loadConfig merges defaults, config file, environment and explicit flags
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := make(map[string]interface{})
	if a.opts.outputDir != "" {
		flags["output"] = a.opts.outputDir
	}
	if a.opts.logLevel != "" {
		flags["log-level"] = a.opts.logLevel
	}
	if f := cmd.Flags().Lookup("rate-limit"); f != nil && f.Changed {
		flags["requests-per-hour"] = a.opts.rateLimit
	}
	if f := cmd.Flags().Lookup("exif"); f != nil && f.Changed {
		flags["embed-exif"] = a.opts.embedEXIF
	}

	cfg, err := config.Load(a.opts.configFile, flags)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveKey falls back to the stored credential chain. A missing key is not
// an error: the API rejects every request and each index is reported failed.
func (a *app) resolveKey(cfg *config.Config, log logger.Logger) {
	manager, err := a.keyManager()
	if err != nil {
		log.WithError(err).Warn("credential stores unavailable")
		return
	}

	key, source, err := manager.Resolve()
	if err != nil {
		log.Warn("no access key configured, requests will be rejected")
		return
	}

	cfg.Unsplash.AccessKey = key
	log.WithField("source", source).Debug("access key loaded")
}
