package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"quick-hotfix/internal/bundle"
	"quick-hotfix/internal/change"
	"quick-hotfix/internal/cli"
	"quick-hotfix/internal/config"
	"quick-hotfix/internal/hotfix"
	"quick-hotfix/internal/logging"
	"quick-hotfix/internal/progress"
)

// BundleCommand builds a hotfix archive from a set of changed files.
type BundleCommand struct{}

func (c *BundleCommand) Name() string      { return "bundle" }
func (c *BundleCommand) Aliases() []string { return []string{"b"} }
func (c *BundleCommand) Description() string {
	return "Archive the compiled classes and resources of changed files"
}
func (c *BundleCommand) Usage() string {
	return "bundle [-o out.zip] [-changes file|-] [-m message] [flags] [changed files...]"
}

// bundleConfig holds the parsed flags of one bundle invocation.
type bundleConfig struct {
	out        string
	changes    string
	baseDir    string
	root       string
	markers    string
	message    string
	manifest   bool
	outputDir  string
	verbose    bool
	quiet      bool
	noProgress bool
	noSettings bool
	paths      []string
}

func parseBundleFlags(args []string, stderr io.Writer) (bundleConfig, error) {
	var cfg bundleConfig
	fs := flag.NewFlagSet("bundle", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.out, "o", "", "destination archive (\".zip\" is appended when missing)")
	fs.StringVar(&cfg.changes, "changes", "", "file listing the changes (git name-status, porcelain or plain paths); - reads stdin")
	fs.StringVar(&cfg.baseDir, "C", ".", "directory that relative change paths are resolved against")
	fs.StringVar(&cfg.root, "root", "", "use this directory as the only VCS root instead of probing for markers")
	fs.StringVar(&cfg.markers, "markers", strings.Join(change.DefaultMarkers, ","), "comma-separated VCS root markers")
	fs.StringVar(&cfg.message, "m", "", "commit message; names the archive when -o is omitted and is kept in the manifest")
	fs.BoolVar(&cfg.manifest, "manifest", false, "write <archive>.json describing every entry")
	fs.StringVar(&cfg.outputDir, "output-dir", "", "compiled output directory relative to the module (overrides detection)")
	fs.BoolVar(&cfg.verbose, "v", false, "debug logging")
	fs.BoolVar(&cfg.quiet, "q", false, "only log warnings and errors")
	fs.BoolVar(&cfg.noProgress, "no-progress", false, "disable the progress indicator")
	fs.BoolVar(&cfg.noSettings, "no-settings", false, "neither read nor remember the last destination")
	if err := fs.Parse(args); err != nil {
		return cfg, cli.Usagef("%v", err)
	}
	cfg.paths = fs.Args()
	if cfg.changes == "" && len(cfg.paths) == 0 {
		return cfg, cli.Usagef("no changes given: pass -changes or changed file paths")
	}
	if cfg.verbose && cfg.quiet {
		return cfg, cli.Usagef("-v and -q are mutually exclusive")
	}
	return cfg, nil
}

func (cfg bundleConfig) logLevel() logging.Level {
	switch {
	case cfg.verbose:
		return logging.LevelDebug
	case cfg.quiet:
		return logging.LevelWarn
	}
	return logging.LevelInfo
}

// reporter picks the progress sink. Debug logging shares stderr with the
// archive goroutine, so -v gets plain lines instead of a redrawn spinner.
func (cfg bundleConfig) reporter(stderr io.Writer) progress.Reporter {
	switch {
	case cfg.noProgress || cfg.quiet:
		return progress.Nop{}
	case cfg.verbose:
		return &progress.Lines{W: stderr}
	}
	return progress.For(stderr)
}

func (cfg bundleConfig) finder() change.RootFinder {
	if cfg.root != "" {
		abs, err := filepath.Abs(cfg.root)
		if err != nil {
			abs = cfg.root
		}
		return change.StaticRoot(abs)
	}
	return change.NewMarkerFinder(splitCSV(cfg.markers))
}

// readEntries collects changes from -changes and from positional paths.
func (cfg bundleConfig) readEntries(stdin io.Reader) ([]change.Entry, error) {
	base, err := filepath.Abs(cfg.baseDir)
	if err != nil {
		return nil, err
	}
	var entries []change.Entry
	if cfg.changes != "" {
		r := stdin
		if cfg.changes != "-" {
			f, err := os.Open(cfg.changes)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			r = f
		}
		parsed, err := change.Parse(r, base)
		if err != nil {
			return nil, err
		}
		entries = append(entries, parsed...)
	}
	for _, p := range cfg.paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		e, err := change.FromPath(p, change.Modified)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (c *BundleCommand) Run(ctx *cli.Context) error {
	cfg, err := parseBundleFlags(ctx.Args, ctx.Stderr)
	if err != nil {
		return err
	}
	log := logging.New(ctx.Stderr, cfg.logLevel())

	entries, err := cfg.readEntries(ctx.Stdin)
	if err != nil {
		return fmt.Errorf("read changes: %w", err)
	}

	settingsPath := ""
	var settings config.Settings
	if !cfg.noSettings {
		if settingsPath, err = config.SettingsPath(); err != nil {
			log.Warnf("settings unavailable: %v", err)
		} else if settings, err = config.LoadSettings(settingsPath); err != nil {
			log.Warnf("%v", err)
		}
	}

	// Without -o the pipeline suggests a name in the archive root, unless a
	// previous run left a directory to reuse.
	dest := cfg.out
	if dest == "" && settings.LastDestination != "" {
		dest = hotfix.SuggestDestination(filepath.Dir(settings.LastDestination), cfg.message)
		log.Infof("no -o given, using %s", dest)
	}

	opt := hotfix.Options{
		Finder:    cfg.finder(),
		OutputDir: cfg.outputDir,
		Progress:  cfg.reporter(ctx.Stderr),
		Log:       log,
		Manifest:  cfg.manifest,
		Message:   cfg.message,
	}

	p := hotfix.New(opt)
	if !p.CanExecute(entries) {
		return errors.New("nothing to archive: every selected change is a deletion")
	}
	res, err := p.Execute(ctx.Ctx, entries, dest)
	if err != nil {
		return err
	}

	fmt.Fprint(ctx.Stdout, bundle.FormatListing(res.Report.Entries))
	fmt.Fprintf(ctx.Stdout, "wrote %s (%d entries, root %s)\n", res.Report.Path, len(res.Report.Entries), res.Root)
	if res.Manifest != "" {
		fmt.Fprintf(ctx.Stdout, "manifest %s\n", res.Manifest)
	}

	if settingsPath != "" {
		abs, err := filepath.Abs(res.Report.Path)
		if err != nil {
			abs = res.Report.Path
		}
		if err := config.SaveSettings(settingsPath, config.Settings{LastDestination: abs}); err != nil {
			log.Warnf("remember destination: %v", err)
		}
	}
	return nil
}

// splitCSV converts a comma-separated list into a slice, trimming blanks.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func init() {
	cli.RegisterCommand(&BundleCommand{})
}
