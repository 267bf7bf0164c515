package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/talklike/internal/config"
	"github.com/matzehuels/talklike/pkg/buildinfo"
	"github.com/matzehuels/talklike/pkg/cache"
	"github.com/matzehuels/talklike/pkg/catalog"
	"github.com/matzehuels/talklike/pkg/httputil"
	tio "github.com/matzehuels/talklike/pkg/io"
	"github.com/matzehuels/talklike/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "talklike"

	// localFiltersDir is searched when no filter directory is configured.
	localFiltersDir = "filters"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	profile     config.Profile
	configPath  string
	filtersDirs []string
	remoteURL   string
	noCache     bool
	verbose     bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:  newLogger(w, level),
		profile: config.DefaultProfile(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "talklike",
		Short: "Talklike rewrites text in the voice of a character",
		Long: `Talklike runs text through filters: pipelines of word substitutions,
suffix and prefix rewrites, sentence augmentations and algorithmic effects
that make prose sound like a pirate, a 1970s disco host or a duck.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.configPath, "config", "", "profile path (default ~/.config/talklike/config.yaml)")
	flags.StringSliceVarP(&c.filtersDirs, "filters-dir", "d", nil, "directories searched for filter definitions")
	flags.StringVar(&c.remoteURL, "remote", "", "base URL of a remote filter catalog")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the on-disk cache")

	// Register all subcommands
	root.AddCommand(c.transformCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.explainCommand())
	root.AddCommand(c.lintCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.interactiveCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.streamCommand())
	root.AddCommand(c.mcpCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the profile and applies the log level. Flags win over the
// profile.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	path := c.configPath
	if path == "" {
		if p, err := config.ProfilePath(); err == nil {
			path = p
		}
	}
	profile, err := config.LoadProfile(path)
	if err != nil {
		return err
	}
	c.profile = profile

	level := LogInfo
	if lvl, err := log.ParseLevel(profile.Log.Level); err == nil {
		level = lvl
	}
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() (*pipeline.Runner, error) {
	backend, err := c.newCache()
	if err != nil {
		return nil, err
	}
	src, err := c.newSource(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return pipeline.NewRunner(src, backend, nil, c.Logger), nil
}

func (c *CLI) newCache() (cache.Cache, error) {
	if c.noCache || c.profile.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	dir := c.profile.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// newSource stacks the configured directories, the remote catalog and the
// built-in filters. The first source that knows a filter wins.
func (c *CLI) newSource(backend cache.Cache) (catalog.Source, error) {
	var sources []catalog.Source
	if dirs := c.dirs(); len(dirs) > 0 {
		sources = append(sources, catalog.NewDirSource(dirs...))
	}
	if url := c.remote(); url != "" {
		client := httputil.NewClient(backend)
		remote, err := catalog.NewRemoteSource(url, client, catalog.WithTTL(c.profile.Cache.TTL))
		if err != nil {
			return nil, err
		}
		sources = append(sources, remote)
	}
	if len(sources) == 0 {
		return catalog.Builtin(), nil
	}
	return catalog.NewMultiSource(append(sources, catalog.Builtin())...), nil
}

// dirs returns the filter directories from the flags, the profile, or
// ./filters when it exists.
func (c *CLI) dirs() []string {
	switch {
	case len(c.filtersDirs) > 0:
		return c.filtersDirs
	case len(c.profile.FiltersDirs) > 0:
		return c.profile.FiltersDirs
	}
	if info, err := os.Stat(localFiltersDir); err == nil && info.IsDir() {
		return []string{localFiltersDir}
	}
	return nil
}

func (c *CLI) remote() string {
	if c.remoteURL != "" {
		return c.remoteURL
	}
	return c.profile.RemoteURL
}

// compile resolves arg as a definition file when it names one, otherwise
// as a catalog id.
func (c *CLI) compile(ctx context.Context, runner *pipeline.Runner, arg string) (*pipeline.Compiled, error) {
	if isDefinitionFile(arg) {
		def, err := tio.Import(arg)
		if err != nil {
			return nil, err
		}
		return pipeline.CompileDefinition(tio.Stem(arg), def)
	}
	return runner.Compile(ctx, arg)
}

// isDefinitionFile reports whether arg is a path to an existing definition
// rather than a catalog id. "pirate.yaml" is a file only if it exists in
// the working directory; "./pirate.yaml" always is.
func isDefinitionFile(arg string) bool {
	if strings.ContainsAny(arg, `/\`) {
		return true
	}
	if !slices.Contains(tio.Extensions, strings.ToLower(filepath.Ext(arg))) {
		return false
	}
	info, err := os.Stat(arg)
	return err == nil && !info.IsDir()
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/talklike/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// completeFilters offers catalog ids for the first argument. File names
// stay available since definition paths are accepted too.
func (c *CLI) completeFilters(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	runner, err := c.newRunner()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer runner.Close()

	entries, err := runner.List(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var ids []string
	for _, e := range entries {
		if strings.HasPrefix(e.ID, toComplete) {
			ids = append(ids, e.ID+"\t"+e.Name)
		}
	}
	return ids, cobra.ShellCompDirectiveDefault
}
