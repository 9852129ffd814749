package runner

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/projectdiscovery/bundler"
	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"
	errorutil "github.com/projectdiscovery/utils/errors"
	fileutil "github.com/projectdiscovery/utils/file"
)

type Options struct {
	Surface        string              // Name of the surface to enumerate
	Words          goflags.StringSlice // Words to check instead of taking a census
	Output         string
	PartsDir       string
	Config         string
	SurfaceConfig  string
	Depth          int
	PrefixDepth    int
	MasterPrefix   string
	Workers        int
	LargestClass   int
	HomologyOrders goflags.StringSlice
	Estimate       bool
	ListSurfaces   bool
	Verbose        bool
	Silent         bool
	Limit          int
	MaxMemory      int
}

func ParseFlags() *Options {
	var maxMemory string
	opts := &Options{}
	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription(`Census of mapping class group words for building bundles over the circle.`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&opts.Surface, "surface", "s", "S_1_1", "name of the surface to enumerate"),
		flagSet.StringSliceVarP(&opts.Words, "word", "w", nil, "words to check instead of taking a census (stdin, comma-separated, file)", goflags.FileCommaSeparatedStringSliceOptions),
		flagSet.IntVarP(&opts.Depth, "depth", "d", 8, "longest word to enumerate"),
		flagSet.StringVarP(&opts.MasterPrefix, "master-prefix", "mp", "", "only enumerate words starting with this prefix"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.BoolVarP(&opts.Estimate, "estimate", "es", false, "estimate census size without enumerating it"),
		flagSet.StringVarP(&opts.Output, "output", "o", "", "output file to write the census"),
		flagSet.StringVarP(&opts.PartsDir, "parts-dir", "pd", "", "directory receiving one csv file per census partition"),
		flagSet.BoolVarP(&opts.ListSurfaces, "list-surfaces", "ls", false, "list the configured surfaces"),
		flagSet.BoolVarP(&opts.Verbose, "verbose", "v", false, "display verbose output"),
		flagSet.BoolVar(&opts.Silent, "silent", false, "display results only"),
		flagSet.CallbackVar(printVersion, "version", "display bundler version"),
	)

	flagSet.CreateGroup("config", "Config",
		flagSet.StringVar(&opts.Config, "config", "", `bundler cli config file (default '$HOME/.config/bundler/config.yaml')`),
		flagSet.StringVar(&opts.SurfaceConfig, "sc", "", fmt.Sprintf(`bundler surface config file (default '$HOME/.config/bundler/surfaces_%v.yaml')`, version)),
		flagSet.IntVar(&opts.Limit, "limit", 0, "limit the number of results to return (default 0)"),
	)

	flagSet.CreateGroup("tuning", "Tuning",
		flagSet.IntVarP(&opts.PrefixDepth, "prefix-depth", "pfd", 6, "length of the prefixes the census is split into"),
		flagSet.IntVarP(&opts.Workers, "workers", "c", 1, "number of prefixes explored concurrently"),
		flagSet.IntVarP(&opts.LargestClass, "largest-class", "lc", 20, "largest class explored before accepting a word (-1 = whole class)"),
		flagSet.StringSliceVarP(&opts.HomologyOrders, "homology-order", "ho", nil, "only keep words with these homology orders (comma-separated)", goflags.CommaSeparatedStringSliceOptions),
		flagSet.StringVarP(&maxMemory, "max-memory", "mm", "", "largest census merged in memory (kb, mb, gb, tb) (default mb)"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("Could not read flags: %s\n", err)
	}

	if opts.Config != "" {
		if err := flagSet.MergeConfigFile(opts.Config); err != nil {
			gologger.Error().Msgf("failed to read config file got %v", err)
		}
	}

	if opts.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	} else if opts.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	showBanner()

	opts.MaxMemory = bundler.MaxInMemoryDedupeSize
	if len(maxMemory) > 0 {
		maxSize, err := convertFileSizeToBytes(maxMemory)
		if err != nil {
			gologger.Fatal().Msgf("Could not parse max-memory: %s\n", err)
		}
		opts.MaxMemory = maxSize
	}

	// read from stdin
	if fileutil.HasStdin() {
		bin, err := io.ReadAll(os.Stdin)
		if err != nil {
			gologger.Error().Msgf("failed to read input from stdin got %v", err)
		}
		opts.Words = append(opts.Words, strings.Fields(string(bin))...)
	}

	if opts.Depth <= 0 && len(opts.Words) == 0 && !opts.ListSurfaces {
		gologger.Fatal().Msgf("bundler: depth must be positive")
	}
	return opts
}

// LoadSurface returns the selected surface from the surface config, or
// from the default one.
func (o *Options) LoadSurface() (*bundler.Surface, error) {
	config, err := o.LoadConfig()
	if err != nil {
		return nil, err
	}
	return config.Surface(o.Surface)
}

// LoadConfig reads the surface config file when one is given.
func (o *Options) LoadConfig() (*bundler.Config, error) {
	if o.SurfaceConfig == "" {
		return &bundler.DefaultConfig, nil
	}
	config, err := bundler.NewConfig(o.SurfaceConfig)
	if err != nil {
		return nil, errorutil.NewWithTag("bundler", "failed to read %v file got: %v", o.SurfaceConfig, err)
	}
	return config, nil
}

// EngineOptions converts the cli flags to engine options.
func (o *Options) EngineOptions() (*bundler.Options, error) {
	opts := &bundler.Options{
		PrefixDepth:  o.PrefixDepth,
		MasterPrefix: o.MasterPrefix,
		Workers:      o.Workers,
		LargestClass: o.LargestClass,
	}
	for _, v := range o.HomologyOrders {
		order, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, errorutil.NewWithTag("bundler", "invalid homology order %q", v)
		}
		opts.AcceptableHomologyOrders = append(opts.AcceptableHomologyOrders, order)
	}
	return opts, nil
}

func printVersion() {
	gologger.Info().Msgf("Current version: %s", version)
	os.Exit(0)
}

func convertFileSizeToBytes(maxFileSize string) (int, error) {
	maxFileSize = strings.ToLower(maxFileSize)
	// default to mb
	if size, err := strconv.Atoi(maxFileSize); err == nil {
		return size * 1024 * 1024, nil
	}
	if len(maxFileSize) < 3 {
		return 0, errorutil.New("invalid max-memory value")
	}
	sizeUnit := maxFileSize[len(maxFileSize)-2:]
	size, err := strconv.Atoi(maxFileSize[:len(maxFileSize)-2])
	if err != nil {
		return 0, err
	}
	if size < 0 {
		return 0, errorutil.New("max-memory cannot be negative")
	}
	switch sizeUnit {
	case "kb":
		return size * 1024, nil
	case "mb":
		return size * 1024 * 1024, nil
	case "gb":
		return size * 1024 * 1024 * 1024, nil
	case "tb":
		return size * 1024 * 1024 * 1024 * 1024, nil
	}
	return 0, errorutil.New("Unsupported max-memory unit")
}
