// Package options provides the settings that configure where kernelql finds its mission
// configurations and kernel data, and how it logs and reports telemetry.
package options

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/huandu/go-clone"
	"github.com/kernelql/kernelql/internal/errors"
	"github.com/kernelql/kernelql/internal/telemetry"
	"github.com/kernelql/kernelql/internal/vfs"
	"github.com/kernelql/kernelql/pkg/log"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
)

const (
	// AppName names the service in exported traces and metrics.
	AppName = "kernelql"

	// DefaultConfigGlob matches the mission configuration documents directly under the config root.
	DefaultConfigGlob = "*.json"

	// DefaultListingCacheTTL is how long a directory listing is reused before the data root is walked again.
	DefaultListingCacheTTL = 5 * time.Minute

	defaultLogLevel = log.InfoLevel

	installConfigSubdir = "etc/kernelql/db"
)

// Version is reported with exported traces and metrics. It is set at build time.
var Version = "dev"

// Data root environment variables, in order of preference.
var dataRootEnvNames = []string{"SPICEROOT", "ALESPICEROOT", "ISISDATA"}

// Options represents options that configure the behavior of kernelql.
type Options struct {
	// FS is the filesystem configs and kernels are read from.
	FS vfs.FS

	Logger log.Logger

	// Writer receives the output of the console trace and metric exporters.
	Writer io.Writer

	Telemetry *telemetry.Options

	// Env holds the environment the options were decoded from.
	Env map[string]string

	// ConfigDir is the installed mission configuration directory.
	ConfigDir string

	// DebugConfigDir replaces ConfigDir when Debug is set.
	DebugConfigDir string

	// ConfigGlob selects the configuration documents inside the config root.
	ConfigGlob string

	// DataDirs are candidate kernel data roots; the first existing directory wins.
	DataDirs []string

	LogLevel log.Level

	// LogFormat names the log formatter, see log.ParseFormat.
	LogFormat string

	// Parallelism limits how many buckets are expanded or filtered at once.
	Parallelism int

	ListingCacheTTL time.Duration

	Debug bool
}

// NewOptions returns options filled with defaults.
func NewOptions() *Options {
	return &Options{
		FS:              vfs.NewOSFS(),
		Logger:          log.New(log.WithLevel(defaultLogLevel)),
		Writer:          os.Stdout,
		Telemetry:       new(telemetry.Options),
		Env:             map[string]string{},
		ConfigGlob:      DefaultConfigGlob,
		LogLevel:        defaultLogLevel,
		LogFormat:       log.AutoFormat,
		Parallelism:     runtime.NumCPU(),
		ListingCacheTTL: DefaultListingCacheTTL,
	}
}

// envVars is the environment layout decoded by FromEnv.
type envVars struct {
	ConfigDir       string `mapstructure:"KERNELQL_CONFIG_ROOT"`
	DebugConfigDir  string `mapstructure:"KERNELQL_DEBUG_CONFIG_ROOT"`
	CondaPrefix     string `mapstructure:"CONDA_PREFIX"`
	ConfigGlob      string `mapstructure:"KERNELQL_CONFIG_GLOB"`
	LogLevel        string `mapstructure:"KERNELQL_LOG_LEVEL"`
	LogFormat       string `mapstructure:"KERNELQL_LOG_FORMAT"`
	SpiceRoot       string `mapstructure:"SPICEROOT"`
	AleSpiceRoot    string `mapstructure:"ALESPICEROOT"`
	IsisData        string `mapstructure:"ISISDATA"`
	TraceExporter   string `mapstructure:"KERNELQL_TELEMETRY_TRACE_EXPORTER"`
	TraceEndpoint   string `mapstructure:"KERNELQL_TELEMETRY_TRACE_EXPORTER_HTTP_ENDPOINT"`
	TraceParent     string `mapstructure:"TRACEPARENT"`
	MetricExporter  string `mapstructure:"KERNELQL_TELEMETRY_METRIC_EXPORTER"`
	ListingCacheTTL string `mapstructure:"KERNELQL_LISTING_CACHE_TTL"`
	Parallelism     int    `mapstructure:"KERNELQL_PARALLELISM"`
	Debug           bool   `mapstructure:"KERNELQL_DEBUG"`
	TraceInsecure   bool   `mapstructure:"KERNELQL_TELEMETRY_TRACE_EXPORTER_INSECURE_ENDPOINT"`
	MetricInsecure  bool   `mapstructure:"KERNELQL_TELEMETRY_METRIC_EXPORTER_INSECURE_ENDPOINT"`
}

// FromEnv decodes options from the given environment. Unset values take the defaults of NewOptions.
func FromEnv(env map[string]string) (*Options, error) {
	var vars envVars

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &vars,
	})
	if err != nil {
		return nil, errors.New(err)
	}

	if err := decoder.Decode(env); err != nil {
		return nil, errors.New(ConfigurationError{Message: "invalid environment: " + err.Error()})
	}

	opts := &Options{
		Env:            env,
		ConfigDir:      vars.ConfigDir,
		DebugConfigDir: vars.DebugConfigDir,
		ConfigGlob:     vars.ConfigGlob,
		LogFormat:      vars.LogFormat,
		Parallelism:    vars.Parallelism,
		Debug:          vars.Debug,
		Telemetry: &telemetry.Options{
			TraceExporter:                  vars.TraceExporter,
			TraceExporterHTTPEndpoint:      vars.TraceEndpoint,
			TraceParent:                    vars.TraceParent,
			MetricExporter:                 vars.MetricExporter,
			TraceExporterInsecureEndpoint:  vars.TraceInsecure,
			MetricExporterInsecureEndpoint: vars.MetricInsecure,
		},
	}

	if opts.ConfigDir == "" && vars.CondaPrefix != "" {
		opts.ConfigDir = filepath.Join(vars.CondaPrefix, filepath.FromSlash(installConfigSubdir))
	}

	for _, dir := range []string{vars.SpiceRoot, vars.AleSpiceRoot, vars.IsisData} {
		if dir != "" {
			opts.DataDirs = append(opts.DataDirs, dir)
		}
	}

	if vars.ListingCacheTTL != "" {
		ttl, err := time.ParseDuration(vars.ListingCacheTTL)
		if err != nil {
			return nil, errors.New(ConfigurationError{Message: "invalid KERNELQL_LISTING_CACHE_TTL: " + err.Error()})
		}

		opts.ListingCacheTTL = ttl
	}

	if err := mergo.Merge(opts, NewOptions()); err != nil {
		return nil, errors.New(err)
	}

	// ErrorLevel is the zero Level, so it is applied after defaults are merged.
	if vars.LogLevel != "" {
		level, err := log.ParseLevel(vars.LogLevel)
		if err != nil {
			return nil, errors.New(ConfigurationError{Message: err.Error()})
		}

		opts.LogLevel = level
		opts.Logger.SetOptions(log.WithLevel(level))
	}

	formatter, err := log.ParseFormat(opts.LogFormat)
	if err != nil {
		return nil, errors.New(ConfigurationError{Message: err.Error()})
	}

	opts.Logger.SetOptions(log.WithFormatter(formatter))

	return opts, nil
}

// EnvFromOS returns the process environment as a map.
func EnvFromOS() map[string]string {
	env := make(map[string]string)

	for _, kv := range os.Environ() {
		if key, val, ok := strings.Cut(kv, "="); ok {
			env[key] = val
		}
	}

	return env
}

// ConfigRoot returns the directory holding the mission configuration documents.
// DebugConfigDir is used instead of ConfigDir when Debug is set.
func (opts *Options) ConfigRoot() (string, error) {
	dir := opts.ConfigDir
	if opts.Debug {
		dir = opts.DebugConfigDir
	}

	if dir == "" {
		return "", errors.New(ConfigurationError{Message: "config directory not set, use KERNELQL_CONFIG_ROOT"})
	}

	dir, err := expandPath(dir)
	if err != nil {
		return "", err
	}

	if !vfs.IsDir(opts.FS, dir) {
		return "", errors.New(ConfigurationError{Message: "config directory not found: " + dir})
	}

	return dir, nil
}

// DataRoot returns the first of DataDirs that is an existing directory.
func (opts *Options) DataRoot() (string, error) {
	for _, dir := range opts.DataDirs {
		dir, err := expandPath(dir)
		if err != nil {
			return "", err
		}

		if vfs.IsDir(opts.FS, dir) {
			return dir, nil
		}
	}

	return "", errors.New(ConfigurationError{
		Message: "please set env var " + strings.Join(dataRootEnvNames, ", ") + " to an existing directory",
	})
}

// Clone returns a copy of the options that can be modified without affecting the original.
// The filesystem and logger are shared.
func (opts *Options) Clone() *Options {
	newOpts := *opts
	newOpts.Env = clone.Clone(opts.Env).(map[string]string)
	newOpts.DataDirs = clone.Clone(opts.DataDirs).([]string)

	if opts.Telemetry != nil {
		newOpts.Telemetry = clone.Clone(opts.Telemetry).(*telemetry.Options)
	}

	return &newOpts
}

// WithConfigDir returns a copy of the options reading configs from dir.
func (opts *Options) WithConfigDir(dir string) *Options {
	newOpts := opts.Clone()
	newOpts.ConfigDir = dir
	newOpts.Debug = false

	return newOpts
}

func expandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", errors.New(ConfigurationError{Message: err.Error()})
	}

	return filepath.Clean(expanded), nil
}
