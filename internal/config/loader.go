package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Section is the TOML table holding the highlight settings.
const Section = "highlight"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "YANKFLASH_"

// envMapping maps environment variables to keys in the highlight section.
var envMapping = map[string]string{
	"YANKFLASH_DURATION": "duration",
	"YANKFLASH_BG_COLOR": "background",
	"YANKFLASH_FG_COLOR": "foreground",
	"YANKFLASH_GROUP":    "group",
}

// FileSystem abstracts file reads so tests can use in-memory files.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader builds the base configuration from a file and the environment.
type Loader struct {
	fs     FileSystem
	path   string
	lookup func(string) (string, bool)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFileSystem replaces the file system used to read the config file.
func WithFileSystem(fsys FileSystem) LoaderOption {
	return func(l *Loader) {
		l.fs = fsys
	}
}

// WithEnv replaces the environment lookup (os.LookupEnv by default).
func WithEnv(lookup func(string) (string, bool)) LoaderOption {
	return func(l *Loader) {
		l.lookup = lookup
	}
}

// NewLoader creates a loader for the TOML file at path. An empty path
// skips the file layer.
func NewLoader(path string, opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:     OSFS{},
		path:   path,
		lookup: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the config file path.
func (l *Loader) Path() string {
	return l.path
}

// Load reads the file and environment layers over the defaults.
// A missing file is not an error. Invalid values keep their defaults and
// are reported in the returned error alongside the usable Config.
func (l *Loader) Load() (Config, error) {
	fileLayer, err := l.loadFile()
	if err != nil {
		return Default(), err
	}

	merged := DeepMerge(fileLayer, l.loadEnv())
	section, _ := merged[Section].(map[string]any)
	return decode(Default(), section)
}

// loadFile parses the TOML file into a map.
func (l *Loader) loadFile() (map[string]any, error) {
	if l.path == "" {
		return nil, nil
	}

	data, err := l.fs.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", l.path, err)
	}

	var out map[string]any
	if err := toml.Unmarshal(data, &out); err != nil {
		perr := &ParseError{Path: l.path, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return nil, perr
	}
	return out, nil
}

// loadEnv collects the YANKFLASH_* overrides into a highlight section.
func (l *Loader) loadEnv() map[string]any {
	section := make(map[string]any)
	for env, key := range envMapping {
		if val, ok := l.lookup(env); ok {
			section[key] = parseEnvValue(val)
		}
	}
	if len(section) == 0 {
		return nil
	}
	return map[string]any{Section: section}
}

// parseEnvValue converts an environment string to an int when possible.
func parseEnvValue(val string) any {
	if i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil {
		return i
	}
	return val
}

// decode applies a highlight section to cfg. Unknown keys are reported as
// *ValueError and otherwise ignored.
func decode(cfg Config, section map[string]any) (Config, error) {
	var errs []error

	for key, v := range section {
		switch key {
		case "duration":
			n, err := toInt(Section+".duration", v)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			cfg.Duration = clampDuration(n)
		case "background":
			n, err := toInt(Section+".background", v)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			cfg.Background = n
		case "foreground":
			n, err := toInt(Section+".foreground", v)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			cfg.Foreground = n
		case "group":
			s, ok := v.(string)
			if !ok || strings.TrimSpace(s) == "" {
				errs = append(errs, &ValueError{Key: Section + ".group", Value: v, Message: "expected a non-empty string"})
				continue
			}
			cfg.Group = s
		default:
			errs = append(errs, &ValueError{Key: Section + "." + key, Value: v, Message: "unknown setting"})
		}
	}

	return cfg, errors.Join(errs...)
}

// DeepMerge recursively merges src into dst.
// Values in src override values in dst.
// Maps are merged recursively; other types are replaced.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	if src == nil {
		return dst
	}

	for key, srcVal := range src {
		dstVal, exists := dst[key]
		if !exists {
			dst[key] = srcVal
			continue
		}

		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dstVal.(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
		} else {
			dst[key] = srcVal
		}
	}

	return dst
}

