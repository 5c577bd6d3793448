package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// OverrideEnvVar names a .env file that wins over the --env flag.
const OverrideEnvVar = "MTROUTE_ENV_FILE"

// EnvOrigin says which candidate an .env file was loaded from.
type EnvOrigin string

const (
	EnvOriginOverride EnvOrigin = "override"
	EnvOriginFlag     EnvOrigin = "flag"
	EnvOriginBasename EnvOrigin = "basename"
	EnvOriginDefault  EnvOrigin = "default"
)

// EnvSource is the .env file that was loaded.
type EnvSource struct {
	Path   string
	Origin EnvOrigin
}

// EnvLoader loads the first readable .env file out of, in order: the
// override variable, the --env flag, the flag's basename in the working
// directory, and the default path. Values from the file replace variables
// already set in the process.
type EnvLoader struct {
	value       *string
	defaultPath string
	lookupEnv   func(string) (string, bool)
}

// AddEnvFlag registers an --env flag and returns an EnvLoader.
func AddEnvFlag(fs *flag.FlagSet, defaultPath, description string) *EnvLoader {
	if fs == nil {
		fs = flag.CommandLine
	}
	if defaultPath == "" {
		defaultPath = ".env"
	}
	if description == "" {
		description = "Path to the .env file"
	}

	value := fs.String("env", defaultPath, description+" (overridden by $"+OverrideEnvVar+")")
	return &EnvLoader{
		value:       value,
		defaultPath: defaultPath,
		lookupEnv:   os.LookupEnv,
	}
}

// Load overloads the process environment from the first candidate that parses.
func (l *EnvLoader) Load() (EnvSource, error) {
	if l == nil {
		return EnvSource{}, fmt.Errorf("env loader is nil")
	}

	candidates := l.candidates()
	tried := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if err := godotenv.Overload(candidate.Path); err != nil {
			tried = append(tried, candidate.Path)
			continue
		}
		return candidate, nil
	}
	return EnvSource{}, fmt.Errorf("no env file loaded (tried %s)", strings.Join(tried, ", "))
}

func (l *EnvLoader) candidates() []EnvSource {
	var out []EnvSource
	seen := map[string]bool{}
	add := func(path string, origin EnvOrigin) {
		path = strings.TrimSpace(path)
		if path == "" || seen[path] {
			return
		}
		seen[path] = true
		out = append(out, EnvSource{Path: path, Origin: origin})
	}

	if l.lookupEnv != nil {
		if custom, ok := l.lookupEnv(OverrideEnvVar); ok {
			add(custom, EnvOriginOverride)
		}
	}

	requested := l.defaultPath
	if l.value != nil && strings.TrimSpace(*l.value) != "" {
		requested = strings.TrimSpace(*l.value)
	}
	add(requested, EnvOriginFlag)
	if base := filepath.Base(requested); base != requested {
		add(base, EnvOriginBasename)
	}
	add(l.defaultPath, EnvOriginDefault)
	return out
}
