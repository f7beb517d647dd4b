package inject

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Settings configures kernel behavior.
type Settings struct {
	// InjectTag is the struct tag key marking injected fields.
	InjectTag string
	// InjectMethodPrefix is the name prefix of injection methods.
	InjectMethodPrefix string
	// AllowImplicitSelfBinding resolves unbound struct pointers and types
	// with registered constructors without an explicit binding.
	AllowImplicitSelfBinding bool
	// AllowNilInjection lets providers return nil.
	AllowNilInjection bool
	// MaxResolutionDepth bounds the depth of a dependency chain.
	MaxResolutionDepth int
	// CachePruningInterval is how often the background pruner runs.
	// Zero disables it; Scope.Release still clears its own instances.
	CachePruningInterval time.Duration
}

// DefaultSettings returns the settings used by New.
func DefaultSettings() Settings {
	return Settings{
		InjectTag:                "inject",
		InjectMethodPrefix:       "Inject",
		AllowImplicitSelfBinding: true,
		AllowNilInjection:        false,
		MaxResolutionDepth:       64,
		CachePruningInterval:     0,
	}
}

// LoadSettings reads settings from INJECT_* environment variables after
// loading the given .env files. With no files, an optional ".env" in the
// working directory is loaded.
//
//	INJECT_TAG, INJECT_METHOD_PREFIX, INJECT_IMPLICIT_SELF_BINDING,
//	INJECT_ALLOW_NIL, INJECT_MAX_DEPTH, INJECT_PRUNE_INTERVAL
func LoadSettings(files ...string) (Settings, error) {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("load .env: %w", err)
		}
	} else if err := godotenv.Load(files...); err != nil {
		return Settings{}, fmt.Errorf("load env files: %w", err)
	}

	s := DefaultSettings()
	s.InjectTag = env("INJECT_TAG", s.InjectTag)
	s.InjectMethodPrefix = env("INJECT_METHOD_PREFIX", s.InjectMethodPrefix)

	var err error
	if s.AllowImplicitSelfBinding, err = envBool("INJECT_IMPLICIT_SELF_BINDING", s.AllowImplicitSelfBinding); err != nil {
		return Settings{}, err
	}
	if s.AllowNilInjection, err = envBool("INJECT_ALLOW_NIL", s.AllowNilInjection); err != nil {
		return Settings{}, err
	}
	if s.MaxResolutionDepth, err = envInt("INJECT_MAX_DEPTH", s.MaxResolutionDepth); err != nil {
		return Settings{}, err
	}
	if s.CachePruningInterval, err = envDuration("INJECT_PRUNE_INTERVAL", s.CachePruningInterval); err != nil {
		return Settings{}, err
	}
	return s, s.validate()
}

func (s Settings) validate() error {
	switch {
	case s.InjectTag == "":
		return errors.New("inject: settings: InjectTag is empty")
	case s.MaxResolutionDepth <= 0:
		return fmt.Errorf("inject: settings: MaxResolutionDepth must be positive, got %d", s.MaxResolutionDepth)
	case s.CachePruningInterval < 0:
		return fmt.Errorf("inject: settings: CachePruningInterval must not be negative, got %s", s.CachePruningInterval)
	}
	return nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("inject: %s: %w", key, err)
	}
	return b, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("inject: %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("inject: %s: %w", key, err)
	}
	return d, nil
}
