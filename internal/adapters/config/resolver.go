// Package config implements the Config Resolver: merging CLI flags,
// BOOK_-prefixed environment variables, and an on-disk TOML or JSON config
// file into one validated entities.BookConfig.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/tmoreland/bookweave/internal/core/entities"
	"github.com/tmoreland/bookweave/internal/core/usecases"
)

const envPrefix = "BOOK"

// Resolver implements usecases.ConfigResolver. Every call to Resolve builds
// its own viper.New() instance so repeated dev-mode rebuilds (and tests)
// never leak state through viper's global singleton.
type Resolver struct{}

// NewResolver creates a Resolver.
func NewResolver() *Resolver { return &Resolver{} }

var _ usecases.ConfigResolver = (*Resolver)(nil)

// fileSchema mirrors the documented config file shape exactly, used only to
// strict-decode a config file and reject unknown keys with
// ConfigError{Kind: UnknownField}.
type fileSchema struct {
	Book struct {
		Title         string   `toml:"title" json:"title"`
		Description   string   `toml:"description" json:"description"`
		Authors       []string `toml:"authors" json:"authors"`
		Language      string   `toml:"language" json:"language"`
		Logo          string   `toml:"logo" json:"logo"`
		RepositoryURL string   `toml:"repository-url" json:"repository-url"`
	} `toml:"book" json:"book"`
	Output struct {
		HTML struct {
			AllowHTML      bool     `toml:"allow-html" json:"allow-html"`
			AdditionalCSS  []string `toml:"additional-css" json:"additional-css"`
			AdditionalJS   []string `toml:"additional-js" json:"additional-js"`
			MathjaxSupport bool     `toml:"mathjax-support" json:"mathjax-support"`
		} `toml:"html" json:"html"`
	} `toml:"output" json:"output"`
	Markdown struct {
		Format string `toml:"format" json:"format"`
	} `toml:"markdown" json:"markdown"`
	Search struct {
		Enable            bool    `toml:"enable" json:"enable"`
		LimitResults      int     `toml:"limit-results" json:"limit-results"`
		BoostTitle        float64 `toml:"boost-title" json:"boost-title"`
		BoostHierarchy    float64 `toml:"boost-hierarchy" json:"boost-hierarchy"`
		BoostParagraph    float64 `toml:"boost-paragraph" json:"boost-paragraph"`
		HeadingSplitLevel int     `toml:"heading-split-level" json:"heading-split-level"`
	} `toml:"search" json:"search"`
	Paths struct {
		Templates string `toml:"templates" json:"templates"`
	} `toml:"paths" json:"paths"`
	Dev struct {
		DebounceMs int `toml:"debounce_ms" json:"debounce_ms"`
		Port       int `toml:"port" json:"port"`
	} `toml:"dev" json:"dev"`
}

// Resolve implements the precedence rule, highest wins: direct CLI flags,
// BOOK_ environment variables, an explicit or default-named config file,
// then built-in defaults.
func (r *Resolver) Resolve(flags usecases.CLIFlags) (*entities.BookConfig, error) {
	v := viper.New()
	setDefaults(v)

	// Layer 4 (default-named file) is merged first, then layer 3 (explicit
	// -c file) merges on top of it field-by-field, so a field only present
	// in book.toml/book.json still applies even when -c is also given.
	defaultPath, err := defaultConfigFile(flags.Input)
	if err != nil {
		return nil, err
	}
	if defaultPath != "" {
		if err := mergeConfigLayer(v, defaultPath); err != nil {
			return nil, err
		}
	}

	if flags.Config != "" {
		explicitPath := expandPath(flags.Config)
		if _, statErr := os.Stat(explicitPath); statErr != nil {
			return nil, &entities.ConfigError{Kind: entities.ConfigInvalidValue, Source: explicitPath, Err: statErr}
		}
		if err := mergeConfigLayer(v, explicitPath); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	cfg := entities.DefaultBookConfig()

	cfg.Book.Title = v.GetString("book.title")
	cfg.Book.Description = v.GetString("book.description")
	cfg.Book.Authors = v.GetStringSlice("book.authors")
	cfg.Book.Language = v.GetString("book.language")
	cfg.Book.Logo = v.GetString("book.logo")
	cfg.Book.RepositoryURL = v.GetString("book.repository-url")

	cfg.Markdown = entities.MarkdownFlavor(v.GetString("markdown.format"))

	cfg.HTML.AllowRawHTML = v.GetBool("output.html.allow-html")
	cfg.HTML.AdditionalCSS = v.GetStringSlice("output.html.additional-css")
	cfg.HTML.AdditionalJS = v.GetStringSlice("output.html.additional-js")
	cfg.HTML.MathJax = v.GetBool("output.html.mathjax-support")

	cfg.Search.Enabled = v.GetBool("search.enable")
	cfg.Search.LimitResults = v.GetInt("search.limit-results")
	cfg.Search.BoostTitle = v.GetFloat64("search.boost-title")
	cfg.Search.BoostHierarchy = v.GetFloat64("search.boost-hierarchy")
	cfg.Search.BoostParagraph = v.GetFloat64("search.boost-paragraph")
	cfg.Search.HeadingSplitLevel = v.GetInt("search.heading-split-level")

	cfg.Paths.TemplateDir = expandPath(v.GetString("paths.templates"))
	cfg.Paths.InputRoot = expandPath(flags.Input)
	cfg.Paths.OutputRoot = expandPath(flags.Output)

	cfg.Dev.DebounceMillis = v.GetInt("dev.debounce_ms")
	cfg.Dev.Port = v.GetInt("dev.port")

	// Direct CLI flags are the highest layer and win over everything above.
	if flags.Port != 0 {
		cfg.Dev.Port = flags.Port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	info, statErr := os.Stat(cfg.Paths.InputRoot)
	if statErr != nil || !info.IsDir() {
		return nil, &entities.ConfigError{
			Kind:  entities.ConfigMissingInput,
			Field: "paths.input",
			Err:   fmt.Errorf("input root %q does not exist or is not a directory", cfg.Paths.InputRoot),
		}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := entities.DefaultBookConfig()
	v.SetDefault("book.title", d.Book.Title)
	v.SetDefault("book.language", d.Book.Language)
	v.SetDefault("markdown.format", string(d.Markdown))
	v.SetDefault("output.html.allow-html", d.HTML.AllowRawHTML)
	v.SetDefault("output.html.mathjax-support", d.HTML.MathJax)
	v.SetDefault("search.enable", d.Search.Enabled)
	v.SetDefault("search.limit-results", d.Search.LimitResults)
	v.SetDefault("search.boost-title", d.Search.BoostTitle)
	v.SetDefault("search.boost-hierarchy", d.Search.BoostHierarchy)
	v.SetDefault("search.boost-paragraph", d.Search.BoostParagraph)
	v.SetDefault("search.heading-split-level", d.Search.HeadingSplitLevel)
	v.SetDefault("dev.debounce_ms", d.Dev.DebounceMillis)
	v.SetDefault("dev.port", d.Dev.Port)
}

// mergeConfigLayer strict-validates path then merges it into v, field by
// field, on top of whatever v already has loaded.
func mergeConfigLayer(v *viper.Viper, path string) error {
	if err := validateStrict(path); err != nil {
		return err
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return &entities.ConfigError{Kind: entities.ConfigInvalidValue, Source: path, Err: err}
	}
	return nil
}

// defaultConfigFile implements precedence layer 4: a single default-named
// book.toml/book.json in the input root. Two default-named files of
// different formats both present is a ConfigError::MultipleConfigs.
func defaultConfigFile(inputRoot string) (string, error) {
	if inputRoot == "" {
		return "", nil
	}
	root := expandPath(inputRoot)
	tomlPath := filepath.Join(root, "book.toml")
	jsonPath := filepath.Join(root, "book.json")
	_, tomlErr := os.Stat(tomlPath)
	_, jsonErr := os.Stat(jsonPath)

	switch {
	case tomlErr == nil && jsonErr == nil:
		return "", &entities.ConfigError{
			Kind: entities.ConfigMultipleConfigs,
			Err:  fmt.Errorf("both %s and %s exist", tomlPath, jsonPath),
		}
	case tomlErr == nil:
		return tomlPath, nil
	case jsonErr == nil:
		return jsonPath, nil
	default:
		return "", nil
	}
}

// validateStrict decodes the config file into fileSchema with unknown-field
// rejection enabled, surfacing any unrecognized key as ConfigError::UnknownField
// before the permissive viper merge runs.
func validateStrict(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &entities.ConfigError{Kind: entities.ConfigInvalidValue, Source: path, Err: err}
	}

	var schema fileSchema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(strings.NewReader(string(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&schema); err != nil {
			return &entities.ConfigError{Kind: entities.ConfigUnknownField, Source: path, Err: err}
		}
	case ".json":
		dec := json.NewDecoder(strings.NewReader(string(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&schema); err != nil {
			return &entities.ConfigError{Kind: entities.ConfigUnknownField, Source: path, Err: err}
		}
	default:
		return &entities.ConfigError{
			Kind:   entities.ConfigInvalidValue,
			Source: path,
			Err:    fmt.Errorf("unrecognized config extension %q (want .toml or .json)", filepath.Ext(path)),
		}
	}
	return nil
}

// expandPath performs shell-style ~ and environment-variable expansion, per
//: "Path fields undergo shell-style ~ and environment expansion before use."
func expandPath(p string) string {
	if p == "" {
		return p
	}
	p = os.ExpandEnv(p)
	if p == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return p
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
