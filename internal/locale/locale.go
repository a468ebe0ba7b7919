package locale

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/andresuchdata/shopgen/internal/domain"
	"github.com/spf13/viper"
)

var (
	ErrUnknownLocale  = errors.New("unknown locale")
	ErrFolderConflict = errors.New("locale folder already taken")
)

// Category is a product category together with the base names products in it can take.
type Category struct {
	Name     string   `mapstructure:"name"`
	Products []string `mapstructure:"products"`
}

// MovementLabels holds the localized display text for each movement kind.
type MovementLabels struct {
	Initial  string `mapstructure:"initial"`
	Sale     string `mapstructure:"sale"`
	Purchase string `mapstructure:"purchase"`
}

// Locale is the vocabulary bundle that drives one language variant of the dataset.
type Locale struct {
	Code          string         `mapstructure:"code"`
	Folder        string         `mapstructure:"folder"`
	Channels      []string       `mapstructure:"channels"`
	Categories    []Category     `mapstructure:"categories"`
	Modifiers     []string       `mapstructure:"modifiers"`
	MovementTypes MovementLabels `mapstructure:"movement_types"`
	MonthNames    []string       `mapstructure:"month_names"`
}

// MovementLabel returns the display text for kind.
func (l *Locale) MovementLabel(kind domain.MovementKind) string {
	switch kind {
	case domain.MovementInitial:
		return l.MovementTypes.Initial
	case domain.MovementSale:
		return l.MovementTypes.Sale
	case domain.MovementPurchase:
		return l.MovementTypes.Purchase
	default:
		return kind.String()
	}
}

// MonthName returns the name of month (1-12).
func (l *Locale) MonthName(month int) string {
	if month < 1 || month > len(l.MonthNames) {
		return ""
	}
	return l.MonthNames[month-1]
}

// Validate reports the first missing piece of vocabulary.
func (l *Locale) Validate() error {
	switch {
	case strings.TrimSpace(l.Code) == "":
		return fmt.Errorf("locale code must be provided")
	case strings.TrimSpace(l.Folder) == "":
		return fmt.Errorf("locale %s: folder must be provided", l.Code)
	case len(l.Channels) == 0:
		return fmt.Errorf("locale %s: at least one channel is required", l.Code)
	case len(l.Categories) == 0:
		return fmt.Errorf("locale %s: at least one category is required", l.Code)
	case len(l.Modifiers) == 0:
		return fmt.Errorf("locale %s: at least one modifier is required", l.Code)
	case len(l.MonthNames) != 12:
		return fmt.Errorf("locale %s: expected 12 month names, got %d", l.Code, len(l.MonthNames))
	case l.MovementTypes.Initial == "" || l.MovementTypes.Sale == "" || l.MovementTypes.Purchase == "":
		return fmt.Errorf("locale %s: all three movement labels are required", l.Code)
	}
	for _, c := range l.Categories {
		if c.Name == "" || len(c.Products) == 0 {
			return fmt.Errorf("locale %s: category %q has no products", l.Code, c.Name)
		}
	}
	return nil
}

// Registry resolves locale codes to bundles.
type Registry struct {
	locales map[string]*Locale
}

// NewRegistry returns a registry preloaded with the built-in bundles.
func NewRegistry() *Registry {
	r := &Registry{locales: make(map[string]*Locale)}
	for _, l := range builtins() {
		r.locales[l.Code] = l
	}
	return r
}

// Register adds or replaces a bundle after validating it.
func (r *Registry) Register(l *Locale) error {
	if err := l.Validate(); err != nil {
		return err
	}
	r.locales[l.Code] = l
	return nil
}

// Lookup returns the bundle for code.
func (r *Registry) Lookup(code string) (*Locale, error) {
	l, ok := r.locales[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLocale, code)
	}
	return l, nil
}

// Resolve looks up every code in order, dropping repeats. Two locales that would
// write into the same folder are rejected.
func (r *Registry) Resolve(codes []string) ([]*Locale, error) {
	out := make([]*Locale, 0, len(codes))
	folders := make(map[string]string, len(codes))
	for _, code := range codes {
		l, err := r.Lookup(strings.TrimSpace(code))
		if err != nil {
			return nil, err
		}
		if owner, ok := folders[l.Folder]; ok {
			if owner == l.Code {
				continue
			}
			return nil, fmt.Errorf("%w: %s and %s both export to %s", ErrFolderConflict, owner, l.Code, l.Folder)
		}
		folders[l.Folder] = l.Code
		out = append(out, l)
	}
	return out, nil
}

// Codes lists registered locale codes, sorted.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.locales))
	for code := range r.locales {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// LoadFile reads a bundle from a YAML, JSON or TOML file.
func LoadFile(path string) (*Locale, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read locale file %s: %w", path, err)
	}

	var l Locale
	if err := v.Unmarshal(&l); err != nil {
		return nil, fmt.Errorf("failed to decode locale file %s: %w", path, err)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid locale file %s: %w", path, err)
	}
	return &l, nil
}
