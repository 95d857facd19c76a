package kinship

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/kinship/internal/archive"
)

// Gendered is a label with a masculine and a feminine form.
type Gendered struct {
	Male   string `yaml:"male" json:"male"`
	Female string `yaml:"female" json:"female"`
}

// For picks the feminine form for GenderFemale and the masculine form for
// everything else, including unknown.
func (g Gendered) For(gender archive.Gender) string {
	if gender == archive.GenderFemale {
		return g.Female
	}
	return g.Male
}

// Labels is the full table of strings the resolver can produce.
type Labels struct {
	Locale           string   `yaml:"locale" json:"locale"`
	Self             string   `yaml:"self" json:"self"`
	Relative         Gendered `yaml:"relative" json:"relative"`
	Parent           Gendered `yaml:"parent" json:"parent"`
	Grandparent      Gendered `yaml:"grandparent" json:"grandparent"`
	GreatGrandparent Gendered `yaml:"greatGrandparent" json:"greatGrandparent"`
	Ancestor         string   `yaml:"ancestor" json:"ancestor"`
	Child            Gendered `yaml:"child" json:"child"`
	Grandchild       Gendered `yaml:"grandchild" json:"grandchild"`
	GreatGrandchild  Gendered `yaml:"greatGrandchild" json:"greatGrandchild"`
	Descendant       string   `yaml:"descendant" json:"descendant"`
	Sibling          Gendered `yaml:"sibling" json:"sibling"`
	Spouse           Gendered `yaml:"spouse" json:"spouse"`
}

// ForClassification maps a classified path to a label. Siblings win over
// everything, spouses only count at generation zero, the rest is decided by
// the net generation alone.
func (l Labels) ForClassification(c Classification, gender archive.Gender) string {
	if c.Sibling {
		return l.Sibling.For(gender)
	}
	net := c.Net()
	if net == 0 && c.Spouse {
		return l.Spouse.For(gender)
	}
	switch {
	case net == 1:
		return l.Parent.For(gender)
	case net == 2:
		return l.Grandparent.For(gender)
	case net == 3:
		return l.GreatGrandparent.For(gender)
	case net > 3:
		return l.Ancestor
	case net == -1:
		return l.Child.For(gender)
	case net == -2:
		return l.Grandchild.For(gender)
	case net == -3:
		return l.GreatGrandchild.For(gender)
	case net < -3:
		return l.Descendant
	default:
		return l.Relative.For(gender)
	}
}

// validate reports the first empty entry.
func (l Labels) validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"self", l.Self},
		{"relative.male", l.Relative.Male},
		{"relative.female", l.Relative.Female},
		{"parent.male", l.Parent.Male},
		{"parent.female", l.Parent.Female},
		{"grandparent.male", l.Grandparent.Male},
		{"grandparent.female", l.Grandparent.Female},
		{"greatGrandparent.male", l.GreatGrandparent.Male},
		{"greatGrandparent.female", l.GreatGrandparent.Female},
		{"ancestor", l.Ancestor},
		{"child.male", l.Child.Male},
		{"child.female", l.Child.Female},
		{"grandchild.male", l.Grandchild.Male},
		{"grandchild.female", l.Grandchild.Female},
		{"greatGrandchild.male", l.GreatGrandchild.Male},
		{"greatGrandchild.female", l.GreatGrandchild.Female},
		{"descendant", l.Descendant},
		{"sibling.male", l.Sibling.Male},
		{"sibling.female", l.Sibling.Female},
		{"spouse.male", l.Spouse.Male},
		{"spouse.female", l.Spouse.Female},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("labels %s: %s is required", l.Locale, f.name)
		}
	}
	return nil
}

//go:embed locales/*.yaml
var localeFS embed.FS

// catalog holds every embedded label table. The first tag is the fallback.
type catalog struct {
	tags    []language.Tag
	tables  []Labels
	matcher language.Matcher
}

var defaultCatalog = mustLoadCatalog()

// Russian is the built-in label table.
var Russian = defaultCatalog.tables[0]

func mustLoadCatalog() *catalog {
	c, err := loadCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

func loadCatalog() (*catalog, error) {
	paths, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	var files []string
	for _, p := range paths {
		files = append(files, p.Name())
	}
	// ru first: it is the source locale and the fallback.
	sort.SliceStable(files, func(i, j int) bool {
		if files[i] == "ru.yaml" {
			return true
		}
		if files[j] == "ru.yaml" {
			return false
		}
		return files[i] < files[j]
	})

	c := &catalog{}
	for _, name := range files {
		data, err := localeFS.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		l, err := ParseLabels(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		tag, err := language.Parse(l.Locale)
		if err != nil {
			return nil, fmt.Errorf("parse %s: locale tag %q: %w", name, l.Locale, err)
		}
		c.tags = append(c.tags, tag)
		c.tables = append(c.tables, l)
	}
	if len(c.tables) == 0 {
		return nil, fmt.Errorf("no label catalogs found")
	}
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

// ParseLabels decodes and checks a YAML label table.
func ParseLabels(data []byte) (Labels, error) {
	var l Labels
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Labels{}, err
	}
	if strings.TrimSpace(l.Locale) == "" {
		return Labels{}, fmt.Errorf("labels: locale is required")
	}
	if err := l.validate(); err != nil {
		return Labels{}, err
	}
	return l, nil
}

// LoadLabels returns the embedded table that best matches the given locale
// list (BCP 47 tags or an Accept-Language value). Anything unrecognized
// falls back to Russian.
func LoadLabels(locales ...string) Labels {
	_, idx := language.MatchStrings(defaultCatalog.matcher, locales...)
	return defaultCatalog.tables[idx]
}

// Locales lists the embedded catalog tags in fallback order.
func Locales() []string {
	out := make([]string, len(defaultCatalog.tags))
	for i, t := range defaultCatalog.tags {
		out[i] = t.String()
	}
	return out
}
