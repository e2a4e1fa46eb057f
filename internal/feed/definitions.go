package feed

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/criblink/featured/internal/api"
	"github.com/criblink/featured/internal/filter"
	"github.com/criblink/featured/internal/region"
	"gopkg.in/yaml.v3"
)

const (
	searchPath = "/search"
	// RegionPlaceholder in a title is replaced by the resolved region.
	RegionPlaceholder = "{region}"
)

// DefinitionSpec is the declarative form of a CategoryDefinition, as read
// from a definitions file.
type DefinitionSpec struct {
	Title            string `yaml:"title" json:"title"`
	PropertyType     string `yaml:"property_type" json:"property_type"`
	PurchaseCategory string `yaml:"purchase_category" json:"purchase_category"`
}

type definitionsFile struct {
	Categories []DefinitionSpec `yaml:"categories"`
}

var defaultSpecs = []DefinitionSpec{
	{Title: "Duplexes for Rent in {region}", PropertyType: "Duplex", PurchaseCategory: "Rent"},
	{Title: "Bungalows for Sale in {region}", PropertyType: "Bungalow", PurchaseCategory: "Sale"},
	{Title: "Apartments for Rent in {region}", PropertyType: "Apartment", PurchaseCategory: "Rent"},
	{Title: "Land for Sale in {region}", PropertyType: "Land", PurchaseCategory: "Sale"},
	{Title: "Terraced Houses for Sale in {region}", PropertyType: "Terrace", PurchaseCategory: "Sale"},
	{Title: "Self Contain for Rent in {region}", PropertyType: "Self Contain", PurchaseCategory: "Rent"},
}

// DefaultSpecs returns the home page row specs.
func DefaultSpecs() []DefinitionSpec {
	return append([]DefinitionSpec(nil), defaultSpecs...)
}

// DefaultDefinitions returns the home page rows.
func DefaultDefinitions() []CategoryDefinition {
	defs, err := Compile(defaultSpecs)
	if err != nil {
		panic(err)
	}
	return defs
}

// Compile turns specs into definitions. A spec needs a title and at least
// one of property type or purchase category.
func Compile(specs []DefinitionSpec) ([]CategoryDefinition, error) {
	defs := make([]CategoryDefinition, 0, len(specs))
	for i, spec := range specs {
		def, err := spec.Definition()
		if err != nil {
			return nil, fmt.Errorf("category %d: %w", i+1, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Definition compiles a single spec. Matching accepts the common spellings
// of a property type or purchase category ("Semi-Detached Duplex",
// "to let").
func (s DefinitionSpec) Definition() (CategoryDefinition, error) {
	title := strings.TrimSpace(s.Title)
	propertyType := strings.TrimSpace(s.PropertyType)
	purchase := strings.TrimSpace(s.PurchaseCategory)

	if title == "" {
		return CategoryDefinition{}, errors.New("title is required")
	}
	if propertyType == "" && purchase == "" {
		return CategoryDefinition{}, fmt.Errorf("%q: property_type or purchase_category is required", title)
	}

	typeTerm := filter.PropertyType(propertyType)
	purchaseTerm := filter.Purchase(purchase)
	return CategoryDefinition{
		Title: title,
		Match: func(l api.Listing) bool {
			return typeTerm.Matches(l.PropertyType) && purchaseTerm.Matches(l.PurchaseCategory)
		},
		Link: func(sample api.Listing) url.Values {
			params := url.Values{"status": {"featured"}}
			if propertyType != "" {
				params.Set("property_type", propertyType)
			}
			if purchase != "" {
				params.Set("purchase_category", purchase)
			}
			if state := region.Normalize(sample.State); state != "" {
				params.Set("state", state)
			}
			return params
		},
	}, nil
}

// LoadDefinitions reads category specs from a YAML file of the form
//
//	categories:
//	  - title: Duplexes for Rent in {region}
//	    property_type: Duplex
//	    purchase_category: Rent
func LoadDefinitions(path string) ([]CategoryDefinition, error) {
	specs, err := LoadSpecs(path)
	if err != nil {
		return nil, err
	}
	return Compile(specs)
}

// LoadSpecs reads category specs without compiling them.
func LoadSpecs(path string) ([]DefinitionSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definitions: %w", err)
	}

	var file definitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing definitions %s: %w", path, err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("parsing definitions %s: no categories defined", path)
	}
	return file.Categories, nil
}

// SearchLink renders a relative search deep link.
func SearchLink(params url.Values) string {
	if len(params) == 0 {
		return searchPath
	}
	return searchPath + "?" + params.Encode()
}

func renderTitle(title, regionName string) string {
	if !strings.Contains(title, RegionPlaceholder) {
		return title
	}
	if regionName == "" {
		regionName = "Nigeria"
	}
	return strings.ReplaceAll(title, RegionPlaceholder, regionName)
}
