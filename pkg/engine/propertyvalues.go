package engine

import (
	"errors"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/buildlane/ifcbridge/pkg/ifc"
)

// ErrInvalidPropertyPath marks a property path missing the
// "PsetName.PropertyName" shape.
var ErrInvalidPropertyPath = errors.New("property path must be in format 'PsetName.PropertyName'")

// PropertyValue is one resolved property for one element.
type PropertyValue struct {
	GUID     string `json:"guid"`
	Value    any    `json:"value"`
	DataType string `json:"data_type"`
}

// ParsePropertyPath splits a property path into its property-set
// pattern and property name segments.
func ParsePropertyPath(path string) (string, string, error) {
	pattern, property, found := strings.Cut(path, ".")
	pattern = strings.TrimSpace(pattern)
	property = strings.TrimSpace(property)
	if !found || pattern == "" || property == "" {
		return "", "", ErrInvalidPropertyPath
	}
	return pattern, property, nil
}

// matchingPsets returns the element's property-set names matching the
// pattern. A pattern without a wildcard matches only itself.
func (e *Engine) matchingPsets(el *ifc.Entity, pattern string) []string {
	if !strings.Contains(pattern, "*") {
		return []string{pattern}
	}
	var names []string
	for _, pset := range e.propertySets(el) {
		name := pset.Name()
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			names = append(names, name)
		}
	}
	return names
}

// PropertyValues resolves a property path for every element of the
// given class. The property-set segment may carry a glob wildcard; the
// first matching property set wins per element. Elements with no match
// are omitted from the result.
func (e *Engine) PropertyValues(ifcClass, propertyPath string) ([]PropertyValue, error) {
	pattern, property, err := ParsePropertyPath(propertyPath)
	if err != nil {
		return nil, err
	}

	var results []PropertyValue
	for _, el := range e.doc.ByType(ifcClass) {
		if el.GlobalID == "" {
			continue
		}
		for _, psetName := range e.matchingPsets(el, pattern) {
			v, ok := e.psetProperty(el, psetName, property)
			if !ok || v.IsNil() {
				continue
			}
			results = append(results, PropertyValue{
				GUID:     el.GlobalID,
				Value:    v.Native(),
				DataType: dataTypeOf(v),
			})
			break
		}
	}
	return results, nil
}

// dataTypeOf maps a value variant to its wire data-type tag.
func dataTypeOf(v ifc.Value) string {
	switch v.Kind() {
	case ifc.KindBool:
		return "IfcBoolean"
	case ifc.KindInt:
		return "IfcInteger"
	case ifc.KindFloat:
		return "IfcReal"
	default:
		return "IfcLabel"
	}
}
