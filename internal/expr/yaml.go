package expr

import "gopkg.in/yaml.v3"

// UnmarshalYAML lets a resource file write an expression as a plain
// scalar string ("power + 1d4"), parsed the same way Parse would.
func (e *Expression) UnmarshalYAML(value *yaml.Node) error {
	var src string
	if err := value.Decode(&src); err != nil {
		return err
	}
	parsed, err := Parse(src)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// MarshalYAML renders the expression back to its source string.
func (e Expression) MarshalYAML() (interface{}, error) {
	return e.String(), nil
}

var _ yaml.Marshaler = Expression{}
var _ yaml.Unmarshaler = (*Expression)(nil)
