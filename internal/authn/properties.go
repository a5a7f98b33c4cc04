package authn

import (
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// ConfigProperties is the typed key/value lookup handed to validators and
// mappers at configure time. Values originate from the free-form properties
// block of a realm or mapper entry.
type ConfigProperties struct {
	values map[string]string
}

// NewConfigProperties wraps a property map. A nil map yields an empty lookup.
func NewConfigProperties(values map[string]string) *ConfigProperties {
	if values == nil {
		values = map[string]string{}
	}
	return &ConfigProperties{values: values}
}

// GetString returns the named property or def when absent.
func (p *ConfigProperties) GetString(name, def string) string {
	if v, ok := p.values[name]; ok {
		return v
	}
	return def
}

// GetBool returns the named property parsed as a bool, or def when absent or
// unparseable.
func (p *ConfigProperties) GetBool(name string, def bool) bool {
	if v, ok := p.values[name]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// GetInt returns the named property parsed as an int, or def when absent or
// unparseable.
func (p *ConfigProperties) GetInt(name string, def int) int {
	if v, ok := p.values[name]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Has reports whether the property is present.
func (p *ConfigProperties) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Decode fills a typed configuration struct from the property map. String
// values are weakly converted to the target field types, so "true" and "389"
// land in bool and int fields.
func (p *ConfigProperties) Decode(target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(p.values)
}
