package enginetest

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// property mirrors how the GStreamer engine sets one element property: a
// value of the property's own Go type is set directly, and a string given
// for a non-string property must deserialize into that type. Enum and
// object properties have no Go type and can only be set from a string.
type property struct {
	native      func(v any) bool
	deserialize func(s string) bool
}

func stringProperty() property {
	return property{native: func(v any) bool { _, ok := v.(string); return ok }}
}

func intProperty() property {
	return property{
		native: func(v any) bool { _, ok := v.(int); return ok },
		deserialize: func(s string) bool {
			_, err := strconv.Atoi(s)
			return err == nil
		},
	}
}

func doubleProperty() property {
	return property{
		native: func(v any) bool { _, ok := v.(float64); return ok },
		deserialize: func(s string) bool {
			_, err := strconv.ParseFloat(s, 64)
			return err == nil
		},
	}
}

func enumProperty(nicks ...string) property {
	return property{deserialize: func(s string) bool { return slices.Contains(nicks, s) }}
}

// profileProperty accepts the textual encoding profile format:
// "container:video:audio", every part non-empty.
func profileProperty() property {
	return property{deserialize: func(s string) bool {
		parts := strings.Split(s, ":")
		if len(parts) < 2 {
			return false
		}
		return !slices.Contains(parts, "")
	}}
}

// properties lists the typed properties of the elements this repository
// configures. Element types not listed accept any property.
var properties = map[string]map[string]property{
	DefaultSourceType: {
		"uri": stringProperty(),
	},
	"filesink": {
		"location": stringProperty(),
	},
	"encodebin": {
		"profile": profileProperty(),
	},
	"gdkpixbufoverlay": {
		"location":         stringProperty(),
		"offset-x":         intProperty(),
		"offset-y":         intProperty(),
		"relative-x":       doubleProperty(),
		"relative-y":       doubleProperty(),
		"alpha":            doubleProperty(),
		"overlay-width":    intProperty(),
		"overlay-height":   intProperty(),
		"positioning-mode": enumProperty("pixels-relative-to-edges", "pixels-absolute"),
	},
}

func checkProperty(typeName, key string, value any) error {
	props, typed := properties[typeName]
	if !typed {
		return nil
	}
	p, ok := props[key]
	if !ok {
		return errors.New("couldn't find property")
	}
	if p.native != nil && p.native(value) {
		return nil
	}
	if s, ok := value.(string); ok && p.deserialize != nil {
		if p.deserialize(s) {
			return nil
		}
		return fmt.Errorf("cannot deserialize %q", s)
	}
	return fmt.Errorf("invalid type %T for property %s", value, key)
}
