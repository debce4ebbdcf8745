package column

import (
	"github.com/syssam/veldt/value"
)

// Definition exports the column as an OpenAPI schema object.
func (c *Column) Definition() *value.Map {
	def := value.NewMap()
	openapiType(c.BaseType(), def)
	if c.Comment != "" {
		def.Upsert("description", c.Comment)
	}
	if d, ok := c.DefaultValue(); ok {
		def.Upsert("default", d)
	}
	if !c.NotNull || c.IsOptionType() {
		def.Upsert("nullable", true)
	}
	applyAttributeHints(c, def)
	return def
}

func openapiType(typeName string, def *value.Map) {
	switch typeName {
	case "bool":
		def.Upsert("type", "boolean")
	case "i8", "i16", "i32", "i64", "isize":
		def.Upsert("type", "integer")
	case "u8", "u16", "u32", "u64", "usize":
		def.Upsert("type", "integer")
		def.Upsert("minimum", int64(0))
	case "f32", "f64", "Decimal":
		def.Upsert("type", "number")
	case "String":
		def.Upsert("type", "string")
	case "Uuid":
		def.Upsert("type", "string")
		def.Upsert("format", "uuid")
	case "Date":
		def.Upsert("type", "string")
		def.Upsert("format", "date")
	case "Time":
		def.Upsert("type", "string")
		def.Upsert("format", "time")
	case "DateTime":
		def.Upsert("type", "string")
		def.Upsert("format", "date-time")
	case "Vec<u8>":
		def.Upsert("type", "string")
		def.Upsert("format", "binary")
	case "Map":
		def.Upsert("type", "object")
	default:
		if item := arrayItemType(typeName); item != "" {
			def.Upsert("type", "array")
			items := value.NewMap()
			openapiType(item, items)
			def.Upsert("items", items)
			return
		}
		def.Upsert("type", "string")
	}
}

// Attribute hints recognized by the exporter, in the order they are emitted.
var attributeHints = []struct {
	attr    string
	keyword string
}{
	{"format", "format"},
	{"enum_values", "enum"},
	{"pattern", "pattern"},
	{"minimum", "minimum"},
	{"maximum", "maximum"},
	{"multiple_of", "multipleOf"},
	{"min_length", "minLength"},
	{"max_length", "maxLength"},
	{"min_items", "minItems"},
	{"max_items", "maxItems"},
	{"unique_items", "uniqueItems"},
	{"read_only", "readOnly"},
	{"write_only", "writeOnly"},
	{"deprecated", "deprecated"},
	{"example", "example"},
}

func applyAttributeHints(c *Column, def *value.Map) {
	for _, hint := range attributeHints {
		if v, ok := c.Attribute(hint.attr); ok {
			if hint.attr == "enum_values" {
				if values, ok := value.ParseEnumValues(v); ok {
					def.Upsert("enum", values)
				}
				continue
			}
			def.Upsert(hint.keyword, v)
		}
	}
	if length, ok := c.Extra.ParseI64("length"); ok {
		def.Upsert("minLength", length)
		def.Upsert("maxLength", length)
	}
	if c.HasAttribute("nonempty") {
		key := "minLength"
		if c.IsArrayType() {
			key = "minItems"
		}
		if !def.Contains(key) {
			def.Upsert(key, int64(1))
		}
	}
}
