package column

import (
	"fmt"

	"github.com/hamba/avro/v2"
)

// AvroSchema returns the Avro schema of the column's base type.
func (c *Column) AvroSchema() (avro.Schema, error) {
	return avroScalarSchema(c.BaseType())
}

// RecordField exports the column as an Avro record field. Nullable columns
// become a union with null and default to null.
func (c *Column) RecordField() (*avro.Field, error) {
	base, err := c.AvroSchema()
	if err != nil {
		return nil, err
	}
	if c.NotNull {
		return avro.NewField(c.Name, base)
	}
	union, err := avro.NewUnionSchema([]avro.Schema{&avro.NullSchema{}, base})
	if err != nil {
		return nil, err
	}
	return avro.NewField(c.Name, union, avro.WithDefault(nil))
}

// RecordSchema exports a model's columns as an Avro record schema.
func RecordSchema(name string, columns []*Column) (*avro.RecordSchema, error) {
	fields := make([]*avro.Field, 0, len(columns))
	for _, col := range columns {
		field, err := col.RecordField()
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		fields = append(fields, field)
	}
	return avro.NewRecordSchema(name, "veldt", fields)
}

func avroScalarSchema(typeName string) (avro.Schema, error) {
	switch typeName {
	case "bool":
		return avro.NewPrimitiveSchema(avro.Boolean, nil), nil
	case "i8", "i16", "i32", "u8", "u16", "u32":
		return avro.NewPrimitiveSchema(avro.Int, nil), nil
	case "i64", "u64", "isize", "usize":
		return avro.NewPrimitiveSchema(avro.Long, nil), nil
	case "f32":
		return avro.NewPrimitiveSchema(avro.Float, nil), nil
	case "f64":
		return avro.NewPrimitiveSchema(avro.Double, nil), nil
	case "String", "Decimal", "Time", "DateTime":
		return avro.NewPrimitiveSchema(avro.String, nil), nil
	case "Uuid":
		return avro.NewPrimitiveSchema(avro.String, avro.NewPrimitiveLogicalSchema(avro.UUID)), nil
	case "Date":
		return avro.NewPrimitiveSchema(avro.Int, avro.NewPrimitiveLogicalSchema(avro.Date)), nil
	case "Vec<u8>":
		return avro.NewPrimitiveSchema(avro.Bytes, nil), nil
	case "Map":
		return avro.NewMapSchema(avro.NewPrimitiveSchema(avro.String, nil)), nil
	default:
		if item := arrayItemType(typeName); item != "" {
			itemSchema, err := avroScalarSchema(item)
			if err != nil {
				return nil, err
			}
			return avro.NewArraySchema(itemSchema), nil
		}
		return nil, fmt.Errorf("column: no avro mapping for type %q", typeName)
	}
}

func arrayItemType(typeName string) string {
	if len(typeName) > 5 && typeName[:4] == "Vec<" && typeName[len(typeName)-1] == '>' {
		return typeName[4 : len(typeName)-1]
	}
	return ""
}
