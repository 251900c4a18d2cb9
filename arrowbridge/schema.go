package arrowbridge

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/go-faster/errors"

	"github.com/TFMV/chnative"
	"github.com/TFMV/chnative/chtype"
)

// FieldToArrow maps one named server column to an Arrow field, unwrapping
// a top-level Nullable into the field's Nullable flag (Arrow has no
// standalone nullable type; nullability is a schema-level property).
func FieldToArrow(f chtype.Field, opts ConversionOptions) (arrow.Field, error) {
	serverType := f.Type
	nullable := false
	if serverType.Kind == chtype.KindNullable {
		nullable = true
		serverType = serverType.Elem
	}
	dt, err := ToArrowType(serverType, f.Name, opts)
	if err != nil {
		return arrow.Field{}, errors.Wrapf(err, "field %q", f.Name)
	}
	return arrow.Field{Name: f.Name, Type: dt, Nullable: nullable}, nil
}

// FieldToServer maps an Arrow field back to a named server column,
// re-wrapping Nullable per the field's flag and applying opts' rejection
// policies for nullable arrays/low-cardinality columns (§4.6). When a
// nullable Array or LowCardinality field is not rejected, nullability is
// pushed down to its element type (Array(Nullable(T)),
// LowCardinality(Nullable(T))).
func FieldToServer(f arrow.Field, opts ConversionOptions) (chtype.Field, error) {
	st, err := ToServerType(f.Type, f.Name, opts)
	if err != nil {
		return chtype.Field{}, errors.Wrapf(err, "field %q", f.Name)
	}
	if !f.Nullable {
		return chtype.Field{Name: f.Name, Type: st}, nil
	}
	if st.Kind == chtype.KindArray && opts.ArrayNullableError {
		return chtype.Field{}, chnative.NewSchemaIncompatible("nullable array rejected by policy for %q", f.Name)
	}
	if st.Kind == chtype.KindLowCardinality && opts.LowCardinalityNullableError {
		return chtype.Field{}, chnative.NewSchemaIncompatible("nullable low-cardinality rejected by policy for %q", f.Name)
	}
	if st.Kind == chtype.KindArray || st.Kind == chtype.KindLowCardinality {
		elem := st.Elem
		if elem.Kind != chtype.KindNullable {
			if elem, err = chtype.NewNullable(elem); err != nil {
				return chtype.Field{}, errors.Wrapf(err, "field %q", f.Name)
			}
		}
		if st.Kind == chtype.KindArray {
			return chtype.Field{Name: f.Name, Type: chtype.NewArray(elem)}, nil
		}
		if st, err = chtype.NewLowCardinality(elem); err != nil {
			return chtype.Field{}, errors.Wrapf(err, "field %q", f.Name)
		}
		return chtype.Field{Name: f.Name, Type: st}, nil
	}
	wrapped, err := chtype.NewNullable(st)
	if err != nil {
		return chtype.Field{}, errors.Wrapf(err, "field %q", f.Name)
	}
	return chtype.Field{Name: f.Name, Type: wrapped}, nil
}

// SchemaToArrow maps an ordered list of server columns to an Arrow schema.
func SchemaToArrow(fields []chtype.Field, opts ConversionOptions) (*arrow.Schema, error) {
	arrowFields := make([]arrow.Field, len(fields))
	for i, f := range fields {
		af, err := FieldToArrow(f, opts)
		if err != nil {
			return nil, err
		}
		arrowFields[i] = af
	}
	return arrow.NewSchema(arrowFields, nil), nil
}

// SchemaToServer maps an Arrow schema back to an ordered list of server
// columns.
func SchemaToServer(schema *arrow.Schema, opts ConversionOptions) ([]chtype.Field, error) {
	fields := make([]chtype.Field, schema.NumFields())
	for i := 0; i < schema.NumFields(); i++ {
		f, err := FieldToServer(schema.Field(i), opts)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return fields, nil
}
