// Package binder converts between typed records and header-keyed rows.
//
// A record type is described once by a [Schema]: an ordered table of field
// descriptors, each with a name, an optional column override, a scalar kind
// and an accessor returning a pointer into the record. No reflection is used.
//
//	type User struct {
//	    Name  pgtype.Text
//	    Age   pgtype.Int4
//	    Email string
//	}
//
//	var userSchema = binder.NewSchema[User]().
//	    Text("name", func(u *User) *pgtype.Text { return &u.Name }, binder.Column("Full Name")).
//	    Int4("age", func(u *User) *pgtype.Int4 { return &u.Age }).
//	    String("email", func(u *User) *string { return &u.Email }).
//	    MustBuild()
//
// Nullable kinds use pgtype values: a blank or unparseable cell leaves the
// field with Valid=false.
package binder

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/tabular/internal/core"
)

// Kind identifies the scalar type of a field.
type Kind int

const (
	KindText Kind = iota
	KindString
	KindInt4
	KindInt8
	KindFloat4
	KindFloat8
	KindBool
	KindNumeric
	KindTimestamp
	KindRaw
)

var kindNames = [...]string{
	KindText:      "text",
	KindString:    "string",
	KindInt4:      "integer",
	KindInt8:      "long",
	KindFloat4:    "float",
	KindFloat8:    "double",
	KindBool:      "boolean",
	KindNumeric:   "decimal",
	KindTimestamp: "timestamp",
	KindRaw:       "raw",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Field describes one record field.
type Field[T any] struct {
	Name   string // Field name; always a lookup key
	Column string // Column override; empty when the field name is used
	Kind   Kind

	get func(*T) any
	// set assigns the coerced cell. raw is the row value, text its rendering.
	set func(rec *T, raw any, text string) error
}

// ColumnName returns the override if present, else the field name.
func (f Field[T]) ColumnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// FieldOption customizes a field declaration.
type FieldOption func(*fieldConfig)

type fieldConfig struct {
	column string
}

// Column overrides the column name a field is written under and read from.
func Column(name string) FieldOption {
	return func(c *fieldConfig) {
		c.column = name
	}
}

// Schema is the immutable descriptor table of a record type.
type Schema[T any] struct {
	fields []Field[T]
	lookup map[string]int // column override and field name -> field index
}

// Fields returns the descriptors in declaration order.
func (s *Schema[T]) Fields() []Field[T] {
	out := make([]Field[T], len(s.fields))
	copy(out, s.fields)
	return out
}

// Columns returns the resolved column names in declaration order.
func (s *Schema[T]) Columns() []string {
	cols := make([]string, len(s.fields))
	for i, f := range s.fields {
		cols[i] = f.ColumnName()
	}
	return cols
}

// DisplayNames maps each field name to its column override, for fields that
// have one. Suitable as a document header display-name map.
func (s *Schema[T]) DisplayNames() map[string]string {
	m := make(map[string]string)
	for _, f := range s.fields {
		if f.Column != "" {
			m[f.Name] = f.Column
		}
	}
	return m
}

// resolve finds a field by column name or field name.
func (s *Schema[T]) resolve(key string) (Field[T], bool) {
	i, ok := s.lookup[key]
	if !ok {
		return Field[T]{}, false
	}
	return s.fields[i], true
}

// Builder accumulates field declarations. Errors are deferred to Build.
type Builder[T any] struct {
	fields []Field[T]
	errs   []string
}

// NewSchema starts a schema for record type T.
func NewSchema[T any]() *Builder[T] {
	return &Builder[T]{}
}

func (b *Builder[T]) add(name string, kind Kind, get func(*T) any, set func(*T, any, string) error, opts []FieldOption) *Builder[T] {
	var cfg fieldConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if strings.TrimSpace(name) == "" {
		b.errs = append(b.errs, fmt.Sprintf("field %d: empty name", len(b.fields)))
	}
	b.fields = append(b.fields, Field[T]{
		Name:   name,
		Column: cfg.column,
		Kind:   kind,
		get:    get,
		set:    set,
	})
	return b
}

// Text declares a nullable text field.
func (b *Builder[T]) Text(name string, ref func(*T) *pgtype.Text, opts ...FieldOption) *Builder[T] {
	return b.add(name, KindText,
		func(r *T) any { return *ref(r) },
		func(r *T, _ any, s string) error { *ref(r) = core.ToText(s); return nil },
		opts)
}

// String declares a plain string field. Blank cells leave it empty.
func (b *Builder[T]) String(name string, ref func(*T) *string, opts ...FieldOption) *Builder[T] {
	return b.add(name, KindString,
		func(r *T) any { return *ref(r) },
		func(r *T, _ any, s string) error {
			if core.IsBlank(s) {
				*ref(r) = ""
			} else {
				*ref(r) = s
			}
			return nil
		},
		opts)
}

// Int4 declares a nullable 32-bit integer field.
func (b *Builder[T]) Int4(name string, ref func(*T) *pgtype.Int4, opts ...FieldOption) *Builder[T] {
	return b.add(name, KindInt4,
		func(r *T) any { return *ref(r) },
		func(r *T, _ any, s string) error {
			v, err := core.ParseInt4(s)
			*ref(r) = v
			return err
		},
		opts)
}

// Int8 declares a nullable 64-bit integer field.
func (b *Builder[T]) Int8(name string, ref func(*T) *pgtype.Int8, opts ...FieldOption) *Builder[T] {
	return b.add(name, KindInt8,
		func(r *T) any { return *ref(r) },
		func(r *T, _ any, s string) error {
			v, err := core.ParseInt8(s)
			*ref(r) = v
			return err
		},
		opts)
}

// Float4 declares a nullable single precision field.
func (b *Builder[T]) Float4(name string, ref func(*T) *pgtype.Float4, opts ...FieldOption) *Builder[T] {
	return b.add(name, KindFloat4,
		func(r *T) any { return *ref(r) },
		func(r *T, _ any, s string) error {
			v, err := core.ParseFloat4(s)
			*ref(r) = v
			return err
		},
		opts)
}

// Float8 declares a nullable double precision field.
func (b *Builder[T]) Float8(name string, ref func(*T) *pgtype.Float8, opts ...FieldOption) *Builder[T] {
	return b.add(name, KindFloat8,
		func(r *T) any { return *ref(r) },
		func(r *T, _ any, s string) error {
			v, err := core.ParseFloat8(s)
			*ref(r) = v
			return err
		},
		opts)
}

// Bool declares a nullable boolean field.
func (b *Builder[T]) Bool(name string, ref func(*T) *pgtype.Bool, opts ...FieldOption) *Builder[T] {
	return b.add(name, KindBool,
		func(r *T) any { return *ref(r) },
		func(r *T, _ any, s string) error {
			v, err := core.ParseBool(s)
			*ref(r) = v
			return err
		},
		opts)
}

// Numeric declares a nullable exact decimal field.
func (b *Builder[T]) Numeric(name string, ref func(*T) *pgtype.Numeric, opts ...FieldOption) *Builder[T] {
	return b.add(name, KindNumeric,
		func(r *T) any { return *ref(r) },
		func(r *T, _ any, s string) error {
			v, err := core.ParseNumeric(s)
			*ref(r) = v
			return err
		},
		opts)
}

// Timestamp declares a nullable date-time field.
func (b *Builder[T]) Timestamp(name string, ref func(*T) *pgtype.Timestamp, opts ...FieldOption) *Builder[T] {
	return b.add(name, KindTimestamp,
		func(r *T) any { return *ref(r) },
		func(r *T, _ any, s string) error {
			v, err := core.ParseTimestamp(s)
			*ref(r) = v
			return err
		},
		opts)
}

// Raw declares a field that receives the row value unconverted.
func (b *Builder[T]) Raw(name string, ref func(*T) *any, opts ...FieldOption) *Builder[T] {
	return b.add(name, KindRaw,
		func(r *T) any { return *ref(r) },
		func(r *T, raw any, s string) error {
			if core.IsBlank(s) {
				*ref(r) = nil
			} else {
				*ref(r) = raw
			}
			return nil
		},
		opts)
}

// Build validates the declarations and freezes the schema. Field names must
// be unique, and no key may resolve to two different fields.
func (b *Builder[T]) Build() (*Schema[T], error) {
	errs := append([]string(nil), b.errs...)
	if len(b.fields) == 0 {
		errs = append(errs, "no fields declared")
	}

	s := &Schema[T]{
		fields: append([]Field[T](nil), b.fields...),
		lookup: make(map[string]int, 2*len(b.fields)),
	}

	byName := make(map[string]int, len(b.fields))
	for i, f := range s.fields {
		if j, dup := byName[f.Name]; dup {
			errs = append(errs, fmt.Sprintf("field %q declared twice (positions %d and %d)", f.Name, j, i))
			continue
		}
		byName[f.Name] = i
	}

	for i, f := range s.fields {
		for _, key := range []string{f.Column, f.Name} {
			if key == "" {
				continue
			}
			if j, taken := s.lookup[key]; taken && j != i {
				errs = append(errs, fmt.Sprintf("column %q is ambiguous between fields %q and %q",
					key, s.fields[j].Name, f.Name))
				continue
			}
			s.lookup[key] = i
		}
	}

	if len(errs) > 0 {
		return nil, core.InvalidArgument("build schema", "%s", strings.Join(errs, "; "))
	}
	return s, nil
}

// MustBuild is Build that panics on error. Use for package-level schemas.
func (b *Builder[T]) MustBuild() *Schema[T] {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
