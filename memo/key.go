package memo

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ErrKeyDerivation is returned when call arguments cannot be turned into a
// stable key. The wrapped computation is not invoked.
var ErrKeyDerivation = errors.New("memo: cannot derive cache key")

// Args is one invocation's arguments: ordered positional values plus named
// values. Named values are keyed by name and canonicalized in sorted order,
// so call-site ordering never changes the key.
type Args struct {
	Positional []any
	Named      map[string]any
}

// Key derives the canonical cache key for identity and args.
//
// Supported values: nil, bool, integers, floats, complex numbers, strings,
// time.Time (by instant), time.Duration, and arrays, slices, maps and
// structs built from those. Pointers, funcs, channels and unsafe pointers
// have no value equality and yield ErrKeyDerivation, as do maps and slices
// that contain themselves.
//
// A time.Time is keyed by its instant wherever reflection can read it. An
// unexported time.Time struct field cannot be read and yields
// ErrKeyDerivation.
//
// Scalars are encoded by kind, not by named type: MyInt(1) and int(1)
// produce the same key. Structs carry their type name.
func Key(identity string, args Args) (string, error) {
	var b strings.Builder
	e := encoder{path: map[visit]struct{}{}}
	b.WriteString(strconv.Quote(identity))

	b.WriteString("|(")
	for i, a := range args.Positional {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := e.encode(&b, reflect.ValueOf(a)); err != nil {
			return "", fmt.Errorf("%w: argument %d: %w", ErrKeyDerivation, i, err)
		}
	}
	b.WriteString(")|{")

	names := make([]string, 0, len(args.Named))
	for name := range args.Named {
		names = append(names, name)
	}
	slices.Sort(names)
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(name))
		b.WriteByte('=')
		if err := e.encode(&b, reflect.ValueOf(args.Named[name])); err != nil {
			return "", fmt.Errorf("%w: argument %q: %w", ErrKeyDerivation, name, err)
		}
	}
	b.WriteByte('}')
	return b.String(), nil
}

var timeType = reflect.TypeOf(time.Time{})

// visit identifies a map or slice on the current encoding path. Slices also
// carry their length, since a subslice may share its parent's backing array
// without forming a cycle.
type visit struct {
	ptr uintptr
	len int
	typ reflect.Type
}

type encoder struct {
	path map[visit]struct{}
}

// enter records v on the path and reports a cycle if it is already there.
// The returned func removes it again.
func (e *encoder) enter(v reflect.Value) (func(), error) {
	if v.IsNil() {
		return func() {}, nil
	}
	id := visit{ptr: v.Pointer(), typ: v.Type()}
	if v.Kind() == reflect.Slice {
		id.len = v.Len()
	}
	if _, ok := e.path[id]; ok {
		return nil, fmt.Errorf("cyclic %s", v.Type())
	}
	e.path[id] = struct{}{}
	return func() { delete(e.path, id) }, nil
}

// encode appends a self-delimiting, kind-tagged rendering of v.
func (e *encoder) encode(b *strings.Builder, v reflect.Value) error {
	if !v.IsValid() {
		b.WriteString("nil")
		return nil
	}
	if v.Type() == timeType {
		if !v.CanInterface() {
			return errors.New("unexported time.Time field")
		}
		t := v.Interface().(time.Time)
		b.WriteString("t:")
		b.WriteString(strconv.FormatInt(t.Unix(), 10))
		b.WriteByte('.')
		b.WriteString(strconv.Itoa(t.Nanosecond()))
		return nil
	}

	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			b.WriteString("b:1")
		} else {
			b.WriteString("b:0")
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString("i:")
		b.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b.WriteString("u:")
		b.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		b.WriteString("f:")
		b.WriteString(strconv.FormatFloat(v.Float(), 'g', -1, 64))
	case reflect.Complex64, reflect.Complex128:
		b.WriteString("c:")
		b.WriteString(strconv.FormatComplex(v.Complex(), 'g', -1, 128))
	case reflect.String:
		b.WriteString("s:")
		b.WriteString(strconv.Quote(v.String()))
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b.WriteString("x:")
			b.WriteString(strconv.Quote(string(bytesOf(v))))
			return nil
		}
		if v.Kind() == reflect.Slice {
			leave, err := e.enter(v)
			if err != nil {
				return err
			}
			defer leave()
		}
		b.WriteString("[")
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := e.encode(b, v.Index(i)); err != nil {
				return fmt.Errorf("index %d: %w", i, err)
			}
		}
		b.WriteString("]")
	case reflect.Map:
		leave, err := e.enter(v)
		if err != nil {
			return err
		}
		defer leave()
		return e.encodeMap(b, v)
	case reflect.Struct:
		b.WriteString(v.Type().String())
		b.WriteString("{")
		for i := 0; i < v.NumField(); i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			f := v.Type().Field(i)
			b.WriteString(f.Name)
			b.WriteByte(':')
			if err := e.encode(b, v.Field(i)); err != nil {
				return fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
		b.WriteString("}")
	case reflect.Interface:
		if v.IsNil() {
			b.WriteString("nil")
			return nil
		}
		return e.encode(b, v.Elem())
	default:
		// Pointer, Func, Chan, UnsafePointer
		return fmt.Errorf("unsupported type %s", v.Type())
	}
	return nil
}

// encodeMap sorts entries by their encoded key so iteration order never leaks.
func (e *encoder) encodeMap(b *strings.Builder, v reflect.Value) error {
	type kv struct{ k, v string }
	entries := make([]kv, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		var kb, vb strings.Builder
		if err := e.encode(&kb, iter.Key()); err != nil {
			return fmt.Errorf("map key: %w", err)
		}
		if err := e.encode(&vb, iter.Value()); err != nil {
			return fmt.Errorf("map value: %w", err)
		}
		entries = append(entries, kv{kb.String(), vb.String()})
	}
	slices.SortFunc(entries, func(a, b kv) int { return strings.Compare(a.k, b.k) })

	b.WriteString("m{")
	for i, ent := range entries {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(ent.k)
		b.WriteByte(':')
		b.WriteString(ent.v)
	}
	b.WriteString("}")
	return nil
}

// bytesOf copies a byte slice or byte array, including unexported ones.
func bytesOf(v reflect.Value) []byte {
	out := make([]byte, v.Len())
	for i := range out {
		out[i] = byte(v.Index(i).Uint())
	}
	return out
}
