// Package form sammelt die Felder eines Formular-Submits, die der Transport
// in Teilstücken (Fragmenten) anliefert.
package form

import (
	"bytes"
	"errors"
)

// ErrExhausted wird zurückgegeben wenn ein Submit das Speicherbudget sprengt.
// Der Aufrufer entscheidet über die Policy (Abbruch mit 413 oder Neustart).
var ErrExhausted = errors.New("form: fragment budget exhausted")

// Limits begrenzt den Speicher eines einzelnen Submits
type Limits struct {
	MaxFields int // Anzahl unterschiedlicher Feldnamen
	MaxBytes  int // Summe aller Namen und Werte
}

// DefaultLimits passt zu einem Settings-Formular mit ~40 Feldern
var DefaultLimits = Limits{
	MaxFields: 64,
	MaxBytes:  4096,
}

type field struct {
	name  string
	value bytes.Buffer
}

// Fragments is the request-scoped store of a form submission. Values for the
// same name are concatenated in arrival order.
type Fragments struct {
	limits Limits
	fields []*field
	index  map[string]*field
	size   int
}

// New creates an empty store bounded by limits. Zero limits mean DefaultLimits.
func New(limits Limits) *Fragments {
	if limits.MaxFields <= 0 {
		limits.MaxFields = DefaultLimits.MaxFields
	}
	if limits.MaxBytes <= 0 {
		limits.MaxBytes = DefaultLimits.MaxBytes
	}
	return &Fragments{
		limits: limits,
		index:  make(map[string]*field),
	}
}

// Accept appends p to the value of name, creating the field on first delivery.
func (f *Fragments) Accept(name string, p []byte) error {
	fld, ok := f.index[name]
	grow := len(p)
	if !ok {
		grow += len(name)
		if len(f.fields) >= f.limits.MaxFields {
			return ErrExhausted
		}
	}
	if f.size+grow > f.limits.MaxBytes {
		return ErrExhausted
	}

	if !ok {
		fld = &field{name: name}
		f.fields = append(f.fields, fld)
		f.index[name] = fld
	}
	fld.value.Write(p)
	f.size += grow
	return nil
}

// Lookup returns the accumulated value of name
func (f *Fragments) Lookup(name string) (string, bool) {
	fld, ok := f.index[name]
	if !ok {
		return "", false
	}
	return fld.value.String(), true
}

// Each calls fn once per field, in first-arrival order
func (f *Fragments) Each(fn func(name, value string)) {
	for _, fld := range f.fields {
		fn(fld.name, fld.value.String())
	}
}

// Len returns the number of distinct fields
func (f *Fragments) Len() int {
	return len(f.fields)
}

// Size returns the accounted bytes (names + values)
func (f *Fragments) Size() int {
	return f.size
}

// Reset verwirft alle Fragmente, das Budget bleibt erhalten
func (f *Fragments) Reset() {
	f.fields = nil
	f.index = make(map[string]*field)
	f.size = 0
}
