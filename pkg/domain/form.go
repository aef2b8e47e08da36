package domain

import (
	"io"
	"path/filepath"
	"sort"
	"strings"
)

// UploadedFile references a user-selected blob by its metadata.
// Nothing in this package reads the content; Open is only called when the
// file is streamed into a request.
type UploadedFile struct {
	Name     string
	MIMEType string
	Size     int64

	// Open returns a fresh reader over the file content.
	Open func() (io.ReadCloser, error)
}

// Ext returns the lower-cased extension of the file name, including the dot.
func (f *UploadedFile) Ext() string {
	if f == nil {
		return ""
	}
	return strings.ToLower(filepath.Ext(f.Name))
}

// Value is the content of a single form slot: either text or a file.
type Value struct {
	Text string
	File *UploadedFile
}

// IsZero reports whether the slot holds neither text nor a file.
func (v Value) IsZero() bool {
	return v.Text == "" && v.File == nil
}

// FormState holds the in-memory field values of a flow.
// Every declared field is always present as a key, possibly empty.
type FormState struct {
	values map[string]Value
}

// NewFormState creates a state with the given fields declared and empty.
func NewFormState(fields ...string) *FormState {
	s := &FormState{values: make(map[string]Value, len(fields))}
	s.Declare(fields...)
	return s
}

// Declare adds fields to the state without touching existing values.
func (s *FormState) Declare(fields ...string) {
	for _, f := range fields {
		if _, ok := s.values[f]; !ok {
			s.values[f] = Value{}
		}
	}
}

// Has reports whether the field is declared.
func (s *FormState) Has(field string) bool {
	_, ok := s.values[field]
	return ok
}

// Set stores a text value, declaring the field if needed.
func (s *FormState) Set(field, text string) {
	v := s.values[field]
	v.Text = text
	s.values[field] = v
}

// SetFile stores a file in the slot, replacing any previous one.
func (s *FormState) SetFile(field string, f *UploadedFile) {
	v := s.values[field]
	v.File = f
	s.values[field] = v
}

// ClearFile empties the file slot of a field.
func (s *FormState) ClearFile(field string) {
	s.SetFile(field, nil)
}

// Text returns the text value of a field.
func (s *FormState) Text(field string) string {
	return s.values[field].Text
}

// File returns the file held by a field, or nil.
func (s *FormState) File(field string) *UploadedFile {
	return s.values[field].File
}

// Get returns the raw slot value.
func (s *FormState) Get(field string) (Value, bool) {
	v, ok := s.values[field]
	return v, ok
}

// Fields returns the declared field names in sorted order.
func (s *FormState) Fields() []string {
	out := make([]string, 0, len(s.values))
	for k := range s.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Reset empties every declared field, keeping the declarations.
func (s *FormState) Reset() {
	for k := range s.values {
		s.values[k] = Value{}
	}
}

// Snapshot returns an independent copy of the state.
// File references are shared; the files themselves are never mutated.
func (s *FormState) Snapshot() *FormState {
	c := &FormState{values: make(map[string]Value, len(s.values))}
	for k, v := range s.values {
		c.values[k] = v
	}
	return c
}
