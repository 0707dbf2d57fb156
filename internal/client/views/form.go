package views

import (
	"fmt"
	"strings"
)

// Field declares one form input.
type Field struct {
	Name     string
	Label    string
	Required bool
	// Message is shown when a required field is left empty.
	Message string
	// Hidden fields travel with the form but are not prompted for.
	Hidden bool
}

// ValidationError lists the inline messages of a rejected submission, in
// field order.
type ValidationError struct {
	Fields   []string
	Messages map[string]string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = e.Messages[f]
	}
	return strings.Join(msgs, "; ")
}

// Form holds the values of one dialog. Forms are never shared between
// dialogs.
type Form struct {
	fields []Field
	values map[string]string
}

func NewForm(fields ...Field) *Form {
	return &Form{fields: fields, values: make(map[string]string)}
}

func (f *Form) Fields() []Field {
	return append([]Field(nil), f.fields...)
}

func (f *Form) field(name string) (Field, bool) {
	for _, fd := range f.fields {
		if fd.Name == name {
			return fd, true
		}
	}
	return Field{}, false
}

// Set assigns a declared field.
func (f *Form) Set(name, value string) error {
	if _, ok := f.field(name); !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	f.values[name] = value
	return nil
}

func (f *Form) Get(name string) string {
	return f.values[name]
}

// Reset clears every value.
func (f *Form) Reset() {
	f.values = make(map[string]string)
}

// Validate checks required fields. It returns a *ValidationError or nil.
func (f *Form) Validate() error {
	var verr *ValidationError
	for _, fd := range f.fields {
		if !fd.Required || strings.TrimSpace(f.values[fd.Name]) != "" {
			continue
		}
		if verr == nil {
			verr = &ValidationError{Messages: make(map[string]string)}
		}
		msg := fd.Message
		if msg == "" {
			msg = fmt.Sprintf("Please input %s!", strings.ToLower(fd.label()))
		}
		verr.Fields = append(verr.Fields, fd.Name)
		verr.Messages[fd.Name] = msg
	}
	if verr == nil {
		return nil
	}
	return verr
}

// Values returns the visible fields as a request payload.
func (f *Form) Values() map[string]any {
	out := make(map[string]any, len(f.fields))
	for _, fd := range f.fields {
		if fd.Hidden {
			continue
		}
		out[fd.Name] = f.values[fd.Name]
	}
	return out
}

func (fd Field) label() string {
	if fd.Label != "" {
		return fd.Label
	}
	return fd.Name
}

// Prompt is what an input loop shows for fd.
func (fd Field) Prompt() string {
	p := fd.label()
	if fd.Required {
		p += " *"
	}
	return p
}
