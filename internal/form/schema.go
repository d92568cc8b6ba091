package form

// Input is the HTML input type of a field. It is the only client-side
// validation a form gets.
type Input string

const (
	Text     Input = "text"
	Email    Input = "email"
	Password Input = "password"
	Select   Input = "select"
)

// Option is one choice of a select field.
type Option struct {
	Value string
	Label string
}

// Field describes one form field. Label is a dictionary key.
type Field struct {
	Name    string
	Input   Input
	Label   string
	Options []Option
}

// Schema is the ordered list of fields a form renders.
type Schema struct {
	Fields []Field
}

// Field looks up a field by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldView is a field with its current value and available options.
type FieldView struct {
	Field
	Value   string
	Options []Option
}

// Selected reports whether opt is the current value.
func (v FieldView) Selected(opt Option) bool {
	return v.Value == opt.Value
}

// HiddenField is a record field carried through the form unchanged.
type HiddenField struct {
	Name  string
	Value string
}
