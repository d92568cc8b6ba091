// Package form is a controlled-form state machine for one backend record.
//
// The same Controller backs "create" and "edit" pages. Its record is a bag of
// string fields updated one field at a time; selectable options for fields
// (owners, ...) live in a separate store so that record and option fetches
// can resolve in any order.
package form

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"sync"

	"libadmin/internal/api"
	"libadmin/internal/page"
)

var (
	// ErrNotConfirmed is returned by Delete when the user did not confirm.
	ErrNotConfirmed = errors.New("delete not confirmed")
	// ErrNotEditing is returned for edit-only operations in create mode.
	ErrNotEditing = errors.New("operation requires edit mode")
)

// Mode selects the controller lifecycle.
type Mode int

const (
	// Create starts empty and POSTs a new record.
	Create Mode = iota
	// Edit hydrates from the backend and PUTs the mutated record.
	Edit
)

func (m Mode) String() string {
	if m == Edit {
		return "edit"
	}
	return "create"
}

// Resource names the backend collection a controller writes to.
type Resource struct {
	// Path is the backend collection path ("/libraries").
	Path string
	// ListPage is where a successful write navigates to.
	ListPage string
	// Noun appears in diagnostic labels ("library").
	Noun string
	// EditExclude lists fields never sent by an edit submission.
	EditExclude []string
}

func (r Resource) recordPath(id string) string {
	return r.Path + "/" + url.PathEscape(id)
}

// Controller holds the state of one form page.
type Controller struct {
	mode     Mode
	schema   Schema
	resource Resource
	id       string
	caller   *api.Caller
	scope    *page.Scope

	mu      sync.Mutex
	values  map[string]string
	options map[string][]Option
}

// NewCreate returns a create-mode controller with every schema field empty.
func NewCreate(schema Schema, resource Resource, caller *api.Caller, scope *page.Scope) *Controller {
	return newController(Create, schema, resource, "", caller, scope)
}

// NewEdit returns an edit-mode controller for record id. Fields stay empty
// until Hydrate resolves.
func NewEdit(schema Schema, resource Resource, id string, caller *api.Caller, scope *page.Scope) *Controller {
	return newController(Edit, schema, resource, id, caller, scope)
}

func newController(mode Mode, schema Schema, resource Resource, id string, caller *api.Caller, scope *page.Scope) *Controller {
	if scope == nil {
		scope = page.NewScope()
	}
	values := make(map[string]string, len(schema.Fields))
	for _, f := range schema.Fields {
		values[f.Name] = ""
	}
	return &Controller{
		mode:     mode,
		schema:   schema,
		resource: resource,
		id:       id,
		caller:   caller,
		scope:    scope,
		values:   values,
		options:  make(map[string][]Option),
	}
}

// Mode returns the controller mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// ID returns the edited record id ("" in create mode).
func (c *Controller) ID() string {
	return c.id
}

// Set updates one field and leaves every other field as it was.
func (c *Controller) Set(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = value
}

// SetForm applies submitted fields through Set. Only schema fields and keys
// the record already carries are accepted; anything else a browser posts is
// ignored.
func (c *Controller) SetForm(values url.Values) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name := range values {
		if _, known := c.values[name]; known {
			c.values[name] = values.Get(name)
		}
	}
}

// Value returns a single field value.
func (c *Controller) Value(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[name]
}

// Values returns a copy of the record.
func (c *Controller) Values() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Options returns the selectable options loaded for field.
func (c *Controller) Options(field string) []Option {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Option, len(c.options[field]))
	copy(out, c.options[field])
	return out
}

// Hydrate fetches the edited record and merges its fields into the form.
//
// A result that resolves after the page unmounted is discarded.
func (c *Controller) Hydrate(ctx context.Context) error {
	if c.mode != Edit {
		return ErrNotEditing
	}
	token := c.scope.Token()
	var raw map[string]json.RawMessage
	err := c.caller.JSON(ctx, api.Call{
		Method: http.MethodGet,
		Path:   c.resource.recordPath(c.id),
		Label:  fmt.Sprintf("Failed to fetch %s details", c.resource.Noun),
	}, &raw)
	if err != nil {
		return err
	}
	fields := flatten(raw)
	return c.scope.Apply(token, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for k, v := range fields {
			c.values[k] = v
		}
	})
}

// LoadOptions fetches a list with call and stores it as the options of field.
// Record fields are never touched.
func LoadOptions[T any](ctx context.Context, c *Controller, field string, call api.Call, option func(T) Option) error {
	token := c.scope.Token()
	var items []T
	if err := c.caller.JSON(ctx, call, &items); err != nil {
		return err
	}
	opts := make([]Option, 0, len(items))
	for _, item := range items {
		opts = append(opts, option(item))
	}
	return c.scope.Apply(token, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.options[field] = opts
	})
}

// Payload encodes the record for submission. Edit mode drops the fields
// listed in Resource.EditExclude.
func (c *Controller) Payload() url.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload := make(url.Values, len(c.values))
	for k, v := range c.values {
		if c.mode == Edit && c.excluded(k) {
			continue
		}
		payload.Set(k, v)
	}
	return payload
}

func (c *Controller) excluded(name string) bool {
	for _, ex := range c.resource.EditExclude {
		if ex == name {
			return true
		}
	}
	return false
}

// Submit POSTs (create) or PUTs (edit) the record and navigates to the list
// page on success.
func (c *Controller) Submit(ctx context.Context) error {
	call := api.Call{
		Method: http.MethodPost,
		Path:   c.resource.Path,
		Form:   c.Payload(),
		Label:  fmt.Sprintf("Failed to create %s", c.resource.Noun),
	}
	if c.mode == Edit {
		call.Method = http.MethodPut
		call.Path = c.resource.recordPath(c.id)
		call.Label = fmt.Sprintf("Failed to update %s", c.resource.Noun)
	}
	if err := c.caller.Send(ctx, call); err != nil {
		return err
	}
	c.caller.Navigate(c.resource.ListPage)
	return nil
}

// Delete removes the edited record once the user confirmed, then navigates
// to the list page. Without confirmation no request is made.
func (c *Controller) Delete(ctx context.Context, confirmed bool) error {
	if c.mode != Edit {
		return ErrNotEditing
	}
	if !confirmed {
		return ErrNotConfirmed
	}
	err := c.caller.Send(ctx, api.Call{
		Method: http.MethodDelete,
		Path:   c.resource.recordPath(c.id),
		Label:  fmt.Sprintf("Failed to delete %s", c.resource.Noun),
	})
	if err != nil {
		return err
	}
	c.caller.Navigate(c.resource.ListPage)
	return nil
}

// Fields returns the schema fields with their current values and options.
func (c *Controller) Fields() []FieldView {
	c.mu.Lock()
	defer c.mu.Unlock()
	views := make([]FieldView, 0, len(c.schema.Fields))
	for _, f := range c.schema.Fields {
		opts := f.Options
		if loaded, ok := c.options[f.Name]; ok {
			opts = append(append([]Option(nil), f.Options...), loaded...)
		}
		views = append(views, FieldView{Field: f, Value: c.values[f.Name], Options: opts})
	}
	return views
}

// Hidden returns record fields outside the schema (id, rating, ...), sorted
// by name, so that they survive a form round trip.
func (c *Controller) Hidden() []HiddenField {
	c.mu.Lock()
	defer c.mu.Unlock()
	var hidden []HiddenField
	for k, v := range c.values {
		if _, ok := c.schema.Field(k); ok {
			continue
		}
		hidden = append(hidden, HiddenField{Name: k, Value: v})
	}
	sort.Slice(hidden, func(i, j int) bool { return hidden[i].Name < hidden[j].Name })
	return hidden
}

// flatten turns a JSON object into string fields. null becomes "", strings
// are unquoted, anything else keeps its JSON text.
func flatten(raw map[string]json.RawMessage) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		switch {
		case len(v) == 0 || bytes.Equal(v, []byte("null")):
			out[k] = ""
		case v[0] == '"':
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				out[k] = string(v)
				continue
			}
			out[k] = s
		default:
			out[k] = string(v)
		}
	}
	return out
}
