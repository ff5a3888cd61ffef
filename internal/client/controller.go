package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"regform/internal/registration/models"
	"regform/internal/registration/validation"
)

// Messages shown by the form.
const (
	MsgFillAllFields   = "Please fill in all fields."
	MsgInvalidEmail    = "Please enter a valid email address."
	MsgSuccess         = "Registration successful!"
	MsgFailureFallback = "Registration failed. Please try again."
	MsgNetworkError    = "Network error. Please try again."
)

// State is the controller's position in Idle → Submitting → Success|Error.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Field names a form input.
type Field string

const (
	FieldName    Field = "name"
	FieldGender  Field = "gender"
	FieldEmail   Field = "email"
	FieldCountry Field = "country"
)

// FieldMark is the visual state a blur check leaves on an input.
type FieldMark int

const (
	FieldUnmarked FieldMark = iota
	FieldValid
	FieldInvalid
)

// Message is the text in the message area. Visible turns false when the
// auto-clear fires.
type Message struct {
	Text    string
	Kind    State
	Visible bool
}

// Registrar is the part of Client the controller uses.
type Registrar interface {
	Register(ctx context.Context, sub models.Submission) (models.RegisterResponse, error)
}

// Controller mirrors the browser form: local validation, one POST per submit,
// message rendering with a timed clear, and per-field blur marks.
type Controller struct {
	api        Registrar
	messageTTL time.Duration

	mu      sync.Mutex
	values  models.Submission
	marks   map[Field]FieldMark
	state   State
	message Message
	gen     uint64
	timer   *time.Timer
}

// NewController builds a controller; messageTTL <= 0 disables the auto-clear.
func NewController(api Registrar, messageTTL time.Duration) *Controller {
	return &Controller{
		api:        api,
		messageTTL: messageTTL,
		marks:      make(map[Field]FieldMark),
	}
}

// Set stores an input value.
func (c *Controller) Set(f Field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch f {
	case FieldName:
		c.values.Name = value
	case FieldGender:
		c.values.Gender = value
	case FieldEmail:
		c.values.Email = value
	case FieldCountry:
		c.values.Country = value
	}
}

// Values returns the current inputs.
func (c *Controller) Values() models.Submission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values
}

// Blur marks f valid or invalid. It never blocks submission.
func (c *Controller) Blur(f Field) FieldMark {
	c.mu.Lock()
	defer c.mu.Unlock()
	kind := validation.FieldText
	if f == FieldEmail {
		kind = validation.FieldEmail
	}
	mark := FieldInvalid
	if validation.CheckField(kind, c.value(f)) {
		mark = FieldValid
	}
	c.marks[f] = mark
	return mark
}

// Mark returns the last blur result for f.
func (c *Controller) Mark(f Field) FieldMark {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.marks[f]
}

// State returns the current submission state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Message returns the message area contents.
func (c *Controller) Message() Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// Submit runs local validation, then posts the form. Local failures make no
// request. On success the fields are cleared; on any failure they are kept.
func (c *Controller) Submit(ctx context.Context) State {
	c.mu.Lock()
	sub := c.values
	switch err := validation.Validate(sub); {
	case errors.Is(err, validation.ErrMissingFields):
		c.showLocked(MsgFillAllFields, StateError)
		c.mu.Unlock()
		return StateError
	case errors.Is(err, validation.ErrInvalidEmailFormat):
		c.showLocked(MsgInvalidEmail, StateError)
		c.mu.Unlock()
		return StateError
	}
	c.state = StateSubmitting
	c.disarmLocked()
	c.mu.Unlock()

	_, err := c.api.Register(ctx, sub)

	c.mu.Lock()
	defer c.mu.Unlock()
	var apiErr *APIError
	switch {
	case err == nil:
		c.values = models.Submission{}
		c.marks = make(map[Field]FieldMark)
		c.showLocked(MsgSuccess, StateSuccess)
	case errors.As(err, &apiErr):
		text := apiErr.Message
		if text == "" {
			text = MsgFailureFallback
		}
		c.showLocked(text, StateError)
	case errors.Is(err, ErrNetwork):
		c.showLocked(MsgNetworkError, StateError)
	default:
		c.showLocked(MsgFailureFallback, StateError)
	}
	return c.state
}

// showLocked renders text and arms the auto-clear. A newer message bumps the
// generation, so an older timer that fires late leaves it alone.
func (c *Controller) showLocked(text string, kind State) {
	c.state = kind
	c.message = Message{Text: text, Kind: kind, Visible: true}
	c.disarmLocked()
	if c.messageTTL <= 0 {
		return
	}
	gen := c.gen
	c.timer = time.AfterFunc(c.messageTTL, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen != gen {
			return
		}
		c.message.Visible = false
		c.state = StateIdle
	})
}

// disarmLocked cancels any pending auto-clear so it cannot reset a newer state.
func (c *Controller) disarmLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
	}
}

func (c *Controller) value(f Field) string {
	switch f {
	case FieldName:
		return c.values.Name
	case FieldGender:
		return c.values.Gender
	case FieldEmail:
		return c.values.Email
	case FieldCountry:
		return c.values.Country
	}
	return ""
}
