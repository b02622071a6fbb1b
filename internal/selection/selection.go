// Package selection owns the persisted "active driver" choice.
package selection

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Key is the durable storage key holding the active contact ID.
const Key = "activeDriverId"

// Store is a durable key-value store. Get reports found=false for absent keys.
type Store interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
}

// StoreError records a failed read or write of the selection key.
type StoreError struct {
	Op  string // "read", "write" or "open"
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("selection: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// State is the selection state: Unset, or Active with a contact ID.
type State struct {
	id     int
	active bool
}

// Unset is the initial state with no active contact.
var Unset = State{}

// Active returns the state with id selected.
func Active(id int) State {
	return State{id: id, active: true}
}

// ID returns the active contact ID and whether one is set.
func (s State) ID() (int, bool) {
	return s.id, s.active
}

// IsSet reports whether a contact is active.
func (s State) IsSet() bool {
	return s.active
}

// Is reports whether id is the active contact.
func (s State) Is(id int) bool {
	return s.active && s.id == id
}

func (s State) String() string {
	if !s.active {
		return "Unset"
	}
	return fmt.Sprintf("Active(%d)", s.id)
}

// Controller holds the active contact ID and writes it through to a Store.
// It has no deselect operation: once Active, it stays Active.
type Controller struct {
	store  Store
	state  State
	logger *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for diagnostic output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController creates a Controller in the Unset state backed by store.
// Call Initialize to restore a previously persisted selection.
func NewController(store Store, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize restores the selection from the store. An absent or non-integer
// value leaves the state Unset. Only a failing store read is returned.
func (c *Controller) Initialize() error {
	raw, found, err := c.store.Get(Key)
	if err != nil {
		return &StoreError{Op: "read", Key: Key, Err: err}
	}
	if !found {
		c.state = Unset
		return nil
	}
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		c.logger.Debug("ignoring unparsable stored selection", "key", Key, "value", raw)
		c.state = Unset
		return nil
	}
	c.state = Active(id)
	c.logger.Debug("restored selection", "id", id)
	return nil
}

// Select makes id the active contact and persists it. The ID is not checked
// against any catalog. The in-memory state changes even if the write fails.
func (c *Controller) Select(id int) error {
	c.state = Active(id)
	if err := c.store.Set(Key, strconv.Itoa(id)); err != nil {
		return &StoreError{Op: "write", Key: Key, Err: err}
	}
	c.logger.Info("active driver selected", "id", id)
	return nil
}

// State returns the current selection state.
func (c *Controller) State() State {
	return c.state
}

// Current returns the active contact ID, if any.
func (c *Controller) Current() (int, bool) {
	return c.state.ID()
}

// IsActive reports whether id is the active contact.
func (c *Controller) IsActive(id int) bool {
	return c.state.Is(id)
}
