// Package form models the route planner's input form: a starting point and a
// dynamic list of destination rows.
package form

import (
	"fmt"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/route"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/apperr"
	"github.com/google/uuid"
)

// Field is one destination row.
type Field struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Input is the validated content of the form.
type Input struct {
	Origin       route.Address
	Destinations []route.Address
	Mode         route.TravelMode
	Optimize     bool
}

// Form holds raw, unvalidated user input.
type Form struct {
	origin       string
	destinations []Field
	mode         route.TravelMode
	optimize     bool
}

// New creates a form with one empty destination row and driving mode.
func New() *Form {
	f := &Form{mode: route.ModeDriving}
	f.AddDestinationField()
	return f
}

// Origin returns the raw starting point text.
func (f *Form) Origin() string { return f.origin }

// Mode returns the selected travel mode.
func (f *Form) Mode() route.TravelMode { return f.mode }

// Optimize returns whether waypoint optimisation is requested.
func (f *Form) Optimize() bool { return f.optimize }

// Destinations returns a copy of the destination rows in display order.
func (f *Form) Destinations() []Field {
	out := make([]Field, len(f.destinations))
	copy(out, f.destinations)
	return out
}

// SetOrigin replaces the starting point text.
func (f *Form) SetOrigin(text string) { f.origin = text }

// SetMode selects the travel mode.
func (f *Form) SetMode(mode route.TravelMode) error {
	if !mode.IsValid() {
		return apperr.NewValidationError(fmt.Sprintf("invalid travel mode: %s", mode))
	}
	f.mode = mode
	return nil
}

// SetOptimize toggles waypoint optimisation.
func (f *Form) SetOptimize(optimize bool) { f.optimize = optimize }

// SetDestination replaces the text of the row with the given id.
func (f *Form) SetDestination(id, text string) error {
	i := f.indexOf(id)
	if i < 0 {
		return apperr.NewNotFoundError("Destination field", id)
	}
	f.destinations[i].Value = text
	return nil
}

// AddDestinationField appends an empty row and returns it.
func (f *Form) AddDestinationField() Field {
	f.destinations = append(f.destinations, Field{ID: uuid.NewString()})
	f.renumber()
	return f.destinations[len(f.destinations)-1]
}

// RemoveDestinationField deletes the row with the given id. The last row cannot be removed.
func (f *Form) RemoveDestinationField(id string) error {
	i := f.indexOf(id)
	if i < 0 {
		return apperr.NewNotFoundError("Destination field", id)
	}
	if len(f.destinations) == 1 {
		return apperr.NewValidationError("At least one destination field is required")
	}
	f.destinations = append(f.destinations[:i], f.destinations[i+1:]...)
	f.renumber()
	return nil
}

// Collect trims the input, drops blank destinations and validates what is left.
func (f *Form) Collect() (Input, error) {
	origin := route.Address(f.origin).Normalize()
	if origin == "" {
		return Input{}, apperr.NewValidationError("Please enter a starting point")
	}

	destinations := make([]route.Address, 0, len(f.destinations))
	for _, field := range f.destinations {
		if d := route.Address(field.Value).Normalize(); d != "" {
			destinations = append(destinations, d)
		}
	}
	if len(destinations) == 0 {
		return Input{}, apperr.NewValidationError("Please add at least one destination")
	}

	return Input{
		Origin:       origin,
		Destinations: destinations,
		Mode:         f.mode,
		Optimize:     f.optimize,
	}, nil
}

func (f *Form) indexOf(id string) int {
	for i, field := range f.destinations {
		if field.ID == id {
			return i
		}
	}
	return -1
}

// renumber keeps labels at "Destination 1".."Destination N" with no gaps.
func (f *Form) renumber() {
	for i := range f.destinations {
		f.destinations[i].Label = fmt.Sprintf("Destination %d", i+1)
	}
}
