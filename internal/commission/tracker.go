package commission

import "github.com/csg33k/txn-intake/internal/domain"

// Status is the per-field validity state: untouched until blurred or
// until a submit attempt, then valid or invalid.
type Status int

const (
	Untouched Status = iota
	Valid
	Invalid
)

func (s Status) String() string {
	switch s {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	}
	return "untouched"
}

// Tracker records per-field validity for one commission step.
// The zero value is not usable; call NewTracker.
type Tracker struct {
	mode   PaidMode
	status map[Field]Status
	errs   map[Field]string
}

func NewTracker(mode PaidMode) *Tracker {
	return &Tracker{
		mode:   mode,
		status: make(map[Field]Status, len(Fields)),
		errs:   make(map[Field]string),
	}
}

// Blur validates a single field as the user leaves it.
func (t *Tracker) Blur(f Field, s domain.CommissionState) Status {
	return t.check(f, s)
}

// Attempt validates every field, as on a press of "next".
func (t *Tracker) Attempt(s domain.CommissionState) domain.ValidationErrors {
	for _, f := range Fields {
		t.check(f, s)
	}
	return t.Errors()
}

func (t *Tracker) Status(f Field) Status { return t.status[f] }

// Errors returns the messages of touched invalid fields in form order.
func (t *Tracker) Errors() domain.ValidationErrors {
	var errs domain.ValidationErrors
	for _, f := range Fields {
		if msg, ok := t.errs[f]; ok {
			errs = append(errs, domain.ValidationError{Field: string(f), Message: msg})
		}
	}
	return errs
}

// CanAdvance reports whether the step may be left with state s.
func (t *Tracker) CanAdvance(s domain.CommissionState) bool {
	return len(Validate(s, t.mode)) == 0
}

func (t *Tracker) check(f Field, s domain.CommissionState) Status {
	if msg := ValidateField(f, s, t.mode); msg != "" {
		t.status[f] = Invalid
		t.errs[f] = msg
		return Invalid
	}
	t.status[f] = Valid
	delete(t.errs, f)
	return Valid
}
