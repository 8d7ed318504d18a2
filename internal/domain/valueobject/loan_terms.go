package valueobject

import (
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// Frequency – immutable value object
// ---------------------------------------------------------------------------

// Frequency is the payment frequency of a loan.
type Frequency struct {
	value          string
	periodsPerYear int
}

const (
	frequencyWeekly    = "WEEKLY"
	frequencyBiweekly  = "BIWEEKLY"
	frequencyMonthly   = "MONTHLY"
	frequencyBimonthly = "BIMONTHLY"
	frequencyQuarterly = "QUARTERLY"
)

var (
	FrequencyWeekly    = Frequency{value: frequencyWeekly, periodsPerYear: 52}
	FrequencyBiweekly  = Frequency{value: frequencyBiweekly, periodsPerYear: 24}
	FrequencyMonthly   = Frequency{value: frequencyMonthly, periodsPerYear: 12}
	FrequencyBimonthly = Frequency{value: frequencyBimonthly, periodsPerYear: 6}
	FrequencyQuarterly = Frequency{value: frequencyQuarterly, periodsPerYear: 4}
)

var validFrequencies = map[string]Frequency{
	frequencyWeekly:    FrequencyWeekly,
	frequencyBiweekly:  FrequencyBiweekly,
	frequencyMonthly:   FrequencyMonthly,
	frequencyBimonthly: FrequencyBimonthly,
	frequencyQuarterly: FrequencyQuarterly,
}

// NewFrequency creates a Frequency from a raw string.
func NewFrequency(s string) (Frequency, error) {
	v, ok := validFrequencies[s]
	if !ok {
		return Frequency{}, fmt.Errorf("invalid frequency: %q", s)
	}
	return v, nil
}

// PeriodsPerYear returns how many payment periods fit in one year.
// BIWEEKLY follows the semi-monthly convention of 24 periods.
func (f Frequency) PeriodsPerYear() int { return f.periodsPerYear }

// DueDate returns the due date of the installment with the given 1-based
// sequence number. Month-based frequencies are computed from the first due
// date, not chained, and clamp to the last day of the target month.
func (f Frequency) DueDate(first time.Time, sequence int) time.Time {
	step := sequence - 1
	switch f.value {
	case frequencyWeekly:
		return first.AddDate(0, 0, 7*step)
	case frequencyBiweekly:
		return first.AddDate(0, 0, 15*step)
	case frequencyMonthly:
		return addMonthsClamped(first, step)
	case frequencyBimonthly:
		return addMonthsClamped(first, 2*step)
	case frequencyQuarterly:
		return addMonthsClamped(first, 3*step)
	default:
		return first
	}
}

// String returns the string representation of the frequency.
func (f Frequency) String() string { return f.value }

// IsZero returns true if the frequency has not been initialised.
func (f Frequency) IsZero() bool { return f.value == "" }

// Equal returns true when both frequencies carry the same value.
func (f Frequency) Equal(other Frequency) bool { return f.value == other.value }

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := target.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// ---------------------------------------------------------------------------
// AmortizationMethod – immutable value object
// ---------------------------------------------------------------------------

// AmortizationMethod selects how principal is repaid over the schedule.
type AmortizationMethod struct {
	value string
}

const (
	methodFrench   = "FRENCH"
	methodGerman   = "GERMAN"
	methodAmerican = "AMERICAN"
)

var (
	// MethodFrench pays a constant total installment.
	MethodFrench = AmortizationMethod{value: methodFrench}
	// MethodGerman pays a constant principal component.
	MethodGerman = AmortizationMethod{value: methodGerman}
	// MethodAmerican pays interest only and the principal as a balloon.
	MethodAmerican = AmortizationMethod{value: methodAmerican}
)

var validMethods = map[string]AmortizationMethod{
	methodFrench:   MethodFrench,
	methodGerman:   MethodGerman,
	methodAmerican: MethodAmerican,
}

// NewAmortizationMethod creates an AmortizationMethod from a raw string.
func NewAmortizationMethod(s string) (AmortizationMethod, error) {
	v, ok := validMethods[s]
	if !ok {
		return AmortizationMethod{}, fmt.Errorf("invalid amortization method: %q", s)
	}
	return v, nil
}

// String returns the string representation of the method.
func (m AmortizationMethod) String() string { return m.value }

// IsZero returns true if the method has not been initialised.
func (m AmortizationMethod) IsZero() bool { return m.value == "" }

// Equal returns true when both methods carry the same value.
func (m AmortizationMethod) Equal(other AmortizationMethod) bool { return m.value == other.value }

// ---------------------------------------------------------------------------
// InstallmentStatus – immutable value object
// ---------------------------------------------------------------------------

// InstallmentStatus is the collection state of a single installment.
type InstallmentStatus struct {
	value string
}

const (
	installmentStatusPending = "PENDING"
	installmentStatusPartial = "PARTIAL"
	installmentStatusPaid    = "PAID"
	installmentStatusLate    = "LATE"
)

var (
	InstallmentStatusPending = InstallmentStatus{value: installmentStatusPending}
	InstallmentStatusPartial = InstallmentStatus{value: installmentStatusPartial}
	InstallmentStatusPaid    = InstallmentStatus{value: installmentStatusPaid}
	InstallmentStatusLate    = InstallmentStatus{value: installmentStatusLate}
)

var validInstallmentStatuses = map[string]InstallmentStatus{
	installmentStatusPending: InstallmentStatusPending,
	installmentStatusPartial: InstallmentStatusPartial,
	installmentStatusPaid:    InstallmentStatusPaid,
	installmentStatusLate:    InstallmentStatusLate,
}

// NewInstallmentStatus creates an InstallmentStatus from a raw string.
func NewInstallmentStatus(s string) (InstallmentStatus, error) {
	v, ok := validInstallmentStatuses[s]
	if !ok {
		return InstallmentStatus{}, fmt.Errorf("invalid installment status: %q", s)
	}
	return v, nil
}

// AccruesMora reports whether an overdue installment in this status accrues mora.
func (s InstallmentStatus) AccruesMora() bool {
	return s.value == installmentStatusLate || s.value == installmentStatusPartial
}

// String returns the string representation of the status.
func (s InstallmentStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s InstallmentStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s InstallmentStatus) Equal(other InstallmentStatus) bool { return s.value == other.value }
