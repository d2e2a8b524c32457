// Package buildgen provides the runtime support consumed by code the
// buildgen command generates: the builder storage cell and the build
// error vocabulary. It has no behavior of its own beyond these types;
// all generation happens at the compiler/gen and compiler/load packages.
package buildgen

// Value is the storage cell generated builders keep per field. It
// distinguishes a field that was never set from a field that was set to
// its zero value, which is what lets Build tell a missing required
// field apart from an optional field deliberately set to nil.
type Value[T any] struct {
	value T
	set   bool
}

// Set records v as the field value. Later calls overwrite earlier ones.
func (v *Value[T]) Set(value T) {
	v.value = value
	v.set = true
}

// IsSet reports whether Set was called at least once.
func (v Value[T]) IsSet() bool {
	return v.set
}

// Get returns the stored value and whether it was set.
func (v Value[T]) Get() (T, bool) {
	return v.value, v.set
}

// OrZero returns the stored value, or the zero value of T if unset.
func (v Value[T]) OrZero() T {
	return v.value
}

// OrElse returns the stored value, or fallback if unset.
func (v Value[T]) OrElse(fallback T) T {
	if v.set {
		return v.value
	}
	return fallback
}

// OrFunc returns the stored value, or the result of calling fn if
// unset. Generated finalizers use it to defer evaluation of custom
// default expressions until a fallback is actually needed.
func (v Value[T]) OrFunc(fn func() T) T {
	if v.set {
		return v.value
	}
	return fn()
}

// Reset clears the cell back to the unset state.
func (v *Value[T]) Reset() {
	var zero T
	v.value = zero
	v.set = false
}
