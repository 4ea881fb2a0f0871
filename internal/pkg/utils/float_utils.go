package utils

// Float64OrZero dereferences v, treating nil as 0.
func Float64OrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}
