package vars

// FirstNonZero picks the first value that is set, in precedence order, such
// as a flag, then a config value, then a default.
func FirstNonZero[T comparable](values ...T) (ret T) {
	for _, value := range values {
		if value != ret {
			return value
		}
	}
	return
}
