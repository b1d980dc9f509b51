package cmds

// Var defines a flag taking one argument and returns where the argument is
// stored. name followed by a dot resets it.
func Var[T any](name string, desc string) *T {
	var value T
	Define(name, Func(func(v T) {
		value = v
	}).Desc(desc))
	Define(name+".", Func(func() {
		var zero T
		value = zero
	}).Hide())
	return &value
}

// Switch defines a flag without argument. name prefixed with ! turns it off.
func Switch(name string, desc string) *bool {
	var value bool
	Define(name, Func(func() {
		value = true
	}).Desc(desc))
	Define("!"+name, Func(func() {
		value = false
	}).Hide())
	return &value
}
