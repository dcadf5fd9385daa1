package assembler

// cmpOr returns the first of its arguments that is not zero, or zero if
// all are. It mirrors cmp.Or, which is unavailable before Go 1.22.
func cmpOr(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}
