package utils

// CompareQuestionNumbers orders question number labels the way a reader
// expects: runs of digits compare numerically and everything else compares
// lexicographically, so "2" < "10" and "2.1" < "2.10". Returns -1, 0 or 1.
func CompareQuestionNumbers(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			ia := digitRunEnd(a, i)
			jb := digitRunEnd(b, j)
			if c := compareDigits(a[i:ia], b[j:jb]); c != 0 {
				return c
			}
			i, j = ia, jb
			continue
		}
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case len(a)-i < len(b)-j:
		return -1
	case len(a)-i > len(b)-j:
		return 1
	default:
		return 0
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func digitRunEnd(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

// compareDigits compares two digit strings numerically without parsing them
// into integers, so arbitrarily long labels cannot overflow.
func compareDigits(a, b string) int {
	a = trimLeadingZeros(a)
	b = trimLeadingZeros(b)
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func trimLeadingZeros(s string) string {
	i := 0
	for i < len(s)-1 && s[i] == '0' {
		i++
	}
	return s[i:]
}
