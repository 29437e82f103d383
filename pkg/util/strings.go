package util

// Sanitize returns s with every byte outside printable 7-bit ASCII dropped,
// keeping newlines. Strips the control and escape sequences some devices
// emit around their output.
func Sanitize(s string) string {
	result := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c > 31 && c < 127) || c == '\n' {
			result = append(result, c)
		}
	}
	return string(result)
}

// SanitizeName replaces non-alphanumeric chars with hyphens for key names.
func SanitizeName(name string) string {
	result := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' {
			result = append(result, c)
		} else {
			result = append(result, '-')
		}
	}
	return string(result)
}
