package publish

import "testing"

func TestKeyPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Thomson TG585 v8", "rtstat:Thomson-TG585-v8"},
		{"simple", "rtstat:simple"},
	}

	for _, tt := range tests {
		got := keyPrefix(tt.input)
		if got != tt.want {
			t.Errorf("keyPrefix(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
