package shader

import "testing"

func TestTerminate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"void main() {}", "void main() {}\x00"},
		{"void main() {}\x00", "void main() {}\x00"},
		{"", "\x00"},
	}
	for _, tt := range tests {
		if got := terminate(tt.in); got != tt.want {
			t.Errorf("terminate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
