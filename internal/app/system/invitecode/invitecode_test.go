package invitecode

import "testing"

func TestGenerate_Format(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if !Valid(code) {
			t.Fatalf("Generate produced invalid code %q", code)
		}
		seen[code] = true
	}
	if len(seen) < 190 {
		t.Errorf("expected nearly all codes distinct, got %d of 200", len(seen))
	}
}

func TestNormalizeAndValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ABCD-1234", true},
		{"abcd-1234", true},
		{"  x9y8-z7w6 ", true},
		{"ABCD1234", false},
		{"ABC-12345", false},
		{"ABCD-12_4", false},
		{"", false},
		{"ABCD-1234-", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Valid(Normalize(tt.in)); got != tt.want {
				t.Errorf("Valid(Normalize(%q)) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
