package payment

import "testing"

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"pending", "completed", "failed"} {
		if _, err := ParseStatus(valid); err != nil {
			t.Errorf("ParseStatus(%q): %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "paid", "PENDING", "done"} {
		if _, err := ParseStatus(invalid); err == nil {
			t.Errorf("ParseStatus(%q): expected error", invalid)
		}
	}
}
