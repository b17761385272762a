package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"  probe A  ":        "probe A",
		"mouse/day1":         "mouse-day1",
		`run:1*"x"?<y>|z`:    "run-1-xyz",
		"":                   "",
		"run_g0_t0.imec0.ap": "run_g0_t0.imec0.ap",
	}
	for input, want := range tests {
		if got := SanitizeFileName(input); got != want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestStem(t *testing.T) {
	tests := map[string]string{
		"/data/run_g0_t0.imec0.ap.meta": "run_g0_t0.imec0.ap",
		"probe.meta":                    "probe",
		"noext":                         "noext",
		"/":                             "",
	}
	for input, want := range tests {
		if got := Stem(input); got != want {
			t.Fatalf("Stem(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeNameComposes(t *testing.T) {
	decomposed := "souris_e\u0301te\u0301"
	if got := NormalizeName(" " + decomposed + " "); got != "souris_\u00e9t\u00e9" {
		t.Fatalf("expected NFC form, got %q", got)
	}
}
