package types

import (
	"regexp"
	"testing"
)

func TestFingerprint(t *testing.T) {
	base := Fingerprint("The obstacle is the way.")

	if !regexp.MustCompile(`^[0-9a-f]{16}$`).MatchString(base) {
		t.Fatalf("fingerprint %q is not 16 hex chars", base)
	}
	if got := Fingerprint("  THE   Obstacle\tis the WAY.  "); got != base {
		t.Fatalf("normalization failed: %q != %q", got, base)
	}
	if got := Fingerprint("The obstacle is the way"); got == base {
		t.Fatal("distinct texts share a fingerprint")
	}
}
