package osutils

import "testing"

func TestPrivilegeHint(t *testing.T) {
	if PrivilegeHint() == "" {
		t.Error("Expected a non-empty privilege hint")
	}
	// Must not panic whatever the privileges of the test runner
	_ = IsAdmin()
}
