package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	old := Version
	Version = "v1.2.3"
	defer func() { Version = old }()

	if !strings.Contains(Template(), "version v1.2.3") {
		t.Errorf("Template() = %q", Template())
	}
	if Get().Version != "v1.2.3" {
		t.Errorf("Get() = %+v", Get())
	}
	if !strings.HasPrefix(String(), "version: v1.2.3\n") {
		t.Errorf("String() = %q", String())
	}
}
