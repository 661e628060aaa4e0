package brand

import (
	"strings"
	"testing"
)

func TestBrandLoaded(t *testing.T) {
	if Name == "" || LowerName == "" {
		t.Fatal("brand identity not initialized from brand.json")
	}
	if LowerName != strings.ToLower(LowerName) {
		t.Errorf("LowerName is not lowercase: %q", LowerName)
	}
	if EngineBinary == "" {
		t.Error("engine binary must be set")
	}
}

func TestDefaultPaths(t *testing.T) {
	if got := DefaultConfigPath(); !strings.HasPrefix(got, DefaultConfigDir) {
		t.Errorf("DefaultConfigPath() = %q, want under %q", got, DefaultConfigDir)
	}
	if got := DefaultAuditPath(); !strings.HasSuffix(got, AuditFileName) {
		t.Errorf("DefaultAuditPath() = %q, want suffix %q", got, AuditFileName)
	}
}
