package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestComponentLoggerFollowsOutputAndLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		_ = SetLevel("info")
	})

	l := With("assets")
	if err := SetLevel("warn"); err != nil {
		t.Fatal(err)
	}
	l.Info("hidden %d", 1)
	l.Warn("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown 2") || !strings.Contains(out, "oxy/assets") {
		t.Fatalf("warn line missing prefix or message: %q", out)
	}
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	if err := SetLevel("chatty"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
