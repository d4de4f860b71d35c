package util

import (
	"errors"
	"runtime"
	"testing"
)

func TestLaunchersFor(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"windows": "rundll32",
		"darwin":  "open",
		"linux":   "xdg-open",
	}
	for goos, first := range cases {
		ls := launchersFor(goos, "http://localhost:20262")
		if len(ls) == 0 || ls[0].name != first {
			t.Fatalf("%s: first launcher want=%s got=%+v", goos, first, ls)
		}
		last := ls[0].args[len(ls[0].args)-1]
		if last != "http://localhost:20262" {
			t.Fatalf("%s: url should be the last arg, got %v", goos, ls[0].args)
		}
	}
}

func TestOpenBrowser_FallsBack(t *testing.T) {
	orig := startCommand
	defer func() { startCommand = orig }()

	var tried []string
	startCommand = func(name string, args ...string) error {
		tried = append(tried, name)
		if len(tried) < 2 {
			return errors.New("not found")
		}
		return nil
	}

	if len(launchersFor(runtime.GOOS, "x")) < 2 {
		t.Skip("no fallback launcher on this platform")
	}
	if err := OpenBrowser("http://localhost"); err != nil {
		t.Fatalf("OpenBrowser: %v", err)
	}
	if len(tried) != 2 {
		t.Fatalf("want 2 attempts, got %v", tried)
	}
}

func TestOpenBrowser_AllFail(t *testing.T) {
	orig := startCommand
	defer func() { startCommand = orig }()

	startCommand = func(string, ...string) error { return errors.New("boom") }
	if err := OpenBrowser("http://localhost"); err == nil {
		t.Fatal("expected error when every launcher fails")
	}
}
