package monitoring

import (
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("custom logger was not called")
	}

	// nil installs a no-op logger that must not panic and must not
	// reach the previous logger.
	called = false
	SetLogger(nil)
	Logf("test message")
	if called {
		t.Error("no-op logger should not have triggered callback")
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()
	Logf("test message: %s", "value")
}

func TestDebugf_GatedByVerbose(t *testing.T) {
	originalLogf := Logf
	originalVerbose := Verbose
	defer func() {
		Logf = originalLogf
		Verbose = originalVerbose
	}()

	calls := 0
	SetLogger(func(format string, v ...interface{}) {
		calls++
	})

	Verbose = false
	Debugf("quiet")
	if calls != 0 {
		t.Errorf("Debugf logged while Verbose=false: %d calls", calls)
	}

	Verbose = true
	Debugf("loud")
	if calls != 1 {
		t.Errorf("Debugf did not log while Verbose=true: %d calls", calls)
	}
}
