package cli

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestUnknownFlagsProduceUsageErrors(t *testing.T) {
	cases := [][]string{
		{"--definitely-not-a-flag"},
		{"generate", "--nope"},
		{"validate", "--wat", "x"},
		{"init", "--bogus"},
	}
	for _, args := range cases {
		root := NewRootCmd()
		root.SetOut(io.Discard)
		root.SetErr(io.Discard)
		root.SetArgs(args)

		err := root.Execute()
		if err == nil || !errors.Is(err, ErrUsage) {
			t.Errorf("args %v: err = %v, want usage error", args, err)
			continue
		}
		if !strings.Contains(err.Error(), "Usage:") {
			t.Errorf("args %v: error should include usage text, got %q", args, err.Error())
		}
	}
}
