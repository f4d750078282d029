package cli

import (
	"context"
	"os"

	"github.com/opencode-ai/templar/internal/prompt"
)

// Terminal access; tests replace both.
var (
	promptDriver     prompt.Driver = prompt.NewSurveyDriver()
	terminalAttached               = hasTTY
)

// IsNonInteractive reports whether prompts should be skipped and defaults used.
func IsNonInteractive() bool {
	if nonInteractive {
		return true
	}
	if _, ok := os.LookupEnv("TEMPLAR_NON_INTERACTIVE"); ok {
		return true
	}
	return !terminalAttached()
}

// IsInteractive reports whether the session can prompt for user input.
func IsInteractive() bool {
	return !IsNonInteractive()
}

// confirm asks a yes/no question. Without a terminal the answer is no.
func confirm(ctx context.Context, message string) bool {
	if IsNonInteractive() {
		return false
	}
	ok, err := promptDriver.Confirm(ctx, prompt.ConfirmConfig{Message: message})
	if err != nil {
		return false
	}
	return ok
}
