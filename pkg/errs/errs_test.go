package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCodeOf(t *testing.T) {
	err := New(CodeCapacityExceeded, "mine")
	if CodeOf(err) != CodeCapacityExceeded {
		t.Errorf("CodeOf = %q", CodeOf(err))
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if CodeOf(wrapped) != CodeCapacityExceeded {
		t.Error("CodeOf must see through wrapping")
	}

	if CodeOf(errors.New("plain")) != CodeUnknownRevert {
		t.Error("unclassified errors default to unknown revert")
	}
	if CodeOf(nil) != "" {
		t.Error("nil has no code")
	}
}

func TestWrap_NilCause(t *testing.T) {
	if err := Wrap(CodeTransientNetwork, "poll", nil); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(New(CodeTransientNetwork, "poll")) {
		t.Error("transient network errors are retryable")
	}
	for _, code := range []Code{
		CodeUserDeclined, CodeInsufficientFunds, CodeNotEligible,
		CodeCapacityExceeded, CodeNothingPending, CodeNothingClaimable,
		CodeUnknownRevert,
	} {
		if Retryable(New(code, "op")) {
			t.Errorf("%s must not be retryable", code)
		}
	}
}

func TestSilent(t *testing.T) {
	if !Silent(New(CodeUserDeclined, "finalize")) {
		t.Error("a declined signature is silent")
	}
	if !Silent(New(CodeBusy, "finalize")) {
		t.Error("a debounced duplicate invocation is silent")
	}
	if Silent(New(CodeCapacityExceeded, "mine")) {
		t.Error("capacity errors are user-visible")
	}
}

func TestUserMessage_Sanitized(t *testing.T) {
	cause := errors.New("execution reverted: 0xdeadbeef cap at 0x00112233445566778899aabbccddeeff00112233")
	err := Wrap(CodeCapacityExceeded, "mine", cause)

	msg := UserMessage(err)
	if msg == "" {
		t.Fatal("capacity errors must have a user message")
	}
	if strings.Contains(msg, "0x") || strings.Contains(msg, "deadbeef") {
		t.Errorf("user message leaked raw internals: %q", msg)
	}
}

func TestUserMessage_SilentAndNil(t *testing.T) {
	if UserMessage(nil) != "" {
		t.Error("nil has no user message")
	}
	if UserMessage(New(CodeUserDeclined, "mine")) != "" {
		t.Error("silent errors have no user message")
	}
}

func TestUserMessage_UnknownFallback(t *testing.T) {
	if UserMessage(errors.New("boom")) == "" {
		t.Error("unclassified errors fall back to the generic message")
	}
}
