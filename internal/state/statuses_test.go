package state

import (
	"testing"
)

func TestExecutionStatus_String(t *testing.T) {
	tests := []struct {
		name     string
		status   ExecutionStatus
		expected string
	}{
		{name: "Success status", status: StatusSuccess, expected: "success"},
		{name: "Error status", status: StatusError, expected: "error"},
		{name: "Partial status", status: StatusPartial, expected: "partial"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.status.String(); result != tt.expected {
				t.Errorf("String() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestFromOutcome(t *testing.T) {
	tests := []struct {
		name      string
		succeeded int
		failed    int
		expected  ExecutionStatus
	}{
		{name: "nothing to do", succeeded: 0, failed: 0, expected: StatusSuccess},
		{name: "all sent", succeeded: 2, failed: 0, expected: StatusSuccess},
		{name: "escalation failed after regular sent", succeeded: 1, failed: 1, expected: StatusPartial},
		{name: "only send failed", succeeded: 0, failed: 1, expected: StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := FromOutcome(tt.succeeded, tt.failed); result != tt.expected {
				t.Errorf("FromOutcome() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestExecutionStatus_Advances(t *testing.T) {
	if !StatusSuccess.Advances() || !StatusPartial.Advances() {
		t.Error("success and partial runs must advance last-executed")
	}
	if StatusError.Advances() {
		t.Error("error runs must not advance last-executed")
	}
}
