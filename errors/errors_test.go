package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_RetryableDetection(t *testing.T) {
	if New(ErrCodeStorage, "read failed", http.StatusServiceUnavailable).Retryable != true {
		t.Error("STORAGE_ERROR should be retryable")
	}
	for _, code := range []ErrorCode{ErrCodeSchema, ErrCodeLookup, ErrCodeResourceState, ErrCodeHardware} {
		if New(code, "x", http.StatusConflict).Retryable {
			t.Errorf("%s should not be retryable", code)
		}
	}
}

func TestSchema_HeaderAndRow(t *testing.T) {
	header := Schema("Volume", 0, "column is missing")
	if header.Code != ErrCodeSchema {
		t.Errorf("expected SCHEMA_ERROR, got %s", header.Code)
	}
	if _, ok := header.Details["row"]; ok {
		t.Error("expected no row detail for header errors")
	}

	row := Schema("Volume", 3, "not a number")
	if row.Details["row"] != 3 {
		t.Errorf("expected row=3, got %v", row.Details["row"])
	}
	if !strings.Contains(row.Message, "row 3") {
		t.Errorf("expected message to mention row 3, got %q", row.Message)
	}
}

func TestLookup_Details(t *testing.T) {
	err := Lookup("well", "Z99", "Oligos_1")
	if err.Code != ErrCodeLookup {
		t.Errorf("expected LOOKUP_ERROR, got %s", err.Code)
	}
	if err.Details["name"] != "Z99" {
		t.Errorf("expected name=Z99, got %v", err.Details["name"])
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected 404, got %d", err.HTTPStatus)
	}
}

func TestResourceState_Message(t *testing.T) {
	err := ResourceState("right", "pick up a tip", "holding a tip")
	want := "pipette right cannot pick up a tip while holding a tip"
	if !strings.Contains(err.Error(), want) {
		t.Errorf("expected %q in %q", want, err.Error())
	}
}

func TestHardware_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("motor stalled")
	err := Hardware("aspirate", cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !strings.Contains(err.Error(), "motor stalled") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestCodeOf_WrappedChain(t *testing.T) {
	base := Lookup("well", "Z99", "plate")
	wrapped := fmt.Errorf("batch water: %w", base)

	if got := CodeOf(wrapped); got != ErrCodeLookup {
		t.Errorf("expected LOOKUP_ERROR, got %q", got)
	}
	if !Is(wrapped, ErrCodeLookup) {
		t.Error("expected Is to match LOOKUP_ERROR through wrapping")
	}
	if Is(wrapped, ErrCodeSchema) {
		t.Error("expected Is not to match SCHEMA_ERROR")
	}
	if CodeOf(fmt.Errorf("plain")) != "" {
		t.Error("expected empty code for non-AppError")
	}
	if Is(nil, ErrCodeLookup) {
		t.Error("expected Is(nil) to be false")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(fmt.Errorf("fetch: %w", Storage("download", "a.csv", fmt.Errorf("timeout")))) {
		t.Error("expected storage error to be retryable")
	}
	if IsRetryable(Schema("Volume", 1, "bad")) {
		t.Error("expected schema error to be terminal")
	}
}

func TestWithDetail(t *testing.T) {
	err := InvalidInput("volume", "must be positive").WithDetail("value", -1.0)
	if err.Details["field"] != "volume" || err.Details["value"] != -1.0 {
		t.Errorf("unexpected details %v", err.Details)
	}
}

func TestToResponse(t *testing.T) {
	resp := Conflict("run is not paused").ToResponse()
	if resp.Error.Code != ErrCodeConflict {
		t.Errorf("expected CONFLICT, got %s", resp.Error.Code)
	}
	if resp.Error.Message != "run is not paused" {
		t.Errorf("unexpected message %q", resp.Error.Message)
	}
}
