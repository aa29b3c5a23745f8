package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Format(t *testing.T) {
	err := New(CodeMissingColumn, "required column not found").
		WithContext("column", "concept:name")

	s := err.Error()
	if !strings.Contains(s, string(CodeMissingColumn)) {
		t.Errorf("Error() = %q, should carry the code", s)
	}
	if !strings.Contains(s, "required column not found") {
		t.Errorf("Error() = %q, should carry the message", s)
	}
}

func TestWrap_Unwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, CodeReplayFailed, "replay aborted")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause must survive errors.Is")
	}
	if GetCode(err) != CodeReplayFailed {
		t.Errorf("GetCode() = %v", GetCode(err))
	}

	var e *Error
	if !stderrors.As(err, &e) {
		t.Fatal("errors.As must find *Error")
	}
	if e.Code != CodeReplayFailed {
		t.Errorf("Code = %v", e.Code)
	}
}

func TestWrap_NestedCodeLookup(t *testing.T) {
	inner := New(CodeMissingColumn, "no such column")
	outer := Wrap(inner, CodeInvalidFormat, "table rejected")

	if !IsCode(outer, CodeInvalidFormat) {
		t.Error("outer code not found")
	}
	if !IsCode(outer, CodeMissingColumn) {
		t.Error("inner code must be reachable through the chain")
	}
	if IsCode(outer, CodeAlignmentFailed) {
		t.Error("unrelated code matched")
	}
}

func TestClassifiers(t *testing.T) {
	if !IsInputShape(InputShape(42)) {
		t.Error("InputShape not classified")
	}
	if !IsSchema(MissingColumn("x", nil)) {
		t.Error("MissingColumn not classified as schema error")
	}
	if !IsUnsupportedModel(UnsupportedModel("x")) {
		t.Error("UnsupportedModel not classified")
	}
	if IsSchema(nil) || IsInputShape(nil) {
		t.Error("nil must not classify")
	}
	if IsSchema(fmt.Errorf("plain")) {
		t.Error("plain errors must not classify")
	}
}

func TestWrap_Nil(t *testing.T) {
	if Wrap(nil, CodeUnknown, "nothing") != nil {
		t.Error("wrapping nil must return nil")
	}
}
