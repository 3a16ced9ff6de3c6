package compiler

import (
	"errors"
	"fmt"

	"github.com/strogmv/websubc/compiler/project"
)

// Stage defines a formal compiler pipeline stage.
type Stage string

const (
	StageLoad    Stage = "LOAD"
	StageAnalyze Stage = "ANALYZE"
	StageCompile Stage = "COMPILE"
	StageRewrite Stage = "REWRITE"
	StageEmit    Stage = "EMIT"
)

// ContractError is a typed pipeline error with stage and stable code.
// Module and Document name the source document the failure is attributed
// to, when there is one.
type ContractError struct {
	Stage    Stage
	Code     string
	Op       string
	Module   project.ModuleID
	Document project.DocumentID
	Err      error
}

// Location returns "module/document", or "" when the error is not tied to
// a document.
func (e *ContractError) Location() string {
	if e == nil || e.Document == "" {
		return ""
	}
	return string(e.Module) + "/" + string(e.Document)
}

func (e *ContractError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Op == "" {
		return fmt.Sprintf("[%s:%s] %v", e.Stage, e.Code, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s: %v", e.Stage, e.Code, e.Op, e.Err)
}

func (e *ContractError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WrapContractError wraps err into ContractError and keeps the cause chain.
// A project.DocumentError in the chain sets the error's location.
func WrapContractError(stage Stage, code, op string, err error) error {
	if err == nil {
		return nil
	}
	ce := &ContractError{
		Stage: stage,
		Code:  code,
		Op:    op,
		Err:   err,
	}
	var de *project.DocumentError
	if errors.As(err, &de) {
		ce.Module = de.Module
		ce.Document = de.Document
	}
	return ce
}
