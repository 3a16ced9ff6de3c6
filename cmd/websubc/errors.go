package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/strogmv/websubc/compiler"
)

// formatStageFailure renders err under prefix. Errors that already carry a
// stage and code keep them.
func formatStageFailure(prefix string, stage compiler.Stage, code, op string, err error) string {
	var ce *compiler.ContractError
	if errors.As(err, &ce) {
		return fmt.Sprintf("%s: %v", prefix, err)
	}
	return fmt.Sprintf("%s: %v", prefix, compiler.WrapContractError(stage, code, op, err))
}

func printStageFailure(w io.Writer, prefix string, stage compiler.Stage, code, op string, err error) {
	fmt.Fprintln(w, formatStageFailure(prefix, stage, code, op, err))
}
