package config

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// schema closes the accepted configuration keys. Unknown keys are errors.
const schema = `
#Config: close({
	annotationPrefix?: string & =~"^[A-Za-z_][A-Za-z0-9_]*$"
	annotationName?:   string & =~"^[A-Za-z_][A-Za-z0-9_]*$"
	fieldName?:        string & =~"^[A-Za-z_][A-Za-z0-9_]*$"
	listenerPrefix?:   string & =~"^[A-Za-z_][A-Za-z0-9_]*$"
	pathLength?:       int & >=4 & <=64
	indentWidth?:      int & >=1 & <=16
	logLevel?:         "trace" | "debug" | "info" | "warn" | "warning" | "error"
	logFormat?:        "json" | "text"
	serviceName?:      string
	otlpEndpoint?:     string
	otlpInsecure?:     bool
	metricsFile?:      string
})
`

func decodeCUE(filename string, data []byte, cfg *Config) error {
	ctx := cuecontext.New()
	def := ctx.CompileString(schema).LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("config error: schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return fmt.Errorf("config error: %s", formatCUEError(err))
	}
	v = def.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("config error: %s", formatCUEError(err))
	}
	if err := v.Decode(cfg); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// formatCUEError flattens a CUE error list, listing every location of a
// conflict.
func formatCUEError(err error) string {
	var parts []string
	for _, e := range cueerrors.Errors(err) {
		msg := e.Error()
		var locs []string
		for _, p := range cueerrors.Positions(e) {
			locs = append(locs, p.String())
		}
		if len(locs) > 0 {
			msg = strings.Join(locs, ", ") + ": " + msg
		}
		parts = append(parts, msg)
	}
	if len(parts) == 0 {
		return err.Error()
	}
	return strings.Join(parts, "; ")
}
