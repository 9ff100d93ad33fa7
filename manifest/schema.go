package manifest

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// schemaSrc constrains a decoded manifest after defaults are applied.
const schemaSrc = `
project: {
	name:     string & !=""
	version?: string
	entry?:   =~"\\.doml\\.toml$"
}
runtime: {
	"stack-size":    int & >=0
	"register-size": int & >=0
	mode:            "safe" | "unsafe"
	trace:           bool
}
log: {
	verbosity: int & >=-4 & <=5
	file?:     string
	journal?:  string
}
"go-wrap": {
	output: string & !=""
	packages?: [...{
		import:   string & !=""
		include?: [...string & !=""]
	}]
}
`

// Validate checks a manifest against the schema.
func Validate(m *Manifest) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString("close({" + schemaSrc + "})")
	if err := schema.Err(); err != nil {
		return fmt.Errorf("manifest schema: %w", err)
	}

	value := ctx.Encode(m)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}
	return nil
}
