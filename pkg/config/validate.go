package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaSource []byte

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
)

func loadSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		schema := schemaCtx.CompileBytes(schemaSource)
		if schema.Err() != nil {
			schemaErr = fmt.Errorf("compiling schema: %w", schema.Err())
			return
		}
		schemaDef = schema.LookupPath(cue.ParsePath("#Config"))
		if schemaDef.Err() != nil {
			schemaErr = fmt.Errorf("looking up #Config definition: %w", schemaDef.Err())
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// Validate checks cfg against the embedded CUE schema.
func Validate(cfg *Config) error {
	ctx, def, err := loadSchema()
	if err != nil {
		return err
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config to JSON: %w", err)
	}
	value := ctx.CompileBytes(data)
	if value.Err() != nil {
		return fmt.Errorf("compiling config as CUE: %w", value.Err())
	}

	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
