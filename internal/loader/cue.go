package loader

import (
	_ "embed"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaCUE string

// compileCUE compiles a document and unifies it with the embedded schema.
// The returned value is not yet checked for concreteness.
func compileCUE(path string, data []byte) (cue.Value, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, formatCUEError("schema.cue", err)
	}

	doc := ctx.CompileBytes(data, cue.Filename(path))
	if err := doc.Err(); err != nil {
		return cue.Value{}, formatCUEError(path, err)
	}

	unified := schema.Unify(doc)
	if err := unified.Err(); err != nil {
		return cue.Value{}, formatCUEError(path, err)
	}
	return unified, nil
}

// concreteField looks up a top-level field and validates that it is
// fully concrete. ok is false when the field is absent.
func concreteField(path string, v cue.Value, field string) (cue.Value, bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return cue.Value{}, false, nil
	}
	if err := fv.Validate(cue.Concrete(true)); err != nil {
		return cue.Value{}, true, formatCUEError(path, err)
	}
	return fv, true, nil
}
