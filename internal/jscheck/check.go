// Package jscheck verifies that generated scripts are syntactically valid JavaScript.
package jscheck

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/v0xg/puppetrec/internal/codegen"
)

// ErrEmptyScript is returned for a script with no content.
var ErrEmptyScript = errors.New("empty script")

// Check compiles script without running it. Scripts rendered with wrapAsync disabled
// contain top-level await, so they are wrapped in an async function first.
func Check(script string, opts codegen.Options) error {
	if strings.TrimSpace(script) == "" {
		return ErrEmptyScript
	}

	src := script
	if !opts.WrapAsync {
		src = "(async () => {\n" + script + "\n})()\n"
	}

	if _, err := goja.Compile("script.js", src, false); err != nil {
		var syntaxErr *goja.CompilerSyntaxError
		if errors.As(err, &syntaxErr) {
			return fmt.Errorf("generated script has a syntax error: %s", syntaxErr.Error())
		}
		return fmt.Errorf("failed to compile generated script: %w", err)
	}
	return nil
}
