package runner

import (
	"errors"

	"github.com/astroforge/astro/internal/compiler"
	"github.com/astroforge/astro/internal/engine"
)

// ExtractContractsInfo gathers per-function execution metadata from the
// checked program, keyed by qualified name. The engine uses it to
// validate entry references before a run.
func ExtractContractsInfo(db *compiler.Database, crates []compiler.CrateID) (engine.ContractsInfo, error) {
	checked := db.CheckedProgram(crates)
	if checked == nil {
		return nil, errors.New("no checked program available")
	}

	contracts := make(engine.ContractsInfo, len(checked.Funcs))
	for _, fn := range checked.Funcs {
		contracts[fn.QualifiedName] = engine.ContractInfo{
			QualifiedName: fn.QualifiedName,
			ParamCount:    fn.ParamCount,
			ReturnsValue:  fn.ReturnsValue,
		}
	}
	return contracts, nil
}
