// Package analysis turns per-run simulation responses into sensitivity and
// uncertainty statistics.
//
//   - [ElementaryEffects]: Morris elementary effects for one response column
//   - [Aggregate]: elementary effects for every column of a response table
//   - [Summarize]: distribution summary of each response column over the runs
//
// # Screening
//
// MeanAbs (mu*) ranks parameters by overall influence and is insensitive to
// effects of opposite sign cancelling out. A large Sigma relative to MeanAbs
// flags a non-linear parameter or one that interacts with others:
//
//	results := analysis.Aggregate(design.Matrix, params, responses)
//	for _, col := range results {
//	    if col.Err != nil {
//	        continue // only this column is unusable
//	    }
//	    top := analysis.Rank(col.Effects)[0]
//	}
package analysis
