// Package engine runs the full validation pipeline over a dataset.
//
// A run optionally normalizes the dataset, validates it, validates the
// accompanying rules against it and then reports the outcome to the
// configured side channels: Prometheus metrics and the run history store.
// Side channel failures are logged and never fail a run.
//
// Basic usage:
//
//	eng := engine.New(engine.Options{
//		Validator:     validator.New(),
//		RuleValidator: rules.NewValidator(),
//		AutoNormalize: true,
//		Store:         store,
//		Metrics:       collector,
//	})
//
//	ctx = logging.WithSource(ctx, "data.yaml")
//	report, err := eng.Run(ctx, ds, rs)
//	if err != nil {
//		return err
//	}
//	if !report.IsValid() {
//		// report.Result.Errors, report.RuleResult.Errors
//	}
//
// Fix applies the fixes of one validation pass and validates the corrected
// dataset again:
//
//	out, err := eng.Fix(ctx, ds, rs)
//	// out.After.Dataset holds the corrected data
package engine
