/*
Package cli provides the output, error and process helpers shared by the
tessera commands.

Output Formatting:

Command results are rendered as text, JSON or CSV. Values choose how they
look in text and CSV by implementing TextRenderer and Tabular:

	format, err := cli.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(os.Stdout, view)

Exit Codes:

A command that ran correctly but found invalid data returns an ExitError so
main can exit with ExitInvalid instead of ExitFailure:

	if !report.IsValid() {
		return cli.NewExitError(cli.ExitInvalid, "validation failed")
	}

Progress Reporting:

Validating several files reports progress on stderr:

	progress := cli.NewProgressReporter(os.Stderr, "files")
	progress.Start(int64(len(paths)))
	for i := range paths {
		// validate paths[i]
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
