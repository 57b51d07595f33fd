// Tessera validates client, worker and task datasets and the business rules
// written against them before they are handed to a scheduler.
//
// Usage:
//
//	# Validate a dataset
//	tessera validate data.yaml
//
//	# Validate a dataset together with its rules
//	tessera validate data.yaml --rules rules.yaml
//
//	# Apply the automatic fixes and write the corrected data
//	tessera fix data.yaml -o data.fixed.yaml
//
//	# Produce rules.json for the allocator
//	tessera export data.yaml --rules rules.yaml -o rules.json
//
//	# Re-validate on every change and serve /metrics
//	tessera watch data.yaml --rules rules.yaml --listen :9090
//
// Exit status is 0 when everything is valid, 1 when the data or rules are
// invalid and 2 when the command could not run.
package main

import "os"

func main() {
	os.Exit(Execute())
}
