package main

import "fmt"

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	result, err := deps.Exporter.Export(deps.Ctx, c.Source, c.Dir)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Exported %d pages to %s", len(result.Written), result.Dir)
	if result.Skipped > 0 {
		fmt.Fprintf(deps.Stdout, " (%d without content skipped)", result.Skipped)
	}
	fmt.Fprintln(deps.Stdout)
	return nil
}
