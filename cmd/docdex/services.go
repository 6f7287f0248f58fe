package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/docdex"
)

// Run executes the services command.
func (c *ServicesCmd) Run(deps *Dependencies) error {
	categories, err := deps.Catalog.FetchAllServices(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(categories)
	}

	total := 0
	for _, category := range categories {
		fmt.Fprintf(deps.Stdout, "%s (%d)\n", category.Name, len(category.Services))
		for _, service := range category.Services {
			fmt.Fprintf(deps.Stdout, "  %-16s %s\n", service.Code, service.Title)
		}
		total += len(category.Services)
	}
	fmt.Fprintf(deps.Stdout, "\n%d services in %d categories\n", total, len(categories))
	return nil
}
