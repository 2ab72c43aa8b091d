package main

import (
	"fmt"
	"os"

	"github.com/neondatabase/deployq/internal/fileutil"
)

// ciOutput appends a key=value line to the file named by DEPLOYQ_CI_OUTPUT,
// if that environment variable is set. Absence of the variable is not an
// error — most invocations outside CI have nothing to write to.
func ciOutput(key, value string) error {
	path := os.Getenv("DEPLOYQ_CI_OUTPUT")
	if path == "" {
		return nil
	}
	if err := fileutil.EnsureDirForFile(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open CI output file: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s=%s\n", key, value); err != nil {
		return fmt.Errorf("write CI output line: %w", err)
	}
	return nil
}
