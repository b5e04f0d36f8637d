package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"fxl/dom"
	"fxl/state"
)

func displayName(fname string) string {
	if len(fname) == 0 {
		return "STDOUT"
	}
	return fname
}

// writeOutput writes data to fname or to stdout when fname is empty.
// Existing files are replaced only when overwrite is set.
func writeOutput(fname string, overwrite bool, data []byte) error {
	if len(fname) == 0 {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("unable to write output: %w", err)
		}
		return nil
	}
	if !overwrite {
		if _, err := os.Stat(fname); err == nil {
			return fmt.Errorf("destination '%s' already exists, use --overwrite", fname)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("unable to access destination '%s': %w", fname, err)
		}
	}
	if err := os.WriteFile(fname, data, 0644); err != nil {
		return fmt.Errorf("unable to write destination file '%s': %w", fname, err)
	}
	return nil
}

// writeDocument serializes doc, stores result in debug report under name and
// writes it out.
func writeDocument(env *state.LocalEnv, doc *dom.Document, name, fname string) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return fmt.Errorf("unable to serialize document: %w", err)
	}
	env.Rpt.StoreData(name, bytes.Clone(buf.Bytes()))
	return writeOutput(fname, env.Overwrite, buf.Bytes())
}

func loadDocument(env *state.LocalEnv, src string) (*dom.Document, error) {
	if len(src) == 0 {
		return nil, errors.New("no source document specified")
	}
	if err := env.Rpt.StoreCopy("source/"+filepath.Base(src), src); err != nil {
		return nil, fmt.Errorf("unable to store source in report: %w", err)
	}
	doc, err := dom.ReadFile(src, env.Log)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
