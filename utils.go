package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/poonai/gist/internal/gist"
)

type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(s); f {
	case formatText, formatJSON, formatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format: %s", s)
}

// readFiles reads every path into a map keyed by the file's base name.
// The path "-" reads stdin and stores it under stdinName.
func readFiles(paths []string, stdinName string, stdin io.Reader) (map[string]string, error) {
	files := make(map[string]string, len(paths))
	for _, p := range paths {
		var (
			name string
			buf  []byte
			err  error
		)
		if p == "-" {
			name = stdinName
			buf, err = io.ReadAll(stdin)
		} else {
			name = filepath.Base(p)
			buf, err = os.ReadFile(p)
		}
		if err != nil {
			return nil, err
		}
		if _, dup := files[name]; dup {
			return nil, fmt.Errorf("file name %q given twice", name)
		}
		files[name] = string(buf)
	}
	return files, nil
}

// writeGists prints gists in the given format. The text format is one
// line per gist: the url followed by the description, if any.
func writeGists(w io.Writer, format string, gists []gist.Gist) error {
	f, err := parseFormat(format)
	if err != nil {
		return err
	}
	switch f {
	case formatJSON:
		if gists == nil {
			gists = []gist.Gist{}
		}
		buf, err := json.MarshalIndent(gists, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(buf))
		return err
	case formatYAML:
		buf, err := yaml.Marshal(gists)
		if err != nil {
			return err
		}
		_, err = w.Write(buf)
		return err
	}
	for _, g := range gists {
		if g.Description != "" {
			fmt.Fprintf(w, "%s %s\n", g.HTMLURL, g.Description)
		} else {
			fmt.Fprintln(w, g.HTMLURL)
		}
	}
	return nil
}
