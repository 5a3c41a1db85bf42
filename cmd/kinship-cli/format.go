package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// formatJSON prints v as indented JSON. Encoding failures are fatal.
func formatJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: encode json: %v\n", err)
		os.Exit(1)
	}
}

// formatTable prints rows under headers in aligned columns two spaces apart,
// with a dashed rule under the header.
func formatTable(headers []string, rows [][]string) {
	rule := make([]string, len(headers))
	for i, h := range headers {
		width := len(h)
		for _, row := range rows {
			if i < len(row) {
				width = max(width, len(row[i]))
			}
		}
		rule[i] = strings.Repeat("-", width)
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	for _, cells := range append([][]string{headers, rule}, rows...) {
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush() //nolint:errcheck // writes to a buffer.

	for line := range strings.Lines(buf.String()) {
		fmt.Println(strings.TrimRight(line, " \n"))
	}
}

func formatQuiet(s string) {
	fmt.Println(s)
}

// output prints v in the selected format. Quiet mode prints quietVal alone;
// table mode needs a caller-built table, so generic values fall back to JSON.
func output(v any, quietVal string) {
	if flagFmt == "quiet" {
		formatQuiet(quietVal)
		return
	}

	formatJSON(v)
}
