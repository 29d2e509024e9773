package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"notepipe/internal/labels"
)

func newDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "decode <filename>...",
		Short:       "Print the label codes encoded in recording filenames",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(args))
			failed := 0
			for _, arg := range args {
				name := filepath.Base(arg)
				codes, err := labels.Decode(name)
				if err != nil {
					failed++
					var derr *labels.DecodeError
					reason := err.Error()
					if errors.As(err, &derr) {
						reason = derr.Reason
					}
					rows = append(rows, []string{name, "", "error: " + reason})
					continue
				}
				rows = append(rows, []string{name, formatCodes(codes), strconv.Itoa(len(codes))})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"File", "Codes", "Events"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			if failed > 0 {
				return fmt.Errorf("%d of %d filenames could not be decoded", failed, len(args))
			}
			return nil
		},
	}
}

func formatCodes(codes []int) string {
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = fmt.Sprintf("%02d", code)
	}
	return strings.Join(parts, " ")
}
