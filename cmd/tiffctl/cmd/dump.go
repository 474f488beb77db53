package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	tiff "github.com/granular-ag/tiffany"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type entryDump struct {
	Tag   string `json:"tag"`
	ID    uint16 `json:"id"`
	Type  string `json:"type"`
	Count uint32 `json:"count"`
	Value string `json:"value"`
}

type directoryDump struct {
	Index   int         `json:"index"`
	Tiled   bool        `json:"tiled"`
	Entries []entryDump `json:"entries"`
}

type fileDump struct {
	File        string          `json:"file"`
	Directories []directoryDump `json:"directories"`
}

// NewDumpCmd prints the directories of one or more TIFF files.
func NewDumpCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump FILE...",
		Short: "print TIFF directories",
		Long:  "Parses every file and prints the entries of each of its directories.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			jobs, _ := cmd.Flags().GetInt("jobs")
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q (text|json)", format)
			}

			dumps, err := dumpFiles(ctx, args, jobs)
			if err != nil {
				return err
			}
			return printDumps(cmd.OutOrStdout(), dumps, format)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("format", "f", "text", "output format (text|json)")
	pf.IntP("jobs", "j", runtime.NumCPU(), "files parsed concurrently")
	return cmd
}

// dumpFiles parses paths concurrently, one reader per file, and returns the
// dumps in argument order.
func dumpFiles(ctx context.Context, paths []string, jobs int) ([]fileDump, error) {
	dumps := make([]fileDump, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := tiff.ReadFile(path)
			if err != nil {
				return errors.Wrap(err, path)
			}
			slog.DebugContext(ctx, "parsed", "file", path, "directories", len(img.Directories))
			dumps[i] = newFileDump(path, img)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dumps, nil
}

func newFileDump(path string, img *tiff.Image) fileDump {
	fd := fileDump{File: path}
	for i, d := range img.Directories {
		dd := directoryDump{Index: i, Tiled: d.IsTiled()}
		for _, e := range d.Entries() {
			dd.Entries = append(dd.Entries, entryDump{
				Tag:   e.Tag.Name(),
				ID:    e.Tag.ID(),
				Type:  e.Type.String(),
				Count: e.Count,
				Value: e.Value.String(),
			})
		}
		fd.Directories = append(fd.Directories, dd)
	}
	return fd
}

func printDumps(w io.Writer, dumps []fileDump, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(dumps)
	}
	for _, fd := range dumps {
		fmt.Fprintln(w, fd.File)
		for _, dd := range fd.Directories {
			fmt.Fprintf(w, "  directory %d (tiled: %v)\n", dd.Index, dd.Tiled)
			for _, e := range dd.Entries {
				fmt.Fprintf(w, "    %s (%d) %s[%d]: %s\n", e.Tag, e.ID, e.Type, e.Count, e.Value)
			}
		}
	}
	return nil
}
