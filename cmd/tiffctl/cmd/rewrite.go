package cmd

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	tiff "github.com/granular-ag/tiffany"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type rewriteOptions struct {
	compression      int
	planar           int
	order            binary.ByteOrder
	maxBytesPerStrip int
	stampID          bool
}

// NewRewriteCmd re-encodes every directory of a TIFF file.
func NewRewriteCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewrite IN OUT",
		Short: "re-encode a TIFF file",
		Long:  "Reads every directory of IN and writes them to OUT as strips with the requested compression, planar configuration and byte order.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts rewriteOptions
			opts.compression, _ = cmd.Flags().GetInt("compression")
			opts.planar, _ = cmd.Flags().GetInt("planar")
			opts.maxBytesPerStrip, _ = cmd.Flags().GetInt("max-bytes-per-strip")
			opts.stampID, _ = cmd.Flags().GetBool("stamp-id")

			switch order, _ := cmd.Flags().GetString("byte-order"); order {
			case tiff.ByteOrderBigEndian:
				opts.order = binary.BigEndian
			case tiff.ByteOrderLittleEndian:
				opts.order = binary.LittleEndian
			default:
				return fmt.Errorf("unknown byte order %q (II|MM)", order)
			}
			return rewrite(ctx, args[0], args[1], opts)
		},
	}
	pf := cmd.PersistentFlags()
	pf.IntP("compression", "c", tiff.CompressionNone, "compression code (1 none, 8 deflate)")
	pf.IntP("planar", "p", tiff.PlanarConfigurationChunky, "planar configuration (1 chunky, 2 planar)")
	pf.StringP("byte-order", "b", tiff.ByteOrderBigEndian, "byte order of the output (II|MM)")
	pf.Int("max-bytes-per-strip", tiff.DefaultMaxBytesPerStrip, "upper bound of the uncompressed strip size")
	pf.Bool("stamp-id", false, "write a fresh ImageUniqueID in every directory")
	return cmd
}

func rewrite(ctx context.Context, in, out string, opts rewriteOptions) error {
	src, err := tiff.ReadFile(in)
	if err != nil {
		return errors.Wrap(err, in)
	}

	dst := tiff.NewImage()
	for i, d := range src.Directories {
		if err := ctx.Err(); err != nil {
			return err
		}
		wd, err := rewriteDirectory(d, opts)
		if err != nil {
			return errors.Wrapf(err, "%s: directory %d", in, i)
		}
		dst.Add(wd)
	}

	if err := tiff.WriteFile(out, dst, tiff.WithByteOrder(opts.order)); err != nil {
		return errors.Wrap(err, out)
	}
	slog.InfoContext(ctx, "rewritten",
		slog.String("in", in),
		slog.String("out", out),
		slog.Int("directories", len(dst.Directories)),
		slog.Int("compression", opts.compression))
	return nil
}

// rewriteDirectory decodes d and builds the striped directory to write.
// ASCII entries are carried over.
func rewriteDirectory(d *tiff.FileDirectory, opts rewriteOptions) (*tiff.FileDirectory, error) {
	rasters, err := d.ReadRasters()
	if err != nil {
		return nil, err
	}
	wd, err := tiff.NewWriteDirectory(rasters, opts.planar)
	if err != nil {
		return nil, err
	}
	wd.SetRowsPerStrip(rasters.CalculateRowsPerStrip(opts.planar, opts.maxBytesPerStrip))
	if err := wd.SetCompression(opts.compression); err != nil {
		return nil, err
	}
	// The color map is not carried over, palette images stay BlackIsZero.
	if photometric, err := d.PhotometricInterpretation(); err == nil && photometric != tiff.PhotometricPalette {
		wd.SetPhotometricInterpretation(photometric)
	}
	for _, e := range d.Entries() {
		if e.Type != tiff.TypeASCII {
			continue
		}
		if err := wd.AddEntry(e); err != nil {
			return nil, err
		}
	}
	if opts.stampID {
		id := uuid.New()
		wd.SetStringEntry(tiff.TagImageUniqueID, hex.EncodeToString(id[:]))
	}
	return wd, nil
}
