package main

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/tabular/internal/core"
	"github.com/JonMunkholm/tabular/internal/logging"
	"github.com/JonMunkholm/tabular/internal/remote"
)

// maxParallelConversions bounds concurrent conversions. Every conversion
// works on its own document handles.
const maxParallelConversions = 4

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var sheet, target, to, outDir string

	cmd := &cobra.Command{
		Use:   "convert <source> <destination> | convert --to <ext> [--out-dir dir] <source>...",
		Short: "Convert documents between formats",
		Long: `Convert one document into another, or many documents into one format.

With two arguments and no --to, the first is copied into the second. With --to,
every argument is converted into a file with the same base name and the given
extension, written next to the source or into --out-dir.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := conversionJobs(args, to, outDir)
			if err != nil {
				return err
			}

			counts := make([]int, len(jobs))
			g, gctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(maxParallelConversions)
			for i, job := range jobs {
				i, job := i, job
				g.Go(func() error {
					n, err := ctx.convert(gctx, job.source, job.destination, sheet, target)
					if err != nil {
						return fmt.Errorf("convert %s: %w", job.source, err)
					}
					counts[i] = n
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			for i, job := range jobs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d rows)\n", job.source, job.destination, counts[i])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Source workbook sheet (default: the first sheet)")
	cmd.Flags().StringVar(&target, "target-sheet", "", "Destination workbook sheet (default: TABULAR_DEFAULT_SHEET)")
	cmd.Flags().StringVar(&to, "to", "", "Destination extension for batch conversion, e.g. .xlsx")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for batch conversion output")
	return cmd
}

type conversionJob struct {
	source      string
	destination string
}

func conversionJobs(args []string, to, outDir string) ([]conversionJob, error) {
	if to == "" {
		if len(args) != 2 {
			return nil, core.InvalidArgument("convert", "want <source> <destination> or --to with sources")
		}
		return []conversionJob{{source: args[0], destination: args[1]}}, nil
	}

	if !strings.HasPrefix(to, ".") {
		to = "." + to
	}
	target, err := core.DetectFormat("x" + to)
	if err != nil {
		return nil, err
	}
	if !target.Writable {
		return nil, core.Unsupported("convert", to, fmt.Errorf("%s cannot be written", target.Name))
	}

	jobs := make([]conversionJob, 0, len(args))
	seen := make(map[string]string, len(args))
	for _, src := range args {
		base, err := baseName(src)
		if err != nil {
			return nil, err
		}
		dir := outDir
		if dir == "" {
			if isURL(src) {
				dir = "."
			} else {
				dir = filepath.Dir(src)
			}
		}
		dst := filepath.Join(dir, base+target.Extension)
		if prev, ok := seen[dst]; ok {
			return nil, core.InvalidArgument("convert", "%s and %s both convert to %s", prev, src, dst)
		}
		seen[dst] = src
		jobs = append(jobs, conversionJob{source: src, destination: dst})
	}
	return jobs, nil
}

// baseName strips the directory and the registered extension.
func baseName(location string) (string, error) {
	format, err := detect(location)
	if err != nil {
		return "", err
	}
	name := filepath.Base(location)
	if isURL(location) {
		p, err := remote.Path(location)
		if err != nil {
			return "", err
		}
		name = path.Base(p)
	}
	return name[:len(name)-len(format.Extension)], nil
}

// convert copies every row of source into a fresh destination.
func (c *commandContext) convert(ctx context.Context, source, destination, sheet, target string) (int, error) {
	ctx, _ = logging.NewOperation(ctx)
	logger := logging.FromContext(ctx)

	src, err := c.openDocument(ctx, source, sheet)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	rows, err := src.rows.Read(ctx)
	if err != nil {
		return 0, err
	}

	dst, err := c.createDocument(destination, target, true)
	if err != nil {
		return 0, err
	}
	defer dst.Close()

	if err := dst.sink.Write(ctx, rows); err != nil {
		return 0, err
	}
	if err := dst.flush(ctx); err != nil {
		return 0, err
	}

	logger.Info("document converted",
		slog.String("source", source),
		slog.String("destination", destination),
		slog.Int("rows", len(rows)),
	)
	return len(rows), nil
}

func newAppendCommand(ctx *commandContext) *cobra.Command {
	var sheet, target string

	cmd := &cobra.Command{
		Use:   "append <source> <destination>",
		Short: "Append the rows of one document to another",
		Long: `Append reads every row of the source and adds it below the existing rows
of the destination, in the order of the destination's header. A missing or
empty destination is written with the source's header.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := ctx.openDocument(cmd.Context(), args[0], sheet)
			if err != nil {
				return err
			}
			defer src.Close()

			rows, err := src.rows.Read(cmd.Context())
			if err != nil {
				return err
			}

			dst, err := ctx.createDocument(args[1], target, false)
			if err != nil {
				return err
			}
			defer dst.Close()

			if err := dst.sink.Append(cmd.Context(), rows); err != nil {
				return err
			}
			if err := dst.flush(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "appended %d rows to %s\n", len(rows), args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Source workbook sheet (default: the first sheet)")
	cmd.Flags().StringVar(&target, "target-sheet", "", "Destination workbook sheet (default: TABULAR_DEFAULT_SHEET)")
	return cmd
}
