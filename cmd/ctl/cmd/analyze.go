package cmd

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/jpfielding/dicoslut/pkg/config"
	dicos "github.com/jpfielding/dicoslut/pkg/dicos"
	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
	"github.com/jpfielding/dicoslut/pkg/lut"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze cobra command
func NewAnalyzeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze DICOS/DICOM pixel and lookup table attributes",
		Long:  "Parses a DICOS/DICOM file and reports its pixel description, Modality/VOI/Presentation LUT attributes, validation findings and the pipeline a render would use.",
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath, _ := cmd.Flags().GetString("file")
			frame, _ := cmd.Flags().GetInt("frame")
			dumpFrame, _ := cmd.Flags().GetInt("dump-frame")
			out, _ := cmd.Flags().GetString("out")

			if filePath == "" && len(args) > 0 {
				filePath = args[0]
			}

			if filePath == "" {
				return fmt.Errorf("file path is required. Use --file flag or provide as argument")
			}

			return runAnalyze(ctx, cmd.OutOrStdout(), filePath, frame, dumpFrame, out)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "DICOS/DICOM file path to analyze")
	pf.Int("frame", 0, "Frame used for auto windowing")
	pf.Int("dump-frame", -1, "Index of frame to dump to disk")
	pf.String("out", "", "Output path for dumped frame")

	return cmd
}

// runAnalyze reports what the lookup pipeline will see in the file
func runAnalyze(ctx context.Context, w io.Writer, filePath string, frame, dumpFrame int, outPath string) error {
	ds, err := dicos.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	fmt.Fprintf(w, "Total elements: %d\n\n", len(ds.Elements))

	fmt.Fprintln(w, "=== Image Pixel ===")
	syntax := dicos.GetTransferSyntax(ds)
	fmt.Fprintf(w, "TransferSyntax: %s (%s)\n", syntax, syntax.Name())
	fmt.Fprintf(w, "Modality: %s\n", dicos.GetModality(ds))
	fmt.Fprintf(w, "Rows x Columns: %d x %d\n", dicos.GetRows(ds), dicos.GetColumns(ds))
	fmt.Fprintf(w, "NumberOfFrames: %d\n", dicos.GetNumberOfFrames(ds))
	fmt.Fprintf(w, "BitsAllocated/Stored: %d/%d\n", dicos.GetBitsAllocated(ds), dicos.GetBitsStored(ds))
	fmt.Fprintf(w, "PixelRepresentation: %d (0=unsigned, 1=signed)\n", dicos.GetPixelRepresentation(ds))
	fmt.Fprintf(w, "PhotometricInterpretation: %s\n", dicos.GetPhotometricInterpretation(ds))
	if sv, err := dicos.StoredValue(ds); err != nil {
		fmt.Fprintf(w, "StoredValue: %v\n", err)
	} else {
		fmt.Fprintf(w, "StoredValue: %v\n", sv)
	}

	fmt.Fprintln(w, "\n=== Lookup Tables ===")
	intercept, slope := dicos.GetRescale(ds)
	fmt.Fprintf(w, "Rescale: slope=%g intercept=%g\n", slope, intercept)
	printTables(w, ds, "Modality LUT", tag.ModalityLUTSequence)
	if elem, ok := ds.Find(tag.WindowCenter); ok {
		centers, _ := elem.GetFloats()
		var widths []float64
		if wElem, ok := ds.Find(tag.WindowWidth); ok {
			widths, _ = wElem.GetFloats()
		}
		fmt.Fprintf(w, "Window Center: %v\nWindow Width: %v\n", centers, widths)
	}
	printTables(w, ds, "VOI LUT", tag.VOILUTSequence)
	if elem, ok := ds.Find(tag.PresentationLUTShape); ok {
		shape, _ := elem.GetString()
		fmt.Fprintf(w, "Presentation LUT Shape: %s\n", shape)
	}
	printTables(w, ds, "Presentation LUT", tag.PresentationLUTSequence)

	fmt.Fprintln(w, "\n=== Validation ===")
	result := dicos.ValidateGrayscale(ds)
	for _, e := range result.Errors {
		fmt.Fprintf(w, "ERROR %v\n", e)
	}
	for _, e := range result.Warnings {
		fmt.Fprintf(w, "WARN  %v\n", e)
	}
	fmt.Fprintf(w, "Valid: %v\n", result.IsValid())

	buf, err := dicos.GetFrameBuffer(ds, frame)
	if err != nil {
		fmt.Fprintf(w, "\nNo native frame %d: %v\n", frame, err)
		return nil
	}

	fmt.Fprintln(w, "\n=== Pipeline ===")
	f, err := newFactory(ctx, ds, config.DefaultRender(), buf)
	if err != nil {
		fmt.Fprintf(w, "No pipeline: %v\n", err)
	} else {
		fmt.Fprintf(w, "%v\n", f.Pipeline())
	}

	if dumpFrame >= 0 {
		return dumpNative(w, ds, dumpFrame, outPath)
	}
	return nil
}

// printTables lists the descriptor of every item of a LUT sequence and
// whether it decodes
func printTables(w io.Writer, ds *dicos.Dataset, name string, seq tag.Tag) {
	items := dicos.GetSequenceItems(ds, seq)
	if len(items) == 0 {
		return
	}
	attrs := dicos.Attributes(ds)
	for i := range items {
		item, _ := attrs.Nested(seq, i)
		desc, _ := item.Ints(tag.LUTDescriptor)
		explanation, _ := item.String(tag.LUTExplanation)
		// the input domain only matters for Apply, any will do to check the payload
		_, err := lut.ReadTable(lut.NewUnsigned(16), item)
		status := "ok"
		if err != nil {
			status = err.Error()
		}
		fmt.Fprintf(w, "%s[%d]: descriptor=%v explanation=%q (%s)\n", name, i, desc, explanation, status)
	}
}

// dumpNative writes one native frame as little endian samples
func dumpNative(w io.Writer, ds *dicos.Dataset, frame int, outPath string) error {
	buf, err := dicos.GetFrameBuffer(ds, frame)
	if err != nil {
		return fmt.Errorf("frame %d: %w", frame, err)
	}
	var data []byte
	switch px := buf.(type) {
	case []byte:
		data = px
	case []uint16:
		data = make([]byte, len(px)*2)
		for i, v := range px {
			binary.LittleEndian.PutUint16(data[i*2:], v)
		}
	}

	if outPath == "" {
		outPath = fmt.Sprintf("frame_%d.bin", frame)
	}

	fmt.Fprintf(w, "Dumping frame %d (%d bytes) to %s\n", frame, len(data), outPath)
	return os.WriteFile(outPath, data, 0644)
}
