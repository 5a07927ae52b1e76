package cmd

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"equalizer/internal/analysis"
	"equalizer/internal/decode"
	"equalizer/internal/waveform"
	"equalizer/pkg/utils"

	"github.com/spf13/cobra"
)

func (a *app) newAnalyzeCommand() *cobra.Command {
	var (
		bands  int
		onsets bool
	)
	analyzeCmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Print the spectral peak and band energies of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, rate, err := decode.NewRegistry().Decode(args[0])
			if err != nil {
				return err
			}
			sig, err := waveform.New(samples, rate)
			if err != nil {
				return err
			}
			spectrum, err := analysis.NewSpectrumAnalyzer().Analyze(sig)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:        %s\n", filepath.Base(args[0]))
			fmt.Fprintf(out, "Sample rate: %g Hz\n", sig.SampleRate())
			fmt.Fprintf(out, "Duration:    %.3f s\n", sig.Duration())
			fmt.Fprintf(out, "Bins:        %d\n", spectrum.Len())
			if i, ok := spectrum.Peak(); ok {
				fmt.Fprintf(out, "Peak:        %.1f Hz (magnitude %.4f)\n", spectrum.Frequencies[i], spectrum.Magnitudes[i])
			}

			nyquist := sig.SampleRate() / 2
			bandList := analysis.MusicalBands(nyquist)
			if bands > 0 {
				bandList = analysis.UniformBands(bands, nyquist)
			}
			energies := analysis.BandEnergies(spectrum, bandList)

			fmt.Fprintln(out)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "BAND\tRANGE (Hz)\tRMS")
			for i, b := range bandList {
				fmt.Fprintf(tw, "%s\t%.0f-%.0f\t%.6f\n", b.Name, b.LowHz, b.HighHz, energies[i])
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if onsets {
				times := analysis.DefaultOnsetDetector().Detect(sig)
				fmt.Fprintf(out, "\nOnsets: %d\n", len(times))
				for _, t := range times {
					fmt.Fprintf(out, "  %.3f s\n", t)
				}
			}
			return nil
		},
	}
	analyzeCmd.Flags().BoolVar(&onsets, "onsets", false, "Also list onset times")
	analyzeCmd.Flags().IntVar(&bands, "bands", 0, "Split the spectrum into this many equal bands instead of musical ones")
	return analyzeCmd
}

func (a *app) newWindowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "window [family]",
		Short: "Print smoothing window coefficients",
		Long: "Print the coefficients of a smoothing window, one per line. The family " +
			"defaults to the configured one; length and amplitude come from " +
			"--window-length and --window-amplitude.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := a.cfg.Window.Family
			if len(args) > 0 {
				name = args[0]
			}
			family, err := analysis.ParseFamily(name)
			if err != nil {
				return err
			}
			w, err := analysis.NewWindowGenerator().Generate(family, a.cfg.Window.Length, a.cfg.Window.Amplitude)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, c := range w.Coefficients {
				fmt.Fprintf(out, "%d\t%.6f\n", i, c)
			}
			return nil
		},
	}
}

func (a *app) newToneCommand() *cobra.Command {
	var (
		frequency  float64
		amplitude  float64
		duration   float64
		sampleRate int
		bitDepth   int
	)
	toneCmd := &cobra.Command{
		Use:   "tone <output.wav>",
		Short: "Write a sine test tone to a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := int(duration * float64(sampleRate))
			samples := utils.GenerateSine(n, float64(sampleRate), frequency, amplitude)
			if err := decode.WriteWAV(args[0], samples, sampleRate, bitDepth); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d samples of %g Hz to %s\n", n, frequency, args[0])
			return nil
		},
	}
	toneCmd.Flags().Float64Var(&frequency, "frequency", 440, "Tone frequency in Hz")
	toneCmd.Flags().Float64Var(&amplitude, "amplitude", 0.8, "Peak amplitude in (0, 1]")
	toneCmd.Flags().Float64Var(&duration, "duration", 2, "Length in seconds")
	toneCmd.Flags().IntVar(&sampleRate, "sample-rate", 44100, "Sample rate in Hz")
	toneCmd.Flags().IntVar(&bitDepth, "bits", 16, "Bit depth: 16, 24 or 32")
	return toneCmd
}
