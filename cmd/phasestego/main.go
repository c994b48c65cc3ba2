package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"phase-stego-backend/audio"
	"phase-stego-backend/models"
	"phase-stego-backend/stego"
)

var errUsage = errors.New("usage: phasestego embed|extract|capacity|compare [flags]")

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if err := run(context.Background(), os.Args[1:], logger); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, logger *logrus.Logger) error {
	if len(args) < 1 {
		return errUsage
	}

	switch args[0] {
	case "embed":
		return embed(ctx, args[1:], logger)
	case "extract":
		return extract(ctx, args[1:], logger)
	case "capacity":
		return capacity(args[1:], logger)
	case "compare":
		return compare(args[1:])
	default:
		return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
	}
}

type coderFlags struct {
	workers   int
	amplitude float64
	verbose   bool
}

func (f *coderFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&f.workers, "workers", 0, "segments transformed in parallel (0: all CPUs)")
	fs.Float64Var(&f.amplitude, "amplitude", stego.DefaultCarrierAmplitude, "minimum carrier amplitude, 0 disables it")
	fs.BoolVar(&f.verbose, "v", false, "debug logging")
}

func (f *coderFlags) coder(logger *logrus.Logger) (*stego.PhaseCoder, error) {
	if f.amplitude < 0 {
		return nil, fmt.Errorf("amplitude must be non-negative, got %g", f.amplitude)
	}
	if f.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	return stego.NewPhaseCoder(&models.StegoConfig{
		Workers:          f.workers,
		CarrierAmplitude: f.amplitude,
		NoCarrierFloor:   f.amplitude == 0,
	}, logger), nil
}

func embed(ctx context.Context, args []string, logger *logrus.Logger) error {
	fs := flag.NewFlagSet("embed", flag.ContinueOnError)
	in := fs.String("in", "", "cover audio (WAV, MP3 or FLAC)")
	out := fs.String("out", "", "stego WAV to write")
	msg := fs.String("msg", "", "message text, each character code 0-255")
	msgFile := fs.String("msg-file", "", "file whose bytes are the message")
	minPSNR := fs.Float64("min-psnr", 30, "warn when the stego PSNR falls below this many dB, 0 disables")
	var cf coderFlags
	cf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return errors.New("embed: -in and -out are required")
	}

	message, err := readMessage(*msg, *msgFile)
	if err != nil {
		return err
	}
	coder, err := cf.coder(logger)
	if err != nil {
		return err
	}

	decoder := audio.NewAudioDecoder(logger)
	cover, err := decodeFile(decoder, *in)
	if err != nil {
		return err
	}

	result, err := coder.Embed(ctx, cover, message)
	if err != nil {
		return err
	}

	data, err := decoder.EncodeWAV(result.Buffer)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", *out, err)
	}

	psnr := audio.CalculatePSNR(cover.Mono().Samples, result.Buffer.Samples)
	if !audio.ValidatePSNR(psnr, *minPSNR) {
		logger.WithFields(logrus.Fields{
			"psnr":     psnr,
			"min_psnr": *minPSNR,
		}).Warn("Stego output below PSNR threshold")
	}

	logger.WithFields(logrus.Fields{
		"out":            *out,
		"bits":           result.BitCount,
		"segment_length": result.Plan.Length,
		"segments":       result.Plan.Count,
		"psnr":           psnr,
		"clipped":        result.Clipped,
	}).Info("Message embedded")
	fmt.Printf("bits=%d bytes=%d\n", result.BitCount, len(message))
	return nil
}

func extract(ctx context.Context, args []string, logger *logrus.Logger) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	in := fs.String("in", "", "stego WAV")
	out := fs.String("out", "", "write the message here instead of stdout")
	bits := fs.Int("bits", 0, "embedded bit count")
	length := fs.Int("bytes", 0, "embedded message length in bytes")
	var cf coderFlags
	cf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("extract: -in is required")
	}

	bitCount := *bits
	if bitCount == 0 {
		bitCount = *length * stego.BitsInByte
	}
	if bitCount <= 0 {
		return errors.New("extract: a positive -bits or -bytes is required")
	}

	coder, err := cf.coder(logger)
	if err != nil {
		return err
	}
	buf, err := decodeFile(audio.NewAudioDecoder(logger), *in)
	if err != nil {
		return err
	}

	message, err := coder.Extract(ctx, buf, bitCount)
	if err != nil {
		return err
	}

	if *out != "" {
		if err := os.WriteFile(*out, message, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", *out, err)
		}
		return nil
	}
	fmt.Println(stego.MessageText(message))
	return nil
}

func capacity(args []string, logger *logrus.Logger) error {
	fs := flag.NewFlagSet("capacity", flag.ContinueOnError)
	in := fs.String("in", "", "cover audio (WAV, MP3 or FLAC)")
	length := fs.Int("bytes", 0, "also plan a message of this many bytes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("capacity: -in is required")
	}

	buf, err := decodeFile(audio.NewAudioDecoder(logger), *in)
	if err != nil {
		return err
	}

	report, err := stego.EstimateCapacity(buf.Frames(), *length)
	if err != nil {
		return err
	}

	fmt.Printf("samples=%d max_bytes=%d segment_length=%d segments=%d\n",
		report.AudioLength, report.MaxMessageBytes, report.Advisory.Length, report.Advisory.Count)
	if report.MessageBytes > 0 {
		fmt.Printf("message_bytes=%d segment_length=%d segments=%d output_samples=%d fits=%t\n",
			report.MessageBytes, report.Encoder.Length, report.Encoder.Count, report.EncodedLength, report.Fits)
	}
	return nil
}

func compare(args []string) error {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	a := fs.String("a", "", "original message")
	b := fs.String("b", "", "extracted message")
	if err := fs.Parse(args); err != nil {
		return err
	}

	original, err := stego.MessageFromText(*a)
	if err != nil {
		return err
	}
	extracted, err := stego.MessageFromText(*b)
	if err != nil {
		return err
	}

	acc, err := stego.Compare(original, extracted)
	if err != nil {
		return err
	}

	fmt.Printf("bit_errors=%d total_bits=%d ber=%.6f exact=%t\n",
		acc.BitErrors, acc.TotalBits, acc.BitErrorRate, acc.ExactMatch)
	return nil
}

func readMessage(text, file string) ([]byte, error) {
	switch {
	case text != "" && file != "":
		return nil, errors.New("embed: use -msg or -msg-file, not both")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		return data, nil
	case text != "":
		return stego.MessageFromText(text)
	default:
		return nil, errors.New("embed: -msg or -msg-file is required")
	}
}

func decodeFile(decoder *audio.AudioDecoder, path string) (*models.AudioBuffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	buf, _, err := decoder.Decode(data, path)
	return buf, err
}
