// Command hsvden denoises a 16kHz mono 16-bit PCM WAV file in one pass,
// the reference driver for the hsv streaming denoiser.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/speechden/hsv/internal/hsv"
	"github.com/speechden/hsv/internal/metrics"
	"github.com/speechden/hsv/internal/suppressor"
)

const (
	wavHeaderLen = 78

	sampleRate = 16000
	channels   = 1
	bitSize    = 16

	bufLenIn  = 8192
	bufLenOut = 8192
)

var modeFlags = map[string]suppressor.Mode{
	"specsub": suppressor.SpecSub,
	"wiener":  suppressor.Wiener,
	"tsnr":    suppressor.TSNR,
	"tsnrg":   suppressor.TSNRGain,
	"rtsnr":   suppressor.RTSNR,
	"rtsnrg":  suppressor.RTSNRGain,
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s --mode input.wav output.wav\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Example: %s --wiener data/in/car_ns.wav data/out/car_ns.wav\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Modes:")
	fmt.Fprintln(os.Stderr, "      --specsub - Berouti-Schwartz spectral subtraction.")
	fmt.Fprintln(os.Stderr, "      --wiener  - Scalart's wiener filtering.")
	fmt.Fprintln(os.Stderr, "      --tsnr    - Scalart's two-step noise reduction.")
	fmt.Fprintln(os.Stderr, "      --tsnrg   - Scalart's two-step noise reduction with gain shaping.")
	fmt.Fprintln(os.Stderr, "      --rtsnr   - Shifeng's two-step noise reduction.")
	fmt.Fprintln(os.Stderr, "      --rtsnrg  - Shifeng's two-step noise reduction with gain shaping.")
}

func main() {
	os.Exit(run())
}

func run() int {
	var specsub, wiener, tsnr, tsnrg, rtsnr, rtsnrg bool
	var metricsAddr string

	flag.BoolVar(&specsub, "specsub", false, "Berouti-Schwartz spectral subtraction")
	flag.BoolVar(&wiener, "wiener", false, "Scalart's wiener filtering")
	flag.BoolVar(&tsnr, "tsnr", false, "Scalart's two-step noise reduction")
	flag.BoolVar(&tsnrg, "tsnrg", false, "Scalart's two-step noise reduction with gain shaping")
	flag.BoolVar(&rtsnr, "rtsnr", false, "Shifeng's two-step noise reduction")
	flag.BoolVar(&rtsnrg, "rtsnrg", false, "Shifeng's two-step noise reduction with gain shaping")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090) while processing")
	flag.Usage = usage
	flag.Parse()

	selected := map[string]bool{
		"specsub": specsub, "wiener": wiener, "tsnr": tsnr,
		"tsnrg": tsnrg, "rtsnr": rtsnr, "rtsnrg": rtsnrg,
	}
	var modeName string
	for name, on := range selected {
		if on {
			if modeName != "" {
				usage()
				return 2
			}
			modeName = name
		}
	}
	args := flag.Args()
	if modeName == "" || len(args) != 2 {
		usage()
		return 1
	}
	mode := modeFlags[modeName]

	var m *metrics.Metrics
	if metricsAddr != "" {
		m = metrics.New()
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			log.Printf("serving metrics on %s", metricsAddr)
			if err := http.ListenAndServe(metricsAddr, nil); err != nil {
				log.Printf("metrics server stopped: %v", err)
			}
		}()
	}

	cfg := hsv.Config{SampleRate: sampleRate, Channels: channels, BitSize: bitSize, Mode: mode}
	if field := hsv.ValidateConfig(cfg); field != 0 {
		log.Printf("invalid configuration in parameter (%d)", field)
		return 3
	}

	fNameIn, fNameOut := args[0], args[1]

	d := hsv.New()
	if err := d.Configure(cfg); err != nil {
		log.Printf("unable to configure denoiser: %v", err)
		return 5
	}
	defer d.Deconfigure()

	fIn, err := os.Open(fNameIn)
	if err != nil {
		log.Printf("unable to open input wav file: %v", err)
		return 6
	}
	defer fIn.Close()

	fOut, err := os.Create(fNameOut)
	if err != nil {
		log.Printf("unable to open output wav file: %v", err)
		return 7
	}
	defer fOut.Close()

	header := make([]byte, wavHeaderLen)
	if _, err := io.ReadFull(fIn, header); err != nil {
		log.Printf("unable to read wav header: %v", err)
		return 8
	}
	if _, err := fOut.Write(header); err != nil {
		log.Printf("unable to write wav header: %v", err)
		return 8
	}

	bufIn := make([]byte, bufLenIn)
	bufOut := make([]byte, bufLenOut)

	for {
		n, readErr := fIn.Read(bufIn)
		if n > 0 {
			if _, err := d.Push(bufIn[:n]); err != nil {
				log.Printf("denoiser push failed: %v", err)
				return 8
			}
			for {
				got := d.Get(bufOut)
				if got == 0 {
					break
				}
				if m != nil {
					m.ObserveGet(got)
				}
				if _, err := fOut.Write(bufOut[:got]); err != nil {
					log.Printf("write failed: %v", err)
					return 8
				}
			}
			if m != nil {
				m.ObservePush(mode.String(), n)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			log.Printf("read failed: %v", readErr)
			return 8
		}
	}

	d.Flush()
	for {
		got := d.Get(bufOut)
		if got == 0 {
			break
		}
		if _, err := fOut.Write(bufOut[:got]); err != nil {
			log.Printf("write failed: %v", err)
			return 8
		}
	}

	return 0
}
