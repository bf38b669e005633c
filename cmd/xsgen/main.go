// Command xsgen writes synthetic cross-section tables in the two-column
// plain-text format the simulation reads. The scatter table is flat; the
// absorption table follows a 1/v shape, which is the usual low-energy
// behaviour of capture cross sections.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
)

var (
	out     = flag.String("out", "", "Output file (required)")
	entries = flag.Int("entries", 256, "Number of table entries")
	eMin    = flag.Float64("emin", 1e-5, "Lowest tabulated energy in eV")
	eMax    = flag.Float64("emax", 1e8, "Highest tabulated energy in eV")
	sigma   = flag.Float64("sigma", 2.0, "Cross section in barns at the reference energy")
	shape   = flag.String("shape", "flat", "Table shape: flat or invv")
	refE    = flag.Float64("ref", 0.0253, "Reference energy in eV for the invv shape")
)

func main() {
	flag.Parse()
	if *out == "" {
		log.Fatal("-out is required")
	}
	if *entries < 2 {
		log.Fatal("-entries must be at least 2")
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("creating %s: %v", *out, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	// Logarithmic energy grid.
	logMin, logMax := math.Log10(*eMin), math.Log10(*eMax)
	for i := 0; i < *entries; i++ {
		frac := float64(i) / float64(*entries-1)
		energy := math.Pow(10, logMin+frac*(logMax-logMin))

		var value float64
		switch *shape {
		case "flat":
			value = *sigma
		case "invv":
			value = *sigma * math.Sqrt(*refE/energy)
		default:
			log.Fatalf("unknown shape %q", *shape)
		}

		fmt.Fprintf(w, "%.12e %.12e\n", energy, value)
	}
}
