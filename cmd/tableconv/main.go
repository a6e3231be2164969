/* SPDX-License-Identifier: BSD-2-Clause */

package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/tablekit/tableconv/convert"
	"github.com/tablekit/tableconv/recovery"
)

import flag "github.com/spf13/pflag"

const Version = "0.1.0"

func main() {
	var mode string
	var preserveLatex, strict, includeLocation, includeBorders, normalizeForTEDS, forceFirstRowThead, fixTruncated, version bool

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] FILE\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nConverts between HTML <table> markup and OTSL token streams.\n\n")
		flag.PrintDefaults()
	}
	flag.StringVarP(&mode, "mode", "m", "html2otsl", "conversion direction: html2otsl or otsl2html")
	flag.BoolVar(&preserveLatex, "preserve-latex", true, "detect and preserve LaTeX/math formulas")
	flag.BoolVar(&strict, "strict", false, "reject malformed input instead of repairing it")
	flag.BoolVar(&includeLocation, "include-location", true, "emit <loc_N> placeholder tokens in OTSL output")
	flag.BoolVar(&includeBorders, "include-borders", true, "emit border=\"1\" on rendered HTML tables that had one")
	flag.BoolVar(&normalizeForTEDS, "normalize-for-teds", false, "force a non-empty <thead> in rendered HTML")
	flag.BoolVar(&forceFirstRowThead, "force-first-row-thead", false, "place the first row inside <thead> regardless of header detection")
	flag.BoolVar(&fixTruncated, "fix-truncated", false, "attempt to auto-close truncated input before parsing")
	flag.BoolVarP(&version, "version", "", false, "print version and exit")
	flag.Parse()

	if version {
		fmt.Printf("tableconv v%s %v %s/%s\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	log.SetFlags(0)
	log.SetPrefix("ERROR: ")

	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(1)
	}

	f := os.Stdin
	if flag.NArg() == 1 {
		opened, err := os.Open(flag.Arg(0))
		if err != nil {
			log.Fatal(err)
		}
		defer opened.Close()
		f = opened
	}

	input, err := io.ReadAll(f)
	if err != nil {
		log.Fatal(err)
	}
	content := string(input)

	if fixTruncated {
		fixed, _, msg := recovery.FixTruncated(content, true)
		if msg != "no truncation detected" {
			fmt.Fprintln(os.Stderr, msg)
		}
		content = fixed
	}

	opts := convert.DefaultOptions()
	opts.PreserveLatex = preserveLatex
	opts.Strict = strict
	opts.IncludeLocation = includeLocation
	opts.IncludeBorders = includeBorders
	opts.NormalizeForTEDS = normalizeForTEDS
	opts.ForceFirstRowThead = forceFirstRowThead

	conv := convert.New(opts)

	var out string
	switch mode {
	case "html2otsl":
		out, err = conv.HTMLToOTSL(content)
	case "otsl2html":
		out, err = conv.OTSLToHTML(content)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q: expected html2otsl or otsl2html\n", mode)
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(out)
}
