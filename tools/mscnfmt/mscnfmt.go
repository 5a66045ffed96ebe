// mscnfmt parses scene files and writes them back in canonical form.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/mirielengine/mscn/importer"
	"github.com/mirielengine/mscn/scene"
	"github.com/mirielengine/mscn/scene/mscn"
	"github.com/mirielengine/mscn/utils"
)

type options struct {
	write     bool
	check     bool
	dump      bool
	modelsDir string
}

func format(file string, opts options, logger *log.Logger, stdout io.Writer) error {
	var imp scene.Importer = importer.Null{}
	if opts.modelsDir != "" {
		imp = importer.New(opts.modelsDir, logger)
	}
	s := scene.New(imp)
	var next uint32
	s.SetTextureLoader(func(path string) (uint32, error) {
		next++
		return next, nil
	})

	if err := mscn.DecodeFile(file, s, mscn.Options{Logger: logger}); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if opts.dump {
		utils.Dump(stdout, s)
	}
	if opts.check {
		return nil
	}

	var buf bytes.Buffer
	if err := mscn.Encode(&buf, s); err != nil {
		return err
	}
	if opts.write {
		return os.WriteFile(file, buf.Bytes(), 0666)
	}
	_, err := stdout.Write(buf.Bytes())
	return err
}

func main() {
	var opts options
	flag.BoolVar(&opts.write, "w", false, "Write result to the source file instead of stdout")
	flag.BoolVar(&opts.check, "check", false, "Only parse and validate")
	flag.BoolVar(&opts.dump, "dump", false, "Dump the parsed scene")
	flag.StringVar(&opts.modelsDir, "import", "", "Import models from this directory instead of skipping them")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: mscnfmt [flags] file.mscn...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "mscnfmt"})
	failed := false
	for _, file := range flag.Args() {
		if err := format(file, opts, logger, os.Stdout); err != nil {
			logger.Error("failed", "file", file, "err", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
