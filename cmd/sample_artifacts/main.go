package main

import (
	"flag"
	"fmt"
	"log"

	"steelforecast/ml"
)

func main() {
	dir := flag.String("dir", "./models", "artifact output directory")
	flag.Parse()

	paths, err := ml.WriteSampleBundle(*dir)
	if err != nil {
		log.Fatalf("failed to write sample artifacts: %v", err)
	}

	// Round-trip through the loader so a bad bundle fails here and not at
	// dashboard startup.
	if _, err := ml.LoadBundle(paths); err != nil {
		log.Fatalf("sample artifacts do not load: %v", err)
	}

	for name, path := range paths.Files() {
		fmt.Printf("%s artifact written to %s\n", name, path)
	}
}
