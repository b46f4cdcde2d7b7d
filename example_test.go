package galaxies_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aretw0/galaxies"
)

// Example_basic lays out a tiny GAMA manual directory and generates it.
func Example_basic() {
	manual, err := os.MkdirTemp("", "galaxies-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(manual)

	images := filepath.Join(manual, "GAMA", "SDSS images")
	if err := os.MkdirAll(images, 0755); err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(images, "6802.jpg"), nil, 0644); err != nil {
		log.Fatal(err)
	}

	svc, err := galaxies.New(galaxies.WithManualDir(manual))
	if err != nil {
		log.Fatal(err)
	}

	for ex, err := range svc.Generate(context.Background(), "gama") {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(ex.Key, ex.Features["cataid"])
	}

	// Output:
	// 6802 6802
}

type gamaGalaxy struct {
	CatalogueID string `yaml:"cataid"`
}

// Example_typed decodes examples into a struct.
func Example_typed() {
	ex := galaxies.Example{Key: "6802", Features: map[string]any{"cataid": "6802"}}

	m, err := galaxies.Decode[gamaGalaxy](ex)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(m.Data.CatalogueID)

	// Output:
	// 6802
}
