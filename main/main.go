package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/cpo-tools/gocpo"
	"github.com/cpo-tools/gocpo/analyze"
	"github.com/cpo-tools/gocpo/io"
	"github.com/cpo-tools/gocpo/render"
)

func main() {
	var (
		poleFigures   string
		exampleConfig string
	)
	vars := map[string]*string{
		"PoleFigures":   &poleFigures,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(
		&poleFigures, "PoleFigures", "",
		"Configuration file for [PoleFigures] mode.",
	)
	flag.StringVar(
		&exampleConfig, "ExampleConfig", "",
		"Prints an example configuration file of the specified type to "+
			"stdout. The only accepted argument is 'PoleFigures'.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil { log.Fatal(err.Error()) }

	switch modeName {
	case "PoleFigures":
		wrap := io.DefaultConfigWrapper()
		err := gcfg.ReadFileInto(wrap, poleFigures)
		if err != nil { log.Fatal(err.Error()) }

		if !wrap.CPO.ValidBaseDir() {
			log.Fatal("Invalid/non-existent 'BaseDir' value.")
		} else if !wrap.CPO.ValidExperimentDirs() {
			log.Fatal("Invalid/non-existent 'ExperimentDir' value.")
		}

		con := &wrap.PoleFigures
		if !con.ValidTimes() {
			log.Fatal("Invalid/non-existent 'Time' value.")
		} else if !con.ValidParticleIDs() {
			log.Fatal("Invalid/non-existent 'ParticleID' value.")
		} else if !con.ValidAxes() {
			log.Fatal("Invalid/non-existent 'Axis' value.")
		} else if !con.ValidMinerals() {
			log.Fatal("Invalid/non-existent 'Mineral' value.")
		} else if !con.ValidSpherePoints() {
			log.Fatal("Invalid 'SpherePoints' value.")
		}

		// Catch typos before the workers start.
		for _, name := range con.Axis {
			if _, err := analyze.ParseCrystalAxis(name); err != nil {
				log.Fatal(err.Error())
			}
		}
		for _, name := range con.Mineral {
			if _, err := analyze.ParseMineral(name); err != nil {
				log.Fatal(err.Error())
			}
		}
		if _, err := render.ParseGradient(con.ColorScale); err != nil {
			log.Fatal(err.Error())
		}

		if err := gocpo.Process(wrap); err != nil {
			log.Fatal(err.Error())
		}

	case "ExampleConfig":
		switch exampleConfig {
		case "PoleFigures":
			fmt.Println(io.ExampleConfigFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. The only recognized " +
					"argument is 'PoleFigures'.",
			)
		}
	default:
		panic("Impossible")
	}
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" { setNames = append(setNames, name) }
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but gocpo "+
				"only accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}
