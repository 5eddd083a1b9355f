package io

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// TimeRowMarker tags the statistics file rows that carry a timestep to
// time mapping. Rows without it belong to other output series and are
// skipped.
const TimeRowMarker = "particle_LPO"

// ReadTimes extracts the recorded time of every timestep from a statistics
// file. The file is whitespace-delimited with '#' comment lines; only rows
// containing TimeRowMarker count, and the time value sits in the second
// field. The returned slice is indexed by timestep.
func ReadTimes(fname string) ([]float64, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("could not open time data file: %s", err)
	}
	defer f.Close()

	times := []float64{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.Contains(line, TimeRowMarker) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf(
				"time data row '%s' in %s has no time field", line, fname,
			)
		}
		t, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf(
				"could not parse time '%s' in %s: %s", fields[1], fname, err,
			)
		}
		times = append(times, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read %s: %s", fname, err)
	}

	if len(times) == 0 {
		return nil, fmt.Errorf("no '%s' rows found in %s", TimeRowMarker, fname)
	}
	return times, nil
}

// ResolveTimestep maps a requested physical time onto the index of the
// closest recorded time. times must be sorted in increasing order. Ties go
// to the earlier timestep.
func ResolveTimestep(times []float64, requested float64) (int, error) {
	if len(times) == 0 {
		return 0, fmt.Errorf("cannot resolve a timestep from an empty time list")
	}

	after := len(times) - 1
	for i, t := range times {
		if t > requested {
			after = i
			break
		}
	}

	before := after
	if after > 0 {
		before = after - 1
	}

	if math.Abs(requested-times[before]) <= math.Abs(requested-times[after]) {
		return before, nil
	}
	return after, nil
}
