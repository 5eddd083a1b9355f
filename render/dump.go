package render

import (
	"bufio"
	"fmt"
	"os"

	"github.com/cpo-tools/gocpo/analyze"
)

// WriteCountsTable writes one density matrix as a whitespace-delimited
// table, one grid row per line, readable back by column index (for example
// with scripts/plot_profile). The leading comment identifies the panel
// unless describe is false.
func WriteCountsTable(fname string, pf *analyze.PoleFigure, describe bool) error {
	f, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("could not create %s: %s", fname, err)
	}

	w := bufio.NewWriter(f)
	if describe {
		fmt.Fprintf(w, "# %s %s max_count=%g\n", pf.Mineral, pf.Axis, pf.MaxCount)
	}
	for i := range pf.Counts {
		for j, c := range pf.Counts[i] {
			if j > 0 {
				if err := w.WriteByte(' '); err != nil {
					f.Close()
					return fmt.Errorf("could not write %s: %s", fname, err)
				}
			}
			if _, err := fmt.Fprintf(w, "%.8g", c); err != nil {
				f.Close()
				return fmt.Errorf("could not write %s: %s", fname, err)
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			f.Close()
			return fmt.Errorf("could not write %s: %s", fname, err)
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("could not write %s: %s", fname, err)
	}
	return f.Close()
}
