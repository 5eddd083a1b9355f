/*plot_profile plots a one dimensional cut through a dumped density matrix.
The input is a counts table written with DumpCounts = true; the output is a
line plot of the central column, which crosses the projection center. Useful
for comparing the sharpness of fabrics between particles without eyeballing
color maps.

Usage: $ plot_profile counts_file out_file grid_points
*/
package main

import (
	"log"
	"math"
	"os"
	"strconv"

	plt "github.com/phil-mansfield/pyplot"
	"github.com/phil-mansfield/table"
)

func main() {
	if len(os.Args) != 4 {
		log.Fatalf(
			"Required file use: $ %s counts_file out_file grid_points",
			os.Args[0],
		)
	}

	countsFile, outFile := os.Args[1], os.Args[2]
	n, err := strconv.Atoi(os.Args[3])
	if err != nil { log.Fatal(err.Error()) }
	if n < 2 { log.Fatal("grid_points must be at least 2.") }

	cols, err := table.ReadTable(countsFile, []int{n / 2}, nil)
	if err != nil { log.Fatal(err.Error()) }
	counts := cols[0]
	if len(counts) != n {
		log.Fatalf(
			"%s has %d rows, but grid_points is %d.",
			countsFile, len(counts), n,
		)
	}

	// Planar coordinate of each row along the vertical axis. Rows run top
	// to bottom, so the first row sits at +sqrt(2).
	r := math.Sqrt2
	zs := make([]float64, n)
	for i := range zs {
		zs[i] = r - 2*r*float64(i)/float64(n-1)
	}

	plt.Reset()
	plt.Figure()
	plt.Plot(zs, counts, "k", plt.LW(2))
	plt.XLabel(`$Z$`, plt.FontSize(16))
	plt.YLabel(`Orientation density`, plt.FontSize(16))
	plt.Title(countsFile)
	plt.SaveFig(outFile)
	plt.Execute()
}
