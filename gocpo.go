/*package gocpo drives the pole figure pipeline: it fans experiment
directories out over a worker pool and, for each requested (time, particle)
pair, resolves the timestep, locates the particle's grain orientations in
the shard files, converts them to crystal axis vectors, estimates the
orientation density on the sampling grid and renders the assembled pole
figure grid.
*/
package gocpo

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/cpo-tools/gocpo/analyze"
	"github.com/cpo-tools/gocpo/geom"
	"github.com/cpo-tools/gocpo/io"
	"github.com/cpo-tools/gocpo/render"
)

const degToRad = math.Pi / 180

// Process runs the pipeline for every configured experiment directory.
// Experiments are independent units: they share no mutable state, run
// concurrently on up to NumCPU workers, and one experiment's failure never
// stops the others. Progress goes through the default logger, which is
// safe for concurrent use. The returned error names the experiments that
// failed, if any.
func Process(wrap *io.ConfigWrapper) error {
	dirs := wrap.CPO.ExperimentDir

	workers := runtime.NumCPU()
	if workers > len(dirs) {
		workers = len(dirs)
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := []string{}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for dir := range jobs {
				log.Printf("Processing experiment %s", dir)
				if err := processExperiment(&wrap.CPO, &wrap.PoleFigures, dir); err != nil {
					log.Printf("Experiment %s failed: %s", dir, err)
					mu.Lock()
					failed = append(failed, dir)
					mu.Unlock()
				}
			}
		}()
	}

	for _, dir := range dirs {
		jobs <- dir
	}
	close(jobs)
	wg.Wait()

	if len(failed) > 0 {
		return fmt.Errorf("failed experiments: %s", strings.Join(failed, ", "))
	}
	return nil
}

func processExperiment(cpo *io.CPOConfig, pf *io.PoleFiguresConfig, dir string) error {
	expDir := filepath.Join(cpo.BaseDir, dir)

	timeFile := filepath.Join(expDir, pf.TimeDataFile)
	times, err := io.ReadTimes(timeFile)
	if err != nil {
		return err
	}

	axes, err := parseAxes(pf.Axis)
	if err != nil {
		return err
	}
	minerals, err := parseMinerals(pf.Mineral)
	if err != nil {
		return err
	}
	grad, err := render.ParseGradient(pf.ColorScale)
	if err != nil {
		return err
	}

	// Built once and shared read-only by everything downstream.
	lam, err := geom.NewLambertGrid(pf.SpherePoints, geom.UpperHemisphere)
	if err != nil {
		return err
	}

	figDir := filepath.Join(expDir, pf.FigureOutputDir)
	if err := os.MkdirAll(figDir, 0777); err != nil {
		return fmt.Errorf("could not create %s: %s", figDir, err)
	}

	shards := &io.ShardSet{
		Dir:            expDir,
		GrainPrefix:    pf.GrainDataFilePrefix,
		ParticlePrefix: pf.ParticleDataFilePrefix,
		Compressed:     cpo.Compressed,
	}

	for _, reqTime := range pf.Time {
		step, err := io.ResolveTimestep(times, reqTime)
		if err != nil {
			return err
		}
		log.Printf(
			"Processing time %g (requested time: %g), located in timestep %d",
			times[step], reqTime, step,
		)

		for _, id := range pf.ParticleID {
			err := processParticle(
				shards, pf, axes, minerals, lam, grad, figDir, step, times[step], id,
			)
			if errors.Is(err, io.ErrParticleNotFound) {
				log.Printf("Particle id %d not found for timestep %d.", id, step)
				continue
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func processParticle(
	shards *io.ShardSet, pf *io.PoleFiguresConfig,
	axes []analyze.CrystalAxis, minerals []analyze.Mineral,
	lam *geom.LambertGrid, grad *render.Gradient,
	figDir string, step int, t float64, id int,
) error {
	grains, rec, err := shards.LocateParticle(step, id)
	if err != nil {
		return err
	}
	nGrains := len(grains)
	log.Printf("Found %d grains for particle id %d at timestep %d", nGrains, id, step)

	// One rotation matrix per grain per mineral phase. The shard records
	// carry degrees.
	rots := make([][]*geom.RotationMatrix, analyze.MineralCount)
	for m := range rots {
		rots[m] = make([]*geom.RotationMatrix, nGrains)
		for gi := range grains {
			e := grains[gi].Euler[m]
			rots[m][gi] = geom.EulerToRotation(e[0]*degToRad, e[1]*degToRad, e[2]*degToRad)
		}
	}

	figGrid := make([][]*analyze.PoleFigure, len(axes))
	for ai, axis := range axes {
		figGrid[ai] = make([]*analyze.PoleFigure, len(minerals))
		for mi, mineral := range minerals {
			vecs := make([][3]float64, nGrains)
			for gi := range vecs {
				vecs[gi] = rots[mineral][gi].Row(int(axis))
			}

			counts, err := analyze.OrientationCounts(vecs, lam)
			if err != nil {
				return fmt.Errorf("particle id %d at timestep %d: %s", id, step, err)
			}
			figGrid[ai][mi] = &analyze.PoleFigure{
				Mineral:  mineral,
				Axis:     axis,
				Counts:   counts,
				MaxCount: analyze.MaxOf(counts),
			}
		}
	}
	analyze.NormalizeMaxCounts(figGrid)

	if pf.ElasticityHeader {
		logElasticity(rec, id, t, nGrains)
	}

	outName := figureFileName(figDir, pf, grad, axes, minerals, step, id)
	log.Printf("Writing %s", outName)
	if err := render.WritePoleFigureSheet(outName, figGrid, lam, grad, pf.SmallFigure); err != nil {
		return err
	}

	if pf.DumpCounts {
		base := strings.TrimSuffix(outName, ".png")
		for ai := range figGrid {
			for mi := range figGrid[ai] {
				fig := figGrid[ai][mi]
				dumpName := fmt.Sprintf(
					"%s_%s%scounts.dat",
					base, fig.Mineral.FilePrefix(), fig.Axis.FilePrefix(),
				)
				err := render.WriteCountsTable(dumpName, fig, !pf.NoDescriptionText)
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// logElasticity summarizes the particle's elastic anisotropy decomposition
// the way the figure header used to.
func logElasticity(rec *io.ParticleRecord, id int, t float64, nGrains int) {
	if rec.Elasticity == nil {
		log.Printf(
			"id=%d, time=%.5e, position=(%.3e:%.3e:%.3e), ODT=%.4f, grains=%d "+
				"(no elasticity data)",
			id, t, rec.X, rec.Y, rec.Z, rec.OlivineDeformationType, nGrains,
		)
		return
	}

	e := rec.Elasticity
	totalAnisotropy := e.Triclinic[0] + e.Monoclinic[0] + e.Orthorhombic[0] +
		e.Tetragonal[0] + e.Hexagonal[0]

	log.Printf(
		"id=%d, time=%.5e, position=(%.3e:%.3e:%.3e), ODT=%.4f, grains=%d, "+
			"anisotropic%%=%.4f",
		id, t, rec.X, rec.Y, rec.Z, rec.OlivineDeformationType, nGrains,
		totalAnisotropy/e.FullNormSquare*100,
	)
	log.Printf(
		"id=%d symmetry%%: hex=%.2f,%.2f,%.2f tet=%.2f,%.2f,%.2f "+
			"ort=%.2f,%.2f,%.2f mon=%.2f,%.2f,%.2f tri=%.2f,%.2f,%.2f",
		id,
		e.Hexagonal[0]/e.FullNormSquare*100, e.Hexagonal[1]/e.FullNormSquare*100,
		e.Hexagonal[2]/e.FullNormSquare*100,
		e.Tetragonal[0]/e.FullNormSquare*100, e.Tetragonal[1]/e.FullNormSquare*100,
		e.Tetragonal[2]/e.FullNormSquare*100,
		e.Orthorhombic[0]/e.FullNormSquare*100, e.Orthorhombic[1]/e.FullNormSquare*100,
		e.Orthorhombic[2]/e.FullNormSquare*100,
		e.Monoclinic[0]/e.FullNormSquare*100, e.Monoclinic[1]/e.FullNormSquare*100,
		e.Monoclinic[2]/e.FullNormSquare*100,
		e.Triclinic[0]/e.FullNormSquare*100, e.Triclinic[1]/e.FullNormSquare*100,
		e.Triclinic[2]/e.FullNormSquare*100,
	)
}

// figureFileName encodes everything that went into the figure: elasticity
// toggle, minerals, axes, color scale, gamma, grid resolution, timestep and
// particle id.
func figureFileName(
	figDir string, pf *io.PoleFiguresConfig, grad *render.Gradient,
	axes []analyze.CrystalAxis, minerals []analyze.Mineral,
	step, id int,
) string {
	elastic := "no-elastic_"
	if pf.ElasticityHeader {
		elastic = "elastic_"
	}

	mineralTag := ""
	for _, m := range minerals {
		mineralTag += m.FilePrefix()
	}
	axisTag := ""
	for _, a := range axes {
		axisTag += a.FilePrefix()
	}
	axisTag += "Axis_"

	return filepath.Join(figDir, fmt.Sprintf(
		"%s_%s%s%s%s_g%g_sp%d_t%05d.%05d.png",
		pf.FigureOutputPrefix, elastic, mineralTag, axisTag,
		grad.Name(), render.Gamma, pf.SpherePoints, step, id,
	))
}

func parseAxes(names []string) ([]analyze.CrystalAxis, error) {
	axes := make([]analyze.CrystalAxis, len(names))
	for i, name := range names {
		axis, err := analyze.ParseCrystalAxis(name)
		if err != nil {
			return nil, err
		}
		axes[i] = axis
	}
	return axes, nil
}

func parseMinerals(names []string) ([]analyze.Mineral, error) {
	minerals := make([]analyze.Mineral, len(names))
	for i, name := range names {
		mineral, err := analyze.ParseMineral(name)
		if err != nil {
			return nil, err
		}
		minerals[i] = mineral
	}
	return minerals, nil
}
