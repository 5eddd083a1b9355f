package io

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrParticleNotFound reports that a particle id has no record at the
// requested timestep. This is the normal "skip and move on" case, not a
// broken input.
var ErrParticleNotFound = errors.New("particle not found")

// GrainRecord holds the orientation of a single grain: the owning particle
// id and one Euler angle triple (degrees, Z-X-Z) per mineral phase.
type GrainRecord struct {
	ID    int
	Euler [2][3]float64
}

// ElasticityRecord is the elastic anisotropy decomposition of a particle: a
// full norm square and, for each of the five symmetry families, the norm
// squares of its three principal components.
type ElasticityRecord struct {
	FullNormSquare      float64
	IsotropicNormSquare float64

	Triclinic    [3]float64
	Monoclinic   [3]float64
	Orthorhombic [3]float64
	Tetragonal   [3]float64
	Hexagonal    [3]float64
}

// ParticleRecord is the per-timestep metadata of one particle. Z and the
// deformation type are optional columns; Elasticity is nil when the shard
// carries no decomposition.
type ParticleRecord struct {
	ID   int
	X, Y float64

	Z     float64
	HaveZ bool

	OlivineDeformationType float64

	Elasticity *ElasticityRecord
}

// ShardSet locates the shard files of one experiment directory. Grain
// shards may be zlib compressed; metadata shards are always plain text.
type ShardSet struct {
	Dir            string
	GrainPrefix    string
	ParticlePrefix string
	Compressed     bool
}

// GrainFile returns the expected grain shard file name for a timestep and
// shard index.
func (s *ShardSet) GrainFile(step, shard int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%s-%05d.%04d.dat", s.GrainPrefix, step, shard))
}

// ParticleFile returns the expected metadata shard file name for a timestep
// and shard index.
func (s *ShardSet) ParticleFile(step, shard int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%s-%05d.%04d.dat", s.ParticlePrefix, step, shard))
}

// LocateParticle scans the shard sequence of a timestep in increasing
// index order until it finds the grain records of the given particle, then
// loads the metadata record from the matching metadata shard. The data
// producer writes all grains of one particle into a single shard, so the
// scan stops at the first shard with a match. The scan ends with
// ErrParticleNotFound when the next shard file does not exist; empty shard
// files (a worker that owned no particles that step) are skipped. Any
// undecodable shard aborts the whole request.
func (s *ShardSet) LocateParticle(step, id int) ([]GrainRecord, *ParticleRecord, error) {
	for shard := 0; ; shard++ {
		fname := s.GrainFile(step, shard)

		fi, err := os.Stat(fname)
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf(
				"particle id %d at timestep %d (scanned up to %s): %w",
				id, step, fname, ErrParticleNotFound,
			)
		} else if err != nil {
			return nil, nil, fmt.Errorf("could not stat %s: %s", fname, err)
		}

		if fi.Size() == 0 {
			continue
		}

		data, err := s.readShard(fname)
		if err != nil {
			return nil, nil, err
		}

		grains, err := parseGrainRecords(data, fname, id)
		if err != nil {
			return nil, nil, err
		}
		if len(grains) == 0 {
			continue
		}

		rec, err := s.readParticleRecord(step, shard, id)
		if err != nil {
			return nil, nil, err
		}
		return grains, rec, nil
	}
}

func (s *ShardSet) readShard(fname string) ([]byte, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %s", fname, err)
	}
	defer f.Close()

	if !s.Compressed {
		data, err := ioutil.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("could not read %s: %s", fname, err)
		}
		return data, nil
	}

	zr, err := zlib.NewReader(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("could not decode zlib stream in %s: %s", fname, err)
	}
	defer zr.Close()

	data, err := ioutil.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("could not decode zlib stream in %s: %s", fname, err)
	}
	return data, nil
}

// grainColumns lists the header names of the per-mineral Euler angle
// columns, in the order they land in GrainRecord.Euler.
var grainColumns = [2][3]string{
	{"mineral_0_EA_phi", "mineral_0_EA_theta", "mineral_0_EA_z"},
	{"mineral_1_EA_phi", "mineral_1_EA_theta", "mineral_1_EA_z"},
}

func parseGrainRecords(data []byte, fname string, id int) ([]GrainRecord, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 1<<16), 1<<22)

	hdr, err := readHeader(scanner, fname)
	if err != nil {
		return nil, err
	}

	idCol, err := columnIndex(hdr, "id", fname)
	if err != nil {
		return nil, err
	}
	var angleCols [2][3]int
	for m := range grainColumns {
		for a := range grainColumns[m] {
			angleCols[m][a], err = columnIndex(hdr, grainColumns[m][a], fname)
			if err != nil {
				return nil, err
			}
		}
	}

	grains := []GrainRecord{}
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		rowID, err := parseIDField(fields, idCol, fname)
		if err != nil {
			return nil, err
		}
		if rowID != id {
			continue
		}

		g := GrainRecord{ID: rowID}
		for m := range angleCols {
			for a := range angleCols[m] {
				g.Euler[m][a], err = parseFloatField(
					fields, angleCols[m][a], grainColumns[m][a], fname,
				)
				if err != nil {
					return nil, err
				}
			}
		}
		grains = append(grains, g)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read %s: %s", fname, err)
	}

	return grains, nil
}

// elasticityColumns maps header names onto slots of an ElasticityRecord.
// The "orthohombic" spelling is what the data producer writes.
var elasticityColumns = []struct {
	name string
	get  func(*ElasticityRecord) *float64
}{
	{"triclinic_norm_square_p1", func(e *ElasticityRecord) *float64 { return &e.Triclinic[0] }},
	{"triclinic_norm_square_p2", func(e *ElasticityRecord) *float64 { return &e.Triclinic[1] }},
	{"triclinic_norm_square_p3", func(e *ElasticityRecord) *float64 { return &e.Triclinic[2] }},
	{"monoclinic_norm_square_p1", func(e *ElasticityRecord) *float64 { return &e.Monoclinic[0] }},
	{"monoclinic_norm_square_p2", func(e *ElasticityRecord) *float64 { return &e.Monoclinic[1] }},
	{"monoclinic_norm_square_p3", func(e *ElasticityRecord) *float64 { return &e.Monoclinic[2] }},
	{"orthohombic_norm_square_p1", func(e *ElasticityRecord) *float64 { return &e.Orthorhombic[0] }},
	{"orthohombic_norm_square_p2", func(e *ElasticityRecord) *float64 { return &e.Orthorhombic[1] }},
	{"orthohombic_norm_square_p3", func(e *ElasticityRecord) *float64 { return &e.Orthorhombic[2] }},
	{"tetragonal_norm_square_p1", func(e *ElasticityRecord) *float64 { return &e.Tetragonal[0] }},
	{"tetragonal_norm_square_p2", func(e *ElasticityRecord) *float64 { return &e.Tetragonal[1] }},
	{"tetragonal_norm_square_p3", func(e *ElasticityRecord) *float64 { return &e.Tetragonal[2] }},
	{"hexagonal_norm_square_p1", func(e *ElasticityRecord) *float64 { return &e.Hexagonal[0] }},
	{"hexagonal_norm_square_p2", func(e *ElasticityRecord) *float64 { return &e.Hexagonal[1] }},
	{"hexagonal_norm_square_p3", func(e *ElasticityRecord) *float64 { return &e.Hexagonal[2] }},
}

// readParticleRecord loads the metadata record of one particle from the
// metadata shard matching the grain shard that contained it. A missing id
// yields a zeroed record rather than an error, mirroring the grain scan's
// producer-side guarantee that metadata may lag behind orientations.
func (s *ShardSet) readParticleRecord(step, shard, id int) (*ParticleRecord, error) {
	fname := s.ParticleFile(step, shard)

	f, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("could not open particle data file %s: %s", fname, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1<<16), 1<<22)

	hdr, err := readHeader(scanner, fname)
	if err != nil {
		return nil, err
	}

	idCol, err := columnIndex(hdr, "id", fname)
	if err != nil {
		return nil, err
	}
	xCol, err := columnIndex(hdr, "x", fname)
	if err != nil {
		return nil, err
	}
	yCol, err := columnIndex(hdr, "y", fname)
	if err != nil {
		return nil, err
	}
	zCol, haveZ := hdr["z"]
	odtCol, haveODT := hdr["olivine_deformation_type"]
	fullCol, haveElastic := hdr["full_norm_square"]
	isoCol, haveIso := hdr["isotropic_norm_square"]

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		rowID, err := parseIDField(fields, idCol, fname)
		if err != nil {
			return nil, err
		}
		if rowID != id {
			continue
		}

		rec := &ParticleRecord{ID: rowID}
		if rec.X, err = parseFloatField(fields, xCol, "x", fname); err != nil {
			return nil, err
		}
		if rec.Y, err = parseFloatField(fields, yCol, "y", fname); err != nil {
			return nil, err
		}
		if haveZ {
			if rec.Z, err = parseFloatField(fields, zCol, "z", fname); err != nil {
				return nil, err
			}
			rec.HaveZ = true
		}
		if haveODT {
			rec.OlivineDeformationType, err = parseFloatField(
				fields, odtCol, "olivine_deformation_type", fname,
			)
			if err != nil {
				return nil, err
			}
		}

		if haveElastic {
			e := &ElasticityRecord{}
			e.FullNormSquare, err = parseFloatField(fields, fullCol, "full_norm_square", fname)
			if err != nil {
				return nil, err
			}
			if haveIso {
				e.IsotropicNormSquare, err = parseFloatField(
					fields, isoCol, "isotropic_norm_square", fname,
				)
				if err != nil {
					return nil, err
				}
			}
			for _, col := range elasticityColumns {
				idx, err := columnIndex(hdr, col.name, fname)
				if err != nil {
					return nil, err
				}
				if *col.get(e), err = parseFloatField(fields, idx, col.name, fname); err != nil {
					return nil, err
				}
			}
			rec.Elasticity = e
		}

		return rec, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read %s: %s", fname, err)
	}

	// The id never showed up. Metadata is auxiliary, so hand back a zeroed
	// record instead of failing the whole request.
	return &ParticleRecord{HaveZ: haveZ}, nil
}

func readHeader(scanner *bufio.Scanner, fname string) (map[string]int, error) {
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		hdr := make(map[string]int, len(fields))
		for i, name := range fields {
			hdr[name] = i
		}
		return hdr, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read %s: %s", fname, err)
	}
	return nil, fmt.Errorf("%s has no header row", fname)
}

func columnIndex(hdr map[string]int, name, fname string) (int, error) {
	idx, ok := hdr[name]
	if !ok {
		return 0, fmt.Errorf("missing expected column '%s' in %s", name, fname)
	}
	return idx, nil
}

func parseIDField(fields []string, col int, fname string) (int, error) {
	if col >= len(fields) {
		return 0, fmt.Errorf("row in %s is missing the 'id' field", fname)
	}
	id, err := strconv.Atoi(fields[col])
	if err != nil {
		return 0, fmt.Errorf("could not parse id '%s' in %s: %s", fields[col], fname, err)
	}
	return id, nil
}

func parseFloatField(fields []string, col int, name, fname string) (float64, error) {
	if col >= len(fields) {
		return 0, fmt.Errorf("row in %s is missing the '%s' field", fname, name)
	}
	x, err := strconv.ParseFloat(fields[col], 64)
	if err != nil {
		return 0, fmt.Errorf(
			"could not parse field '%s' value '%s' in %s: %s",
			name, fields[col], fname, err,
		)
	}
	return x, nil
}
