package io

import (
	"bytes"
	"compress/zlib"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const grainHeader = "id mineral_0_EA_phi mineral_0_EA_theta mineral_0_EA_z " +
	"mineral_1_EA_phi mineral_1_EA_theta mineral_1_EA_z\n"

const particleHeader = "id x y z olivine_deformation_type\n"

func newTestShardSet(t *testing.T, compressed bool) (*ShardSet, func()) {
	dir, err := ioutil.TempDir("", "shards_test")
	assert.NoError(t, err)

	s := &ShardSet{
		Dir:            dir,
		GrainPrefix:    "weighted_CPO",
		ParticlePrefix: "particles",
		Compressed:     compressed,
	}
	return s, func() { os.RemoveAll(dir) }
}

func writeGrainShard(t *testing.T, s *ShardSet, step, shard int, contents string) {
	data := []byte(contents)
	if s.Compressed && len(data) > 0 {
		buf := &bytes.Buffer{}
		zw := zlib.NewWriter(buf)
		_, err := zw.Write(data)
		assert.NoError(t, err)
		assert.NoError(t, zw.Close())
		data = buf.Bytes()
	}
	assert.NoError(t, ioutil.WriteFile(s.GrainFile(step, shard), data, 0666))
}

func writeParticleShard(t *testing.T, s *ShardSet, step, shard int, contents string) {
	assert.NoError(t, ioutil.WriteFile(s.ParticleFile(step, shard), []byte(contents), 0666))
}

func TestShardFileNames(t *testing.T) {
	s := &ShardSet{
		Dir: "base", GrainPrefix: "weighted_CPO", ParticlePrefix: "particles",
	}
	assert.Equal(t,
		filepath.Join("base", "weighted_CPO-00012.0003.dat"),
		s.GrainFile(12, 3), "grain file",
	)
	assert.Equal(t,
		filepath.Join("base", "particles-00012.0003.dat"),
		s.ParticleFile(12, 3), "particle file",
	)
}

func TestLocateParticleScansShards(t *testing.T) {
	s, cleanup := newTestShardSet(t, false)
	defer cleanup()

	// Shard 0 came from a worker that owned nothing this step, shard 1 holds
	// other particles, shard 2 holds the target. Shard 3 exists but must
	// never be read: the scan stops at the first match.
	writeGrainShard(t, s, 3, 0, "")
	writeGrainShard(t, s, 3, 1, grainHeader+
		"4 10 20 30 40 50 60\n"+
		"5 11 21 31 41 51 61\n")
	writeGrainShard(t, s, 3, 2, grainHeader+
		"6 0 0 0 0 0 0\n"+
		"7 15 25 35 45 55 65\n"+
		"7 16 26 36 46 56 66\n")
	writeGrainShard(t, s, 3, 3, grainHeader+
		"7 99 99 99 99 99 99\n")
	writeParticleShard(t, s, 3, 2, particleHeader+
		"6 0 0 0 0\n"+
		"7 1.5 -2.5 3.5 0.25\n")

	grains, rec, err := s.LocateParticle(3, 7)
	assert.NoError(t, err)

	assert.Equal(t, 2, len(grains), "grain count")
	assert.Equal(t, 7, grains[0].ID, "grain id")
	assert.Equal(t, [2][3]float64{{15, 25, 35}, {45, 55, 65}}, grains[0].Euler, "grain 0 angles")
	assert.Equal(t, [2][3]float64{{16, 26, 36}, {46, 56, 66}}, grains[1].Euler, "grain 1 angles")

	assert.Equal(t, 7, rec.ID, "particle id")
	assert.Equal(t, 1.5, rec.X, "x")
	assert.Equal(t, -2.5, rec.Y, "y")
	assert.True(t, rec.HaveZ, "z present")
	assert.Equal(t, 3.5, rec.Z, "z")
	assert.Equal(t, 0.25, rec.OlivineDeformationType, "deformation type")
	assert.Nil(t, rec.Elasticity, "no elasticity columns")
}

func TestLocateParticleNotFound(t *testing.T) {
	s, cleanup := newTestShardSet(t, false)
	defer cleanup()

	writeGrainShard(t, s, 3, 0, grainHeader+"4 10 20 30 40 50 60\n")

	_, _, err := s.LocateParticle(3, 7)
	if !errors.Is(err, ErrParticleNotFound) {
		t.Errorf("expected ErrParticleNotFound, got %v.", err)
	}

	// No shard files at all for this timestep.
	_, _, err = s.LocateParticle(8, 7)
	if !errors.Is(err, ErrParticleNotFound) {
		t.Errorf("expected ErrParticleNotFound for empty timestep, got %v.", err)
	}
}

func TestLocateParticleCompressed(t *testing.T) {
	s, cleanup := newTestShardSet(t, true)
	defer cleanup()

	writeGrainShard(t, s, 1, 0, grainHeader+"9 1 2 3 4 5 6\n")
	// Metadata shards stay plain text even when grain shards are compressed.
	writeParticleShard(t, s, 1, 0, particleHeader+"9 0.5 0.5 0.5 1\n")

	grains, rec, err := s.LocateParticle(1, 9)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(grains), "grain count")
	assert.Equal(t, [2][3]float64{{1, 2, 3}, {4, 5, 6}}, grains[0].Euler, "angles")
	assert.Equal(t, 9, rec.ID, "particle id")
}

func TestLocateParticleUncompressedInCompressedMode(t *testing.T) {
	s, cleanup := newTestShardSet(t, true)
	defer cleanup()

	// A plain text shard where a zlib stream was promised.
	assert.NoError(t, ioutil.WriteFile(
		s.GrainFile(1, 0), []byte(grainHeader+"9 1 2 3 4 5 6\n"), 0666,
	))

	if _, _, err := s.LocateParticle(1, 9); err == nil {
		t.Errorf("LocateParticle decoded a plain text shard as zlib.")
	}
}

func TestLocateParticleMalformedAngle(t *testing.T) {
	s, cleanup := newTestShardSet(t, false)
	defer cleanup()

	writeGrainShard(t, s, 2, 0, grainHeader+"7 15 twenty-five 35 45 55 65\n")

	_, _, err := s.LocateParticle(2, 7)
	if err == nil {
		t.Fatalf("LocateParticle accepted a malformed angle.")
	}
	if !strings.Contains(err.Error(), s.GrainFile(2, 0)) {
		t.Errorf("error %q does not name the broken file.", err)
	}
	if errors.Is(err, ErrParticleNotFound) {
		t.Errorf("malformed input was reported as a missing particle.")
	}
}

func TestLocateParticleMissingColumn(t *testing.T) {
	s, cleanup := newTestShardSet(t, false)
	defer cleanup()

	writeGrainShard(t, s, 2, 0, "id mineral_0_EA_phi\n7 15\n")

	if _, _, err := s.LocateParticle(2, 7); err == nil {
		t.Errorf("LocateParticle accepted a shard with missing columns.")
	}
}

func TestLocateParticleMetadataMissingID(t *testing.T) {
	s, cleanup := newTestShardSet(t, false)
	defer cleanup()

	writeGrainShard(t, s, 4, 0, grainHeader+"7 15 25 35 45 55 65\n")
	// The metadata shard exists but lags behind the orientation data.
	writeParticleShard(t, s, 4, 0, particleHeader+"6 1 2 3 0\n")

	grains, rec, err := s.LocateParticle(4, 7)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(grains), "grain count")

	assert.Equal(t, 0, rec.ID, "zeroed id")
	assert.Equal(t, 0.0, rec.X, "zeroed x")
	assert.True(t, rec.HaveZ, "z column exists")
	assert.Nil(t, rec.Elasticity, "no elasticity")
}

func TestLocateParticleElasticity(t *testing.T) {
	s, cleanup := newTestShardSet(t, false)
	defer cleanup()

	hdr := "id x y full_norm_square isotropic_norm_square " +
		"triclinic_norm_square_p1 triclinic_norm_square_p2 triclinic_norm_square_p3 " +
		"monoclinic_norm_square_p1 monoclinic_norm_square_p2 monoclinic_norm_square_p3 " +
		"orthohombic_norm_square_p1 orthohombic_norm_square_p2 orthohombic_norm_square_p3 " +
		"tetragonal_norm_square_p1 tetragonal_norm_square_p2 tetragonal_norm_square_p3 " +
		"hexagonal_norm_square_p1 hexagonal_norm_square_p2 hexagonal_norm_square_p3\n"
	row := "7 1 2 100 60 1 2 3 4 5 6 7 8 9 10 11 12 13 14 15\n"

	writeGrainShard(t, s, 5, 0, grainHeader+"7 15 25 35 45 55 65\n")
	writeParticleShard(t, s, 5, 0, hdr+row)

	_, rec, err := s.LocateParticle(5, 7)
	assert.NoError(t, err)
	assert.False(t, rec.HaveZ, "no z column")

	e := rec.Elasticity
	if e == nil {
		t.Fatalf("elasticity columns were not decoded.")
	}
	assert.Equal(t, 100.0, e.FullNormSquare, "full norm square")
	assert.Equal(t, 60.0, e.IsotropicNormSquare, "isotropic norm square")
	assert.Equal(t, [3]float64{1, 2, 3}, e.Triclinic, "triclinic")
	assert.Equal(t, [3]float64{4, 5, 6}, e.Monoclinic, "monoclinic")
	assert.Equal(t, [3]float64{7, 8, 9}, e.Orthorhombic, "orthorhombic")
	assert.Equal(t, [3]float64{10, 11, 12}, e.Tetragonal, "tetragonal")
	assert.Equal(t, [3]float64{13, 14, 15}, e.Hexagonal, "hexagonal")
}
