/*package io handles everything that crosses the filesystem boundary on the
way in: the gcfg configuration file, the statistics file that maps
timesteps to physical times, and the per-worker shard files holding grain
orientations and particle metadata.
*/
package io

const ExampleConfigFile = `[CPO]

#######################
# Required Parameters #
#######################

# The location of the experiment directories.
BaseDir = path/to/base/dir

# The directories containing the experiments. Repeat the variable once per
# experiment. Each experiment is processed independently.
ExperimentDir = experiment_1
ExperimentDir = experiment_2

# Whether the shard data was compressed with zlib.
Compressed = true

[PoleFigures]

#######################
# Required Parameters #
#######################

# A pole figure plot is made for every listed time. Each time is snapped to
# the closest time for which data exists. Repeat the variable once per time.
Time = 1.0
Time = 5.0

# A pole figure plot is made for every listed particle id. Repeat the
# variable once per id.
ParticleID = 1
ParticleID = 10

# The crystal axes to plot, one per horizontal position in the output
# figure. Accepted values are AAxis, BAxis and CAxis.
Axis = AAxis
Axis = BAxis
Axis = CAxis

# The minerals to plot, one per vertical position in the output figure.
# Accepted values are Olivine and Enstatite.
Mineral = Olivine
Mineral = Enstatite

#######################
# Optional Parameters #
#######################

# File relating timestep numbers to the time they represent, relative to
# the experiment directory.
# TimeDataFile = statistics

# Prefix of the per-timestep particle metadata shards (id, position,
# deformation type, elasticity decomposition). The timestep and shard
# number postfix -00000.0000.dat is appended automatically.
# ParticleDataFilePrefix = particle_CPO/particles

# Prefix of the per-timestep grain orientation shards (id plus per-mineral
# Euler angles). Same postfix convention as above.
# GrainDataFilePrefix = particle_CPO/weighted_CPO

# Where the figures are written, relative to the experiment directory, and
# the leading part of each figure's file name.
# FigureOutputDir = CPO_figures/
# FigureOutputPrefix = weighted_LPO

# Color gradient for the density maps. Accepted values are Batlow and
# Simple.
# ColorScale = Batlow

# Number of grid points per side of the equal-area sampling grid.
# SpherePoints = 301

# Whether to log the elastic anisotropy decomposition for each particle.
# ElasticityHeader = true

# Whether to produce small (500px) instead of normal (800px) panels.
# SmallFigure = false

# Whether to omit the axis/mineral description from the figure.
# NoDescriptionText = false

# Whether to write each density matrix as a plain text table next to the
# figure.
# DumpCounts = false`

// CPOConfig is the top level configuration section: where the experiments
// live and how their shard files are encoded.
type CPOConfig struct {
	// Required
	BaseDir       string
	ExperimentDir []string

	Compressed bool
}

// PoleFiguresConfig configures one run of the pole figure pipeline.
type PoleFiguresConfig struct {
	// Required
	Time       []float64
	ParticleID []int
	Axis       []string
	Mineral    []string

	// Optional
	TimeDataFile           string
	ParticleDataFilePrefix string
	GrainDataFilePrefix    string
	FigureOutputDir        string
	FigureOutputPrefix     string
	ColorScale             string
	SpherePoints           int
	ElasticityHeader       bool
	SmallFigure            bool
	NoDescriptionText      bool
	DumpCounts             bool
}

type ConfigWrapper struct {
	CPO         CPOConfig
	PoleFigures PoleFiguresConfig
}

// DefaultConfigWrapper returns a wrapper with every optional parameter set
// to its default, ready to be filled in by gcfg.ReadFileInto.
func DefaultConfigWrapper() *ConfigWrapper {
	pf := PoleFiguresConfig{
		TimeDataFile:           "statistics",
		ParticleDataFilePrefix: "particle_CPO/particles",
		GrainDataFilePrefix:    "particle_CPO/weighted_CPO",
		FigureOutputDir:        "CPO_figures/",
		FigureOutputPrefix:     "weighted_LPO",
		ColorScale:             "Batlow",
		SpherePoints:           301,
		ElasticityHeader:       true,
	}
	return &ConfigWrapper{PoleFigures: pf}
}

func (con *CPOConfig) ValidBaseDir() bool {
	return con.BaseDir != ""
}
func (con *CPOConfig) ValidExperimentDirs() bool {
	return len(con.ExperimentDir) > 0
}

func (con *PoleFiguresConfig) ValidTimes() bool {
	return len(con.Time) > 0
}
func (con *PoleFiguresConfig) ValidParticleIDs() bool {
	return len(con.ParticleID) > 0
}
func (con *PoleFiguresConfig) ValidAxes() bool {
	return len(con.Axis) > 0
}
func (con *PoleFiguresConfig) ValidMinerals() bool {
	return len(con.Mineral) > 0
}
func (con *PoleFiguresConfig) ValidSpherePoints() bool {
	return con.SpherePoints >= 2
}
