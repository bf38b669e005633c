package transport

// Physical constants for the single-isotope neutral-particle model.
const (
	// MassNo is the mass number of the scattering isotope; it fixes the
	// energy loss per elastic scatter.
	MassNo = 100.0

	// MolarMass is the molar mass of the scattering medium in kg/mol.
	MolarMass = 1.0e-2

	// Avogadros is Avogadro's number in 1/mol.
	Avogadros = 6.02214085774e23

	// Barns converts a microscopic cross section in barns to m^2.
	Barns = 1.0e-28

	// EVToJ converts electron-volts to joules.
	EVToJ = 1.60217646e-19

	// ParticleMass is the neutral-particle (neutron) rest mass in kg.
	ParticleMass = 1.674927471e-27

	// MinEnergyOfInterest is the energy in eV below which an absorbed
	// particle is culled from the simulation.
	MinEnergyOfInterest = 1.0
)

// DefaultBlockSize is the number of particles processed together by the
// event kernel; block phases are shaped for SIMD over this many lanes.
const DefaultBlockSize = 32
