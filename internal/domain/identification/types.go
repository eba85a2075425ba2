package identification

// Sex del animal identificado.
// @Enum male, female
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Species soportadas por el registro.
// @Enum bovine, ovine, caprine
type Species string

const (
	SpeciesBovine  Species = "bovine"
	SpeciesOvine   Species = "ovine"
	SpeciesCaprine Species = "caprine"
)

// Breed es un valor de la lista fija de razas; BreedOther es el fallback.
type Breed string

const (
	// Bovinos
	BreedHolstein        Breed = "holstein"
	BreedMontbeliarde    Breed = "montbeliarde"
	BreedNormande        Breed = "normande"
	BreedCharolaise      Breed = "charolaise"
	BreedLimousine       Breed = "limousine"
	BreedBlondeAquitaine Breed = "blonde_aquitaine"
	BreedBruneAlpes      Breed = "brune_des_alpes"
	BreedTarentaise      Breed = "tarentaise"
	BreedOulmesZaer      Breed = "oulmes_zaer"
	BreedBruneAtlas      Breed = "brune_atlas"
	BreedCrossbred       Breed = "crossbred"
	// Ovinos
	BreedLacaune  Breed = "lacaune"
	BreedMerinos  Breed = "merinos"
	BreedSardi    Breed = "sardi"
	BreedTimahdit Breed = "timahdit"
	BreedDman     Breed = "d_man"
	// Caprinos
	BreedAlpine Breed = "alpine"
	BreedSaanen Breed = "saanen"
	BreedDraa   Breed = "draa"

	BreedOther Breed = "other"
)

var knownBreeds = map[Breed]struct{}{
	BreedHolstein: {}, BreedMontbeliarde: {}, BreedNormande: {}, BreedCharolaise: {},
	BreedLimousine: {}, BreedBlondeAquitaine: {}, BreedBruneAlpes: {}, BreedTarentaise: {},
	BreedOulmesZaer: {}, BreedBruneAtlas: {}, BreedCrossbred: {},
	BreedLacaune: {}, BreedMerinos: {}, BreedSardi: {}, BreedTimahdit: {}, BreedDman: {},
	BreedAlpine: {}, BreedSaanen: {}, BreedDraa: {},
	BreedOther: {},
}

// IsKnownBreed reporta si b pertenece a la lista fija.
func IsKnownBreed(b Breed) bool {
	_, ok := knownBreeds[b]
	return ok
}
