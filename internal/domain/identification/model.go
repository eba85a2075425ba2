package identification

import (
	"time"

	"livestock-registry/internal/domain/nni"
)

// Role identifica la posición de un ancestro en la genealogía.
type Role string

const (
	RoleMother              Role = "mother"
	RoleMaternalGrandfather Role = "maternal_grandfather"
	RoleFather              Role = "father"
	RolePaternalGrandfather Role = "paternal_grandfather"
	RolePaternalGrandmother Role = "paternal_grandmother"
)

// Roles en el orden fijo usado por validación y export.
var Roles = []Role{
	RoleMother,
	RoleMaternalGrandfather,
	RoleFather,
	RolePaternalGrandfather,
	RolePaternalGrandmother,
}

// LineageSlot es un ancestro. Los tres campos son obligatorios.
type LineageSlot struct {
	NNI         nni.NNI
	DateOfBirth time.Time
	Breed       Breed
}

func (s LineageSlot) Equal(o LineageSlot) bool {
	return s.NNI == o.NNI && s.Breed == o.Breed && sameDay(s.DateOfBirth, o.DateOfBirth)
}

// Lineage tiene un campo por rol (no un map) para que el rol sea parte del tipo.
type Lineage struct {
	Mother              LineageSlot
	MaternalGrandfather LineageSlot
	Father              LineageSlot
	PaternalGrandfather LineageSlot
	PaternalGrandmother LineageSlot
}

// Slot devuelve el ancestro de un rol.
func (l Lineage) Slot(r Role) LineageSlot {
	if p := l.ref(r); p != nil {
		return *p
	}
	return LineageSlot{}
}

func (l *Lineage) set(r Role, s LineageSlot) {
	if p := l.ref(r); p != nil {
		*p = s
	}
}

func (l *Lineage) ref(r Role) *LineageSlot {
	switch r {
	case RoleMother:
		return &l.Mother
	case RoleMaternalGrandfather:
		return &l.MaternalGrandfather
	case RoleFather:
		return &l.Father
	case RolePaternalGrandfather:
		return &l.PaternalGrandfather
	case RolePaternalGrandmother:
		return &l.PaternalGrandmother
	default:
		return nil
	}
}

// Subject es el animal identificado.
type Subject struct {
	NNI         nni.NNI
	DateOfBirth time.Time
	Breed       Breed
	Sex         Sex
	Species     Species

	// Referencias opacas (URIs); el binario vive fuera de este servicio.
	Photos []string
}

func (s Subject) Equal(o Subject) bool {
	if s.NNI != o.NNI || s.Breed != o.Breed || s.Sex != o.Sex || s.Species != o.Species {
		return false
	}
	if !sameDay(s.DateOfBirth, o.DateOfBirth) {
		return false
	}
	if len(s.Photos) != len(o.Photos) {
		return false
	}
	for i := range s.Photos {
		if s.Photos[i] != o.Photos[i] {
			return false
		}
	}
	return true
}

// AdministrativeRefs son ids de un directorio externo; aquí solo se guardan.
type AdministrativeRefs struct {
	BreederID    string
	HoldingID    string
	LocalAgentID string
}

// Record es la ficha de identificación canónica.
type Record struct {
	ID string

	Subject Subject
	Lineage Lineage
	Admin   AdministrativeRefs

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone copia el record sin compartir el slice de fotos.
func (r Record) Clone() Record {
	if r.Subject.Photos != nil {
		photos := make([]string, len(r.Subject.Photos))
		copy(photos, r.Subject.Photos)
		r.Subject.Photos = photos
	}
	return r
}

// Date normaliza t a fecha calendario (medianoche UTC).
func Date(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return Date(a).Equal(Date(b))
}
