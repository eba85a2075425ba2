package identification

import (
	"strings"
	"time"

	"livestock-registry/internal/domain/nni"
	"livestock-registry/internal/domain/validation"
)

const DateLayout = "2006-01-02"

func init() {
	validation.Register("breed", "unknown breed", func(s string) bool {
		return IsKnownBreed(Breed(s))
	})
}

// SlotInput es un ancestro tal como llega del caller (fechas YYYY-MM-DD).
type SlotInput struct {
	NNI         string `json:"nni" validate:"required,nni"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Breed       Breed  `json:"breed" validate:"required,breed"`
}

type SubjectInput struct {
	NNI         string   `json:"nni" validate:"required,nni"`
	DateOfBirth string   `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Breed       Breed    `json:"breed" validate:"required,breed"`
	Sex         Sex      `json:"sex" validate:"required,oneof=male female"`
	Species     Species  `json:"species_type" validate:"required,oneof=bovine ovine caprine"`
	Photos      []string `json:"photos" validate:"omitempty,dive,required"`
}

type LineageInput struct {
	Mother              SlotInput `json:"mother"`
	MaternalGrandfather SlotInput `json:"maternal_grandfather"`
	Father              SlotInput `json:"father"`
	PaternalGrandfather SlotInput `json:"paternal_grandfather"`
	PaternalGrandmother SlotInput `json:"paternal_grandmother"`
}

func (l LineageInput) slot(r Role) SlotInput {
	switch r {
	case RoleMother:
		return l.Mother
	case RoleMaternalGrandfather:
		return l.MaternalGrandfather
	case RoleFather:
		return l.Father
	case RolePaternalGrandfather:
		return l.PaternalGrandfather
	case RolePaternalGrandmother:
		return l.PaternalGrandmother
	default:
		return SlotInput{}
	}
}

type AdminInput struct {
	BreederID    string `json:"breeder_id" validate:"required"`
	HoldingID    string `json:"holding_id" validate:"required"`
	LocalAgentID string `json:"local_agent_id" validate:"required"`
}

// CreateInput: en create todos los campos son obligatorios.
type CreateInput struct {
	Subject SubjectInput `json:"subject"`
	Lineage LineageInput `json:"lineage"`
	Admin   AdminInput   `json:"administrative_refs"`
}

// -------------------------
// Normalización / conversión
// -------------------------

func (in SlotInput) trimmed() SlotInput {
	in.NNI = strings.ToUpper(strings.TrimSpace(in.NNI))
	in.DateOfBirth = strings.TrimSpace(in.DateOfBirth)
	in.Breed = Breed(strings.ToLower(strings.TrimSpace(string(in.Breed))))
	return in
}

func (in SubjectInput) trimmed() SubjectInput {
	in.NNI = strings.ToUpper(strings.TrimSpace(in.NNI))
	in.DateOfBirth = strings.TrimSpace(in.DateOfBirth)
	in.Breed = Breed(strings.ToLower(strings.TrimSpace(string(in.Breed))))
	in.Sex = Sex(strings.ToLower(strings.TrimSpace(string(in.Sex))))
	in.Species = Species(strings.ToLower(strings.TrimSpace(string(in.Species))))
	if in.Photos != nil {
		photos := make([]string, 0, len(in.Photos))
		for _, p := range in.Photos {
			photos = append(photos, strings.TrimSpace(p))
		}
		in.Photos = photos
	}
	return in
}

func (in AdminInput) trimmed() AdminInput {
	in.BreederID = strings.TrimSpace(in.BreederID)
	in.HoldingID = strings.TrimSpace(in.HoldingID)
	in.LocalAgentID = strings.TrimSpace(in.LocalAgentID)
	return in
}

// toSlot convierte sin validar campos obligatorios; ok=false si el NNI o la
// fecha no parsean (en ese caso el grupo no puede ser igual al guardado).
func (in SlotInput) toSlot() (LineageSlot, bool) {
	n, err := nni.Normalize(in.NNI)
	if err != nil {
		return LineageSlot{}, false
	}
	dob, err := time.Parse(DateLayout, in.DateOfBirth)
	if err != nil {
		return LineageSlot{}, false
	}
	return LineageSlot{NNI: n, DateOfBirth: dob, Breed: in.Breed}, true
}

func (in SubjectInput) toSubject() (Subject, bool) {
	n, err := nni.Normalize(in.NNI)
	if err != nil {
		return Subject{}, false
	}
	dob, err := time.Parse(DateLayout, in.DateOfBirth)
	if err != nil {
		return Subject{}, false
	}
	var photos []string
	if len(in.Photos) > 0 {
		photos = make([]string, len(in.Photos))
		copy(photos, in.Photos)
	}
	return Subject{
		NNI:         n,
		DateOfBirth: dob,
		Breed:       in.Breed,
		Sex:         in.Sex,
		Species:     in.Species,
		Photos:      photos,
	}, true
}

func (in AdminInput) toRefs() AdministrativeRefs {
	return AdministrativeRefs{
		BreederID:    in.BreederID,
		HoldingID:    in.HoldingID,
		LocalAgentID: in.LocalAgentID,
	}
}

func slotInputFrom(s LineageSlot) SlotInput {
	return SlotInput{
		NNI:         string(s.NNI),
		DateOfBirth: formatDay(s.DateOfBirth),
		Breed:       s.Breed,
	}
}

func subjectInputFrom(s Subject) SubjectInput {
	var photos []string
	if len(s.Photos) > 0 {
		photos = make([]string, len(s.Photos))
		copy(photos, s.Photos)
	}
	return SubjectInput{
		NNI:         string(s.NNI),
		DateOfBirth: formatDay(s.DateOfBirth),
		Breed:       s.Breed,
		Sex:         s.Sex,
		Species:     s.Species,
		Photos:      photos,
	}
}

func adminInputFrom(a AdministrativeRefs) AdminInput {
	return AdminInput{
		BreederID:    a.BreederID,
		HoldingID:    a.HoldingID,
		LocalAgentID: a.LocalAgentID,
	}
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
