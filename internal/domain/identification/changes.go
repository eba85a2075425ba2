package identification

import "livestock-registry/internal/domain/nni"

// Punteros para PATCH real: nil = no tocar.

type SubjectPatch struct {
	NNI         *string   `json:"nni"`
	DateOfBirth *string   `json:"date_of_birth"`
	Breed       *Breed    `json:"breed"`
	Sex         *Sex      `json:"sex"`
	Species     *Species  `json:"species_type"`
	Photos      *[]string `json:"photos"`
}

type SlotPatch struct {
	NNI         *string `json:"nni"`
	DateOfBirth *string `json:"date_of_birth"`
	Breed       *Breed  `json:"breed"`
}

type LineagePatch struct {
	Mother              *SlotPatch `json:"mother"`
	MaternalGrandfather *SlotPatch `json:"maternal_grandfather"`
	Father              *SlotPatch `json:"father"`
	PaternalGrandfather *SlotPatch `json:"paternal_grandfather"`
	PaternalGrandmother *SlotPatch `json:"paternal_grandmother"`
}

func (l LineagePatch) slot(r Role) *SlotPatch {
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
		return nil
	}
}

type AdminPatch struct {
	BreederID    *string `json:"breeder_id"`
	HoldingID    *string `json:"holding_id"`
	LocalAgentID *string `json:"local_agent_id"`
}

// UpdateInput es el change-set explícito de un update parcial: un patch
// opcional por grupo (subject, cada ancestro, refs administrativas).
type UpdateInput struct {
	Subject *SubjectPatch `json:"subject"`
	Lineage LineagePatch  `json:"lineage"`
	Admin   *AdminPatch   `json:"administrative_refs"`
}

// ChangeSet contiene solo los grupos cuyo valor difiere del record actual,
// ya mergeados y normalizados pero todavía sin validar.
type ChangeSet struct {
	Subject *SubjectInput
	Lineage map[Role]SlotInput
	Admin   *AdminInput
}

func (c ChangeSet) Empty() bool {
	return c.Subject == nil && len(c.Lineage) == 0 && c.Admin == nil
}

// SubjectNNIChanged indica si el update toca el identificador del sujeto
// (solo en ese caso hay que volver a chequear unicidad).
func (c ChangeSet) SubjectNNIChanged(current Record) bool {
	if c.Subject == nil {
		return false
	}
	n, err := nni.Normalize(c.Subject.NNI)
	return err != nil || n != current.Subject.NNI
}

// Changes calcula el diff entre el record guardado y el patch. Un grupo
// presente pero con el mismo valor (tras normalizar) no cuenta como cambio.
func Changes(current Record, in UpdateInput) ChangeSet {
	var cs ChangeSet

	if in.Subject != nil {
		merged := applySubjectPatch(subjectInputFrom(current.Subject), *in.Subject).trimmed()
		if s, ok := merged.toSubject(); !ok || !s.Equal(current.Subject) {
			cs.Subject = &merged
		}
	}

	for _, role := range Roles {
		p := in.Lineage.slot(role)
		if p == nil {
			continue
		}
		stored := current.Lineage.Slot(role)
		merged := applySlotPatch(slotInputFrom(stored), *p).trimmed()
		if s, ok := merged.toSlot(); !ok || !s.Equal(stored) {
			if cs.Lineage == nil {
				cs.Lineage = map[Role]SlotInput{}
			}
			cs.Lineage[role] = merged
		}
	}

	if in.Admin != nil {
		merged := applyAdminPatch(adminInputFrom(current.Admin), *in.Admin).trimmed()
		if merged.toRefs() != current.Admin {
			cs.Admin = &merged
		}
	}

	return cs
}

func applySubjectPatch(base SubjectInput, p SubjectPatch) SubjectInput {
	if p.NNI != nil {
		base.NNI = *p.NNI
	}
	if p.DateOfBirth != nil {
		base.DateOfBirth = *p.DateOfBirth
	}
	if p.Breed != nil {
		base.Breed = *p.Breed
	}
	if p.Sex != nil {
		base.Sex = *p.Sex
	}
	if p.Species != nil {
		base.Species = *p.Species
	}
	if p.Photos != nil {
		photos := make([]string, len(*p.Photos))
		copy(photos, *p.Photos)
		base.Photos = photos
	}
	return base
}

func applySlotPatch(base SlotInput, p SlotPatch) SlotInput {
	if p.NNI != nil {
		base.NNI = *p.NNI
	}
	if p.DateOfBirth != nil {
		base.DateOfBirth = *p.DateOfBirth
	}
	if p.Breed != nil {
		base.Breed = *p.Breed
	}
	return base
}

func applyAdminPatch(base AdminInput, p AdminPatch) AdminInput {
	if p.BreederID != nil {
		base.BreederID = *p.BreederID
	}
	if p.HoldingID != nil {
		base.HoldingID = *p.HoldingID
	}
	if p.LocalAgentID != nil {
		base.LocalAgentID = *p.LocalAgentID
	}
	return base
}
