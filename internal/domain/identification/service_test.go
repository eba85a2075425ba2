package identification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"livestock-registry/internal/domain/nni"
	"livestock-registry/internal/domain/query"
	"livestock-registry/internal/domain/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	mu     sync.Mutex
	byID   map[string]Record
	byNNI  map[nni.NNI]string
	writes int
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Record{}, byNNI: map[nni.NNI]string{}}
}

func (r *testRepo) Create(ctx context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byNNI[rec.Subject.NNI]; ok {
		return ErrDuplicateNNI
	}
	r.byID[rec.ID] = rec.Clone()
	r.byNNI[rec.Subject.NNI] = rec.ID
	r.writes++
	return nil
}

func (r *testRepo) Update(ctx context.Context, id string, fn UpdateFunc) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.byID[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	rec, changed, err := fn(prev.Clone())
	if err != nil {
		return Record{}, err
	}
	if !changed {
		return prev.Clone(), nil
	}
	if owner, ok := r.byNNI[rec.Subject.NNI]; ok && owner != id {
		return Record{}, ErrDuplicateNNI
	}
	delete(r.byNNI, prev.Subject.NNI)
	r.byNNI[rec.Subject.NNI] = id
	r.byID[id] = rec.Clone()
	r.writes++
	return rec.Clone(), nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byNNI, rec.Subject.NNI)
	r.writes++
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec.Clone(), nil
}

func (r *testRepo) GetByNNI(ctx context.Context, n nni.NNI) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byNNI[n]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *testRepo) Search(ctx context.Context, f Filter, p query.Page) (query.Result[Record], error) {
	out := make([]Record, 0)
	for _, rec := range r.byID {
		if f.Matches(rec) {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject.NNI < out[j].Subject.NNI })
	return query.Paginate(out, p), nil
}

// -------------------------
// Helpers
// -------------------------

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestService(repo Repository) *Service {
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return testNow }
	return svc
}

func slot(n, dob string, b Breed) SlotInput {
	return SlotInput{NNI: n, DateOfBirth: dob, Breed: b}
}

func validInput(subjectNNI string) CreateInput {
	return CreateInput{
		Subject: SubjectInput{
			NNI:         subjectNNI,
			DateOfBirth: "2023-03-10",
			Breed:       BreedHolstein,
			Sex:         SexFemale,
			Species:     SpeciesBovine,
			Photos:      []string{"s3://photos/front.jpg"},
		},
		Lineage: LineageInput{
			Mother:              slot("FR0000000001", "2019-01-01", BreedHolstein),
			MaternalGrandfather: slot("FR0000000002", "2015-01-01", BreedHolstein),
			Father:              slot("FR0000000003", "2018-01-01", BreedMontbeliarde),
			PaternalGrandfather: slot("FR0000000004", "2014-01-01", BreedMontbeliarde),
			PaternalGrandmother: slot("FR0000000005", "2014-06-01", BreedNormande),
		},
		Admin: AdminInput{BreederID: "B-1", HoldingID: "H-1", LocalAgentID: "A-1"},
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	fields, ok := validation.FieldErrors(err)
	require.True(t, ok, "expected validation error, got %v", err)
	return fields
}

func strPtr(s string) *string { return &s }

// -------------------------
// Tests
// -------------------------

func TestCreate_NormalizesAndStamps(t *testing.T) {
	svc := newTestService(newTestRepo())

	in := validInput(" fr1234567890 ")
	in.Lineage.Mother.NNI = "fr0000000001"

	rec, err := svc.Create(context.Background(), " agent-1 ", in)
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, nni.NNI("FR1234567890"), rec.Subject.NNI)
	assert.Equal(t, nni.NNI("FR0000000001"), rec.Lineage.Mother.NNI)
	assert.Equal(t, "agent-1", rec.CreatedBy)
	assert.Equal(t, testNow, rec.CreatedAt)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
	assert.Equal(t, time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC), rec.Subject.DateOfBirth)
}

func TestCreate_DuplicateNNI(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, "agent-1", validInput("FR1234567890"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, "agent-1", validInput(" fr1234567890 "))
	require.ErrorIs(t, err, ErrDuplicateNNI)
}

func TestCreate_CollectsAllFieldErrors(t *testing.T) {
	svc := newTestService(newTestRepo())

	in := validInput("FR12345")
	in.Subject.Sex = "unknown"
	in.Lineage.Father.DateOfBirth = ""
	in.Lineage.PaternalGrandmother.Breed = "unicorn"
	in.Admin.HoldingID = "  "

	_, err := svc.Create(context.Background(), "agent-1", in)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, nni.ErrInvalidFormat)

	fields := fieldsOf(t, err)
	assert.Equal(t, nni.ErrInvalidFormat.Error(), fields["subject.nni"])
	assert.Equal(t, "must be one of: male, female", fields["subject.sex"])
	assert.Equal(t, "required", fields["lineage.father.date_of_birth"])
	assert.Equal(t, "unknown breed", fields["lineage.paternal_grandmother.breed"])
	assert.Equal(t, "required", fields["administrative_refs.holding_id"])
	assert.Len(t, fields, 5)
}

func TestCreate_RejectsFutureBirth(t *testing.T) {
	svc := newTestService(newTestRepo())

	in := validInput("FR1234567890")
	in.Subject.DateOfBirth = "2024-06-02"

	_, err := svc.Create(context.Background(), "agent-1", in)
	require.ErrorIs(t, err, ErrFutureDate)
	assert.Contains(t, fieldsOf(t, err), "subject.date_of_birth")

	// el mismo día sí es válido
	in.Subject.DateOfBirth = "2024-06-01"
	_, err = svc.Create(context.Background(), "agent-1", in)
	require.NoError(t, err)
}

func TestCreate_AncestorCannotBeSubject(t *testing.T) {
	svc := newTestService(newTestRepo())

	in := validInput("FR1234567890")
	in.Lineage.Father.NNI = "fr1234567890"

	_, err := svc.Create(context.Background(), "agent-1", in)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "must differ from subject nni", fieldsOf(t, err)["lineage.father.nni"])
}

func TestCreate_RequiresCreatedBy(t *testing.T) {
	svc := newTestService(newTestRepo())

	_, err := svc.Create(context.Background(), " ", validInput("FR1234567890"))
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, fieldsOf(t, err), "created_by")
}

func TestUpdate_EmptyChangeSetIsNoop(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, "agent-1", validInput("FR1234567890"))
	require.NoError(t, err)
	writes := repo.writes

	svc.now = func() time.Time { return testNow.Add(time.Hour) }

	// Mismos valores, distinto formato: no cuenta como cambio.
	same := UpdateInput{
		Subject: &SubjectPatch{NNI: strPtr(" fr1234567890 ")},
		Lineage: LineagePatch{Mother: &SlotPatch{DateOfBirth: strPtr("2019-01-01")}},
	}

	got, err := svc.Update(ctx, created.ID, same)
	require.NoError(t, err)
	assert.Equal(t, created.UpdatedAt, got.UpdatedAt)
	assert.Equal(t, writes, repo.writes)

	got, err = svc.Update(ctx, created.ID, UpdateInput{})
	require.NoError(t, err)
	assert.Equal(t, created.UpdatedAt, got.UpdatedAt)
	assert.Equal(t, writes, repo.writes)
}

func TestUpdate_BreedOnly(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, "agent-1", validInput("FR1234567890"))
	require.NoError(t, err)

	svc.now = func() time.Time { return testNow.Add(time.Minute) }

	breed := BreedMontbeliarde
	got, err := svc.Update(ctx, created.ID, UpdateInput{Subject: &SubjectPatch{Breed: &breed}})
	require.NoError(t, err)

	assert.Equal(t, BreedMontbeliarde, got.Subject.Breed)
	assert.Equal(t, created.Lineage, got.Lineage)
	assert.Equal(t, created.Admin, got.Admin)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	stored, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, BreedMontbeliarde, stored.Subject.Breed)
}

func TestUpdate_UpdatedAtAdvancesWithFrozenClock(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, "agent-1", validInput("FR1234567890"))
	require.NoError(t, err)

	got, err := svc.Update(ctx, created.ID, UpdateInput{Admin: &AdminPatch{HoldingID: strPtr("H-2")}})
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(created.UpdatedAt))
	assert.Equal(t, "H-2", got.Admin.HoldingID)
}

func TestUpdate_ValidatesOnlyChangedGroups(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, "agent-1", validInput("FR1234567890"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, UpdateInput{
		Lineage: LineagePatch{Father: &SlotPatch{NNI: strPtr("nope")}},
	})
	require.ErrorIs(t, err, nni.ErrInvalidFormat)

	fields := fieldsOf(t, err)
	assert.Len(t, fields, 1)
	assert.Contains(t, fields, "lineage.father.nni")
}

func TestUpdate_SubjectNNICollision(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, "agent-1", validInput("FR1111111111"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, "agent-1", validInput("FR2222222222"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, second.ID, UpdateInput{Subject: &SubjectPatch{NNI: strPtr("fr1111111111")}})
	require.ErrorIs(t, err, ErrDuplicateNNI)
}

func TestUpdate_SubjectNNIAgainstStoredAncestors(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, "agent-1", validInput("FR1234567890"))
	require.NoError(t, err)

	// el nuevo NNI del sujeto coincide con la madre guardada
	_, err = svc.Update(ctx, created.ID, UpdateInput{Subject: &SubjectPatch{NNI: strPtr("FR0000000001")}})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, fieldsOf(t, err), "lineage.mother.nni")
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService(newTestRepo())

	_, err := svc.Update(context.Background(), "missing", UpdateInput{})
	require.ErrorIs(t, err, ErrNotFound)
}

// Dos PATCH concurrentes a grupos distintos: los dos cambios quedan.
func TestUpdate_ConcurrentGroupUpdatesKeepBoth(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		created, err := svc.Create(ctx, "agent-1", validInput(fmt.Sprintf("FR99%08d", i)))
		require.NoError(t, err)

		breed := BreedNormande
		patches := []UpdateInput{
			{Subject: &SubjectPatch{Breed: &breed}},
			{Admin: &AdminPatch{HoldingID: strPtr("H-2")}},
		}

		var wg sync.WaitGroup
		for _, p := range patches {
			wg.Add(1)
			go func(p UpdateInput) {
				defer wg.Done()
				_, err := svc.Update(ctx, created.ID, p)
				assert.NoError(t, err)
			}(p)
		}
		wg.Wait()

		got, err := svc.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, BreedNormande, got.Subject.Breed)
		assert.Equal(t, "H-2", got.Admin.HoldingID)
		assert.True(t, got.UpdatedAt.After(created.UpdatedAt))
	}
}

// El diff se calcula contra el record vigente al escribir, no contra una
// lectura previa: un patch que ya quedó aplicado por otro no escribe.
func TestUpdate_DiffAgainstCurrentRecord(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, "agent-1", validInput("FR1234567890"))
	require.NoError(t, err)

	patch := UpdateInput{Admin: &AdminPatch{HoldingID: strPtr("H-2")}}
	_, cs, err := svc.PrepareUpdate(ctx, created.ID, patch)
	require.NoError(t, err)
	require.NotNil(t, cs.Admin)

	first, err := svc.Update(ctx, created.ID, patch)
	require.NoError(t, err)
	writes := repo.writes

	again, err := svc.Update(ctx, created.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, first.UpdatedAt, again.UpdatedAt)
	assert.Equal(t, writes, repo.writes)
}

func TestPrepareUpdate(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, "agent-1", validInput("FR1234567890"))
	require.NoError(t, err)

	_, cs, err := svc.PrepareUpdate(ctx, created.ID, UpdateInput{Admin: &AdminPatch{BreederID: strPtr(" B-1 ")}})
	require.NoError(t, err)
	assert.True(t, cs.Empty())

	_, _, err = svc.PrepareUpdate(ctx, created.ID, UpdateInput{Admin: &AdminPatch{BreederID: strPtr(" ")}})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, fieldsOf(t, err), "administrative_refs.breeder_id")

	_, _, err = svc.PrepareUpdate(ctx, "missing", UpdateInput{})
	require.ErrorIs(t, err, ErrNotFound)

	stored, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, stored)
}

func TestValidateCreate_NoWrite(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	require.NoError(t, svc.ValidateCreate("agent-1", validInput(" fr1234567890 ")))

	in := validInput("bad-nni")
	in.Admin.BreederID = ""
	err := svc.ValidateCreate("agent-1", in)
	require.ErrorIs(t, err, ErrInvalidInput)
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "subject.nni")
	assert.Contains(t, fields, "administrative_refs.breeder_id")
	assert.Zero(t, repo.writes)
}

func TestDelete_FreesNNI(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, "agent-1", validInput("FR1234567890"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(ctx, "agent-1", validInput("FR1234567890"))
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
}

func TestGetByNNI(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, "agent-1", validInput("FR1234567890"))
	require.NoError(t, err)

	got, err := svc.GetByNNI(ctx, " fr1234567890")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetByNNI(ctx, "FR0987654321")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetByNNI(ctx, "bad")
	require.ErrorIs(t, err, nni.ErrInvalidFormat)
}

func TestSearch_FiltersAndPages(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	for i, n := range []string{"FR1000000001", "FR1000000002", "MA2000000001"} {
		in := validInput(n)
		if i == 2 {
			in.Subject.Breed = BreedOulmesZaer
			in.Subject.DateOfBirth = "2022-01-15"
		}
		_, err := svc.Create(ctx, "agent-1", in)
		require.NoError(t, err)
	}

	res, err := svc.Search(ctx, Filter{NNI: "fr1", NNIMatch: query.MatchContains}, query.Page{Number: 1, Size: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 2, res.TotalPages)
	require.Len(t, res.Items, 1)
	assert.Equal(t, nni.NNI("FR1000000001"), res.Items[0].Subject.NNI)

	res, err = svc.Search(ctx, Filter{Breed: BreedOulmesZaer}, query.Page{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, nni.NNI("MA2000000001"), res.Items[0].Subject.NNI)

	from := time.Date(2022, 1, 15, 0, 0, 0, 0, time.UTC)
	res, err = svc.Search(ctx, Filter{BornFrom: &from, BornTo: &from}, query.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	res, err = svc.Search(ctx, Filter{NNI: "FR1000000001"}, query.Page{Number: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Empty(t, res.Items)
}

func TestExport_ColumnOrder(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, "agent-1", validInput("FR1234567890"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, Filter{}, query.FormatTSV, &buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	header := strings.Split(lines[0], "\t")
	assert.Equal(t, ExportColumns, header)
	assert.Equal(t, []string{"id", "nni", "date_of_birth"}, header[:3])
	assert.Equal(t, "mother_nni", header[6])
	assert.Equal(t, "updated_at", header[len(header)-1])

	row := strings.Split(lines[1], "\t")
	require.Len(t, row, len(header))
	assert.Equal(t, created.ID, row[0])
	assert.Equal(t, "FR1234567890", row[1])
	assert.Equal(t, "FR0000000001", row[6])
}

func TestChanges_ReportsOnlyDifferentGroups(t *testing.T) {
	svc := newTestService(newTestRepo())

	created, err := svc.Create(context.Background(), "agent-1", validInput("FR1234567890"))
	require.NoError(t, err)

	cs := Changes(created, UpdateInput{
		Subject: &SubjectPatch{NNI: strPtr("FR1234567890")},
		Lineage: LineagePatch{
			Mother: &SlotPatch{Breed: func() *Breed { b := BreedHolstein; return &b }()},
			Father: &SlotPatch{Breed: func() *Breed { b := BreedCharolaise; return &b }()},
		},
		Admin: &AdminPatch{BreederID: strPtr("B-1")},
	})

	assert.Nil(t, cs.Subject)
	assert.Nil(t, cs.Admin)
	require.Len(t, cs.Lineage, 1)
	assert.Equal(t, BreedCharolaise, cs.Lineage[RoleFather].Breed)
	assert.False(t, cs.SubjectNNIChanged(created))
}

func TestRepoErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	svc := newTestService(failingRepo{testRepo: newTestRepo(), err: boom})

	_, err := svc.Create(context.Background(), "agent-1", validInput("FR1234567890"))
	require.ErrorIs(t, err, boom)
}

type failingRepo struct {
	*testRepo
	err error
}

func (r failingRepo) Create(ctx context.Context, rec Record) error { return r.err }
