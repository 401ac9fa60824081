package extract

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/formpdf/pkg/family"
	"github.com/gardar/formpdf/pkg/form"
)

func martin() *family.Family {
	return &family.Family{
		Students: []family.Student{{
			FirstName: "Emma",
			LastName:  "Martin",
			BirthDate: family.NewDate(2016, time.September, 12),
			Grade:     "CE1",
			School:    "École X",
			Medical: family.MedicalInfo{
				Allergies: []string{"arachide", " ", "lactose"},
			},
			Activities: family.Activities{Canteen: true},
		}},
		Parents: []family.Parent{{
			Type:      family.Mother,
			FirstName: "Sophie",
			LastName:  "Martin",
			Email:     "s@x.fr",
			Phone:     "0612345678",
		}},
		Address: family.Address{
			Street:     "15 Avenue des Champs",
			City:       "Marseille",
			PostalCode: "13000",
			Country:    "France",
		},
	}
}

var fixedNow = time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)

func TestExtractPeriscolaire(t *testing.T) {
	data := ExtractAt(&form.Periscolaire, martin(), fixedNow)

	assert.Equal(t, form.String("Emma"), data["child_firstName"])
	assert.Equal(t, form.String("12/09/2016"), data["child_birthDate"])
	assert.Equal(t, form.String("CE1"), data["child_grade"])
	assert.Equal(t, form.String("Sophie"), data["parent1_firstName"])
	assert.Equal(t, form.String("Mère"), data["parent1_relationship"])
	assert.Equal(t, form.String("Marseille"), data["address_city"])
	assert.Equal(t, form.Bool(true), data["service_canteen"])
	assert.Equal(t, form.Bool(false), data["service_morning"])
	assert.Equal(t, form.String("14/10/2026"), data["signature_date"])

	// Every template field has a value.
	for _, fd := range form.Periscolaire.Fields() {
		_, ok := data[fd.ID]
		assert.True(t, ok, fd.ID)
	}
}

func TestExtractDefaults(t *testing.T) {
	data := ExtractAt(&form.FicheSanitaire, &family.Family{}, fixedNow)
	assert.Equal(t, form.String(""), data["child_firstName"])
	assert.Equal(t, form.String(""), data["child_birthDate"])
	assert.Equal(t, form.Bool(false), data["medical_vaccinations"])
	assert.Equal(t, form.String(""), data["parent1_email"])

	nilData := ExtractAt(&form.FicheSanitaire, nil, fixedNow)
	assert.Equal(t, data, nilData)
}

func TestExtractUnknownFields(t *testing.T) {
	tmpl := &form.Template{ID: "custom", Sections: []form.Section{{Fields: []form.FieldDescriptor{
		{ID: "unknown_text", Type: form.FieldText},
		{ID: "unknown_box", Type: form.FieldCheckbox},
	}}}}
	data := ExtractAt(tmpl, martin(), fixedNow)
	if diff := cmp.Diff(form.Data{"unknown_text": form.String(""), "unknown_box": form.Bool(false)}, data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractJoinsLists(t *testing.T) {
	data := ExtractAt(&form.FicheSanitaire, martin(), fixedNow)
	assert.Equal(t, form.String("arachide, lactose"), data["medical_allergies"])
}

func TestExtractIdempotent(t *testing.T) {
	rec := martin()
	for _, id := range form.Catalog() {
		tmpl, err := form.Lookup(id)
		require.NoError(t, err)
		first := ExtractAt(tmpl, rec, fixedNow)
		second := ExtractAt(tmpl, rec, fixedNow)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("%s: extraction not idempotent (-first +second):\n%s", id, diff)
		}
	}
}

func TestExtractSiblings(t *testing.T) {
	rec := martin()
	rec.Students = append(rec.Students,
		family.Student{FirstName: "Lucas", LastName: "Martin"},
		family.Student{FirstName: "Jade", LastName: "Martin"})
	data := ExtractAt(&form.Inscription, rec, fixedNow)
	assert.Equal(t, form.String("Lucas Martin, Jade Martin"), data["schooling_siblings"])
}

func TestPaths(t *testing.T) {
	paths := Paths(martin())
	assert.Equal(t, form.String("Emma"), paths["child.firstName"])
	assert.Equal(t, form.String("12/09/2016"), paths["child.birthDate"])
	assert.Equal(t, form.String("s@x.fr"), paths["mother.email"])
	assert.Equal(t, form.String(""), paths["father.email"])
	assert.Equal(t, form.Bool(true), paths["activities.canteen"])
	assert.Equal(t, form.String("arachide, lactose"), paths["medical.allergies"])

	empty := Paths(nil)
	assert.Len(t, empty, len(paths))
}

func TestPathsAt(t *testing.T) {
	paths := PathsAt(martin(), fixedNow)
	assert.Equal(t, form.String("14/10/2026"), paths["signature.date"])
	assert.Equal(t, form.String("Emma Martin"), paths["child.fullName"])

	_, ok := Paths(martin())["signature.date"]
	assert.False(t, ok)
}
