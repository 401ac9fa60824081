package form

import (
	"fmt"
	"sort"
)

var grades = []string{"PS", "MS", "GS", "CP", "CE1", "CE2", "CM1", "CM2"}

var childIdentity = Section{
	Title: "Enfant",
	Fields: []FieldDescriptor{
		{ID: "child_lastName", Label: "Nom", Type: FieldText, Required: true, MaxLength: 60},
		{ID: "child_firstName", Label: "Prénom", Type: FieldText, Required: true, MaxLength: 60},
		{ID: "child_birthDate", Label: "Date de naissance", Type: FieldDate, Required: true},
		{ID: "child_gender", Label: "Sexe", Type: FieldSelect, Options: []string{"F", "M"}},
		{ID: "child_grade", Label: "Classe", Type: FieldSelect, Options: grades},
		{ID: "child_school", Label: "École", Type: FieldText},
	},
}

func parentSection(n int) Section {
	p := fmt.Sprintf("parent%d_", n)
	return Section{
		Title: fmt.Sprintf("Responsable légal %d", n),
		Fields: []FieldDescriptor{
			{ID: p + "lastName", Label: "Nom", Type: FieldText, Required: n == 1},
			{ID: p + "firstName", Label: "Prénom", Type: FieldText, Required: n == 1},
			{ID: p + "relationship", Label: "Lien avec l'enfant", Type: FieldText},
			{ID: p + "email", Label: "Courriel", Type: FieldEmail},
			{ID: p + "phone", Label: "Téléphone", Type: FieldPhone, Required: n == 1},
			{ID: p + "workPhone", Label: "Téléphone professionnel", Type: FieldPhone},
		},
	}
}

var addressSection = Section{
	Title: "Adresse",
	Fields: []FieldDescriptor{
		{ID: "address_street", Label: "Adresse", Type: FieldText},
		{ID: "address_postalCode", Label: "Code postal", Type: FieldText, MaxLength: 10},
		{ID: "address_city", Label: "Ville", Type: FieldText},
		{ID: "address_country", Label: "Pays", Type: FieldText},
	},
}

var emergencySection = Section{
	Title: "Personne à prévenir en cas d'urgence",
	Fields: []FieldDescriptor{
		{ID: "emergency_name", Label: "Nom et prénom", Type: FieldText},
		{ID: "emergency_relationship", Label: "Lien", Type: FieldText},
		{ID: "emergency_phone", Label: "Téléphone", Type: FieldPhone},
	},
}

var signatureSection = Section{
	Title: "Signature",
	Fields: []FieldDescriptor{
		{ID: "signature_place", Label: "Fait à", Type: FieldText},
		{ID: "signature_date", Label: "Le", Type: FieldDate},
	},
}

// Periscolaire is the after-school care enrollment form.
var Periscolaire = Template{
	ID:    "periscolaire",
	Title: "Inscription aux activités périscolaires",
	Sections: []Section{
		childIdentity,
		parentSection(1),
		parentSection(2),
		addressSection,
		{
			Title: "Services demandés",
			Fields: []FieldDescriptor{
				{ID: "service_canteen", Label: "Restauration scolaire", Type: FieldCheckbox},
				{ID: "service_morning", Label: "Accueil du matin", Type: FieldCheckbox},
				{ID: "service_evening", Label: "Accueil du soir", Type: FieldCheckbox},
				{ID: "service_wednesday", Label: "Accueil du mercredi", Type: FieldCheckbox},
				{ID: "service_notes", Label: "Remarques", Type: FieldTextarea, MaxLength: 500},
			},
		},
		{
			Title: "Autorisations",
			Fields: []FieldDescriptor{
				{ID: "auth_photo", Label: "Droit à l'image", Type: FieldCheckbox},
				{ID: "auth_leaveAlone", Label: "Autorisé à partir seul", Type: FieldCheckbox},
				{ID: "auth_pickups", Label: "Personnes autorisées à récupérer l'enfant", Type: FieldTextarea},
			},
		},
		emergencySection,
		signatureSection,
	},
}

// FicheSanitaire is the medical liaison sheet.
var FicheSanitaire = Template{
	ID:    "fiche_sanitaire",
	Title: "Fiche sanitaire de liaison",
	Sections: []Section{
		childIdentity,
		{
			Title: "Informations médicales",
			Fields: []FieldDescriptor{
				{ID: "medical_vaccinations", Label: "Vaccinations à jour", Type: FieldCheckbox},
				{ID: "medical_pai", Label: "Projet d'accueil individualisé (PAI)", Type: FieldCheckbox},
				{ID: "medical_allergies", Label: "Allergies", Type: FieldTextarea},
				{ID: "medical_treatments", Label: "Traitements en cours", Type: FieldTextarea},
				{ID: "medical_diet", Label: "Régime alimentaire", Type: FieldSelect,
					Options: []string{"Standard", "Sans porc", "Sans viande", "Végétarien"}},
				{ID: "medical_doctorName", Label: "Médecin traitant", Type: FieldText},
				{ID: "medical_doctorPhone", Label: "Téléphone du médecin", Type: FieldPhone},
			},
		},
		parentSection(1),
		emergencySection,
		signatureSection,
	},
}

// Inscription is the school enrollment file.
var Inscription = Template{
	ID:    "inscription",
	Title: "Dossier d'inscription scolaire",
	Sections: []Section{
		childIdentity,
		parentSection(1),
		parentSection(2),
		addressSection,
		{
			Title: "Scolarité",
			Fields: []FieldDescriptor{
				{ID: "schooling_previousSchool", Label: "Établissement précédent", Type: FieldText},
				{ID: "schooling_siblings", Label: "Frères et sœurs scolarisés", Type: FieldTextarea},
			},
		},
		signatureSection,
	},
}

var catalog = map[string]*Template{
	Periscolaire.ID:   &Periscolaire,
	FicheSanitaire.ID: &FicheSanitaire,
	Inscription.ID:    &Inscription,
}

// Lookup returns the built-in template with the given ID.
func Lookup(id string) (*Template, error) {
	t, ok := catalog[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}
	return t, nil
}

// Catalog returns the built-in template IDs, sorted.
func Catalog() []string {
	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
