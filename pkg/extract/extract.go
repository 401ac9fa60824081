// Package extract maps a family record onto the flat values consumed by the
// renderers.
//
// Extraction never fails: absent properties become the type default
// (false for checkboxes, the empty string otherwise). The only input besides
// the record is the clock used by fields that print the current date.
package extract

import (
	"strings"
	"time"

	"github.com/gardar/formpdf/pkg/family"
	"github.com/gardar/formpdf/pkg/form"
)

// DateLayout is the French day/month/year pattern used for every date.
const DateLayout = "02/01/2006"

type resolver func(f *family.Family, now time.Time) form.Value

// Extract resolves every field of tmpl against rec using the current time.
func Extract(tmpl *form.Template, rec *family.Family) form.Data {
	return ExtractAt(tmpl, rec, time.Now())
}

// ExtractAt is Extract with an explicit clock.
func ExtractAt(tmpl *form.Template, rec *family.Family, now time.Time) form.Data {
	if rec == nil {
		rec = &family.Family{}
	}
	data := make(form.Data)
	for _, fd := range tmpl.Fields() {
		if _, done := data[fd.ID]; done {
			continue
		}
		v := form.Value{}
		if r, ok := resolvers[fd.ID]; ok {
			v = r(rec, now)
		}
		data[fd.ID] = withDefault(fd, v)
	}
	return data
}

func withDefault(fd form.FieldDescriptor, v form.Value) form.Value {
	if fd.Type == form.FieldCheckbox {
		if v.Kind == form.KindNone {
			return form.Bool(false)
		}
		return form.Bool(v.Checked())
	}
	if v.Kind == form.KindNone {
		return form.String("")
	}
	return v
}

// FormatDate renders d in DateLayout, the empty string for the zero date.
func FormatDate(d family.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// JoinList joins non-blank items with ", ".
func JoinList(items []string) string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return strings.Join(out, ", ")
}

func str(s string) form.Value { return form.String(strings.TrimSpace(s)) }

func student(get func(family.Student) form.Value) resolver {
	return func(f *family.Family, _ time.Time) form.Value { return get(f.FirstStudent()) }
}

func parent(i int, get func(family.Parent) form.Value) resolver {
	return func(f *family.Family, _ time.Time) form.Value { return get(f.ParentAt(i)) }
}

func record(get func(*family.Family) form.Value) resolver {
	return func(f *family.Family, _ time.Time) form.Value { return get(f) }
}

var resolvers = map[string]resolver{
	"child_lastName":  student(func(s family.Student) form.Value { return str(s.LastName) }),
	"child_firstName": student(func(s family.Student) form.Value { return str(s.FirstName) }),
	"child_birthDate": student(func(s family.Student) form.Value { return form.String(FormatDate(s.BirthDate)) }),
	"child_gender":    student(func(s family.Student) form.Value { return str(s.Gender) }),
	"child_grade":     student(func(s family.Student) form.Value { return str(s.Grade) }),
	"child_school":    student(func(s family.Student) form.Value { return str(s.School) }),

	"schooling_previousSchool": student(func(s family.Student) form.Value { return str(s.PreviousSchool) }),
	"schooling_siblings": record(func(f *family.Family) form.Value {
		var names []string
		for _, s := range f.Students[min(1, len(f.Students)):] {
			names = append(names, s.FullName())
		}
		return form.String(JoinList(names))
	}),

	"medical_allergies":    student(func(s family.Student) form.Value { return form.String(JoinList(s.Medical.Allergies)) }),
	"medical_treatments":   student(func(s family.Student) form.Value { return form.String(JoinList(s.Medical.Treatments)) }),
	"medical_doctorName":   student(func(s family.Student) form.Value { return str(s.Medical.DoctorName) }),
	"medical_doctorPhone":  student(func(s family.Student) form.Value { return str(s.Medical.DoctorPhone) }),
	"medical_vaccinations": student(func(s family.Student) form.Value { return form.Bool(s.Medical.VaccinationsUpToDate) }),
	"medical_pai":          student(func(s family.Student) form.Value { return form.Bool(s.Medical.PAI) }),
	"medical_diet":         student(func(s family.Student) form.Value { return str(s.Medical.Diet) }),

	"service_canteen":   student(func(s family.Student) form.Value { return form.Bool(s.Activities.Canteen) }),
	"service_morning":   student(func(s family.Student) form.Value { return form.Bool(s.Activities.MorningCare) }),
	"service_evening":   student(func(s family.Student) form.Value { return form.Bool(s.Activities.EveningCare) }),
	"service_wednesday": student(func(s family.Student) form.Value { return form.Bool(s.Activities.Wednesday) }),
	"service_notes":     student(func(s family.Student) form.Value { return str(s.Activities.Notes) }),

	"address_street":     record(func(f *family.Family) form.Value { return str(f.Address.Street) }),
	"address_postalCode": record(func(f *family.Family) form.Value { return str(f.Address.PostalCode) }),
	"address_city":       record(func(f *family.Family) form.Value { return str(f.Address.City) }),
	"address_country":    record(func(f *family.Family) form.Value { return str(f.Address.Country) }),

	"emergency_name":         record(func(f *family.Family) form.Value { return str(f.EmergencyContact().Name) }),
	"emergency_relationship": record(func(f *family.Family) form.Value { return str(f.EmergencyContact().Relationship) }),
	"emergency_phone":        record(func(f *family.Family) form.Value { return str(f.EmergencyContact().Phone) }),

	"auth_photo":      record(func(f *family.Family) form.Value { return form.Bool(f.Authorizations.Photo) }),
	"auth_leaveAlone": record(func(f *family.Family) form.Value { return form.Bool(f.Authorizations.LeaveAlone) }),
	"auth_pickups":    record(func(f *family.Family) form.Value { return form.String(JoinList(f.Authorizations.AuthorizedPickups)) }),

	"signature_place": record(func(f *family.Family) form.Value { return str(f.SignaturePlace) }),
	"signature_date": func(_ *family.Family, now time.Time) form.Value {
		return form.String(now.Format(DateLayout))
	},
}

func init() {
	for i := 0; i < 2; i++ {
		p := "parent" + string(rune('1'+i)) + "_"
		resolvers[p+"lastName"] = parent(i, func(p family.Parent) form.Value { return str(p.LastName) })
		resolvers[p+"firstName"] = parent(i, func(p family.Parent) form.Value { return str(p.FirstName) })
		resolvers[p+"relationship"] = parent(i, func(p family.Parent) form.Value { return form.String(p.Relationship()) })
		resolvers[p+"email"] = parent(i, func(p family.Parent) form.Value { return str(p.Email) })
		resolvers[p+"phone"] = parent(i, func(p family.Parent) form.Value { return str(p.Phone) })
		resolvers[p+"workPhone"] = parent(i, func(p family.Parent) form.Value { return str(p.WorkPhone) })
	}
}
