package extract

import (
	"time"

	"github.com/gardar/formpdf/pkg/family"
	"github.com/gardar/formpdf/pkg/form"
)

// Paths flattens rec into dotted paths for the coordinate-overlay tables.
// Every path is always present, with the same defaults as Extract.
func Paths(rec *family.Family) map[string]form.Value {
	if rec == nil {
		rec = &family.Family{}
	}
	out := make(map[string]form.Value)
	set := func(path, s string) { out[path] = str(s) }
	flag := func(path string, b bool) { out[path] = form.Bool(b) }

	s := rec.FirstStudent()
	set("child.lastName", s.LastName)
	set("child.firstName", s.FirstName)
	set("child.fullName", s.FullName())
	set("child.birthDate", FormatDate(s.BirthDate))
	set("child.gender", s.Gender)
	set("child.grade", s.Grade)
	set("child.school", s.School)

	set("medical.allergies", JoinList(s.Medical.Allergies))
	set("medical.treatments", JoinList(s.Medical.Treatments))
	set("medical.doctorName", s.Medical.DoctorName)
	set("medical.doctorPhone", s.Medical.DoctorPhone)
	set("medical.diet", s.Medical.Diet)
	flag("medical.vaccinations", s.Medical.VaccinationsUpToDate)
	flag("medical.pai", s.Medical.PAI)

	flag("activities.canteen", s.Activities.Canteen)
	flag("activities.morningCare", s.Activities.MorningCare)
	flag("activities.eveningCare", s.Activities.EveningCare)
	flag("activities.wednesday", s.Activities.Wednesday)

	for _, role := range []struct {
		prefix string
		p      family.Parent
	}{
		{"mother", rec.Parent(family.Mother)},
		{"father", rec.Parent(family.Father)},
		{"guardian", rec.Parent(family.Guardian)},
	} {
		set(role.prefix+".lastName", role.p.LastName)
		set(role.prefix+".firstName", role.p.FirstName)
		set(role.prefix+".fullName", role.p.FullName())
		set(role.prefix+".email", role.p.Email)
		set(role.prefix+".phone", role.p.Phone)
		set(role.prefix+".workPhone", role.p.WorkPhone)
		set(role.prefix+".profession", role.p.Profession)
		set(role.prefix+".employer", role.p.Employer)
	}

	set("address.street", rec.Address.Street)
	set("address.postalCode", rec.Address.PostalCode)
	set("address.city", rec.Address.City)
	set("address.country", rec.Address.Country)

	ec := rec.EmergencyContact()
	set("emergency.name", ec.Name)
	set("emergency.relationship", ec.Relationship)
	set("emergency.phone", ec.Phone)

	flag("authorizations.photo", rec.Authorizations.Photo)
	flag("authorizations.leaveAlone", rec.Authorizations.LeaveAlone)
	set("authorizations.pickups", JoinList(rec.Authorizations.AuthorizedPickups))

	set("signature.place", rec.SignaturePlace)
	return out
}

// PathsAt is Paths plus signature.date, set to now.
func PathsAt(rec *family.Family, now time.Time) map[string]form.Value {
	out := Paths(rec)
	out["signature.date"] = form.String(now.Format(DateLayout))
	return out
}
