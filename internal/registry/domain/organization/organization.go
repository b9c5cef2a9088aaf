// Package organization normalizes a sparse registry reply into a fully
// defaulted organization record.
package organization

// Defaults substituted for absent values.
const (
	DefaultName        = "Не указано"
	DefaultField       = "Не указан"
	DefaultTitle       = "Не указана"
	DefaultStation     = "Неизвестно"
	DefaultDistance    = "?"
	DefaultCapitalUnit = ""
)

// MaxMetroStations is the number of nearby stations kept on a record.
const MaxMetroStations = 3

// Record is the normalized, display-ready organization. Every field holds a
// value; optional blocks are nil when the registry did not provide them.
type Record struct {
	ShortName      string
	TaxID          string
	RegistrationID string
	KPP            string
	Address        string
	Capital        *Capital
	Management     *Management
	Activities     []Activity
	MetroStations  []MetroStation
}

// Capital is the registered capital.
type Capital struct {
	Amount string
	Unit   string
}

// Management is the head of the organization.
type Management struct {
	PersonName string
	Title      string
}

// Activity is an economic activity of the organization.
type Activity struct {
	Name   string
	IsMain bool
}

// MetroStation is a station near the registered address.
type MetroStation struct {
	Name       string
	Line       string
	DistanceKM string
}

// MainActivity returns the first activity flagged as main, in list order.
func (r Record) MainActivity() (Activity, bool) {
	for _, a := range r.Activities {
		if a.IsMain {
			return a, true
		}
	}
	return Activity{}, false
}

// Outcome is the result of normalizing a registry reply.
type Outcome struct {
	Found  bool
	Record Record
}

// Found wraps a record in a positive outcome.
func Found(r Record) Outcome {
	return Outcome{Found: true, Record: r}
}

// NotFound is the outcome for a reply without suggestions.
func NotFound() Outcome {
	return Outcome{}
}
