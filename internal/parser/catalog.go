package parser

import "github.com/salary-parser/internal/normalizer"

// FieldKind selects the normalizer applied to a field.
type FieldKind int

const (
	KindText FieldKind = iota
	KindAge
	KindExperience
	KindInteger
	KindMoney
	KindBool
	KindFamily
	KindCompanySize
	KindWorkArrangement
	KindCity
	KindDistance
)

var kindNames = map[FieldKind]string{
	KindText:            "text",
	KindAge:             "age",
	KindExperience:      "experience",
	KindInteger:         "integer",
	KindMoney:           "money",
	KindBool:            "boolean",
	KindFamily:          "family",
	KindCompanySize:     "company_size",
	KindWorkArrangement: "work_arrangement",
	KindCity:            "city",
	KindDistance:        "distance",
}

func (k FieldKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// FamilyLocation marks unresolved city names in unrecognised reports.
const FamilyLocation = "location"

// FieldSpec tells how one field is normalized. Min and Max bound integer
// and money kinds.
type FieldSpec struct {
	Kind   FieldKind
	Family string
	Min    int
	Max    int
}

const maxMoney = 10_000_000

var catalog = map[string]FieldSpec{
	"age":              {Kind: KindAge},
	"education":        {Kind: KindFamily, Family: normalizer.FamilyEducation},
	"work_experience":  {Kind: KindExperience},
	"civil_status":     {Kind: KindFamily, Family: normalizer.FamilyCivilStatus},
	"dependents":       {Kind: KindInteger, Min: 0, Max: 20},
	"sector":           {Kind: KindFamily, Family: normalizer.FamilySector},
	"company_size":     {Kind: KindCompanySize, Family: normalizer.FamilyCompanySize},
	"multinational":    {Kind: KindBool, Family: normalizer.FamilyYesNo},
	"job_title":        {Kind: KindText},
	"job_description":  {Kind: KindText},
	"seniority":        {Kind: KindText},
	"contract_type":    {Kind: KindFamily, Family: normalizer.FamilyContractType},
	"official_hours":   {Kind: KindInteger, Min: 1, Max: 80},
	"real_hours":       {Kind: KindInteger, Min: 1, Max: 120},
	"shift_work":       {Kind: KindBool, Family: normalizer.FamilyYesNo},
	"on_call":          {Kind: KindBool, Family: normalizer.FamilyYesNo},
	"vacation_days":    {Kind: KindInteger, Min: 0, Max: 100},
	"gross_salary":     {Kind: KindMoney, Min: 1, Max: maxMoney},
	"net_salary":       {Kind: KindMoney, Min: 1, Max: maxMoney},
	"net_compensation": {Kind: KindMoney, Min: 0, Max: maxMoney},
	"company_car":      {Kind: KindBool, Family: normalizer.FamilyYesNo},
	"thirteenth_month": {Kind: KindBool, Family: normalizer.FamilyYesNo},
	"meal_vouchers":    {Kind: KindMoney, Min: 0, Max: 50},
	"eco_cheques":      {Kind: KindBool, Family: normalizer.FamilyYesNo},
	"group_insurance":  {Kind: KindBool, Family: normalizer.FamilyYesNo},
	"other_benefits":   {Kind: KindText},
	"work_city":        {Kind: KindCity, Family: FamilyLocation},
	"commute_distance": {Kind: KindDistance},
	"commute_mode":     {Kind: KindText},
	"work_arrangement": {Kind: KindWorkArrangement, Family: normalizer.FamilyWorkArrangement},
}

// FieldFor tells how a field is normalized. Unknown names are free text.
func FieldFor(name string) FieldSpec {
	if spec, ok := catalog[name]; ok {
		return spec
	}
	return FieldSpec{Kind: KindText}
}

// Catalog lists the known field names and their kinds.
func Catalog() map[string]string {
	out := make(map[string]string, len(catalog))
	for name, spec := range catalog {
		out[name] = spec.Kind.String()
	}
	return out
}
