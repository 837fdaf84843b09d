package parser

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/salary-parser/app/models"
	"github.com/salary-parser/internal/extractor"
	"github.com/salary-parser/internal/location"
	"github.com/salary-parser/internal/normalizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullPost = `**PERSONALIA**
1. Age: 29
2. Education: Master in engineering
3. Work experience: 5 years
4. Civil status: Married
5. Dependent people/children: 2

**EMPLOYER PROFILE**
1. Sector/Industry: Pharma
2. Amount of employees: 5000+
3. Multinational? Yes

**CONTRACT & CONDITIONS**
1. Current job title: **Data engineer**
2. Type of contract: Permanent
3. Official hours/week: 38
4. Average real hours/week: 40
5. Shift or night work? No
6. Vacation days/year: 32

**SALARY**
1. Gross salary/month: € 4.250
2. Net salary/month: 2.800
3. Netto compensation: 150
4. Company car: Yes
5. 13th month: Yes
6. Meal vouchers: €8
7. Ecocheques: Yes
8. Group insurance: Yes

**MOBILITY**
1. City/region of work: Brussel
2. Distance home-work: 35 min (20km)
3. How do you commute? Train

**OTHER**
1. How many home office days per week? 2 days
`

func newTestParser(t *testing.T, withResolver bool) *PostParser {
	t.Helper()
	reg, err := extractor.LoadRegistry("", nil)
	require.NoError(t, err)
	tables, err := normalizer.LoadTables()
	require.NoError(t, err)

	var resolver *location.Resolver
	if withResolver {
		resolver, err = location.NewResolver(location.Options{}, nil, nil)
		require.NoError(t, err)
	}
	return NewPostParser(reg, normalizer.NewNormalizer(tables, normalizer.DefaultOptions(), nil), resolver, Options{}, nil)
}

func TestParsePost_FullTemplate(t *testing.T) {
	p := newTestParser(t, true)

	res, err := p.ParsePost(context.Background(), "besalary", fullPost)
	require.NoError(t, err)

	want := map[string]models.Value{
		"age":              models.Integer(29),
		"education":        models.String("master"),
		"work_experience":  models.Integer(5),
		"civil_status":     models.String("married"),
		"dependents":       models.Integer(2),
		"sector":           models.String("pharma"),
		"company_size":     models.String("enterprise"),
		"multinational":    models.Boolean(true),
		"job_title":        models.String("Data engineer"),
		"job_description":  models.Null(),
		"seniority":        models.Null(),
		"contract_type":    models.String("permanent"),
		"official_hours":   models.Integer(38),
		"real_hours":       models.Integer(40),
		"shift_work":       models.Boolean(false),
		"on_call":          models.Null(),
		"vacation_days":    models.Integer(32),
		"gross_salary":     models.Integer(4250),
		"net_salary":       models.Integer(2800),
		"net_compensation": models.Integer(150),
		"company_car":      models.Boolean(true),
		"thirteenth_month": models.Boolean(true),
		"meal_vouchers":    models.Integer(8),
		"eco_cheques":      models.Boolean(true),
		"group_insurance":  models.Boolean(true),
		"other_benefits":   models.Null(),
		"work_city":        models.String("Brussels"),
		"commute_distance": models.String("20"),
		"commute_mode":     models.String("Train"),
		"work_arrangement": models.String("hybrid"),
	}

	src, err := p.Registry().Get("besalary")
	require.NoError(t, err)
	require.Len(t, res.Record.Fields, len(src.Fields))
	for i, f := range res.Record.Fields {
		assert.Equal(t, src.Fields[i].Name, f.Name)
		assert.Equal(t, want[f.Name], f.Value, f.Name)
	}

	assert.Equal(t, models.StatusParsed, res.Status)
	assert.Empty(t, res.Unrecognized)
	assert.Empty(t, res.MissingSections)
	assert.Equal(t, "BE", res.Country)
	assert.Equal(t, "EUR", res.Currency)
	assert.Equal(t, p.TablesVersion(), res.TablesVersion)
	assert.Equal(t, p.Fingerprint("besalary", fullPost), res.Fingerprint)
}

func TestParsePost_ByteIdentical(t *testing.T) {
	p := newTestParser(t, true)

	a, err := p.ParsePost(context.Background(), "besalary", fullPost)
	require.NoError(t, err)
	b, err := p.ParsePost(context.Background(), " BESalary ", fullPost)
	require.NoError(t, err)

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, string(ja), string(jb))
}

func TestFingerprint_CoversTuning(t *testing.T) {
	reg, err := extractor.LoadRegistry("", nil)
	require.NoError(t, err)
	tables, err := normalizer.LoadTables()
	require.NoError(t, err)
	build := func(no normalizer.Options, opts Options) *PostParser {
		return NewPostParser(reg, normalizer.NewNormalizer(tables, no, nil), nil, opts, nil)
	}

	base := build(normalizer.DefaultOptions(), Options{})
	same := build(normalizer.DefaultOptions(), Options{})
	assert.Equal(t, base.Fingerprint("besalary", fullPost), same.Fingerprint("besalary", fullPost))
	assert.Equal(t, base.Fingerprint("besalary", fullPost), base.Fingerprint(" BESalary ", fullPost))

	variants := map[string]*PostParser{
		"threshold": build(normalizer.Options{Threshold: 0.9, MinSubstringLen: 3}, Options{}),
		"substring": build(normalizer.Options{Threshold: 0.8, MinSubstringLen: 4}, Options{}),
		"age":       build(normalizer.DefaultOptions(), Options{MinAge: 18}),
		"distance":  build(normalizer.DefaultOptions(), Options{MaxDistance: 200}),
	}
	for name, p := range variants {
		assert.NotEqual(t, base.Fingerprint("besalary", fullPost), p.Fingerprint("besalary", fullPost), name)
		assert.NotEqual(t, base.Settings(), p.Settings(), name)
	}

	res, err := variants["threshold"].ParsePost(context.Background(), "besalary", fullPost)
	require.NoError(t, err)
	assert.Equal(t, variants["threshold"].Fingerprint("besalary", fullPost), res.Fingerprint)
	assert.Equal(t, base.TablesVersion(), res.TablesVersion)
}

func TestParsePost_Unrecognized(t *testing.T) {
	p := newTestParser(t, true)

	body := "1. Age: 150\n2. Education: underwater basket weaving\n3. Civil status: it's complicated\n" +
		"4. City/region of work: Atlantis\n5. Gross salary/month: 3900"
	res, err := p.ParsePost(context.Background(), "besalary", body)
	require.NoError(t, err)

	age, _ := res.Record.Get("age")
	assert.True(t, age.IsNull())
	edu, _ := res.Record.Get("education")
	assert.True(t, edu.IsNull())
	city, _ := res.Record.Get("work_city")
	assert.Equal(t, models.String("Atlantis"), city)
	gross, _ := res.Record.Get("gross_salary")
	assert.Equal(t, models.Integer(3900), gross)

	fields := map[string]string{}
	for _, u := range res.Unrecognized {
		fields[u.Field] = u.Raw
	}
	assert.Equal(t, map[string]string{
		"age":          "150",
		"education":    "underwater basket weaving",
		"civil_status": "it's complicated",
		"work_city":    "Atlantis",
	}, fields)
	assert.Equal(t, models.StatusPartial, res.Status)
	assert.Contains(t, res.MissingSections, "PERSONALIA")
}

func TestParsePost_CityWithoutResolver(t *testing.T) {
	p := newTestParser(t, false)

	res, err := p.ParsePost(context.Background(), "besalary", "City/region of work: **Brussel**")
	require.NoError(t, err)
	city, _ := res.Record.Get("work_city")
	assert.Equal(t, models.String("Brussel"), city)
	assert.Empty(t, res.Unrecognized)
}

func TestParsePost_Errors(t *testing.T) {
	p := newTestParser(t, true)

	_, err := p.ParsePost(context.Background(), "besalary", " \u200b\n\t ")
	assert.True(t, errors.Is(err, ErrEmptyBody))

	_, err = p.ParsePost(context.Background(), "unknown", fullPost)
	assert.True(t, errors.Is(err, extractor.ErrUnknownSource))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.ParsePost(ctx, "besalary", fullPost)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParsePosts_ContinuesPastFailures(t *testing.T) {
	p := newTestParser(t, true)

	results, err := p.ParsePosts(context.Background(), "besalary", []string{fullPost, "", "Age: 40"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, models.StatusParsed, results[0].Status)
	assert.Equal(t, models.StatusFailed, results[1].Status)
	assert.Equal(t, ErrEmptyBody.Error(), results[1].Error)
	assert.Equal(t, models.StatusParsed, results[2].Status)
}

func TestParsePosts_StopsWhenContextDone(t *testing.T) {
	p := newTestParser(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := p.ParsePosts(ctx, "besalary", []string{fullPost, fullPost})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, models.StatusFailed, r.Status)
	}

	_, err = p.ParsePosts(context.Background(), "nope", []string{fullPost})
	assert.True(t, errors.Is(err, extractor.ErrUnknownSource))
}

func TestFieldFor(t *testing.T) {
	assert.Equal(t, KindAge, FieldFor("age").Kind)
	assert.Equal(t, KindText, FieldFor("favourite_colour").Kind)
	assert.Equal(t, "city", Catalog()["work_city"])
}
