package search

import (
	"testing"
	"time"

	"github.com/salary-parser/app/models"
	"github.com/stretchr/testify/assert"
)

func TestFilters(t *testing.T) {
	assert.Equal(t, `source = "besalary"`, FilterEquals("source", "besalary"))
	assert.Equal(t, "", FilterEquals("source", ""))

	assert.Equal(t, "gross_salary 3000 TO 5000", FilterRange("gross_salary", 3000, 5000))
	assert.Equal(t, "age >= 30", FilterRange("age", 30, 0))
	assert.Equal(t, "age <= 40", FilterRange("age", 0, 40))
	assert.Equal(t, "", FilterRange("age", 0, 0))

	assert.Equal(t,
		`source = "besalary" AND gross_salary >= 3000`,
		FilterAnd(FilterEquals("source", "besalary"), FilterEquals("sector", ""), FilterRange("gross_salary", 3000, 0)))
	assert.Equal(t, "", FilterAnd())
}

func TestToDocument(t *testing.T) {
	var rec models.CanonicalRecord
	rec.Set("age", models.Integer(31))
	rec.Set("sector", models.String("it"))
	rec.Set("work_city", models.Null())

	published := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := ToDocument(models.RecordDocument{
		Fingerprint:   "abc123",
		Source:        "besalary",
		Title:         "Salary post",
		TablesVersion: "v1",
		PublishedAt:   &published,
		Result: models.ParseResult{
			Country:  "BE",
			Currency: "EUR",
			Status:   models.StatusParsed,
			Record:   rec,
		},
	})

	assert.Equal(t, "abc123", doc["id"])
	assert.Equal(t, "besalary", doc["source"])
	assert.Equal(t, "BE", doc["country"])
	assert.Equal(t, 31, doc["age"])
	assert.Equal(t, "it", doc["sector"])
	assert.Contains(t, doc, "work_city")
	assert.Nil(t, doc["work_city"])
	assert.Equal(t, published.Unix(), doc["published_at"])
	assert.NotContains(t, doc, "external_id")
}
