package transform

import (
	"errors"
	"reflect"
	"testing"

	"github.com/joseph-ayodele/jobfeed-etl/internal/common"
	"github.com/joseph-ayodele/jobfeed-etl/internal/entity"
)

func TestMapDefaultsMissingFields(t *testing.T) {
	rec := Map(entity.FlatRecord{
		"job_title":        "Engineer",
		"salary_min_value": "80000",
	})

	if rec.Job.Title != "Engineer" {
		t.Errorf("job.title = %q, want %q", rec.Job.Title, "Engineer")
	}
	if rec.Salary.MinValue != "80000" {
		t.Errorf("salary.min_value = %q, want %q", rec.Salary.MinValue, "80000")
	}
	if rec.Job.Industry != "" {
		t.Errorf("job.industry = %q, want empty", rec.Job.Industry)
	}
	if rec.Salary.Currency != "" {
		t.Errorf("salary.currency = %q, want empty", rec.Salary.Currency)
	}
	if rec.Company != (entity.Company{}) {
		t.Errorf("company = %+v, want zero", rec.Company)
	}
	if rec.Location != (entity.Location{}) {
		t.Errorf("location = %+v, want zero", rec.Location)
	}
}

func TestMapEmptyInput(t *testing.T) {
	rec := Map(entity.FlatRecord{})
	if rec != (entity.NormalizedRecord{}) {
		t.Errorf("mapping an empty record should yield all-empty sections, got %+v", rec)
	}
}

func TestMapDeterministic(t *testing.T) {
	raw := entity.FlatRecord{
		"job_title":                "Data Engineer",
		"job_industry":             "IT Services",
		"company_name":             "Acme",
		"company_linkedin_link":    "https://linkedin.com/company/acme",
		"job_months_of_experience": "24",
		"seniority_level":          "Mid",
		"salary_currency":          "USD",
		"country":                  "US",
		"latitude":                 "40.7128",
	}
	a := Map(raw)
	b := Map(raw)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Map is not deterministic: %+v != %+v", a, b)
	}
	if a.Experience.MonthsOfExperience != "24" {
		t.Errorf("experience.months_of_experience = %q, want %q", a.Experience.MonthsOfExperience, "24")
	}
	if a.Location.Latitude != "40.7128" {
		t.Errorf("location.latitude = %q, want %q", a.Location.Latitude, "40.7128")
	}
}

func TestDecodeScalars(t *testing.T) {
	raw, err := Decode([]byte(`{"job_title": "Engineer", "salary_min_value": 80000, "remote": true, "notes": null}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := entity.FlatRecord{
		"job_title":        "Engineer",
		"salary_min_value": "80000",
		"remote":           "true",
		"notes":            "",
	}
	if !reflect.DeepEqual(raw, want) {
		t.Errorf("Decode = %v, want %v", raw, want)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":     `{job_title: Engineer}`,
		"array":        `["job_title"]`,
		"scalar":       `"job_title"`,
		"nested value": `{"job": {"title": "Engineer"}}`,
		"array value":  `{"tags": ["go", "sql"]}`,
	}
	for name, doc := range cases {
		if _, err := Decode([]byte(doc)); !errors.Is(err, common.ErrMalformedInput) {
			t.Errorf("%s: Decode error = %v, want ErrMalformedInput", name, err)
		}
	}
}

func TestDecodePreservesNumberText(t *testing.T) {
	raw, err := Decode([]byte(`{"latitude": 40.712800, "job_months_of_experience": 24}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if raw["latitude"] != "40.712800" {
		t.Errorf("latitude = %q, want source text preserved", raw["latitude"])
	}
	if raw["job_months_of_experience"] != "24" {
		t.Errorf("months = %q, want %q", raw["job_months_of_experience"], "24")
	}
}
