package transform

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/jobfeed-etl/internal/common"
	"github.com/joseph-ayodele/jobfeed-etl/internal/entity"
)

// rawDocumentSchema accepts exactly the shape extraction produces: a flat
// JSON object whose values are scalars. Nested objects or arrays mean the
// document is structurally corrupt.
var rawDocumentSchema = jsonschema.MustCompileString("raw_document.json", `{
	"type": "object",
	"additionalProperties": {
		"type": ["string", "number", "boolean", "null"]
	}
}`)

// Decode parses one raw staged document into a FlatRecord. It fails with
// ErrMalformedInput only if the content is not a valid flat mapping; missing
// individual fields are never an error. Numbers keep their source text so no
// precision is lost before load-time coercion.
func Decode(data []byte) (entity.FlatRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, common.NewAppError("MALFORMED_DOCUMENT", "document is not a JSON object", common.ErrMalformedInput)
	}
	if err := rawDocumentSchema.Validate(doc); err != nil {
		return nil, common.NewAppError("MALFORMED_DOCUMENT", "document is not a flat scalar mapping", common.ErrMalformedInput)
	}

	raw := make(entity.FlatRecord, len(doc))
	for k, v := range doc {
		raw[k] = scalarString(v)
	}
	return raw, nil
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	default: // null
		return ""
	}
}

// Map converts one flat source document into the six-section normalized
// record. The mapping table is fixed and total: each destination field reads
// one source key, and an absent key yields an empty string. Pure and
// deterministic, so documents can be mapped in any order or in parallel.
func Map(raw entity.FlatRecord) entity.NormalizedRecord {
	return entity.NormalizedRecord{
		Job: entity.Job{
			Title:          raw["job_title"],
			Industry:       raw["job_industry"],
			Description:    raw["job_description"],
			EmploymentType: raw["job_employment_type"],
			DatePosted:     raw["job_date_posted"],
		},
		Company: entity.Company{
			Name: raw["company_name"],
			Link: raw["company_linkedin_link"],
		},
		Education: entity.Education{
			RequiredCredential: raw["job_required_credential"],
		},
		Experience: entity.Experience{
			MonthsOfExperience: raw["job_months_of_experience"],
			SeniorityLevel:     raw["seniority_level"],
		},
		Salary: entity.Salary{
			Currency: raw["salary_currency"],
			MinValue: raw["salary_min_value"],
			MaxValue: raw["salary_max_value"],
			Unit:     raw["salary_unit"],
		},
		Location: entity.Location{
			Country:       raw["country"],
			Locality:      raw["locality"],
			Region:        raw["region"],
			PostalCode:    raw["postal_code"],
			StreetAddress: raw["street_address"],
			Latitude:      raw["latitude"],
			Longitude:     raw["longitude"],
		},
	}
}
