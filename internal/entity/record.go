package entity

// FlatRecord is a single-level mapping of string keys to scalar values
// representing one source job posting. Values are kept as strings; numeric
// coercion happens at load time, not at mapping time.
type FlatRecord map[string]string

// NormalizedRecord represents one job posting split into the six fixed
// sections matching the relational schema. A transformed document is one
// serialized NormalizedRecord and is self-contained: it carries everything
// needed to reconstruct all six table rows without re-reading the source.
type NormalizedRecord struct {
	Job        Job        `json:"job"`
	Company    Company    `json:"company"`
	Education  Education  `json:"education"`
	Experience Experience `json:"experience"`
	Salary     Salary     `json:"salary"`
	Location   Location   `json:"location"`
}

// Job is the root entity; the five others each reference one job row.
type Job struct {
	Title          string `json:"title"`
	Industry       string `json:"industry"`
	Description    string `json:"description"`
	EmploymentType string `json:"employment_type"`
	DatePosted     string `json:"date_posted"`
}

type Company struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

type Education struct {
	RequiredCredential string `json:"required_credential"`
}

type Experience struct {
	MonthsOfExperience string `json:"months_of_experience"`
	SeniorityLevel     string `json:"seniority_level"`
}

type Salary struct {
	Currency string `json:"currency"`
	MinValue string `json:"min_value"`
	MaxValue string `json:"max_value"`
	Unit     string `json:"unit"`
}

type Location struct {
	Country       string `json:"country"`
	Locality      string `json:"locality"`
	Region        string `json:"region"`
	PostalCode    string `json:"postal_code"`
	StreetAddress string `json:"street_address"`
	Latitude      string `json:"latitude"`
	Longitude     string `json:"longitude"`
}
