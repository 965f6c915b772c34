package constants

// Stage is the canonical name for one step of an ETL run.
type Stage string

// Stable values (these exact strings appear in logs and reports).
const (
	StageCreateSchema Stage = "create_schema" // ensure the six tables exist
	StageExtract      Stage = "extract"       // source table -> raw documents
	StageTransform    Stage = "transform"     // raw documents -> normalized documents
	StageLoad         Stage = "load"          // normalized documents -> relational store
)

// Stages lists the run order. A stage runs only after its predecessor succeeds.
var Stages = []Stage{StageCreateSchema, StageExtract, StageTransform, StageLoad}
