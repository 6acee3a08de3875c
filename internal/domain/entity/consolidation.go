package entity

// ConsolidationState estado del ciclo de consolidación de un grupo.
type ConsolidationState string

// PENDING → FETCHING → MERGING → {MERGED | MERGED_PARTIAL | EMPTY}
const (
	ConsolidationPending       ConsolidationState = "PENDING"
	ConsolidationFetching      ConsolidationState = "FETCHING"
	ConsolidationMerging       ConsolidationState = "MERGING"
	ConsolidationMerged        ConsolidationState = "MERGED"
	ConsolidationMergedPartial ConsolidationState = "MERGED_PARTIAL"
	ConsolidationEmpty         ConsolidationState = "EMPTY"
)

// Terminal indica si el estado es final.
func (s ConsolidationState) Terminal() bool {
	return s == ConsolidationMerged || s == ConsolidationMergedPartial || s == ConsolidationEmpty
}

// DocumentFailure documento que no llegó al PDF final (descarga o unión fallida).
type DocumentFailure struct {
	Index  int    `json:"index"` // posición en CustomerGroup.DocumentURLs
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// ConsolidationResult resultado de consolidar los documentos de un grupo.
type ConsolidationResult struct {
	GroupKey         string
	AttemptedCount   int
	FetchedCount     int
	SucceededCount   int
	FetchFailures    []DocumentFailure
	SkippedDocuments []DocumentFailure // descargados pero descartados por la unión degradada
	Degraded         bool              // la unión completa falló y se unió documento a documento
	State            ConsolidationState
	MergedDocument   []byte // nil salvo que SucceededCount > 0
}

// HasDocument indica si hay PDF consolidado.
func (r ConsolidationResult) HasDocument() bool {
	return r.SucceededCount > 0 && len(r.MergedDocument) > 0
}
