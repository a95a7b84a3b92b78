package types

import "time"

// Contact holds the contact block of a parsed resume
type Contact struct {
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Phone string   `json:"phone,omitempty"`
	Links []string `json:"links,omitempty"`
}

// ExperienceItem represents a single role in the experience section
type ExperienceItem struct {
	Company  string   `json:"company" validate:"required"`
	Role     string   `json:"role" validate:"required"`
	Location string   `json:"location,omitempty"`
	Start    string   `json:"start" validate:"required"`
	End      string   `json:"end,omitempty"`
	Bullets  []string `json:"bullets"`
}

// ProjectItem represents a single project entry
type ProjectItem struct {
	Name    string   `json:"name" validate:"required"`
	Bullets []string `json:"bullets"`
}

// EducationItem represents a single education entry
type EducationItem struct {
	School string `json:"school"`
	Degree string `json:"degree"`
	Grad   string `json:"grad"`
}

// Resume is the parsed resume structure as returned by the backend.
// Skills are ordered and may contain duplicates; normalization is the
// backend's job.
type Resume struct {
	Contact       *Contact            `json:"contact,omitempty"`
	Summary       string              `json:"summary,omitempty"`
	Skills        []string            `json:"skills"`
	Experience    []ExperienceItem    `json:"experience"`
	Projects      []ProjectItem       `json:"projects,omitempty"`
	Education     []EducationItem     `json:"education,omitempty"`
	OtherSections map[string][]string `json:"other_sections,omitempty"`
}

// JobDescription is the parsed job description structure. Immutable once
// parsed except for a user-supplied title override.
type JobDescription struct {
	Title            string   `json:"title,omitempty"`
	Company          string   `json:"company,omitempty"`
	Responsibilities []string `json:"responsibilities"`
	Required         []string `json:"required"`
	Preferred        []string `json:"preferred,omitempty"`
	Skills           []string `json:"skills"`
}

// NormalizedJD is the backend's normalized projection of a job description
type NormalizedJD struct {
	Skills           []string `json:"skills"`
	Responsibilities []string `json:"responsibilities"`
}

// AnalysisSections holds per-section coverage percentages. Recency and
// hygiene scores are optional and absent on older backends.
type AnalysisSections struct {
	SkillsCoveragePct    int  `json:"skillsCoveragePct"`
	PreferredCoveragePct int  `json:"preferredCoveragePct"`
	DomainCoveragePct    int  `json:"domainCoveragePct"`
	RecencyScorePct      *int `json:"recencyScorePct,omitempty"`
	HygieneScorePct      *int `json:"hygieneScorePct,omitempty"`
}

// AnalysisResult is the backend's scoring of a resume against a job
// description. Treated as immutable once produced.
type AnalysisResult struct {
	Score        int              `json:"score"`
	Matched      []string         `json:"matched"`
	Missing      []string         `json:"missing"`
	Sections     AnalysisSections `json:"sections"`
	NormalizedJD NormalizedJD     `json:"normalizedJD"`
	HygieneFlags []string         `json:"hygiene_flags,omitempty"`
}

// DiffOp is an atomic edit operation describing how rewritten text differs
// from the original. Op is one of "equal", "insert", "delete", "replace".
type DiffOp struct {
	Op   string `json:"op"`
	From string `json:"from"`
	To   string `json:"to"`
}

// RewriteResult is the backend's response to a rewrite request
type RewriteResult struct {
	Rewritten string   `json:"rewritten"`
	Diff      []DiffOp `json:"diff"`
}

// BulletRewrite is the outcome for one bullet of a batch rewrite. A failed
// bullet keeps its original text as Rewritten and records the error, so the
// batch output always has one entry per input bullet.
type BulletRewrite struct {
	Original  string   `json:"original"`
	Rewritten string   `json:"rewritten"`
	Diff      []DiffOp `json:"diff,omitempty"`
	Failed    bool     `json:"failed,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// RewriteConstraints bound a rewrite request
type RewriteConstraints struct {
	JDKeywords []string `json:"jd_keywords"`
	MaxWords   int      `json:"max_words" validate:"gte=0,lte=200"`
}

// HistoryEntry snapshots one completed analysis. The resume, job description
// and result are always persisted together; none of them is ever stored on
// its own.
type HistoryEntry struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	JobTitle  string         `json:"job_title"`
	Score     int            `json:"score"`
	Resume    Resume         `json:"resume"`
	JD        JobDescription `json:"jd"`
	Result    AnalysisResult `json:"result"`
}

// Settings holds user preferences persisted across sessions
type Settings struct {
	DefaultMaxWords      int           `json:"default_max_words" validate:"gt=0,lte=200"`
	ExportStyle          string        `json:"export_style" validate:"oneof=modern compact classic"`
	AutoSaveHistory      bool          `json:"auto_save_history"`
	ShowAdvancedAnalysis bool          `json:"show_advanced_analysis"`
	RequestTimeout       time.Duration `json:"request_timeout" validate:"gt=0"`
}

// ParseTarget discriminates what a parse request contains
type ParseTarget string

const (
	ParseTargetResume ParseTarget = "resume"
	ParseTargetJD     ParseTarget = "jd"
)

// Valid reports whether the parse target is one the backend accepts
func (t ParseTarget) Valid() bool {
	return t == ParseTargetResume || t == ParseTargetJD
}
