package model

// Report summarizes a compiled manifest for `tagc check`
// It holds no timestamps so identical input produces identical reports.
type Report struct {
	Source  string       `json:"source"`           // Manifest path as given
	Package string       `json:"package"`          // Go package of the generated file
	Output  string       `json:"output,omitempty"` // Generated file path, when written
	Types   []TypeReport `json:"types"`            // One entry per type, manifest order
	Stats   Stats        `json:"stats"`            // Pipeline counters
}

// TypeReport lists the accessors generated for one type
type TypeReport struct {
	Name      string         `json:"name"`
	Variants  []string       `json:"variants"`
	Accessors []AccessorInfo `json:"accessors"`
}

// AccessorInfo describes one generated accessor and the values it returns
type AccessorInfo struct {
	Fact     string         `json:"fact"`
	Method   string         `json:"method"`
	Kind     string         `json:"kind"`
	Complete bool           `json:"complete"` // Declared on every variant (no fallback branch)
	Values   []VariantValue `json:"values"`
}

// VariantValue is one branch of an accessor
type VariantValue struct {
	Variant string      `json:"variant"`
	Expr    string      `json:"expr"`
	Value   interface{} `json:"value"`
}

// Stats counts what each pipeline stage processed
type Stats struct {
	Types     int `json:"types"`
	Variants  int `json:"variants"`
	Facts     int `json:"facts"`
	Groups    int `json:"groups"`
	Passes    int `json:"passes"`     // Resolver passes summed over variants
	CacheHits int `json:"cache_hits"` // Expression parse cache hits
}
