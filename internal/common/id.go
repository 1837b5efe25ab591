package common

import (
	"strings"

	"github.com/google/uuid"
)

const analysisIDPrefix = "ana_"

// NewAnalysisID generates a unique analysis ID with the "ana_" prefix
// Format: ana_<uuid>
func NewAnalysisID() string {
	return analysisIDPrefix + uuid.New().String()
}

// IsAnalysisID reports whether id has the analysis prefix followed by a valid UUID
func IsAnalysisID(id string) bool {
	if !strings.HasPrefix(id, analysisIDPrefix) {
		return false
	}
	_, err := uuid.Parse(strings.TrimPrefix(id, analysisIDPrefix))
	return err == nil
}
