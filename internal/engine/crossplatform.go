package engine

import (
	"fmt"

	"go.uber.org/zap"

	"tagmedic/internal/normalize"
	"tagmedic/internal/row"
	"tagmedic/internal/rules"
)

// MatchCrossPlatform checks, for every validity-gated mapping, that the
// platform-side parameter agrees with the canonical data-layer value on the
// same row. Row collections must already be aligned by index; a length
// mismatch is an input-contract violation and is rejected up front.
func MatchCrossPlatform(platformRows, canonicalRows []row.ExtractedRow, mappings []rules.CrossPlatformMapping, log *zap.Logger) ([]rules.Verdict, error) {
	if len(platformRows) != len(canonicalRows) {
		return nil, fmt.Errorf("row count mismatch: %d platform rows vs %d canonical rows", len(platformRows), len(canonicalRows))
	}

	var verdicts []rules.Verdict
	for i := range canonicalRows {
		for _, m := range mappings {
			if !m.Valid {
				continue
			}

			platformVal := normalize.String(normalize.Canonical(platformRows[i].Fields[m.PlatformKey], log))
			canonicalVal := normalize.String(normalize.Canonical(canonicalRows[i].Fields[m.DataLayerKey], log))

			v := rules.NewVerdict(canonicalRows[i], m.PlatformKey, rules.CategoryCrossPlatform, classifyPair(platformVal, canonicalVal))
			v.Value = platformVal
			v.Expected = fmt.Sprintf("%s=%s", m.DataLayerKey, canonicalVal)
			v.Message = string(m.Platform)
			verdicts = append(verdicts, v)
		}
	}
	return verdicts, nil
}

func classifyPair(platformVal, canonicalVal string) rules.Status {
	platformEmpty := platformVal == normalize.Empty
	canonicalEmpty := canonicalVal == normalize.Empty

	switch {
	case platformEmpty && canonicalEmpty:
		// Neither side populated: distinct from a genuine mismatch.
		return rules.StatusMissingValue
	case platformEmpty || canonicalEmpty:
		return rules.StatusFail
	case platformVal == canonicalVal:
		return rules.StatusPass
	default:
		return rules.StatusFail
	}
}
