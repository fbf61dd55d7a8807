package core

import (
	"fmt"

	"github.com/huangsam/scorecard/schema"
)

// classifier holds the bucket table ordered by descending min.
type classifier struct {
	grades []schema.Grade
}

func newClassifier(mapping map[string]schema.BandConfig) classifier {
	cfg := schema.ScorecardConfig{BucketMapping: mapping}
	return classifier{grades: cfg.Grades()}
}

// best returns the grade with the highest min.
func (c classifier) best() schema.Grade { return c.grades[0] }

// worst returns the grade with the lowest min.
func (c classifier) worst() schema.Grade { return c.grades[len(c.grades)-1] }

// decision is the band's explicit decision, or decline for the worst grade
// and approve for every other grade.
func (c classifier) decision(g schema.Grade) schema.Decision {
	if g.Decision != schema.NoDecision {
		return g.Decision
	}
	if g.Label == c.worst().Label {
		return schema.Decline
	}
	return schema.Approve
}

func (c classifier) toClassification(g schema.Grade, fallback bool) schema.Classification {
	return schema.Classification{
		Grade:       g.Label,
		Description: g.Description,
		Decision:    c.decision(g),
		Fallback:    fallback,
	}
}

// classify walks the bands from highest min to lowest and returns the first
// whose min the score reaches. Scores between one band's max and the next
// band's min land in the lower band.
func (c classifier) classify(score float64) schema.Classification {
	for _, g := range c.grades {
		if score >= g.Min {
			return c.toClassification(g, false)
		}
	}
	return c.toClassification(c.worst(), true)
}

// Classify maps a final score to a grade. A score below every band falls back
// to the lowest grade with Fallback set so callers can surface a
// configuration warning. An empty mapping yields an empty classification.
func Classify(score float64, mapping map[string]schema.BandConfig) schema.Classification {
	if len(mapping) == 0 {
		return schema.Classification{}
	}
	return newClassifier(mapping).classify(score)
}

func fallbackWarning(score float64, c schema.Classification) string {
	return fmt.Sprintf("score %s is below every band; using lowest grade %s", formatNumber(score), c.Grade)
}
