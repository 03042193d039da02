package detector

import (
	"strings"

	"github.com/maxbolgarin/logze/v2"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/doublelei/DiffScope/internal/model"
)

// renameSimilarityThreshold is the minimum content similarity for a
// provisional added/deleted pair to be reported as a rename. A score of
// exactly the threshold is accepted.
const renameSimilarityThreshold = 0.7

// RenameMatcher pairs provisional ADDED records with provisional DELETED
// records from the same file whose source text is similar enough. Matching
// is strictly sequential and runs after every file has been analyzed.
type RenameMatcher struct {
	threshold float64
	dmp       *diffmatchpatch.DiffMatchPatch
	log       logze.Logger
}

// NewRenameMatcher creates a matcher with the default threshold.
func NewRenameMatcher() *RenameMatcher {
	return &RenameMatcher{
		threshold: renameSimilarityThreshold,
		dmp:       diffmatchpatch.New(),
		log:       logze.With("component", "rename_matcher"),
	}
}

// MatchRenames rewrites matched ADDED records into RENAMED records and drops
// the consumed DELETED records. Each candidate pairs with the highest-scoring
// counterpart; on a tie the first one encountered wins, and a consumed record
// never pairs twice. The input order is preserved in the returned slice.
func (m *RenameMatcher) MatchRenames(changes []*model.FunctionChange) []*model.FunctionChange {
	consumed := make(map[*model.FunctionChange]bool)

	for _, added := range changes {
		if added.ChangeType != model.FunctionAdded {
			continue
		}

		var best *model.FunctionChange
		var bestScore float64

		for _, deleted := range changes {
			if deleted.ChangeType != model.FunctionDeleted || consumed[deleted] {
				continue
			}
			if deleted.File != added.File || deleted.Name == added.Name {
				continue
			}

			score := m.similarity(added.Source, deleted.Source)
			if score >= m.threshold && score > bestScore {
				best = deleted
				bestScore = score
			}
		}

		if best == nil {
			continue
		}

		consumed[best] = true
		added.ChangeType = model.FunctionRenamed
		added.OriginalName = best.Name
		added.OriginalStart = best.OriginalStart
		added.OriginalEnd = best.OriginalEnd

		m.log.Debug("matched rename",
			"file", added.File,
			"from", added.OriginalName,
			"to", added.Name,
			"score", bestScore)
	}

	if len(consumed) == 0 {
		return changes
	}

	out := make([]*model.FunctionChange, 0, len(changes)-len(consumed))
	for _, fc := range changes {
		if !consumed[fc] {
			out = append(out, fc)
		}
	}
	return out
}

// similarity computes 2*M/(len(a)+len(b)) over whitespace-collapsed text,
// where M is the total length of the equal segments of the diff. 1.0 means
// identical, 0.0 means nothing in common.
func (m *RenameMatcher) similarity(a, b string) float64 {
	a = collapseWhitespace(a)
	b = collapseWhitespace(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	var matched int
	for _, d := range m.dmp.DiffMain(a, b, false) {
		if d.Type == diffmatchpatch.DiffEqual {
			matched += len(d.Text)
		}
	}
	return 2 * float64(matched) / float64(len(a)+len(b))
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
