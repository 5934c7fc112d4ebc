package analytics

import (
	"fmt"

	"github.com/noah-isme/grade-analytics-api/internal/models"
)

const virtualRootPrefix = "__root__:"

// WorkspaceInput is one year's subject tree rows.
type WorkspaceInput struct {
	YearID   string
	Subjects []models.Subject
	Grades   []models.Grade
}

// WorkspaceAverage computes one year's average through a synthetic root whose
// children are the year's root subjects.
func WorkspaceAverage(in WorkspaceInput) (*float64, error) {
	tree, err := NewSubjectTree(in.Subjects, in.Grades)
	if err != nil {
		return nil, fmt.Errorf("year %s: %w", in.YearID, err)
	}
	rootID := virtualRootPrefix + in.YearID
	rooted, err := tree.WithVirtualRoot(rootID)
	if err != nil {
		return nil, fmt.Errorf("year %s: %w", in.YearID, err)
	}
	return rooted.Average(rootID)
}

// CrossWorkspaceAverage averages the non-nil workspace averages with equal
// weight per workspace, regardless of how many grades each one holds. It
// returns nil when no workspace has data.
func CrossWorkspaceAverage(workspaces []WorkspaceInput) (*float64, []models.YearAverage, error) {
	perYear := make([]models.YearAverage, 0, len(workspaces))
	var sum float64
	var count int
	for _, ws := range workspaces {
		avg, err := WorkspaceAverage(ws)
		if err != nil {
			return nil, nil, err
		}
		perYear = append(perYear, models.YearAverage{YearID: ws.YearID, Average: avg})
		if avg == nil {
			continue
		}
		sum += *avg
		count++
	}
	if count == 0 {
		return nil, perYear, nil
	}
	mean := sum / float64(count)
	return &mean, perYear, nil
}

// CustomAverage evaluates a user-defined subset of a year's subjects. Each
// selected subject hangs directly under a synthetic root with its coefficient
// override applied; its descendants are kept only when IncludeChildren is set.
// A selected subject nested under another selection is lifted to the root so
// it is counted once.
func CustomAverage(def models.CustomAverage, subjects []models.Subject, grades []models.Grade) (*float64, error) {
	tree, err := NewSubjectTree(subjects, grades)
	if err != nil {
		return nil, err
	}

	selected := make(map[string]models.CustomAverageSubject, len(def.Subjects))
	for _, sel := range def.Subjects {
		if _, ok := tree.nodes[sel.SubjectID]; !ok {
			return nil, fmt.Errorf("%w: custom average %s selects %s", ErrUnknownSubject, def.ID, sel.SubjectID)
		}
		selected[sel.SubjectID] = sel
	}

	rootID := virtualRootPrefix + "custom:" + def.ID
	filtered := []models.Subject{{ID: rootID, Name: def.Name, Coefficient: models.DefaultCoefficient}}
	kept := make(map[string]struct{})
	for _, sel := range def.Subjects {
		if _, done := kept[sel.SubjectID]; done {
			continue
		}
		subject := tree.nodes[sel.SubjectID].subject
		parent := rootID
		subject.ParentID = &parent
		if sel.Coefficient != nil {
			subject.Coefficient = *sel.Coefficient
		}
		filtered = append(filtered, subject)
		kept[subject.ID] = struct{}{}
		if sel.IncludeChildren {
			filtered = appendSubtree(tree, subject.ID, selected, kept, filtered)
		}
	}

	var filteredGrades []models.Grade
	for _, grade := range grades {
		if _, ok := kept[grade.SubjectID]; ok {
			filteredGrades = append(filteredGrades, grade)
		}
	}

	custom, err := NewSubjectTree(filtered, filteredGrades)
	if err != nil {
		return nil, err
	}
	return custom.Average(rootID)
}

func appendSubtree(tree *SubjectTree, id string, selected map[string]models.CustomAverageSubject, kept map[string]struct{}, out []models.Subject) []models.Subject {
	for _, childID := range tree.nodes[id].children {
		if _, isSelected := selected[childID]; isSelected {
			continue
		}
		kept[childID] = struct{}{}
		out = append(out, tree.nodes[childID].subject)
		out = appendSubtree(tree, childID, selected, kept, out)
	}
	return out
}
