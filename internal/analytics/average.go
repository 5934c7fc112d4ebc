package analytics

import (
	"fmt"

	"github.com/noah-isme/grade-analytics-api/internal/models"
)

// Scale is the grading scale every average is expressed on.
const Scale = 20.0

type subjectNode struct {
	subject  models.Subject
	grades   []models.Grade
	children []string
}

// SubjectTree is a validated, immutable forest of subjects joined with their
// direct grades. It is safe for concurrent use; every Average call owns its
// own memo.
type SubjectTree struct {
	nodes map[string]*subjectNode
	order []string
	roots []string
}

// NewSubjectTree ingests rows and checks what the recursion relies on:
// unique ids, known parents, known grade subjects and an acyclic parent graph.
func NewSubjectTree(subjects []models.Subject, grades []models.Grade) (*SubjectTree, error) {
	tree := &SubjectTree{
		nodes: make(map[string]*subjectNode, len(subjects)),
		order: make([]string, 0, len(subjects)),
	}
	for _, subject := range subjects {
		if _, exists := tree.nodes[subject.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSubject, subject.ID)
		}
		tree.nodes[subject.ID] = &subjectNode{subject: subject}
		tree.order = append(tree.order, subject.ID)
	}

	for _, id := range tree.order {
		node := tree.nodes[id]
		if node.subject.ParentID == nil {
			tree.roots = append(tree.roots, id)
			continue
		}
		parent, ok := tree.nodes[*node.subject.ParentID]
		if !ok {
			return nil, fmt.Errorf("%w: subject %s, parent %s", ErrUnknownParent, id, *node.subject.ParentID)
		}
		parent.children = append(parent.children, id)
	}

	for _, grade := range grades {
		node, ok := tree.nodes[grade.SubjectID]
		if !ok {
			return nil, fmt.Errorf("%w: grade %s references %s", ErrUnknownSubject, grade.ID, grade.SubjectID)
		}
		if node.subject.IsDisplaySubject {
			return nil, fmt.Errorf("%w: grade %s on %s", ErrGradeOnDisplay, grade.ID, grade.SubjectID)
		}
		node.grades = append(node.grades, grade)
	}

	if err := tree.checkAcyclic(); err != nil {
		return nil, err
	}
	return tree, nil
}

// checkAcyclic walks down from every root. With a single parent per node, any
// subject that cannot be reached from a root sits on (or hangs off) a cycle.
func (t *SubjectTree) checkAcyclic() error {
	seen := make(map[string]struct{}, len(t.nodes))
	stack := append([]string(nil), t.roots...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		stack = append(stack, t.nodes[id].children...)
	}
	if len(seen) == len(t.nodes) {
		return nil
	}
	for _, id := range t.order {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("%w: subject %s is unreachable from any root", ErrSubjectCycle, id)
		}
	}
	return nil
}

// Roots returns root subject ids in input order.
func (t *SubjectTree) Roots() []string {
	return append([]string(nil), t.roots...)
}

// Subjects returns the subjects in input order.
func (t *SubjectTree) Subjects() []models.Subject {
	out := make([]models.Subject, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.nodes[id].subject)
	}
	return out
}

// WithVirtualRoot returns a tree with one synthetic non-display root
// (coefficient ×1, no grades) adopting every current root.
func (t *SubjectTree) WithVirtualRoot(id string) (*SubjectTree, error) {
	if _, exists := t.nodes[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSubject, id)
	}
	nodes := make(map[string]*subjectNode, len(t.nodes)+1)
	for key, node := range t.nodes {
		nodes[key] = node
	}
	nodes[id] = &subjectNode{
		subject:  models.Subject{ID: id, Name: id, Coefficient: models.DefaultCoefficient},
		children: t.Roots(),
	}
	return &SubjectTree{
		nodes: nodes,
		order: append([]string{id}, t.order...),
		roots: []string{id},
	}, nil
}

// Average returns the 0-20 average of one subject including its non-display
// descendants, or nil when nothing in the subtree is scorable.
func (t *SubjectTree) Average(subjectID string) (*float64, error) {
	if _, ok := t.nodes[subjectID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSubject, subjectID)
	}
	return newAverageContext(t).average(subjectID), nil
}

// Averages computes every subject in one pass sharing a single memo.
func (t *SubjectTree) Averages() []models.SubjectAverage {
	ctx := newAverageContext(t)
	out := make([]models.SubjectAverage, 0, len(t.order))
	for _, id := range t.order {
		subject := t.nodes[id].subject
		out = append(out, models.SubjectAverage{
			SubjectID: id,
			Name:      subject.Name,
			ParentID:  subject.ParentID,
			Depth:     subject.Depth,
			Average:   ctx.average(id),
		})
	}
	return out
}

// averageContext is the per-call memo. It is never shared between calls.
type averageContext struct {
	tree        *SubjectTree
	averages    map[string]*float64
	descendants map[string][]string
}

func newAverageContext(tree *SubjectTree) *averageContext {
	return &averageContext{
		tree:        tree,
		averages:    make(map[string]*float64),
		descendants: make(map[string][]string),
	}
}

// nonDisplayDescendants is the subject itself (unless it is a display subject)
// plus each child, where display children are replaced by their own flattening.
func (c *averageContext) nonDisplayDescendants(id string) []string {
	if cached, ok := c.descendants[id]; ok {
		return cached
	}
	node := c.tree.nodes[id]
	var out []string
	if !node.subject.IsDisplaySubject {
		out = append(out, id)
	}
	for _, childID := range node.children {
		if c.tree.nodes[childID].subject.IsDisplaySubject {
			out = append(out, c.nonDisplayDescendants(childID)...)
			continue
		}
		out = append(out, childID)
	}
	c.descendants[id] = out
	return out
}

func (c *averageContext) average(id string) *float64 {
	if cached, ok := c.averages[id]; ok {
		return cached
	}
	node := c.tree.nodes[id]

	var sum, weight float64
	for _, grade := range node.grades {
		if !grade.Scorable() {
			continue
		}
		coefficient := float64(grade.Coefficient) / 100
		sum += (float64(grade.Value) / float64(grade.OutOf)) * coefficient
		weight += coefficient
	}

	for _, descendantID := range c.nonDisplayDescendants(id) {
		if descendantID == id {
			continue
		}
		avg := c.average(descendantID)
		if avg == nil {
			continue
		}
		coefficient := float64(c.tree.nodes[descendantID].subject.Coefficient) / 100
		sum += (*avg / Scale) * coefficient
		weight += coefficient
	}

	var result *float64
	if weight > 0 {
		value := (sum / weight) * Scale
		result = &value
	}
	c.averages[id] = result
	return result
}
