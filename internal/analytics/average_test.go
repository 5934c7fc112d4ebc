package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grade-analytics-api/internal/models"
)

func averageOf(t *testing.T, subjects []models.Subject, grades []models.Grade, id string) *float64 {
	t.Helper()
	tree, err := NewSubjectTree(subjects, grades)
	require.NoError(t, err)
	avg, err := tree.Average(id)
	require.NoError(t, err)
	return avg
}

func TestAverageSingleLeaf(t *testing.T) {
	avg := averageOf(t,
		[]models.Subject{subject("math", "", 100, false)},
		[]models.Grade{grade("g1", "math", 1500, 2000, 100)},
		"math")

	require.NotNil(t, avg)
	assert.InDelta(t, 15.0, *avg, 1e-9)
}

func TestAverageWithoutGradesIsNil(t *testing.T) {
	subjects := []models.Subject{
		subject("p", "", 100, false),
		subject("a", "p", 100, false),
		subject("folder", "p", 100, true),
		subject("b", "folder", 100, false),
	}

	assert.Nil(t, averageOf(t, subjects, nil, "p"))
	assert.Nil(t, averageOf(t, subjects, nil, "folder"))
}

func TestAverageZeroOutOfIsSkipped(t *testing.T) {
	subjects := []models.Subject{subject("p", "", 100, false), subject("a", "p", 100, false)}
	base := []models.Grade{grade("g1", "a", 1200, 2000, 100), grade("g2", "p", 700, 1000, 200)}
	withZero := append(append([]models.Grade(nil), base...), grade("g3", "a", 500, 0, 300))

	for _, id := range []string{"p", "a"} {
		expected := averageOf(t, subjects, base, id)
		actual := averageOf(t, subjects, withZero, id)
		require.NotNil(t, expected)
		require.NotNil(t, actual)
		assert.Equal(t, *expected, *actual, id)
	}

	assert.Nil(t, averageOf(t, subjects, []models.Grade{grade("g", "a", 500, 0, 100)}, "p"))
}

func TestAverageZeroCoefficientIsNil(t *testing.T) {
	avg := averageOf(t,
		[]models.Subject{subject("a", "", 100, false)},
		[]models.Grade{grade("g1", "a", 1500, 2000, 0)},
		"a")
	assert.Nil(t, avg)
}

func TestAverageWeightsChildrenByCoefficient(t *testing.T) {
	subjects := []models.Subject{
		subject("p", "", 100, false),
		subject("a", "p", 100, false),
		subject("b", "p", 200, false),
	}
	grades := []models.Grade{
		grade("a1", "a", 800, 2000, 100),
		grade("a2", "a", 1200, 2000, 100),
		grade("b1", "b", 1600, 2000, 100),
	}

	avg := averageOf(t, subjects, grades, "p")
	require.NotNil(t, avg)
	assert.InDelta(t, 14.0, *avg, 1e-9)
}

func TestAverageDisplaySubjectIsTransparent(t *testing.T) {
	grades := []models.Grade{
		grade("a1", "a", 1000, 2000, 100),
		grade("b1", "b", 1600, 2000, 100),
	}
	flat := []models.Subject{
		subject("p", "", 100, false),
		subject("a", "p", 100, false),
		subject("b", "p", 200, false),
	}
	wrapped := []models.Subject{
		subject("p", "", 100, false),
		subject("a", "p", 100, false),
		subject("folder", "p", 500, true),
		subject("b", "folder", 200, false),
	}

	expected := averageOf(t, flat, grades, "p")
	actual := averageOf(t, wrapped, grades, "p")
	require.NotNil(t, expected)
	require.NotNil(t, actual)
	assert.InDelta(t, *expected, *actual, 1e-12)

	folder := averageOf(t, wrapped, grades, "folder")
	require.NotNil(t, folder)
	assert.InDelta(t, 16.0, *folder, 1e-9)
}

func TestAverageBlendsDirectGradesAndDeepDescendants(t *testing.T) {
	subjects := []models.Subject{
		subject("p", "", 100, false),
		subject("a", "p", 100, false),
		subject("c", "a", 100, false),
	}
	grades := []models.Grade{
		grade("p1", "p", 2000, 2000, 100),
		grade("c1", "c", 1000, 2000, 100),
	}

	// a only carries c (10); p blends its own 20 with a's 10.
	avg := averageOf(t, subjects, grades, "p")
	require.NotNil(t, avg)
	assert.InDelta(t, 15.0, *avg, 1e-9)
}

func TestAveragesCoversEverySubject(t *testing.T) {
	tree, err := NewSubjectTree(
		[]models.Subject{subject("p", "", 100, false), subject("a", "p", 100, false), subject("b", "p", 100, false)},
		[]models.Grade{grade("a1", "a", 1000, 2000, 100)},
	)
	require.NoError(t, err)

	averages := tree.Averages()
	require.Len(t, averages, 3)
	assert.Equal(t, "p", averages[0].SubjectID)
	require.NotNil(t, averages[0].Average)
	assert.InDelta(t, 10.0, *averages[0].Average, 1e-9)
	assert.Nil(t, averages[2].Average)
}

func TestNewSubjectTreeIntegrityFaults(t *testing.T) {
	cases := []struct {
		name     string
		subjects []models.Subject
		grades   []models.Grade
		err      error
	}{
		{
			name:     "unknown parent",
			subjects: []models.Subject{subject("a", "ghost", 100, false)},
			err:      ErrUnknownParent,
		},
		{
			name:     "grade on unknown subject",
			subjects: []models.Subject{subject("a", "", 100, false)},
			grades:   []models.Grade{grade("g", "ghost", 1, 1, 100)},
			err:      ErrUnknownSubject,
		},
		{
			name:     "grade on display subject",
			subjects: []models.Subject{subject("f", "", 100, true)},
			grades:   []models.Grade{grade("g", "f", 1, 1, 100)},
			err:      ErrGradeOnDisplay,
		},
		{
			name:     "duplicate id",
			subjects: []models.Subject{subject("a", "", 100, false), subject("a", "", 100, false)},
			err:      ErrDuplicateSubject,
		},
		{
			name:     "cycle",
			subjects: []models.Subject{subject("root", "", 100, false), subject("a", "b", 100, false), subject("b", "a", 100, false)},
			err:      ErrSubjectCycle,
		},
		{
			name:     "self parent",
			subjects: []models.Subject{subject("a", "a", 100, false)},
			err:      ErrSubjectCycle,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSubjectTree(tc.subjects, tc.grades)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestAverageUnknownTarget(t *testing.T) {
	tree, err := NewSubjectTree([]models.Subject{subject("a", "", 100, false)}, nil)
	require.NoError(t, err)

	_, err = tree.Average("zzz")
	assert.ErrorIs(t, err, ErrUnknownSubject)
}
