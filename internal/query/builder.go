package query

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/querybench/pkg/types"
)

// Qualified column names used by the builders.
const (
	ColUsername = "Users.username"
	ColGame     = "Activities.game"
	ColScore    = "Activities.score"
	ColDate     = "Activities.date"
)

// activityJoin links every activity to the user it references.
var activityJoin = Join{
	Table: types.UsersTable,
	On:    "Activities.user_id = Users.user_id",
}

// Join is one JOIN clause.
type Join struct {
	Table string
	On    string
}

// Condition is one equality predicate. Conditions in a Query are combined
// with AND in slice order.
type Condition struct {
	Column string
	Value  string
}

// Query is the structured form of a generated query.
type Query struct {
	Projection []string
	From       string
	Joins      []Join
	Conditions []Condition

	// Terminator is appended after the last clause, usually "" or ";".
	Terminator string
}

// Filter returns the activity listing query narrowed by the non-empty
// filters. The username condition always comes before the game condition.
func Filter(username, game string) Query {
	q := Query{
		Projection: []string{ColUsername, ColGame, ColScore, ColDate},
		From:       types.ActivitiesTable,
		Joins:      []Join{activityJoin},
	}
	q.Conditions = conditions(username, game)
	return q
}

// Average returns the query computing the mean score of one user in one
// game. Both filters are required.
func Average(username, game string) (Query, error) {
	if username == "" || game == "" {
		return Query{}, fmt.Errorf("%w: both filters required (enter both username and game to calculate the average score)", types.ErrValidation)
	}
	return Query{
		Projection: []string{"AVG(" + ColScore + ")"},
		From:       types.ActivitiesTable,
		Joins:      []Join{activityJoin},
		Conditions: conditions(username, game),
		Terminator: ";",
	}, nil
}

// BuildFilterQuery renders Filter(username, game).
func BuildFilterQuery(username, game string) string {
	return Filter(username, game).Render()
}

// BuildAverageQuery renders Average(username, game).
func BuildAverageQuery(username, game string) (string, error) {
	q, err := Average(username, game)
	if err != nil {
		return "", err
	}
	return q.Render(), nil
}

// conditions keeps only the filters that were filled in.
func conditions(username, game string) []Condition {
	var conds []Condition
	if username != "" {
		conds = append(conds, Condition{Column: ColUsername, Value: username})
	}
	if game != "" {
		conds = append(conds, Condition{Column: ColGame, Value: game})
	}
	return conds
}

// Render returns the query text with values embedded as single-quoted
// literals. Values are not escaped.
func (q Query) Render() string {
	return q.build(func(c Condition) string {
		return fmt.Sprintf("%s = '%s'", c.Column, c.Value)
	}, nil)
}

// Statement returns the query text with a ? placeholder per condition and
// the condition values in placeholder order.
func (q Query) Statement() (string, []any) {
	args := make([]any, 0, len(q.Conditions))
	text := q.build(func(c Condition) string {
		return c.Column + " = ?"
	}, func(c Condition) {
		args = append(args, c.Value)
	})
	return text, args
}

// HasWhere reports whether rendering produces a WHERE clause.
func (q Query) HasWhere() bool {
	return len(q.Conditions) > 0
}

func (q Query) build(predicate func(Condition) string, bind func(Condition)) string {
	var b strings.Builder

	b.WriteString("SELECT")
	if len(q.Projection) == 1 {
		b.WriteString(" ")
		b.WriteString(q.Projection[0])
	} else {
		b.WriteString("\n")
		b.WriteString(strings.Join(q.Projection, ",\n"))
	}

	b.WriteString("\nFROM ")
	b.WriteString(q.From)

	for _, j := range q.Joins {
		fmt.Fprintf(&b, "\nJOIN %s ON %s", j.Table, j.On)
	}

	if q.HasWhere() {
		preds := make([]string, len(q.Conditions))
		for i, c := range q.Conditions {
			preds[i] = predicate(c)
			if bind != nil {
				bind(c)
			}
		}
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(preds, " AND "))
	}

	b.WriteString(q.Terminator)
	return b.String()
}
