// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package viewquery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/danielhkuo/surveyview/table"
)

// UnansweredSentinel is the value of an answer column when the question is
// part of the survey but the user has no recorded answer
const UnansweredSentinel = -1

const answerColumnPrefix = "ans_q"

var (
	ErrMissingParameters = errors.New("dynamic query is missing parameters")
	ErrNoSurveys         = errors.New("no surveys found")
	ErrDuplicateFact     = errors.New("duplicate structural fact")
)

// SurveyIDsQuery lists every survey in a fixed order
const SurveyIDsQuery = `SELECT survey_id FROM survey ORDER BY survey_id`

// QuestionMembership tags one question as in or out of a survey
type QuestionMembership struct {
	QuestionID int64
	InSurvey   bool
}

// SurveyFacts holds every known question for one survey, tagged in/out
type SurveyFacts struct {
	SurveyID  int64
	Questions []QuestionMembership
}

// Facts is the structural snapshot the view query is rendered from
type Facts struct {
	Surveys []SurveyFacts
}

// Selecter runs a read-only query
type Selecter interface {
	ExecuteSelect(ctx context.Context, sqlText string) (*table.Table, error)
}

// ColumnName returns the answer column name for a question
func ColumnName(questionID int64) string {
	return fmt.Sprintf("%s%d", answerColumnPrefix, questionID)
}

// QuestionsInSurveyQuery lists every question exactly once for surveyID,
// with in_survey = 1 for explicit members and 0 for the rest
func QuestionsInSurveyQuery(surveyID int64) (string, error) {
	if surveyID == 0 {
		return "", fmt.Errorf("%w: survey id", ErrMissingParameters)
	}

	return fmt.Sprintf(`SELECT survey_id, question_id, in_survey
FROM (
	SELECT ss.survey_id, ss.question_id, 1 AS in_survey
	FROM survey_structure AS ss
	WHERE ss.survey_id = %[1]d
	UNION
	SELECT %[1]d AS survey_id, q.question_id, 0 AS in_survey
	FROM question AS q
	WHERE NOT EXISTS (
		SELECT 1 FROM survey_structure AS ss
		WHERE ss.survey_id = %[1]d AND ss.question_id = q.question_id
	)
) AS t
ORDER BY question_id`, surveyID), nil
}

// AnswerColumn looks up the user's answer to questionID in surveyID,
// falling back to UnansweredSentinel
func AnswerColumn(surveyID, questionID int64) (string, error) {
	if surveyID == 0 || questionID == 0 {
		return "", fmt.Errorf("%w: survey id and question id", ErrMissingParameters)
	}

	return fmt.Sprintf(`
	, COALESCE((
		SELECT a.answer_value FROM answer AS a
		WHERE a.user_id = u.user_id AND a.survey_id = %d AND a.question_id = %d
	), %d) AS %s`, surveyID, questionID, UnansweredSentinel, ColumnName(questionID)), nil
}

// NullColumn always yields NULL for a question outside the survey
func NullColumn(questionID int64) (string, error) {
	if questionID == 0 {
		return "", fmt.Errorf("%w: question id", ErrMissingParameters)
	}

	return fmt.Sprintf(`
	, CAST(NULL AS INTEGER) AS %s`, ColumnName(questionID)), nil
}

// SurveySelect wraps the answer columns for one survey. Only users with at
// least one answer in the survey produce a row.
func SurveySelect(surveyID int64, columns string) (string, error) {
	if surveyID == 0 || columns == "" {
		return "", fmt.Errorf("%w: survey id and answer columns", ErrMissingParameters)
	}

	return fmt.Sprintf(`SELECT
	u.user_id
	, %[1]d AS survey_id%[2]s
FROM survey_user AS u
WHERE EXISTS (
	SELECT 1 FROM answer AS a
	WHERE a.user_id = u.user_id AND a.survey_id = %[1]d
)`, surveyID, columns), nil
}

// FetchFacts reads survey identifiers and per-survey membership from the store
func FetchFacts(ctx context.Context, sel Selecter) (Facts, error) {
	surveys, err := sel.ExecuteSelect(ctx, SurveyIDsQuery)
	if err != nil {
		return Facts{}, fmt.Errorf("failed to fetch survey ids: %w", err)
	}

	facts := Facts{Surveys: make([]SurveyFacts, 0, surveys.Len())}
	for i := range surveys.Rows {
		surveyID, err := surveys.Int64(i, "survey_id")
		if err != nil {
			return Facts{}, fmt.Errorf("failed to read survey id: %w", err)
		}

		qry, err := QuestionsInSurveyQuery(surveyID)
		if err != nil {
			return Facts{}, err
		}
		questions, err := sel.ExecuteSelect(ctx, qry)
		if err != nil {
			return Facts{}, fmt.Errorf("failed to fetch questions for survey %d: %w", surveyID, err)
		}

		sf := SurveyFacts{SurveyID: surveyID, Questions: make([]QuestionMembership, 0, questions.Len())}
		for j := range questions.Rows {
			questionID, err := questions.Int64(j, "question_id")
			if err != nil {
				return Facts{}, fmt.Errorf("failed to read question id: %w", err)
			}
			inSurvey, err := questions.Int64(j, "in_survey")
			if err != nil {
				return Facts{}, fmt.Errorf("failed to read in_survey flag: %w", err)
			}
			sf.Questions = append(sf.Questions, QuestionMembership{QuestionID: questionID, InSurvey: inSurvey != 0})
		}
		facts.Surveys = append(facts.Surveys, sf)
	}

	return facts, nil
}

// QuestionUniverse returns the questions that belong to at least one survey, ascending
func (f Facts) QuestionUniverse() []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, s := range f.Surveys {
		for _, q := range s.Questions {
			if q.InSurvey && !seen[q.QuestionID] {
				seen[q.QuestionID] = true
				ids = append(ids, q.QuestionID)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Render assembles the all-survey-data statement: one SELECT per survey in
// fetch order, joined with UNION. Every branch carries the same columns,
// ascending by question id, so identical facts render identical text.
func Render(f Facts) (string, error) {
	if len(f.Surveys) == 0 {
		return "", ErrNoSurveys
	}

	universe := f.QuestionUniverse()
	seenSurvey := make(map[int64]bool, len(f.Surveys))
	branches := make([]string, 0, len(f.Surveys))

	for _, s := range f.Surveys {
		if seenSurvey[s.SurveyID] {
			return "", fmt.Errorf("%w: survey %d listed twice", ErrDuplicateFact, s.SurveyID)
		}
		seenSurvey[s.SurveyID] = true

		inSurvey := make(map[int64]bool, len(s.Questions))
		seenQuestion := make(map[int64]bool, len(s.Questions))
		for _, q := range s.Questions {
			if seenQuestion[q.QuestionID] {
				return "", fmt.Errorf("%w: question %d listed twice for survey %d", ErrDuplicateFact, q.QuestionID, s.SurveyID)
			}
			seenQuestion[q.QuestionID] = true
			inSurvey[q.QuestionID] = q.InSurvey
		}

		var columns strings.Builder
		for _, questionID := range universe {
			var (
				col string
				err error
			)
			if inSurvey[questionID] {
				col, err = AnswerColumn(s.SurveyID, questionID)
			} else {
				col, err = NullColumn(questionID)
			}
			if err != nil {
				return "", err
			}
			columns.WriteString(col)
		}

		branch, err := SurveySelect(s.SurveyID, columns.String())
		if err != nil {
			return "", fmt.Errorf("survey %d: %w", s.SurveyID, err)
		}
		branches = append(branches, branch)
	}

	return strings.Join(branches, "\nUNION\n"), nil
}

// Build fetches structural facts from the store and renders the view query
func Build(ctx context.Context, sel Selecter) (string, error) {
	facts, err := FetchFacts(ctx, sel)
	if err != nil {
		return "", err
	}
	return Render(facts)
}

// Ordered wraps a rendered view query so rows come back sorted by user then survey
func Ordered(viewSQL string) string {
	return "SELECT * FROM (\n" + viewSQL + "\n) AS all_survey_data\nORDER BY user_id, survey_id"
}
