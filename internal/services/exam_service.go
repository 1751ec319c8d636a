package services

import (
	"strconv"
	"strings"
)

// UnansweredMarker is the sentinel shown in answer details when a question
// received no submission. Kept in Russian for client compatibility.
const UnansweredMarker = "Не отвечено"

// PassingScore is the minimum percentage required to pass the test.
const PassingScore = 80.0

type QuestionStore interface {
	ListQuestions(category string) ([]*TestQuestion, error)
}

// ExamService scores qualification-test submissions against the question bank.
type ExamService struct {
	store QuestionStore
}

func NewExamService(store QuestionStore) *ExamService {
	return &ExamService{store: store}
}

type AnswerDetail struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation"`
}

type TestResult struct {
	TotalQuestions int            `json:"total_questions"`
	CorrectAnswers int            `json:"correct_answers"`
	Score          float64        `json:"score"`
	Passed         bool           `json:"passed"`
	AnswersDetail  []AnswerDetail `json:"answers_detail"`
}

// Questions returns the bank in insertion order, optionally filtered by category.
func (s *ExamService) Questions(category string) ([]*TestQuestion, error) {
	return s.store.ListQuestions(strings.TrimSpace(category))
}

// Evaluate scores a submitted answer set. Values are form-encoded option
// indices keyed by question id; a missing answer counts as incorrect, an
// unparsable value is an input error.
func (s *ExamService) Evaluate(answers map[string]string) (*TestResult, error) {
	questions, err := s.store.ListQuestions("")
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, NewInvalidError("question bank is empty")
	}

	selected := make(map[string]int, len(answers))
	for qid, raw := range answers {
		idx, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, NewInvalidError("invalid answer format for question " + qid)
		}
		selected[qid] = idx
	}

	correct := 0
	detail := make([]AnswerDetail, 0, len(questions))
	for _, q := range questions {
		idx, answered := selected[q.ID]
		ok := answered && idx == q.CorrectIdx
		if ok {
			correct++
		}
		userAnswer := UnansweredMarker
		if answered && idx >= 0 && idx < len(q.Options) {
			userAnswer = q.Options[idx]
		}
		detail = append(detail, AnswerDetail{
			Question:      q.Text,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.Options[q.CorrectIdx],
			IsCorrect:     ok,
			Explanation:   q.Explanation,
		})
	}

	score := round1(float64(correct) / float64(len(questions)) * 100)
	return &TestResult{
		TotalQuestions: len(questions),
		CorrectAnswers: correct,
		Score:          score,
		Passed:         score >= PassingScore,
		AnswersDetail:  detail,
	}, nil
}
