package services

import (
	"strconv"
	"testing"
)

type questionStubStore struct {
	questions []*TestQuestion
}

func (s *questionStubStore) ListQuestions(category string) ([]*TestQuestion, error) {
	if category == "" {
		return s.questions, nil
	}
	out := []*TestQuestion{}
	for _, q := range s.questions {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out, nil
}

func bankOf(n int) *questionStubStore {
	s := &questionStubStore{}
	for i := 0; i < n; i++ {
		s.questions = append(s.questions, &TestQuestion{
			ID:          strconv.Itoa(i + 1),
			Text:        "Вопрос " + strconv.Itoa(i+1),
			Options:     []string{"A", "B", "C", "D"},
			CorrectIdx:  1,
			Explanation: "Пояснение " + strconv.Itoa(i+1),
			Category:    "theory",
		})
	}
	return s
}

func TestEvaluateAllCorrect(t *testing.T) {
	svc := NewExamService(bankOf(5))
	answers := map[string]string{"1": "1", "2": "1", "3": "1", "4": "1", "5": "1"}
	res, err := svc.Evaluate(answers)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if res.CorrectAnswers != 5 || res.Score != 100.0 || !res.Passed {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.AnswersDetail) != 5 {
		t.Fatalf("expected 5 detail rows, got %d", len(res.AnswersDetail))
	}
	for _, d := range res.AnswersDetail {
		if !d.IsCorrect || d.UserAnswer != "B" || d.CorrectAnswer != "B" {
			t.Fatalf("unexpected detail row: %+v", d)
		}
	}
}

func TestEvaluatePassThreshold(t *testing.T) {
	// 4/5 = 80.0 exactly: still a pass.
	svc := NewExamService(bankOf(5))
	answers := map[string]string{"1": "1", "2": "1", "3": "1", "4": "1", "5": "0"}
	res, err := svc.Evaluate(answers)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if res.Score != 80.0 || !res.Passed {
		t.Fatalf("expected 80.0/pass, got %v/%v", res.Score, res.Passed)
	}

	// 3/5 = 60.0: fail.
	answers["4"] = "0"
	res, err = svc.Evaluate(answers)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if res.Score != 60.0 || res.Passed {
		t.Fatalf("expected 60.0/fail, got %v/%v", res.Score, res.Passed)
	}
}

func TestEvaluateRounding(t *testing.T) {
	// 2/3 = 66.666... rounds to 66.7.
	svc := NewExamService(bankOf(3))
	res, err := svc.Evaluate(map[string]string{"1": "1", "2": "1", "3": "0"})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if res.Score != 66.7 {
		t.Fatalf("expected score 66.7, got %v", res.Score)
	}
	if res.Score < 0 || res.Score > 100 {
		t.Fatalf("score out of range: %v", res.Score)
	}
}

func TestEvaluateNoAnswers(t *testing.T) {
	svc := NewExamService(bankOf(5))
	res, err := svc.Evaluate(map[string]string{})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if res.CorrectAnswers != 0 || res.Passed {
		t.Fatalf("expected zero correct and fail, got %+v", res)
	}
	for _, d := range res.AnswersDetail {
		if d.UserAnswer != UnansweredMarker || d.IsCorrect {
			t.Fatalf("expected unanswered marker, got %+v", d)
		}
	}
}

func TestEvaluateInvalidFormat(t *testing.T) {
	svc := NewExamService(bankOf(3))
	_, err := svc.Evaluate(map[string]string{"1": "not-a-number"})
	if err == nil {
		t.Fatalf("expected error for unparsable answer")
	}
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorInvalid {
		t.Fatalf("expected invalid error, got %v", err)
	}
}

func TestEvaluateOutOfRangeIndex(t *testing.T) {
	// Out-of-range index parses fine; it is just wrong, never a crash.
	svc := NewExamService(bankOf(2))
	res, err := svc.Evaluate(map[string]string{"1": "9", "2": "-3"})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if res.CorrectAnswers != 0 {
		t.Fatalf("expected 0 correct, got %d", res.CorrectAnswers)
	}
	for _, d := range res.AnswersDetail {
		if d.UserAnswer != UnansweredMarker {
			t.Fatalf("expected sentinel for out-of-range answer, got %q", d.UserAnswer)
		}
	}
}

func TestQuestionsFilterAndOrder(t *testing.T) {
	store := bankOf(3)
	store.questions[1].Category = "emergency"
	svc := NewExamService(store)

	all, err := svc.Questions("")
	if err != nil {
		t.Fatalf("Questions returned error: %v", err)
	}
	if len(all) != 3 || all[0].ID != "1" || all[2].ID != "3" {
		t.Fatalf("expected insertion order, got %+v", all)
	}

	em, err := svc.Questions("emergency")
	if err != nil {
		t.Fatalf("Questions returned error: %v", err)
	}
	if len(em) != 1 || em[0].ID != "2" {
		t.Fatalf("unexpected filter result: %+v", em)
	}

	none, err := svc.Questions("administrative")
	if err != nil {
		t.Fatalf("Questions returned error: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected empty list, got %+v", none)
	}
}
