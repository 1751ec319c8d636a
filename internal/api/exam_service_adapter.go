package api

import (
	"github.com/psyvr/exposure/internal/services"
)

type examStoreAdapter struct {
	store Store
}

func newExamStoreAdapter(store Store) services.QuestionStore {
	return &examStoreAdapter{store: store}
}

func (a *examStoreAdapter) ListQuestions(category string) ([]*services.TestQuestion, error) {
	qs, err := a.store.ListQuestions(category)
	if err != nil {
		return nil, err
	}
	out := make([]*services.TestQuestion, 0, len(qs))
	for _, q := range qs {
		out = append(out, &services.TestQuestion{
			ID:          q.ID,
			Text:        q.Text,
			Options:     q.Options,
			CorrectIdx:  q.CorrectIdx,
			Explanation: q.Explanation,
			Category:    q.Category,
		})
	}
	return out, nil
}

var _ services.QuestionStore = (*examStoreAdapter)(nil)
